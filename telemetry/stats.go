// Package telemetry aggregates simulation events into windowed statistics
// and writes them to CSV and SQLite.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/cgcardona/bugtopia/genome"
)

// BugSample is the per-bug slice of state the statistics pass reads. The
// engine builds these from live entities; telemetry never touches the ECS.
type BugSample struct {
	Genes      genome.PhysicalGenes
	Species    genome.Species
	Energy     float64
	Age        float64
	Generation int32
}

// Statistics is a population-wide aggregate at a point in time. An empty
// population produces all-zero statistics, never NaN.
type Statistics struct {
	Population int
	BySpecies  [genome.NumSpecies]int

	EnergyMean float64
	EnergyP10  float64
	EnergyP50  float64
	EnergyP90  float64

	AgeMean        float64
	GenerationMean float64
	GenerationMax  int32

	// Mean of each physical gene across the living population, in
	// canonical gene order.
	GeneMeans [genome.NumGenes]float64
}

// Recompute rebuilds the aggregate from a population sample.
func (s *Statistics) Recompute(samples []BugSample) {
	*s = Statistics{}
	n := len(samples)
	s.Population = n
	if n == 0 {
		return
	}

	energies := make([]float64, n)
	ages := make([]float64, n)
	gens := make([]float64, n)
	genes := make([][]float64, genome.NumGenes)
	for g := range genes {
		genes[g] = make([]float64, n)
	}

	for i, b := range samples {
		s.BySpecies[b.Species]++
		energies[i] = b.Energy
		ages[i] = b.Age
		gens[i] = float64(b.Generation)
		if b.Generation > s.GenerationMax {
			s.GenerationMax = b.Generation
		}
		for g := 0; g < genome.NumGenes; g++ {
			genes[g][i] = float64(b.Genes[g])
		}
	}

	s.EnergyMean = stat.Mean(energies, nil)
	s.AgeMean = stat.Mean(ages, nil)
	s.GenerationMean = stat.Mean(gens, nil)
	for g := 0; g < genome.NumGenes; g++ {
		s.GeneMeans[g] = stat.Mean(genes[g], nil)
	}

	sort.Float64s(energies)
	s.EnergyP10 = stat.Quantile(0.10, stat.Empirical, energies, nil)
	s.EnergyP50 = stat.Quantile(0.50, stat.Empirical, energies, nil)
	s.EnergyP90 = stat.Quantile(0.90, stat.Empirical, energies, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s Statistics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("population", s.Population),
		slog.Int("herbivores", s.BySpecies[genome.Herbivore]),
		slog.Int("carnivores", s.BySpecies[genome.Carnivore]),
		slog.Int("omnivores", s.BySpecies[genome.Omnivore]),
		slog.Int("scavengers", s.BySpecies[genome.Scavenger]),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("age_mean", s.AgeMean),
		slog.Float64("generation_mean", s.GenerationMean),
		slog.Int("generation_max", int(s.GenerationMax)),
		slog.Float64("speed_mean", s.GeneMeans[genome.GeneSpeed]),
		slog.Float64("vision_mean", s.GeneMeans[genome.GeneVisionRadius]),
		slog.Float64("aggression_mean", s.GeneMeans[genome.GeneAggression]),
	)
}
