// Package genome defines the heritable data model for bugs: physical genes,
// neural topology/weights, species traits, and tool traits, plus crossover
// and mutation.
package genome

import "math/rand"

// GeneIndex identifies a physical gene. The order here is the canonical
// order used by crossover, mutation, and statistics.
type GeneIndex uint8

const (
	GeneSpeed GeneIndex = iota
	GeneVisionRadius
	GeneEnergyEfficiency
	GeneSize
	GeneStrength
	GeneMemory
	GeneStickiness
	GeneCamouflage
	GeneAggression
	GeneCuriosity

	NumGenes = int(GeneCuriosity) + 1
)

var geneNames = [NumGenes]string{
	"speed", "vision_radius", "energy_efficiency", "size", "strength",
	"memory", "stickiness", "camouflage", "aggression", "curiosity",
}

func (g GeneIndex) String() string {
	if int(g) < len(geneNames) {
		return geneNames[g]
	}
	return "unknown"
}

// GeneRange declares the valid interval for a gene. Crossover output is
// always clamped into this range.
type GeneRange struct {
	Min, Max float32
}

// geneRanges is the per-gene valid range table, indexed by GeneIndex.
var geneRanges = [NumGenes]GeneRange{
	GeneSpeed:            {0.1, 2.0},
	GeneVisionRadius:     {10, 200},
	GeneEnergyEfficiency: {0, 0.95},
	GeneSize:             {0.3, 3.0},
	GeneStrength:         {0, 1},
	GeneMemory:           {0, 1},
	GeneStickiness:       {0, 1},
	GeneCamouflage:       {0, 1},
	GeneAggression:       {0, 1},
	GeneCuriosity:        {0, 1},
}

// Range returns the declared valid range for a gene.
func Range(g GeneIndex) GeneRange {
	return geneRanges[g]
}

// PhysicalGenes holds the scalar physical traits of a bug.
type PhysicalGenes [NumGenes]float32

// Speed is the base movement rate multiplier.
func (p *PhysicalGenes) Speed() float32 { return p[GeneSpeed] }

// VisionRadius is the base perception distance in world units.
func (p *PhysicalGenes) VisionRadius() float32 { return p[GeneVisionRadius] }

// EnergyEfficiency reduces movement energy cost: cost scales by (1 - efficiency).
func (p *PhysicalGenes) EnergyEfficiency() float32 { return p[GeneEnergyEfficiency] }

func (p *PhysicalGenes) Size() float32       { return p[GeneSize] }
func (p *PhysicalGenes) Strength() float32   { return p[GeneStrength] }
func (p *PhysicalGenes) Memory() float32     { return p[GeneMemory] }
func (p *PhysicalGenes) Stickiness() float32 { return p[GeneStickiness] }
func (p *PhysicalGenes) Camouflage() float32 { return p[GeneCamouflage] }
func (p *PhysicalGenes) Aggression() float32 { return p[GeneAggression] }
func (p *PhysicalGenes) Curiosity() float32  { return p[GeneCuriosity] }

// Clamp forces every gene into its declared range.
func (p *PhysicalGenes) Clamp() {
	for i := range p {
		r := geneRanges[i]
		if p[i] < r.Min {
			p[i] = r.Min
		} else if p[i] > r.Max {
			p[i] = r.Max
		}
	}
}

// RandomPhysicalGenes draws each gene uniformly from its valid range.
func RandomPhysicalGenes(rng *rand.Rand) PhysicalGenes {
	var p PhysicalGenes
	for i := range p {
		r := geneRanges[i]
		p[i] = r.Min + rng.Float32()*(r.Max-r.Min)
	}
	return p
}

func clamp32(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
