package genome

import (
	"fmt"
	"math/rand"
)

// MutationParams control per-gene mutation during crossover.
//
// For scalar genes (physical and tool), Sigma and Bound are expressed in
// units of the gene's declared range width, so a Bound of 0.3 caps any single
// mutation at 30% of the gene's range. For neural weights and biases, which
// have no declared range, Sigma and Bound are absolute.
type MutationParams struct {
	Rate     float32 // Probability each gene mutates, independent per gene
	Sigma    float32 // Std deviation of the perturbation
	BigRate  float32 // Probability a mutation is a large one
	BigSigma float32 // Sigma for large mutations
	Bound    float32 // Hard cap on any single mutation delta
}

// Crossover produces a child genome from two parents. Each scalar gene is
// drawn from a parent or their midpoint, then perturbed with probability
// Rate and clamped to its valid range. Neural weights and biases are crossed
// element-wise at matching indices; topology is fixed across a run, so
// mismatched parent topologies are a construction error.
func Crossover(rng *rand.Rand, a, b *DNA, p MutationParams) (*DNA, error) {
	if !a.Neural.SameTopology(b.Neural) {
		return nil, fmt.Errorf("genome: cannot cross mismatched topologies %v and %v",
			a.Neural.Topology, b.Neural.Topology)
	}

	var genes PhysicalGenes
	for i := range genes {
		r := geneRanges[i]
		genes[i] = crossScalar(rng, a.Genes[i], b.Genes[i], r, p)
	}

	var tools ToolDNA
	for i := range tools {
		r := toolRanges[i]
		tools[i] = crossScalar(rng, a.Tools[i], b.Tools[i], r, p)
	}

	neural := crossNeural(rng, a.Neural, b.Neural, p)

	species := crossSpecies(rng, a.Species, b.Species, p)

	return New(genes, neural, species, tools)
}

// crossScalar picks a parent value (or the midpoint), mutates it with
// range-scaled magnitude, and clamps into the declared range.
func crossScalar(rng *rand.Rand, av, bv float32, r GeneRange, p MutationParams) float32 {
	var v float32
	switch pick := rng.Float32(); {
	case pick < 0.4:
		v = av
	case pick < 0.8:
		v = bv
	default:
		v = (av + bv) * 0.5
	}

	if rng.Float32() < p.Rate {
		width := r.Max - r.Min
		v += mutationDelta(rng, p) * width
	}

	return clamp32(v, r.Min, r.Max)
}

// crossNeural crosses weight and bias vectors element-wise. Indices align
// because the topologies are identical.
func crossNeural(rng *rand.Rand, a, b NeuralDNA, p MutationParams) NeuralDNA {
	child := a.Clone()
	for i := range child.Weights {
		if rng.Float32() < 0.5 {
			child.Weights[i] = b.Weights[i]
		}
		if rng.Float32() < p.Rate {
			child.Weights[i] += mutationDelta(rng, p)
		}
	}
	// Biases mutate at half the weight rate, matching the sparse-mutation
	// discipline the founders were trained under.
	biasRate := p.Rate * 0.5
	for i := range child.Biases {
		if rng.Float32() < 0.5 {
			child.Biases[i] = b.Biases[i]
		}
		if rng.Float32() < biasRate {
			child.Biases[i] += mutationDelta(rng, p)
		}
	}
	return child
}

// crossSpecies inherits one parent's tag and crosses the trait records the
// tag actually uses. Engine-level pairing requires identical tags, so the
// pick is a no-op in practice; it keeps Crossover total for any input pair.
func crossSpecies(rng *rand.Rand, a, b SpeciesTraits, p MutationParams) SpeciesTraits {
	tag := a.Tag
	if rng.Float32() < 0.5 {
		tag = b.Tag
	}

	unit := GeneRange{0, 1}
	st := SpeciesTraits{Tag: tag}
	if tag.Hunts() {
		st.Hunting = HuntingTraits{
			Intensity: crossScalar(rng, a.Hunting.Intensity, b.Hunting.Intensity, unit, p),
			Stealth:   crossScalar(rng, a.Hunting.Stealth, b.Hunting.Stealth, unit, p),
		}
	}
	if tag.Defends() {
		st.Defense = DefenseTraits{
			PredatorDetection: crossScalar(rng, a.Defense.PredatorDetection, b.Defense.PredatorDetection, unit, p),
			FleeSpeed:         crossScalar(rng, a.Defense.FleeSpeed, b.Defense.FleeSpeed, unit, p),
		}
	}
	return st
}

// mutationDelta draws a perturbation, occasionally large, hard-capped at
// ±Bound.
func mutationDelta(rng *rand.Rand, p MutationParams) float32 {
	sigma := p.Sigma
	if rng.Float32() < p.BigRate {
		sigma = p.BigSigma
	}
	return clamp32(float32(rng.NormFloat64())*sigma, -p.Bound, p.Bound)
}
