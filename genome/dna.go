package genome

import "math/rand"

// DNA is a bug's complete genome. It is immutable after birth; new genomes
// are only produced by Random (world genesis) or Crossover (reproduction).
type DNA struct {
	Genes   PhysicalGenes
	Neural  NeuralDNA
	Species SpeciesTraits
	Tools   ToolDNA
}

// New constructs a DNA, validating the neural encoding against its topology.
func New(genes PhysicalGenes, neural NeuralDNA, species SpeciesTraits, tools ToolDNA) (*DNA, error) {
	// Re-validate through the constructor so a hand-built NeuralDNA cannot
	// smuggle a mismatched weight vector past the invariant.
	validated, err := NewNeuralDNA(neural.Topology, neural.Weights, neural.Biases)
	if err != nil {
		return nil, err
	}
	genes.Clamp()
	tools.Clamp()
	return &DNA{Genes: genes, Neural: validated, Species: species, Tools: tools}, nil
}

// Random creates a genome with uniformly drawn genes and a Xavier-initialized
// network for the given topology.
func Random(rng *rand.Rand, topology []int) (*DNA, error) {
	neural, err := RandomNeuralDNA(rng, topology)
	if err != nil {
		return nil, err
	}
	return New(RandomPhysicalGenes(rng), neural, RandomSpeciesTraits(rng), RandomToolDNA(rng))
}

// Clone returns a deep copy.
func (d *DNA) Clone() *DNA {
	c := *d
	c.Neural = d.Neural.Clone()
	return &c
}
