package genome

import (
	"fmt"
	"math"
	"math/rand"
)

// NeuralDNA encodes a fixed-topology feedforward network as flat weight and
// bias vectors. Topology never changes across a run; crossover and mutation
// operate element-wise at matching indices.
type NeuralDNA struct {
	Topology []int     // Layer sizes, input first, output last
	Weights  []float32 // Row-major per layer transition, concatenated
	Biases   []float32 // Per non-input neuron, concatenated
}

// WeightCount returns the number of weights the topology implies.
func WeightCount(topology []int) int {
	n := 0
	for i := 0; i+1 < len(topology); i++ {
		n += topology[i] * topology[i+1]
	}
	return n
}

// BiasCount returns the number of biases the topology implies.
func BiasCount(topology []int) int {
	n := 0
	for i := 1; i < len(topology); i++ {
		n += topology[i]
	}
	return n
}

// NewNeuralDNA constructs a NeuralDNA, verifying that the weight and bias
// vectors exactly match the topology. A mismatch is a construction-time
// error and must never reach the tick loop.
func NewNeuralDNA(topology []int, weights, biases []float32) (NeuralDNA, error) {
	if len(topology) < 2 {
		return NeuralDNA{}, fmt.Errorf("genome: topology needs at least input and output layers, got %d", len(topology))
	}
	for i, n := range topology {
		if n <= 0 {
			return NeuralDNA{}, fmt.Errorf("genome: topology layer %d has non-positive size %d", i, n)
		}
	}
	if want := WeightCount(topology); len(weights) != want {
		return NeuralDNA{}, fmt.Errorf("genome: weight count %d does not match topology (want %d)", len(weights), want)
	}
	if want := BiasCount(topology); len(biases) != want {
		return NeuralDNA{}, fmt.Errorf("genome: bias count %d does not match topology (want %d)", len(biases), want)
	}
	return NeuralDNA{Topology: topology, Weights: weights, Biases: biases}, nil
}

// RandomNeuralDNA creates a Xavier-initialized network for the topology.
func RandomNeuralDNA(rng *rand.Rand, topology []int) (NeuralDNA, error) {
	weights := make([]float32, WeightCount(topology))
	biases := make([]float32, BiasCount(topology))

	wi := 0
	for l := 0; l+1 < len(topology); l++ {
		scale := float32(math.Sqrt(2.0 / float64(topology[l])))
		for i := 0; i < topology[l]*topology[l+1]; i++ {
			weights[wi] = float32(rng.NormFloat64()) * scale
			wi++
		}
	}
	// Biases start at zero

	return NewNeuralDNA(topology, weights, biases)
}

// Clone returns a deep copy.
func (n NeuralDNA) Clone() NeuralDNA {
	c := NeuralDNA{
		Topology: make([]int, len(n.Topology)),
		Weights:  make([]float32, len(n.Weights)),
		Biases:   make([]float32, len(n.Biases)),
	}
	copy(c.Topology, n.Topology)
	copy(c.Weights, n.Weights)
	copy(c.Biases, n.Biases)
	return c
}

// SameTopology reports whether two encodings share a layer layout.
func (n NeuralDNA) SameTopology(other NeuralDNA) bool {
	if len(n.Topology) != len(other.Topology) {
		return false
	}
	for i := range n.Topology {
		if n.Topology[i] != other.Topology[i] {
			return false
		}
	}
	return true
}
