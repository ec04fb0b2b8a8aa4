// Package neural provides the feedforward decision network for bugs.
package neural

import (
	"fmt"

	"github.com/cgcardona/bugtopia/genome"
)

// Network is a compiled view over a NeuralDNA: the flat weight/bias vectors
// sliced per layer so Forward never re-derives offsets. The slices alias the
// DNA's storage; genomes are immutable after birth, so sharing is safe.
type Network struct {
	topology []int
	weights  [][]float32 // weights[l] is row-major topology[l+1] x topology[l]
	biases   [][]float32 // biases[l] has topology[l+1] entries
	maxLayer int         // widest layer, for scratch sizing
}

// Compile builds a Network from a NeuralDNA, re-validating the encoding.
// An invalid encoding is a construction-time error; a compiled Network can
// never fail during inference.
func Compile(dna genome.NeuralDNA) (*Network, error) {
	if _, err := genome.NewNeuralDNA(dna.Topology, dna.Weights, dna.Biases); err != nil {
		return nil, fmt.Errorf("neural: %w", err)
	}
	if dna.Topology[0] != NumInputs {
		return nil, fmt.Errorf("neural: input layer size %d does not match perception vector size %d",
			dna.Topology[0], NumInputs)
	}
	if dna.Topology[len(dna.Topology)-1] != NumOutputs {
		return nil, fmt.Errorf("neural: output layer size %d does not match decision vector size %d",
			dna.Topology[len(dna.Topology)-1], NumOutputs)
	}

	n := &Network{topology: dna.Topology}
	wi, bi := 0, 0
	for l := 0; l+1 < len(dna.Topology); l++ {
		wn := dna.Topology[l] * dna.Topology[l+1]
		n.weights = append(n.weights, dna.Weights[wi:wi+wn])
		wi += wn
		bn := dna.Topology[l+1]
		n.biases = append(n.biases, dna.Biases[bi:bi+bn])
		bi += bn
	}
	for _, sz := range dna.Topology {
		if sz > n.maxLayer {
			n.maxLayer = sz
		}
	}
	return n, nil
}

// Forward computes raw pre-activation outputs for the final layer. Hidden
// layers use tanh; output activation is applied by DecodeDecision so the
// directional and urge fields get their own nonlinearities.
// Pure: no hidden state, same inputs and weights always produce the same
// outputs.
func (n *Network) Forward(inputs []float32) []float32 {
	cur := make([]float32, n.maxLayer)
	next := make([]float32, n.maxLayer)
	copy(cur, inputs)

	last := len(n.weights) - 1
	for l := 0; l <= last; l++ {
		in := n.topology[l]
		out := n.topology[l+1]
		w := n.weights[l]
		for i := 0; i < out; i++ {
			sum := n.biases[l][i]
			row := w[i*in : (i+1)*in]
			for j := 0; j < in; j++ {
				sum += row[j] * cur[j]
			}
			if l < last {
				next[i] = tanh(sum)
			} else {
				next[i] = sum
			}
		}
		cur, next = next, cur
	}

	outputs := make([]float32, n.topology[len(n.topology)-1])
	copy(outputs, cur)
	return outputs
}

// Activations holds captured intermediate layer values for inspection.
type Activations struct {
	Layers [][]float32 // one slice per layer, inputs first, raw outputs last
}

// ForwardWithCapture is Forward plus a copy of every layer's activations,
// for the presentation layer's detail display.
func (n *Network) ForwardWithCapture(inputs []float32) ([]float32, *Activations) {
	act := &Activations{}
	layer := make([]float32, n.topology[0])
	copy(layer, inputs)
	act.Layers = append(act.Layers, layer)

	last := len(n.weights) - 1
	for l := 0; l <= last; l++ {
		in := n.topology[l]
		out := n.topology[l+1]
		w := n.weights[l]
		next := make([]float32, out)
		for i := 0; i < out; i++ {
			sum := n.biases[l][i]
			row := w[i*in : (i+1)*in]
			for j := 0; j < in; j++ {
				sum += row[j] * layer[j]
			}
			if l < last {
				next[i] = tanh(sum)
			} else {
				next[i] = sum
			}
		}
		act.Layers = append(act.Layers, next)
		layer = next
	}

	outputs := make([]float32, len(layer))
	copy(outputs, layer)
	return outputs, act
}

// tanh uses a fast rational approximation avoiding float64 conversion.
func tanh(x float32) float32 {
	if x > 4 {
		return 1
	}
	if x < -4 {
		return -1
	}
	x2 := x * x
	return x * (27 + x2) / (27 + 9*x2)
}

// saturate01 clamps x to [0, 1] - fastest possible [0,1] activation.
func saturate01(x float32) float32 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	return x
}
