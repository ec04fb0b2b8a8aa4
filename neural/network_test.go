package neural

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cgcardona/bugtopia/genome"
)

func compileRandom(t *testing.T, rng *rand.Rand, hidden []int) *Network {
	t.Helper()
	dna, err := genome.RandomNeuralDNA(rng, Topology(hidden))
	if err != nil {
		t.Fatalf("RandomNeuralDNA: %v", err)
	}
	net, err := Compile(dna)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return net
}

func TestCompileRejectsWrongIO(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name     string
		topology []int
	}{
		{"wrong inputs", []int{8, 12, NumOutputs}},
		{"wrong outputs", []int{NumInputs, 12, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dna, err := genome.RandomNeuralDNA(rng, tt.topology)
			if err != nil {
				t.Fatalf("RandomNeuralDNA: %v", err)
			}
			if _, err := Compile(dna); err == nil {
				t.Error("expected compile error, got nil")
			}
		})
	}
}

func TestDecisionBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	net := compileRandom(t, rng, []int{12})

	// Extreme but finite inputs must still yield bounded decisions.
	for trial := 0; trial < 100; trial++ {
		var p Perception
		var buf [NumInputs]float32
		in := p.AsSlice(buf[:])
		for i := range in {
			in[i] = float32(rng.NormFloat64()) * 100
		}

		d := DecodeDecision(net.Forward(in))

		if d.MoveX < -1 || d.MoveX > 1 || d.MoveY < -1 || d.MoveY > 1 {
			t.Fatalf("move outputs out of [-1,1]: %+v", d)
		}
		for name, v := range map[string]float32{
			"aggression": d.Aggression, "exploration": d.Exploration,
			"social": d.Social, "reproduction": d.Reproduction,
			"hunting": d.Hunting, "fleeing": d.Fleeing,
		} {
			if v < 0 || v > 1 {
				t.Fatalf("%s = %v out of [0,1]", name, v)
			}
		}
	}
}

func TestForwardOutputSize(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for _, hidden := range [][]int{{12}, {12, 6}, {}} {
		net := compileRandom(t, rng, hidden)
		out := net.Forward(make([]float32, NumInputs))
		if len(out) != NumOutputs {
			t.Errorf("hidden %v: output size %d, want %d", hidden, len(out), NumOutputs)
		}
	}
}

func TestForwardDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	net := compileRandom(t, rng, []int{12})

	in := make([]float32, NumInputs)
	for i := range in {
		in[i] = rng.Float32()*2 - 1
	}

	a := net.Forward(in)
	b := net.Forward(in)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("output %d differs between identical calls: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestForwardWithCaptureMatchesForward(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	net := compileRandom(t, rng, []int{12, 6})

	in := make([]float32, NumInputs)
	for i := range in {
		in[i] = rng.Float32()
	}

	plain := net.Forward(in)
	captured, act := net.ForwardWithCapture(in)

	for i := range plain {
		if math.Abs(float64(plain[i]-captured[i])) > 1e-6 {
			t.Fatalf("output %d: %v != %v", i, plain[i], captured[i])
		}
	}
	if len(act.Layers) != 4 {
		t.Errorf("captured %d layers, want 4", len(act.Layers))
	}
}

func TestTanhBounds(t *testing.T) {
	for _, x := range []float32{-100, -4.1, -1, 0, 1, 4.1, 100} {
		y := tanh(x)
		if y < -1 || y > 1 {
			t.Errorf("tanh(%v) = %v out of [-1,1]", x, y)
		}
	}
	if tanh(0) != 0 {
		t.Errorf("tanh(0) = %v, want 0", tanh(0))
	}
}
