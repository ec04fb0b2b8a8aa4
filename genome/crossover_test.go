package genome

import (
	"math/rand"
	"testing"
)

var testTopology = []int{16, 12, 8}

func testParams() MutationParams {
	return MutationParams{Rate: 0.1, Sigma: 0.05, BigRate: 0.01, BigSigma: 0.25, Bound: 0.3}
}

func mustRandom(t *testing.T, rng *rand.Rand) *DNA {
	t.Helper()
	dna, err := Random(rng, testTopology)
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	return dna
}

// Child genes must stay within [min(a,b)-bound, max(a,b)+bound] (bound scaled
// by gene range width) and within each gene's declared range.
func TestCrossoverGeneBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := testParams()

	for trial := 0; trial < 200; trial++ {
		a := mustRandom(t, rng)
		b := mustRandom(t, rng)

		child, err := Crossover(rng, a, b, p)
		if err != nil {
			t.Fatalf("Crossover: %v", err)
		}

		for i := 0; i < NumGenes; i++ {
			r := geneRanges[i]
			bound := p.Bound * (r.Max - r.Min)

			lo, hi := a.Genes[i], b.Genes[i]
			if lo > hi {
				lo, hi = hi, lo
			}

			v := child.Genes[i]
			if v < lo-bound-1e-4 || v > hi+bound+1e-4 {
				t.Fatalf("gene %v = %v outside parent envelope [%v, %v] ± %v",
					GeneIndex(i), v, lo, hi, bound)
			}
			if v < r.Min || v > r.Max {
				t.Fatalf("gene %v = %v outside declared range [%v, %v]",
					GeneIndex(i), v, r.Min, r.Max)
			}
		}
	}
}

func TestCrossoverPreservesTopology(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	a := mustRandom(t, rng)
	b := mustRandom(t, rng)

	child, err := Crossover(rng, a, b, testParams())
	if err != nil {
		t.Fatalf("Crossover: %v", err)
	}

	if !child.Neural.SameTopology(a.Neural) {
		t.Errorf("child topology %v differs from parent %v", child.Neural.Topology, a.Neural.Topology)
	}
	if len(child.Neural.Weights) != WeightCount(testTopology) {
		t.Errorf("child weights = %d, want %d", len(child.Neural.Weights), WeightCount(testTopology))
	}
	if len(child.Neural.Biases) != BiasCount(testTopology) {
		t.Errorf("child biases = %d, want %d", len(child.Neural.Biases), BiasCount(testTopology))
	}
}

func TestCrossoverRejectsMismatchedTopologies(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	a := mustRandom(t, rng)

	other, err := Random(rng, []int{16, 6, 8})
	if err != nil {
		t.Fatalf("Random: %v", err)
	}

	if _, err := Crossover(rng, a, other, testParams()); err == nil {
		t.Error("expected error for mismatched topologies, got nil")
	}
}

func TestCrossoverToolGenesClamped(t *testing.T) {
	rng := rand.New(rand.NewSource(10))

	for trial := 0; trial < 100; trial++ {
		a := mustRandom(t, rng)
		b := mustRandom(t, rng)

		child, err := Crossover(rng, a, b, testParams())
		if err != nil {
			t.Fatalf("Crossover: %v", err)
		}

		for i := 0; i < NumToolGenes; i++ {
			r := toolRanges[i]
			if child.Tools[i] < r.Min || child.Tools[i] > r.Max {
				t.Fatalf("tool gene %v = %v outside [%v, %v]",
					ToolIndex(i), child.Tools[i], r.Min, r.Max)
			}
		}
	}
}

func TestSpeciesTraitDispatch(t *testing.T) {
	tests := []struct {
		species Species
		hunts   bool
		defends bool
	}{
		{Herbivore, false, true},
		{Carnivore, true, false},
		{Omnivore, true, true},
		{Scavenger, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.species.String(), func(t *testing.T) {
			if got := tt.species.Hunts(); got != tt.hunts {
				t.Errorf("Hunts() = %v, want %v", got, tt.hunts)
			}
			if got := tt.species.Defends(); got != tt.defends {
				t.Errorf("Defends() = %v, want %v", got, tt.defends)
			}
		})
	}
}

func TestEatsTrophicOrder(t *testing.T) {
	if !Eats(Carnivore, Herbivore) {
		t.Error("carnivore should eat herbivore")
	}
	if Eats(Carnivore, Carnivore) {
		t.Error("carnivore should not eat carnivore")
	}
	if Eats(Herbivore, Carnivore) {
		t.Error("herbivore should not hunt")
	}
	if Eats(Omnivore, Omnivore) {
		t.Error("omnivore should not eat omnivore")
	}
}
