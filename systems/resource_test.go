package systems

import (
	"math/rand"
	"testing"

	"github.com/cgcardona/bugtopia/config"
	"github.com/cgcardona/bugtopia/world"
)

func testPool(t *testing.T) *ResourcePool {
	t.Helper()
	cfg := config.Default()
	arena, err := NewArena(cfg)
	if err != nil {
		t.Fatalf("new arena: %v", err)
	}
	return NewResourcePool(rand.New(rand.NewSource(3)), arena, cfg)
}

func TestGatherNeverOverdraws(t *testing.T) {
	p := testPool(t)
	n := p.Node(0)
	n.Quantity = 3

	// Two gathers of 2 against quantity 3: the second only gets the
	// remainder, total granted never exceeds what the node held.
	first := p.Gather(n.ID, 2)
	second := p.Gather(n.ID, 2)
	if first != 2 {
		t.Errorf("first gather = %d, want 2", first)
	}
	if second != 1 {
		t.Errorf("second gather = %d, want 1", second)
	}
	if first+second != 3 {
		t.Errorf("total granted %d exceeds initial quantity 3", first+second)
	}
	if n.Quantity != 0 {
		t.Errorf("quantity = %d after full depletion, want 0", n.Quantity)
	}
	if n.Available {
		t.Error("depleted node still marked available")
	}
}

func TestGatherDepletedGrantsZero(t *testing.T) {
	p := testPool(t)
	n := p.Node(0)
	n.Quantity = 0
	n.Available = false

	if got := p.Gather(n.ID, 5); got != 0 {
		t.Errorf("gather from depleted node = %d, want 0", got)
	}
	if got := p.Gather(-1, 5); got != 0 {
		t.Errorf("gather from unknown node = %d, want 0", got)
	}
	if got := p.Gather(n.ID, 0); got != 0 {
		t.Errorf("gather of zero units = %d, want 0", got)
	}
}

func TestRegrowRestoresFoodOnly(t *testing.T) {
	cfg := config.Default()
	cfg.Resource.RegrowRate = 0.5
	arena, err := NewArena(cfg)
	if err != nil {
		t.Fatalf("new arena: %v", err)
	}
	p := NewResourcePool(rand.New(rand.NewSource(3)), arena, cfg)

	var food, wood *ResourceNode
	for i := range p.Nodes() {
		n := p.Node(int32(i))
		switch {
		case food == nil && n.Kind == world.ResourceFood:
			food = n
		case wood == nil && n.Kind == world.ResourceWood:
			wood = n
		}
	}
	if food == nil || wood == nil {
		t.Fatal("pool missing food or wood node")
	}

	food.Quantity = 0
	food.Available = false
	wood.Quantity = 0
	wood.Available = false

	// At rate 0.5 the first tick accumulates a fraction, the second tick
	// lands one whole unit.
	p.Regrow()
	if food.Quantity != 0 {
		t.Errorf("food regrew a partial unit: %d", food.Quantity)
	}
	p.Regrow()
	if food.Quantity != 1 {
		t.Errorf("food quantity after two half-unit ticks = %d, want 1", food.Quantity)
	}
	if !food.Available {
		t.Error("food node with stock should be available again")
	}
	if wood.Quantity != 0 || wood.Available {
		t.Errorf("mineral node regrew: quantity=%d available=%v", wood.Quantity, wood.Available)
	}
}

func TestRegrowCapsAtCapacity(t *testing.T) {
	cfg := config.Default()
	cfg.Resource.RegrowRate = 10
	arena, err := NewArena(cfg)
	if err != nil {
		t.Fatalf("new arena: %v", err)
	}
	p := NewResourcePool(rand.New(rand.NewSource(3)), arena, cfg)

	var food *ResourceNode
	for i := range p.Nodes() {
		if n := p.Node(int32(i)); n.Kind == world.ResourceFood {
			food = n
			break
		}
	}
	food.Quantity = food.Capacity - 1
	p.Regrow()
	if food.Quantity != food.Capacity {
		t.Errorf("quantity = %d, want capacity %d", food.Quantity, food.Capacity)
	}
	p.Regrow()
	if food.Quantity > food.Capacity {
		t.Errorf("quantity %d exceeded capacity %d", food.Quantity, food.Capacity)
	}
}

func TestNearestRespectsFilterAndRadius(t *testing.T) {
	p := testPool(t)
	n := p.Node(0)

	isKind := func(k world.ResourceKind) bool { return k == n.Kind }
	got := p.Nearest(n.X, n.Y, 1, isKind)
	if got == nil || got.ID != n.ID {
		t.Fatalf("Nearest at node position missed node %d", n.ID)
	}

	n.Available = false
	if p.Nearest(n.X, n.Y, 1, isKind) != nil {
		t.Error("Nearest returned an unavailable node")
	}
	n.Available = true
	none := func(world.ResourceKind) bool { return false }
	if p.Nearest(n.X, n.Y, 1, none) != nil {
		t.Error("Nearest ignored the kind filter")
	}
}

func TestPoolPlacesNodesOnPassableTerrain(t *testing.T) {
	cfg := config.Default()
	arena, err := NewArena(cfg)
	if err != nil {
		t.Fatalf("new arena: %v", err)
	}
	p := NewResourcePool(rand.New(rand.NewSource(3)), arena, cfg)

	want := cfg.Resource.FoodNodes + cfg.Resource.MaterialNodes
	if len(p.Nodes()) != want {
		t.Fatalf("pool has %d nodes, want %d", len(p.Nodes()), want)
	}
	for _, n := range p.Nodes() {
		if !arena.Passable(n.X, n.Y) {
			t.Errorf("node %d placed on impassable terrain at (%v, %v)", n.ID, n.X, n.Y)
		}
	}
}
