package systems

import (
	"testing"

	"github.com/cgcardona/bugtopia/world"
)

func TestBlueprintCompletionMonotonic(t *testing.T) {
	s := NewSites(600, 0.05)
	id := s.Found(world.ToolShelter, 100, 100, 1, 0)
	b := s.Blueprint(id)

	prev := float32(0)
	tick := int64(1)
	for kind := world.ResourceKind(0); int(kind) < world.NumResourceKinds; kind++ {
		for b.Needs(kind) > 0 {
			if got := s.Contribute(id, kind, 1, tick); got != 1 {
				t.Fatalf("contribute %v accepted %d, want 1", kind, got)
			}
			tick++
			c := b.Completion()
			if c < prev {
				t.Fatalf("completion decreased from %v to %v", prev, c)
			}
			prev = c
		}
	}
	if b.Completion() != 1 {
		t.Fatalf("fully supplied blueprint completion = %v, want 1", b.Completion())
	}
}

func TestContributeRejectsUnneededKinds(t *testing.T) {
	s := NewSites(600, 0.05)
	// Ramp needs no fiber.
	id := s.Found(world.ToolRamp, 0, 0, 1, 0)

	if got := s.Contribute(id, world.ResourceFiber, 3, 1); got != 0 {
		t.Errorf("unneeded kind accepted %d units", got)
	}
	need := s.Blueprint(id).Needs(world.ResourceWood)
	if got := s.Contribute(id, world.ResourceWood, need+10, 1); got != need {
		t.Errorf("over-supply accepted %d, want exactly the %d needed", got, need)
	}
	if got := s.Contribute(id, world.ResourceWood, 1, 2); got != 0 {
		t.Errorf("full kind accepted %d more units", got)
	}
}

func TestSweepSpawnsExactlyOneToolPerCompletion(t *testing.T) {
	s := NewSites(600, 0.05)
	id := s.Found(world.ToolTrap, 42, 24, 7, 0)
	b := s.Blueprint(id)
	for kind := world.ResourceKind(0); int(kind) < world.NumResourceKinds; kind++ {
		if need := b.Needs(kind); need > 0 {
			s.Contribute(id, kind, need, 1)
		}
	}

	completed, abandoned, worn := s.Sweep(2)
	if completed != 1 || abandoned != 0 || worn != 0 {
		t.Fatalf("sweep = (%d, %d, %d), want (1, 0, 0)", completed, abandoned, worn)
	}
	tools := s.Tools()
	if len(tools) != 1 {
		t.Fatalf("have %d tools after one completion, want 1", len(tools))
	}
	tool := tools[0]
	if tool.Type != world.ToolTrap || tool.X != 42 || tool.Y != 24 {
		t.Errorf("tool %+v does not match its blueprint", tool)
	}
	if tool.Durability != 1 || !tool.Usable {
		t.Errorf("new tool durability=%v usable=%v, want 1/true", tool.Durability, tool.Usable)
	}
	if s.Blueprint(id) != nil {
		t.Error("completed blueprint still live after sweep")
	}

	// A second sweep must not duplicate the tool.
	completed, _, _ = s.Sweep(3)
	if completed != 0 || len(s.Tools()) != 1 {
		t.Errorf("second sweep completed %d, tools %d; want 0 and 1", completed, len(s.Tools()))
	}
}

func TestSweepAbandonsStalledBlueprints(t *testing.T) {
	s := NewSites(100, 0.05)
	id := s.Found(world.ToolBridge, 0, 0, 1, 0)
	s.Contribute(id, world.ResourceWood, 4, 10)

	// Still inside the stall window.
	if _, abandoned, _ := s.Sweep(109); abandoned != 0 {
		t.Fatal("blueprint abandoned before the stall window elapsed")
	}
	// No progress for 100 ticks since the last contribution.
	_, abandoned, _ := s.Sweep(110)
	if abandoned != 1 {
		t.Fatalf("abandoned = %d, want 1", abandoned)
	}
	if s.Blueprint(id) != nil {
		t.Error("abandoned blueprint still live")
	}
	// Forfeited: the gathered wood is gone, no tool appeared.
	if len(s.Tools()) != 0 {
		t.Error("abandonment spawned a tool")
	}
}

func TestToolWearFlipsUsableAtZero(t *testing.T) {
	s := NewSites(600, 0.25)
	id := s.Found(world.ToolShelter, 0, 0, 1, 0)
	b := s.Blueprint(id)
	for kind := world.ResourceKind(0); int(kind) < world.NumResourceKinds; kind++ {
		if need := b.Needs(kind); need > 0 {
			s.Contribute(id, kind, need, 1)
		}
	}
	s.Sweep(2)
	tool := &s.Tools()[0]

	prev := tool.Durability
	for i := 0; i < 4; i++ {
		if !s.UseTool(tool.ID) {
			t.Fatalf("use %d rejected on usable tool", i+1)
		}
		if tool.Durability > prev {
			t.Fatalf("durability increased from %v to %v", prev, tool.Durability)
		}
		prev = tool.Durability
	}
	if tool.Durability != 0 {
		t.Fatalf("durability after 4 uses at wear 0.25 = %v, want exactly 0", tool.Durability)
	}
	if tool.Usable {
		t.Error("tool at zero durability still usable")
	}
	if s.UseTool(tool.ID) {
		t.Error("worn-out tool accepted another use")
	}

	// Worn tools are pruned on the next sweep.
	_, _, worn := s.Sweep(3)
	if worn != 1 || len(s.Tools()) != 0 {
		t.Errorf("worn = %d, tools = %d; want 1 and 0", worn, len(s.Tools()))
	}
}

func TestNearestBlueprintFiltersByNeed(t *testing.T) {
	s := NewSites(600, 0.05)
	near := s.Found(world.ToolRamp, 10, 10, 1, 0)  // needs wood+stone
	far := s.Found(world.ToolTrap, 200, 200, 2, 0) // needs fiber among others

	got := s.NearestBlueprint(0, 0, 500, world.ResourceWood)
	if got == nil || got.ID != near {
		t.Fatal("nearest wood-needing blueprint should be the ramp")
	}
	got = s.NearestBlueprint(0, 0, 500, world.ResourceFiber)
	if got == nil || got.ID != far {
		t.Fatal("ramp needs no fiber; the trap should win")
	}
	if s.NearestBlueprint(0, 0, 5, world.ResourceWood) != nil {
		t.Error("blueprint outside radius returned")
	}
}

func TestNearestToolFiltersByType(t *testing.T) {
	s := NewSites(600, 0.05)
	complete := func(tool world.ToolType, x, y float32) {
		id := s.Found(tool, x, y, 1, 0)
		b := s.Blueprint(id)
		for kind := world.ResourceKind(0); int(kind) < world.NumResourceKinds; kind++ {
			if need := b.Needs(kind); need > 0 {
				s.Contribute(id, kind, need, 1)
			}
		}
	}
	complete(world.ToolTrap, 10, 10)
	complete(world.ToolShelter, 100, 100)
	s.Sweep(2)

	shelterOnly := func(tt world.ToolType) bool { return tt == world.ToolShelter }
	any := func(world.ToolType) bool { return true }

	// The trap is closer, but a shelter-only query must skip it.
	got := s.NearestTool(0, 0, 500, shelterOnly)
	if got == nil || got.Type != world.ToolShelter {
		t.Fatalf("shelter query returned %+v", got)
	}
	got = s.NearestTool(0, 0, 500, any)
	if got == nil || got.Type != world.ToolTrap {
		t.Fatalf("unfiltered query should return the nearer trap, got %+v", got)
	}
	if s.NearestTool(0, 0, 50, shelterOnly) != nil {
		t.Error("shelter outside radius returned")
	}
}
