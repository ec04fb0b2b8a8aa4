package systems

import (
	"github.com/cgcardona/bugtopia/world"
)

// Blueprint is an in-progress construction project. Agents contribute
// gathered resources; completion is monotonic and only abandonment removes
// a blueprint early.
type Blueprint struct {
	ID       int32
	Type     world.ToolType
	X, Y     float32
	Required world.Manifest
	Gathered world.Manifest

	FounderID    uint64 // Bug that founded the project
	LastProgress int64  // Tick of the most recent contribution
	Abandoned    bool
	Completed    bool
}

// Completion returns gathered/required as an aggregate in [0,1].
func (b *Blueprint) Completion() float32 {
	req := b.Required.Total()
	if req <= 0 {
		return 1
	}
	return float32(b.Gathered.Total()) / float32(req)
}

// Needs returns how many more units of kind the blueprint requires.
func (b *Blueprint) Needs(kind world.ResourceKind) int32 {
	rem := b.Required[kind] - b.Gathered[kind]
	if rem < 0 {
		return 0
	}
	return rem
}

// Tool is a completed construction, usable until its durability is
// exhausted.
type Tool struct {
	ID         int32
	Type       world.ToolType
	X, Y       float32
	Size       float32
	Durability float32 // Monotonically decreasing, in [0,1]
	Usable     bool
	Uses       int32
}

// Sites owns all blueprints and tools. Mutation happens only in the
// engine's serialized commit phase.
type Sites struct {
	blueprints []Blueprint
	tools      []Tool

	stallTicks int64
	wearPerUse float32

	nextBlueprintID int32
	nextToolID      int32
}

// NewSites creates an empty construction registry.
func NewSites(stallTicks int, wearPerUse float64) *Sites {
	return &Sites{
		stallTicks: int64(stallTicks),
		wearPerUse: float32(wearPerUse),
	}
}

// Found registers a new blueprint at a position and returns its ID.
func (s *Sites) Found(t world.ToolType, x, y float32, founder uint64, tick int64) int32 {
	id := s.nextBlueprintID
	s.nextBlueprintID++
	s.blueprints = append(s.blueprints, Blueprint{
		ID:           id,
		Type:         t,
		X:            x,
		Y:            y,
		Required:     world.BlueprintCost(t),
		FounderID:    founder,
		LastProgress: tick,
	})
	return id
}

// Contribute moves up to qty units of kind into the blueprint and returns
// the accepted amount. Contributions to a kind the blueprint does not need,
// or to a finished or abandoned blueprint, accept 0.
func (s *Sites) Contribute(blueprintID int32, kind world.ResourceKind, qty int32, tick int64) int32 {
	b := s.Blueprint(blueprintID)
	if b == nil || b.Completed || b.Abandoned || qty <= 0 {
		return 0
	}

	accepted := b.Needs(kind)
	if accepted > qty {
		accepted = qty
	}
	if accepted == 0 {
		return 0
	}

	b.Gathered[kind] += accepted
	b.LastProgress = tick
	return accepted
}

// UseTool applies one use of wear to a tool. Returns false with no effect
// if the tool is unknown or unusable. Durability is non-increasing and
// Usable flips false exactly when durability reaches 0.
func (s *Sites) UseTool(toolID int32) bool {
	t := s.Tool(toolID)
	if t == nil || !t.Usable {
		return false
	}

	t.Uses++
	t.Durability -= s.wearPerUse
	if t.Durability <= 0 {
		t.Durability = 0
		t.Usable = false
	}
	return true
}

// Sweep finishes and prunes projects: blueprints at full completion spawn
// exactly one tool each; blueprints with no contribution for the stall
// window are abandoned, forfeiting their gathered resources (no refunds).
// Worn-out tools are removed. Returns counts for telemetry.
func (s *Sites) Sweep(tick int64) (completed, abandoned, wornOut int) {
	kept := s.blueprints[:0]
	for i := range s.blueprints {
		b := s.blueprints[i]
		switch {
		case b.Completion() >= 1:
			b.Completed = true
			s.spawnTool(b)
			completed++
		case tick-b.LastProgress >= s.stallTicks:
			// Gathered resources are forfeited by design; they are
			// already out of every agent's inventory.
			abandoned++
		default:
			kept = append(kept, b)
		}
	}
	s.blueprints = kept

	keptTools := s.tools[:0]
	for i := range s.tools {
		if s.tools[i].Usable {
			keptTools = append(keptTools, s.tools[i])
		} else {
			wornOut++
		}
	}
	s.tools = keptTools

	return completed, abandoned, wornOut
}

func (s *Sites) spawnTool(b Blueprint) {
	id := s.nextToolID
	s.nextToolID++
	s.tools = append(s.tools, Tool{
		ID:         id,
		Type:       b.Type,
		X:          b.X,
		Y:          b.Y,
		Size:       1 + float32(b.Required.Total())*0.05,
		Durability: 1,
		Usable:     true,
	})
}

// Blueprint returns the live blueprint with the given ID, or nil.
func (s *Sites) Blueprint(id int32) *Blueprint {
	for i := range s.blueprints {
		if s.blueprints[i].ID == id {
			return &s.blueprints[i]
		}
	}
	return nil
}

// Tool returns the live tool with the given ID, or nil.
func (s *Sites) Tool(id int32) *Tool {
	for i := range s.tools {
		if s.tools[i].ID == id {
			return &s.tools[i]
		}
	}
	return nil
}

// NearestBlueprint returns the closest live blueprint within radius that
// still needs kind, or nil. Read-only.
func (s *Sites) NearestBlueprint(x, y, radius float32, kind world.ResourceKind) *Blueprint {
	var best *Blueprint
	bestSq := radius * radius
	for i := range s.blueprints {
		b := &s.blueprints[i]
		if b.Needs(kind) == 0 {
			continue
		}
		dx := b.X - x
		dy := b.Y - y
		distSq := dx*dx + dy*dy
		if distSq <= bestSq {
			best = b
			bestSq = distSq
		}
	}
	return best
}

// NearestTool returns the closest usable tool within radius matching the
// type predicate, or nil.
func (s *Sites) NearestTool(x, y, radius float32, match func(world.ToolType) bool) *Tool {
	var best *Tool
	bestSq := radius * radius
	for i := range s.tools {
		t := &s.tools[i]
		if !t.Usable || !match(t.Type) {
			continue
		}
		dx := t.X - x
		dy := t.Y - y
		distSq := dx*dx + dy*dy
		if distSq <= bestSq {
			best = t
			bestSq = distSq
		}
	}
	return best
}

// Blueprints returns the live blueprint slice for snapshotting.
func (s *Sites) Blueprints() []Blueprint {
	return s.blueprints
}

// Tools returns the live tool slice for snapshotting.
func (s *Sites) Tools() []Tool {
	return s.tools
}
