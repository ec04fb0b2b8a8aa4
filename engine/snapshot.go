package engine

import (
	"github.com/cgcardona/bugtopia/genome"
	"github.com/cgcardona/bugtopia/neural"
	"github.com/cgcardona/bugtopia/systems"
	"github.com/cgcardona/bugtopia/telemetry"
	"github.com/cgcardona/bugtopia/world"
)

// BugView is one bug's state as seen by presentation layers. Dead bugs stay
// visible (Alive false) for the configured grace period before disappearing.
// DNA points at the bug's immutable genome; views must treat it as read-only.
type BugView struct {
	ID         uint64
	Generation int32
	Species    genome.Species
	DNA        *genome.DNA
	X, Y       float32
	VelX, VelY float32
	Energy     float32
	MaxEnergy  float32
	Age        int32
	Alive      bool
	Carried    world.Manifest
	Project    int32 // blueprint ID, -1 when none
	Decision   neural.Decision
}

// TerrainFitness scores the bug's genome on a terrain kind, for detail
// display.
func (b *BugView) TerrainFitness(kind world.TerrainKind) float32 {
	return systems.FitnessFor(kind, b.DNA)
}

// Snapshot is a consistent read-only view of the world, taken between ticks.
type Snapshot struct {
	Tick       int64
	Generation int32
	Alive      int

	Bugs       []BugView
	Resources  []systems.ResourceNode
	Blueprints []systems.Blueprint
	Tools      []systems.Tool

	Stats telemetry.Statistics
}

// Snapshot builds a view of the current world state. Must not run
// concurrently with Step.
func (e *Engine) Snapshot() *Snapshot {
	s := &Snapshot{
		Tick:       e.tick,
		Generation: e.generation,
		Alive:      e.aliveCount,
		Stats:      e.stats,
	}

	query := e.bugFilter.Query()
	for query.Next() {
		pos, vel, energy, agent, gen, inv, dec := query.Get()
		s.Bugs = append(s.Bugs, BugView{
			ID:         agent.ID,
			Generation: agent.Generation,
			Species:    gen.DNA.Species.Tag,
			DNA:        gen.DNA,
			X:          pos.X,
			Y:          pos.Y,
			VelX:       vel.X,
			VelY:       vel.Y,
			Energy:     energy.Value,
			MaxEnergy:  energy.Max,
			Age:        energy.Age,
			Alive:      energy.Alive,
			Carried:    inv.Counts,
			Project:    agent.Project,
			Decision:   dec.Decision,
		})
	}

	s.Resources = append(s.Resources, e.pool.Nodes()...)
	s.Blueprints = append(s.Blueprints, e.sites.Blueprints()...)
	s.Tools = append(s.Tools, e.sites.Tools()...)

	return s
}
