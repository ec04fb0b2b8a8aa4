// Package components defines ECS components for the simulation.
package components

import (
	"github.com/cgcardona/bugtopia/genome"
	"github.com/cgcardona/bugtopia/neural"
	"github.com/cgcardona/bugtopia/world"
)

// Position is a bug's world position.
type Position struct {
	X, Y float32
}

// Velocity is a bug's velocity in world units per tick.
type Velocity struct {
	X, Y float32
}

// Energy holds a bug's vital state. Energy stays in [0, Max]; a bug dies
// when it reaches 0 or Age exceeds the configured maximum.
type Energy struct {
	Value     float32
	Max       float32
	Age       int32
	Alive     bool
	DeadTicks int32 // Ticks since death, for the snapshot grace period
}

// Agent holds identity and lifecycle bookkeeping.
type Agent struct {
	ID            uint64
	Generation    int32
	ReproCooldown int32
	FoundCooldown int32 // Ticks until this bug may found another blueprint
	Project       int32 // Blueprint ID the bug contributes to, -1 = none
}

// Genome wraps the bug's immutable DNA. Only Crossover produces new DNA;
// nothing mutates it after birth.
type Genome struct {
	DNA *genome.DNA
}

// Inventory is the carried-resources map, bounded by the tool genome's
// carrying capacity.
type Inventory struct {
	Counts world.Manifest
}

// Total returns the number of carried units across all kinds.
func (inv *Inventory) Total() int32 {
	return inv.Counts.Total()
}

// Free returns remaining capacity given a capacity limit.
func (inv *Inventory) Free(capacity int32) int32 {
	free := capacity - inv.Total()
	if free < 0 {
		return 0
	}
	return free
}

// LastDecision caches the most recent decision vector for inspection and
// rendering.
type LastDecision struct {
	Decision neural.Decision
}
