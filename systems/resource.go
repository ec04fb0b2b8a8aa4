package systems

import (
	"math/rand"

	"github.com/cgcardona/bugtopia/config"
	"github.com/cgcardona/bugtopia/world"
)

// ResourceNode is a depletable resource deposit. Nodes are owned by the
// pool; agents only reference and deplete them.
type ResourceNode struct {
	ID        int32
	X, Y      float32
	Kind      world.ResourceKind
	Quantity  int32
	Capacity  int32
	Available bool

	regrowAccum float32 // Fractional regrowth carried between ticks
}

// ResourcePool owns every resource node in the arena. All mutation goes
// through Gather and Regrow, which the engine calls only from the
// serialized commit phase; quantity can never go negative.
type ResourcePool struct {
	nodes      []ResourceNode
	regrowRate float32
}

// NewResourcePool scatters nodes across passable terrain. Food nodes prefer
// food-rich tiles; material nodes land anywhere passable.
func NewResourcePool(rng *rand.Rand, arena *Arena, cfg *config.Config) *ResourcePool {
	p := &ResourcePool{
		regrowRate: float32(cfg.Resource.RegrowRate),
	}
	capacity := int32(cfg.Resource.NodeCapacity)

	place := func(kind world.ResourceKind, preferFood bool) {
		w, h := arena.Bounds()
		var x, y float32
		// Rejection-sample a passable tile; prefer food-rich tiles for
		// edible nodes but settle for any passable spot after enough
		// misses.
		for attempt := 0; ; attempt++ {
			x = rng.Float32() * w
			y = rng.Float32() * h
			kindAt := arena.KindAt(x, y)
			if !kindAt.Passable() {
				continue
			}
			if preferFood && kindAt != world.Food && attempt < 40 {
				continue
			}
			break
		}
		p.nodes = append(p.nodes, ResourceNode{
			ID:        int32(len(p.nodes)),
			X:         x,
			Y:         y,
			Kind:      kind,
			Quantity:  capacity,
			Capacity:  capacity,
			Available: true,
		})
	}

	for i := 0; i < cfg.Resource.FoodNodes; i++ {
		place(world.ResourceFood, true)
	}
	materials := []world.ResourceKind{world.ResourceWood, world.ResourceStone, world.ResourceFiber}
	for i := 0; i < cfg.Resource.MaterialNodes; i++ {
		place(materials[i%len(materials)], false)
	}

	return p
}

// Gather removes up to want units from a node and returns the granted
// amount. A depleted or unknown node grants 0 (a "no effect" result, never
// an error). The grant is atomic: within a commit phase the first gather
// wins the remainder and later gathers see the reduced quantity.
func (p *ResourcePool) Gather(nodeID int32, want int32) int32 {
	if nodeID < 0 || int(nodeID) >= len(p.nodes) || want <= 0 {
		return 0
	}
	n := &p.nodes[nodeID]
	if !n.Available || n.Quantity <= 0 {
		return 0
	}

	granted := want
	if granted > n.Quantity {
		granted = n.Quantity
	}
	n.Quantity -= granted
	if n.Quantity <= 0 {
		n.Quantity = 0
		n.Available = false
	}
	return granted
}

// Regrow advances regrowth for edible nodes. Depleted food nodes come back
// once they hold at least one unit; mineral nodes never regrow.
func (p *ResourcePool) Regrow() {
	for i := range p.nodes {
		n := &p.nodes[i]
		if !n.Kind.Edible() || n.Quantity >= n.Capacity {
			continue
		}
		n.regrowAccum += p.regrowRate
		if n.regrowAccum >= 1 {
			units := int32(n.regrowAccum)
			n.regrowAccum -= float32(units)
			n.Quantity += units
			if n.Quantity > n.Capacity {
				n.Quantity = n.Capacity
			}
			if n.Quantity > 0 {
				n.Available = true
			}
		}
	}
}

// Nearest returns the closest available node matching the filter within
// radius, or nil. Read-only; safe during the parallel perception phase.
func (p *ResourcePool) Nearest(x, y, radius float32, match func(world.ResourceKind) bool) *ResourceNode {
	var best *ResourceNode
	bestSq := radius * radius
	for i := range p.nodes {
		n := &p.nodes[i]
		if !n.Available || !match(n.Kind) {
			continue
		}
		dx := n.X - x
		dy := n.Y - y
		distSq := dx*dx + dy*dy
		if distSq <= bestSq {
			best = n
			bestSq = distSq
		}
	}
	return best
}

// Node returns the node with the given ID, or nil.
func (p *ResourcePool) Node(id int32) *ResourceNode {
	if id < 0 || int(id) >= len(p.nodes) {
		return nil
	}
	return &p.nodes[id]
}

// Nodes returns the node slice for snapshotting.
func (p *ResourcePool) Nodes() []ResourceNode {
	return p.nodes
}
