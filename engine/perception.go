package engine

import (
	"github.com/cgcardona/bugtopia/genome"
	"github.com/cgcardona/bugtopia/neural"
	"github.com/cgcardona/bugtopia/systems"
	"github.com/cgcardona/bugtopia/world"
)

// buildPerception assembles the normalized input vector for one bug from
// read-only per-tick state. Returns the nearest visible neighbor so hunting
// can reuse the lookup.
func (e *Engine) buildPerception(snap *bugSnapshot, mods systems.Modifiers, vision float32, neighbors []systems.Neighbor) (neural.Perception, *systems.Neighbor) {
	var p neural.Perception

	if snap.Energy.Max > 0 {
		p.EnergyNorm = snap.Energy.Value / snap.Energy.Max
	}

	if food := e.pool.Nearest(snap.Pos.X, snap.Pos.Y, vision, func(k world.ResourceKind) bool {
		return k.Edible()
	}); food != nil {
		p.FoodDX, p.FoodDY, p.FoodDist = direction(food.X-snap.Pos.X, food.Y-snap.Pos.Y, vision)
	}

	if mat := e.pool.Nearest(snap.Pos.X, snap.Pos.Y, vision, func(k world.ResourceKind) bool {
		return !k.Edible()
	}); mat != nil {
		p.ResourceDX, p.ResourceDY, p.ResourceDist = direction(mat.X-snap.Pos.X, mat.Y-snap.Pos.Y, vision)
	}

	var nearest *systems.Neighbor
	for i := range neighbors {
		n := &neighbors[i]
		en := e.energyMap.Get(n.E)
		if en == nil || !en.Alive {
			continue
		}
		if nearest == nil || n.DistSq < nearest.DistSq {
			nearest = n
		}
	}
	if nearest != nil {
		p.AgentDX, p.AgentDY, p.AgentDist = direction(nearest.DX, nearest.DY, vision)
		p.AgentThreat = 0.5
		if other := e.genomeMap.Get(nearest.E); other != nil {
			switch {
			case genome.Eats(other.DNA.Species.Tag, snap.DNA.Species.Tag):
				// A predator of ours; camouflage shapes whether the threat
				// registers on the hunter's side, not on ours.
				p.AgentThreat = 1
			case genome.Eats(snap.DNA.Species.Tag, other.DNA.Species.Tag):
				p.AgentThreat = 0
			}
		}
	}

	p.TerrainSpeed = mods.Speed
	p.TerrainVision = mods.Vision
	p.TerrainEnergy = mods.EnergyCost

	p.Aggression = snap.DNA.Genes.Aggression()
	p.Curiosity = snap.DNA.Genes.Curiosity()

	return p, nearest
}

// direction normalizes a delta into a unit direction plus a proximity value
// in [0,1], where 1 means touching and 0 means at the edge of vision.
func direction(dx, dy, vision float32) (ux, uy, proximity float32) {
	dist := sqrt32(dx*dx + dy*dy)
	if dist < 1e-6 || vision <= 0 {
		return 0, 0, 1
	}
	ux = dx / dist
	uy = dy / dist
	proximity = 1 - dist/vision
	if proximity < 0 {
		proximity = 0
	}
	return ux, uy, proximity
}
