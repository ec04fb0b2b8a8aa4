package engine

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/cgcardona/bugtopia/genome"
)

// MoveCost is the energy debit for moving dist world units over terrain with
// the given energy modifier: dist x modifier x (1 - efficiency). Pure.
func MoveCost(dist, terrainEnergyMod, efficiency float32) float32 {
	if dist <= 0 {
		return 0
	}
	return dist * terrainEnergyMod * (1 - efficiency)
}

// HuntSuccessChance combines the hunter's offensive traits with the prey's
// defenses and camouflage into a success probability, clamped to [0, 0.95].
// Pure.
func HuntSuccessChance(base float32, hunter, prey *genome.DNA) float32 {
	p := base
	p += 0.30 * hunter.Species.Hunting.Intensity
	p += 0.20 * hunter.Species.Hunting.Stealth
	p -= 0.25 * prey.Species.Defense.PredatorDetection
	p -= 0.15 * prey.Species.Defense.FleeSpeed
	p -= 0.10 * prey.Genes.Camouflage()

	if p < 0 {
		return 0
	}
	if p > 0.95 {
		return 0.95
	}
	return p
}

// updateAging advances per-bug clocks and flags deaths by starvation or old
// age. Flagged bugs stay in the world for the snapshot grace period;
// cleanupDead removes them.
func (e *Engine) updateAging() {
	maxAge := int32(e.cfg.Entity.MaxAge)

	query := e.bugFilter.Query()
	for query.Next() {
		_, _, energy, agent, gen, _, _ := query.Get()

		if !energy.Alive {
			energy.DeadTicks++
			continue
		}

		energy.Age++
		if agent.ReproCooldown > 0 {
			agent.ReproCooldown--
		}
		if agent.FoundCooldown > 0 {
			agent.FoundCooldown--
		}

		starved := energy.Value <= 0
		aged := energy.Age > maxAge
		if !starved && !aged {
			continue
		}

		energy.Value = 0
		energy.Alive = false
		energy.DeadTicks = 0
		e.aliveCount--
		e.collector.RecordDeath(gen.DNA.Species.Tag, starved, aged)
	}
}

// cleanupDead removes entities past the dead grace period, along with their
// brains. Collection and removal are separate passes; removing during query
// iteration would invalidate it.
func (e *Engine) cleanupDead() {
	grace := int32(e.cfg.Entity.DeadGraceTicks)

	type deadInfo struct {
		entity ecs.Entity
		id     uint64
	}
	var toRemove []deadInfo

	query := e.bugFilter.Query()
	for query.Next() {
		entity := query.Entity()
		_, _, energy, agent, _, _, _ := query.Get()
		if !energy.Alive && energy.DeadTicks > grace {
			toRemove = append(toRemove, deadInfo{entity: entity, id: agent.ID})
		}
	}

	for _, dead := range toRemove {
		delete(e.brains, dead.id)
		e.world.RemoveEntity(dead.entity)
	}
}
