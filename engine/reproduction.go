package engine

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/cgcardona/bugtopia/genome"
)

// reproCandidate is one bug eligible to reproduce this tick.
type reproCandidate struct {
	entity ecs.Entity
	id     uint64
	x, y   float32
	dna    *genome.DNA
	gen    int32
	paired bool
}

// updateReproduction pairs eligible bugs and spawns offspring. Pairing runs
// in ascending agent-ID order so contended partners resolve the same way
// every run; births spawn after the pairing pass.
func (e *Engine) updateReproduction() {
	cfg := e.cfg
	if e.aliveCount >= cfg.Population.Max {
		return
	}

	threshold := float32(cfg.Reproduction.EnergyThreshold)
	maturity := int32(cfg.Reproduction.MaturityAge)
	proximity := float32(cfg.Reproduction.Proximity)
	contribution := float32(cfg.Reproduction.ParentContribution)
	cooldown := int32(cfg.Reproduction.Cooldown)
	spawnOffset := float32(cfg.Reproduction.SpawnOffset)

	var candidates []reproCandidate

	query := e.bugFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, _, energy, agent, gen, _, dec := query.Get()

		if !energy.Alive ||
			energy.Age < maturity ||
			agent.ReproCooldown > 0 ||
			energy.Value < threshold*energy.Max ||
			dec.Decision.Reproduction < 0.5 {
			continue
		}

		candidates = append(candidates, reproCandidate{
			entity: entity,
			id:     agent.ID,
			x:      pos.X,
			y:      pos.Y,
			dna:    gen.DNA,
			gen:    agent.Generation,
		})
	}
	if len(candidates) < 2 {
		return
	}
	sort.Slice(candidates, func(a, b int) bool { return candidates[a].id < candidates[b].id })

	mp := genome.MutationParams{
		Rate:     float32(cfg.Mutation.Rate),
		Sigma:    float32(cfg.Mutation.Sigma),
		BigRate:  float32(cfg.Mutation.BigRate),
		BigSigma: float32(cfg.Mutation.BigSigma),
		Bound:    float32(cfg.Mutation.Bound),
	}

	type birth struct {
		x, y   float32
		dna    *genome.DNA
		energy float32
		gen    int32
	}
	var births []birth
	proxSq := proximity * proximity

	for i := range candidates {
		a := &candidates[i]
		if a.paired {
			continue
		}

		// Nearest compatible unpaired partner within proximity. Pairing
		// requires identical species tags.
		var partner *reproCandidate
		bestSq := proxSq
		for j := i + 1; j < len(candidates); j++ {
			b := &candidates[j]
			if b.paired || !genome.Compatible(a.dna.Species, b.dna.Species) {
				continue
			}
			dx := b.x - a.x
			dy := b.y - a.y
			if distSq := dx*dx + dy*dy; distSq <= bestSq {
				partner = b
				bestSq = distSq
			}
		}
		if partner == nil {
			continue
		}

		childDNA, err := genome.Crossover(e.rng, a.dna, partner.dna, mp)
		if err != nil {
			// Mismatched topologies cannot pair; skip rather than abort the
			// tick.
			e.log.Warn("crossover_failed", "parent_a", a.id, "parent_b", partner.id, "err", err)
			continue
		}

		// Each parent gives a fixed fraction of its current energy to the
		// child.
		var childEnergy float32
		for _, parent := range []*reproCandidate{a, partner} {
			en := e.energyMap.Get(parent.entity)
			ag := e.agentMap.Get(parent.entity)
			if en == nil || ag == nil {
				continue
			}
			give := en.Value * contribution
			en.Value -= give
			childEnergy += give
			ag.ReproCooldown = cooldown
		}

		childGen := a.gen
		if partner.gen > childGen {
			childGen = partner.gen
		}
		childGen++

		cx := a.x + (e.rng.Float32()*2-1)*spawnOffset
		cy := a.y + (e.rng.Float32()*2-1)*spawnOffset
		cx, cy = e.arena.Clamp(cx, cy)
		if !e.arena.Passable(cx, cy) {
			// Offset landed on a wall; fall back to the parent's tile.
			cx, cy = a.x, a.y
		}

		a.paired = true
		partner.paired = true
		births = append(births, birth{x: cx, y: cy, dna: childDNA, energy: childEnergy, gen: childGen})

		if e.aliveCount+len(births) >= cfg.Population.Max {
			break
		}
	}

	for _, b := range births {
		if _, err := e.spawnBug(b.x, b.y, b.dna, b.energy, b.gen); err != nil {
			e.log.Error("spawn_failed", "err", err)
			continue
		}
		e.collector.RecordBirth(b.dna.Species.Tag)
	}
}
