package engine

import (
	"sort"

	"github.com/cgcardona/bugtopia/components"
	"github.com/cgcardona/bugtopia/world"
)

// Step advances the simulation by one tick. Phases run in a fixed order:
// index rebuild, parallel decide, serialized commit, reproduction, aging,
// construction sweep, resource regrowth, dead cleanup.
func (e *Engine) Step() {
	e.rebuildGrid()
	e.decide()
	e.commit()
	e.updateReproduction()
	e.updateAging()
	e.sweepConstruction()
	e.pool.Regrow()
	e.cleanupDead()
	e.tick++
}

// rebuildGrid refreshes the spatial index from live positions.
func (e *Engine) rebuildGrid() {
	e.grid.Clear()

	query := e.bugFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, _, energy, _, _, _, _ := query.Get()
		if energy.Alive {
			e.grid.Insert(entity, pos.X, pos.Y)
		}
	}
}

// commit applies every intent in ascending agent-ID order. This is the only
// phase that mutates shared state during a tick, and the fixed order makes
// contention outcomes (gather grants, kills) deterministic per seed.
func (e *Engine) commit() {
	n := len(e.parallel.snapshots)
	if n == 0 {
		return
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return e.parallel.snapshots[order[a]].ID < e.parallel.snapshots[order[b]].ID
	})

	baseCost := float32(e.cfg.Energy.BaseCost)
	foodEnergy := float32(e.cfg.Energy.FoodEnergy)
	huntGain := float32(e.cfg.Energy.HuntGain)
	gatherAmount := int32(e.cfg.Resource.GatherAmount)
	foundCost := float32(e.cfg.Construction.EnergyCost)
	foundCooldown := int32(e.cfg.Construction.FoundCooldown)
	huntBase := float32(e.cfg.Hunting.BaseChance)

	for _, i := range order {
		snap := &e.parallel.snapshots[i]
		in := &e.parallel.intents[i]

		energy := e.energyMap.Get(snap.Entity)
		if energy == nil || !energy.Alive {
			// Killed earlier in this commit pass.
			continue
		}
		pos := e.posMap.Get(snap.Entity)
		vel := e.velMap.Get(snap.Entity)
		agent := e.agentMap.Get(snap.Entity)
		inv := e.invMap.Get(snap.Entity)
		dec := e.decMap.Get(snap.Entity)
		if pos == nil || vel == nil || agent == nil || inv == nil || dec == nil {
			continue
		}

		dec.Decision = in.Decision

		// Movement
		vel.X = in.NewX - pos.X
		vel.Y = in.NewY - pos.Y
		pos.X, pos.Y = in.NewX, in.NewY

		// Shelter use halves this tick's base metabolic drain.
		metabolic := baseCost
		if in.UseTool >= 0 && e.sites.UseTool(in.UseTool) {
			metabolic *= 0.5
			e.collector.RecordToolUse()
		}

		// Energy debit: metabolism plus terrain-scaled movement cost.
		cost := metabolic + MoveCost(in.Dist, in.EnergyMod, snap.DNA.Genes.EnergyEfficiency())
		energy.Value -= cost

		// Gathering
		if in.GatherNode >= 0 {
			e.commitGather(snap, in, energy, inv, gatherAmount, foodEnergy)
		}

		// Construction delivery
		if agent.Project >= 0 && e.sites.Blueprint(agent.Project) == nil {
			agent.Project = -1
		}
		if in.ContributeTo >= 0 {
			e.commitContribution(in.ContributeTo, inv)
		}

		// Founding
		if in.WantsFound && energy.Value > foundCost {
			drive := snap.DNA.Tools.ConstructionDrive()
			if e.rng.Float32() < 0.05*drive {
				t := world.ToolType(e.rng.Intn(world.NumToolTypes))
				agent.Project = e.sites.Found(t, pos.X, pos.Y, agent.ID, e.tick)
				agent.FoundCooldown = foundCooldown
				energy.Value -= foundCost
				e.collector.RecordFounding()
			}
		}

		// Hunting
		if in.HasHunt {
			e.commitHunt(snap, in, energy, huntBase, huntGain)
		}

		if energy.Value > energy.Max {
			energy.Value = energy.Max
		}
	}
}

// commitGather resolves one gather action against the shared pool. The pool
// grants atomically, so earlier IDs win contended remainders.
func (e *Engine) commitGather(snap *bugSnapshot, in *intent, energy *components.Energy, inv *components.Inventory, gatherAmount int32, foodEnergy float32) {
	node := e.pool.Node(in.GatherNode)
	if node == nil {
		return
	}

	want := gatherAmount
	if !node.Kind.Edible() {
		free := inv.Free(int32(snap.DNA.Tools.CarryingCapacity()))
		if want > free {
			want = free
		}
	}

	granted := e.pool.Gather(in.GatherNode, want)
	if granted == 0 {
		return
	}
	e.collector.RecordGather(granted)

	if node.Kind.Edible() {
		energy.Value += float32(granted) * foodEnergy
		return
	}
	inv.Counts[node.Kind] += granted
}

// commitContribution moves carried materials into a blueprint.
func (e *Engine) commitContribution(blueprintID int32, inv *components.Inventory) {
	for kind := world.ResourceKind(0); int(kind) < world.NumResourceKinds; kind++ {
		have := inv.Counts[kind]
		if have == 0 {
			continue
		}
		accepted := e.sites.Contribute(blueprintID, kind, have, e.tick)
		if accepted > 0 {
			inv.Counts[kind] -= accepted
			e.collector.RecordContribution(accepted)
		}
	}
}

// commitHunt resolves one hunt attempt with the serialized RNG.
func (e *Engine) commitHunt(snap *bugSnapshot, in *intent, energy *components.Energy, huntBase, huntGain float32) {
	preyEnergy := e.energyMap.Get(in.HuntTarget)
	preyGenome := e.genomeMap.Get(in.HuntTarget)
	if preyEnergy == nil || preyGenome == nil || !preyEnergy.Alive {
		return
	}

	e.collector.RecordHuntAttempt()
	chance := HuntSuccessChance(huntBase, snap.DNA, preyGenome.DNA)
	if e.rng.Float32() >= chance {
		return
	}

	e.collector.RecordHuntHit()
	e.collector.RecordKill()

	energy.Value += preyEnergy.Value * huntGain
	preyEnergy.Value = 0
	preyEnergy.Alive = false
	preyEnergy.DeadTicks = 0
	e.aliveCount--
	e.collector.RecordDeath(preyGenome.DNA.Species.Tag, false, false)
}

// sweepConstruction finishes completed blueprints and prunes stalled ones.
func (e *Engine) sweepConstruction() {
	completed, abandoned, worn := e.sites.Sweep(e.tick)
	for i := 0; i < completed; i++ {
		e.collector.RecordCompletion()
	}
	for i := 0; i < abandoned; i++ {
		e.collector.RecordAbandonment()
	}
	for i := 0; i < worn; i++ {
		e.collector.RecordToolWornOut()
	}
}
