package engine

import (
	"math"
	"runtime"
	"sync"

	"github.com/mlange-42/ark/ecs"

	"github.com/cgcardona/bugtopia/components"
	"github.com/cgcardona/bugtopia/genome"
	"github.com/cgcardona/bugtopia/neural"
	"github.com/cgcardona/bugtopia/systems"
	"github.com/cgcardona/bugtopia/world"
)

// bugSnapshot captures read-only state for the parallel decide phase.
type bugSnapshot struct {
	Entity    ecs.Entity
	ID        uint64
	Pos       components.Position
	Energy    components.Energy
	Agent     components.Agent
	Inventory components.Inventory
	DNA       *genome.DNA
	Brain     *neural.Network
}

// intent captures one bug's computed outputs, applied later in the
// serialized commit phase. The compute phase never mutates shared state and
// never touches the engine RNG; anything random happens at commit.
type intent struct {
	Decision neural.Decision

	// Movement proposal, already clamped and wall-checked.
	NewX, NewY float32
	Dist       float32
	EnergyMod  float32 // terrain energy modifier at the origin tile

	// Action proposals. Negative IDs and zero entities mean "none".
	GatherNode   int32
	HuntTarget   ecs.Entity
	HasHunt      bool
	ContributeTo int32
	WantsFound   bool
	UseTool      int32
}

// workerScratch holds per-worker reusable buffers.
type workerScratch struct {
	Neighbors []systems.Neighbor
	Inputs    [neural.NumInputs]float32
}

// workChunk is a range of snapshots for one worker.
type workChunk struct {
	start, end int
}

// parallelState holds the persistent worker pool for the decide phase.
type parallelState struct {
	snapshots  []bugSnapshot
	intents    []intent
	scratches  []workerScratch
	numWorkers int

	workChan chan workChunk
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

func newParallelState() *parallelState {
	numWorkers := runtime.GOMAXPROCS(0)
	scratches := make([]workerScratch, numWorkers)
	for i := range scratches {
		scratches[i].Neighbors = make([]systems.Neighbor, 0, 64)
	}
	return &parallelState{
		numWorkers: numWorkers,
		scratches:  scratches,
		snapshots:  make([]bugSnapshot, 0, 512),
		intents:    make([]intent, 0, 512),
	}
}

// startWorkers launches persistent worker goroutines.
func (p *parallelState) startWorkers(e *Engine) {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(e, i)
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *parallelState) stopWorkers() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *parallelState) worker(e *Engine, workerID int) {
	defer p.wg.Done()
	scratch := &p.scratches[workerID]

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			e.computeChunk(chunk.start, chunk.end, scratch)
			p.doneChan <- struct{}{}
		}
	}
}

// decide runs the compute phase: snapshot living bugs, then compute each
// bug's decision and action proposals in parallel.
func (e *Engine) decide() {
	// Phase A: build snapshots (single-threaded)
	e.parallel.snapshots = e.parallel.snapshots[:0]

	query := e.bugFilter.Query()
	for query.Next() {
		entity := query.Entity()
		pos, _, energy, agent, gen, inv, _ := query.Get()

		if !energy.Alive {
			continue
		}
		brain, ok := e.brains[agent.ID]
		if !ok {
			continue
		}

		e.parallel.snapshots = append(e.parallel.snapshots, bugSnapshot{
			Entity:    entity,
			ID:        agent.ID,
			Pos:       *pos,
			Energy:    *energy,
			Agent:     *agent,
			Inventory: *inv,
			DNA:       gen.DNA,
			Brain:     brain,
		})
	}

	n := len(e.parallel.snapshots)
	if n == 0 {
		return
	}

	if cap(e.parallel.intents) < n {
		e.parallel.intents = make([]intent, n)
	}
	e.parallel.intents = e.parallel.intents[:n]

	// Phase B: compute, single-threaded below the threshold where goroutine
	// overhead dominates.
	if n < e.cfg.Engine.ParallelThreshold {
		e.computeChunk(0, n, &e.parallel.scratches[0])
		return
	}
	e.computeParallel(n)
}

// computeParallel dispatches chunks to the worker pool and waits.
func (e *Engine) computeParallel(n int) {
	if !e.parallel.running {
		e.parallel.startWorkers(e)
	}

	numWorkers := e.parallel.numWorkers
	chunkSize := (n + numWorkers - 1) / numWorkers

	dispatched := 0
	for w := 0; w < numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		e.parallel.workChan <- workChunk{start: start, end: end}
		dispatched++
	}
	for i := 0; i < dispatched; i++ {
		<-e.parallel.doneChan
	}
}

// computeChunk processes a snapshot range for a single worker. Reads are
// confined to immutable per-tick state: snapshots, the arena, the spatial
// grid, resource nodes, and construction sites.
func (e *Engine) computeChunk(i0, i1 int, scratch *workerScratch) {
	gatherRange := float32(e.cfg.Resource.GatherRange)
	workRange := float32(e.cfg.Construction.WorkRange)
	huntRange := float32(e.cfg.Hunting.Range)
	urgeGate := float32(e.cfg.Hunting.UrgeGate)
	startDrive := float32(e.cfg.Construction.StartDrive)
	foundCost := float32(e.cfg.Construction.EnergyCost)

	for i := i0; i < i1; i++ {
		snap := &e.parallel.snapshots[i]
		in := &e.parallel.intents[i]
		*in = intent{GatherNode: -1, ContributeTo: -1, UseTool: -1}

		kind := e.arena.KindAt(snap.Pos.X, snap.Pos.Y)
		mods := systems.ModifiersFor(kind, snap.DNA)
		vision := snap.DNA.Genes.VisionRadius() * mods.Vision

		scratch.Neighbors = e.grid.QueryRadiusInto(
			scratch.Neighbors[:0],
			snap.Pos.X, snap.Pos.Y, vision,
			snap.Entity, e.posMap,
		)

		p, nearestAgent := e.buildPerception(snap, mods, vision, scratch.Neighbors)
		raw := snap.Brain.Forward(p.AsSlice(scratch.Inputs[:]))
		d := neural.DecodeDecision(raw)
		in.Decision = d

		// Movement: the decision vector steers; fleeing overrides it away
		// from a live threat, scaled by flee speed.
		mvx, mvy := d.MoveX, d.MoveY
		if d.Fleeing > 0.5 && p.AgentThreat > 0.5 && p.AgentDist > 0 {
			flee := 1 + snap.DNA.Species.Defense.FleeSpeed
			mvx = -p.AgentDX * flee
			mvy = -p.AgentDY * flee
		}
		e.proposeMove(snap, in, mods, mvx, mvy)

		// Gathering: eat from edible nodes, carry from material nodes.
		e.proposeGather(snap, in, gatherRange)

		// Hunting: only hunting species, only above the urge gate.
		if snap.DNA.Species.Tag.Hunts() && d.Hunting >= urgeGate && nearestAgent != nil {
			prey := e.genomeMap.Get(nearestAgent.E)
			if prey != nil && genome.Eats(snap.DNA.Species.Tag, prey.DNA.Species.Tag) &&
				nearestAgent.DistSq <= huntRange*huntRange {
				in.HuntTarget = nearestAgent.E
				in.HasHunt = true
			}
		}

		// Construction: deliver carried materials, then consider founding.
		e.proposeConstruction(snap, in, workRange, startDrive, foundCost)

		// Shelter: weak bugs rest in a nearby shelter; the wear happens at
		// commit. Other tool types grant no metabolic discount.
		if p.EnergyNorm < 0.5 {
			if tool := e.sites.NearestTool(snap.Pos.X, snap.Pos.Y, workRange, func(t world.ToolType) bool {
				return t == world.ToolShelter
			}); tool != nil {
				in.UseTool = tool.ID
			}
		}
	}
}

// proposeMove computes the clamped, wall-checked movement target.
func (e *Engine) proposeMove(snap *bugSnapshot, in *intent, mods systems.Modifiers, mvx, mvy float32) {
	in.NewX, in.NewY = snap.Pos.X, snap.Pos.Y
	in.EnergyMod = mods.EnergyCost

	mag := sqrt32(mvx*mvx + mvy*mvy)
	if mag < 1e-6 {
		return
	}
	if mag > 1 {
		mvx /= mag
		mvy /= mag
		mag = 1
	}

	speed := snap.DNA.Genes.Speed() * mods.Speed
	nx, ny := e.arena.Clamp(snap.Pos.X+mvx*speed, snap.Pos.Y+mvy*speed)
	if !e.arena.Passable(nx, ny) {
		// Walls block; the bug stays and pays no movement cost.
		return
	}

	dx := nx - snap.Pos.X
	dy := ny - snap.Pos.Y
	in.NewX, in.NewY = nx, ny
	in.Dist = sqrt32(dx*dx + dy*dy)
}

// proposeGather picks the node to gather from this tick, if any.
func (e *Engine) proposeGather(snap *bugSnapshot, in *intent, gatherRange float32) {
	eatsPlants := snap.DNA.Species.Tag != genome.Carnivore

	// Hungry plant-eaters prioritize food.
	if eatsPlants && snap.Energy.Value < snap.Energy.Max*0.8 {
		if node := e.pool.Nearest(snap.Pos.X, snap.Pos.Y, gatherRange, func(k world.ResourceKind) bool {
			return k.Edible()
		}); node != nil {
			in.GatherNode = node.ID
			return
		}
	}

	// Builders with spare capacity pick up materials.
	capacity := int32(snap.DNA.Tools.CarryingCapacity())
	if snap.DNA.Tools.ConstructionDrive() >= 0.3 && snap.Inventory.Free(capacity) > 0 {
		if node := e.pool.Nearest(snap.Pos.X, snap.Pos.Y, gatherRange, func(k world.ResourceKind) bool {
			return !k.Edible()
		}); node != nil {
			in.GatherNode = node.ID
		}
	}
}

// proposeConstruction picks a delivery target and flags founding intent.
func (e *Engine) proposeConstruction(snap *bugSnapshot, in *intent, workRange, startDrive, foundCost float32) {
	if snap.Inventory.Total() > 0 {
		// Own project first, then any nearby blueprint that needs what we
		// carry.
		if snap.Agent.Project >= 0 {
			if b := e.sites.Blueprint(snap.Agent.Project); b != nil {
				dx := b.X - snap.Pos.X
				dy := b.Y - snap.Pos.Y
				if dx*dx+dy*dy <= workRange*workRange {
					in.ContributeTo = b.ID
				}
			}
		}
		if in.ContributeTo < 0 {
			for kind := world.ResourceKind(0); int(kind) < world.NumResourceKinds; kind++ {
				if snap.Inventory.Counts[kind] == 0 {
					continue
				}
				if b := e.sites.NearestBlueprint(snap.Pos.X, snap.Pos.Y, workRange, kind); b != nil {
					in.ContributeTo = b.ID
					break
				}
			}
		}
	}

	in.WantsFound = snap.Agent.Project < 0 &&
		snap.Agent.FoundCooldown == 0 &&
		snap.DNA.Tools.ConstructionDrive() >= startDrive &&
		snap.Energy.Value > foundCost*2
}

func sqrt32(x float32) float32 {
	if x <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(x)))
}
