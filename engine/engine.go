// Package engine owns the simulation loop: the ECS world, the tick phases,
// and the lifecycle of every bug.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/cgcardona/bugtopia/components"
	"github.com/cgcardona/bugtopia/config"
	"github.com/cgcardona/bugtopia/genome"
	"github.com/cgcardona/bugtopia/neural"
	"github.com/cgcardona/bugtopia/systems"
	"github.com/cgcardona/bugtopia/telemetry"
)

// Engine holds the complete simulation state.
type Engine struct {
	cfg *config.Config
	log *slog.Logger
	rng *rand.Rand

	world *ecs.World

	bugMapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Energy,
		components.Agent,
		components.Genome,
		components.Inventory,
		components.LastDecision,
	]
	bugFilter *ecs.Filter7[
		components.Position,
		components.Velocity,
		components.Energy,
		components.Agent,
		components.Genome,
		components.Inventory,
		components.LastDecision,
	]

	// Individual component mappers for lookups
	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	energyMap *ecs.Map1[components.Energy]
	agentMap  *ecs.Map1[components.Agent]
	genomeMap *ecs.Map1[components.Genome]
	invMap    *ecs.Map1[components.Inventory]
	decMap    *ecs.Map1[components.LastDecision]

	// Brain storage (per bug by ID)
	brains map[uint64]*neural.Network

	arena *systems.Arena
	grid  *systems.SpatialGrid
	pool  *systems.ResourcePool
	sites *systems.Sites

	collector *telemetry.Collector
	stats     telemetry.Statistics

	parallel *parallelState

	topology   []int
	tick       int64
	generation int32 // monotonic max over every bug ever created
	nextID     uint64
	aliveCount int
	running    bool
}

// New builds an engine from configuration, generates the arena, and spawns
// the initial population.
func New(cfg *config.Config, log *slog.Logger) (*Engine, error) {
	if log == nil {
		log = slog.Default()
	}

	arena, err := systems.NewArena(cfg)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(cfg.World.Seed))

	e := &Engine{
		cfg:   cfg,
		log:   log,
		rng:   rng,
		world: world,
		bugMapper: ecs.NewMap7[
			components.Position,
			components.Velocity,
			components.Energy,
			components.Agent,
			components.Genome,
			components.Inventory,
			components.LastDecision,
		](world),
		bugFilter: ecs.NewFilter7[
			components.Position,
			components.Velocity,
			components.Energy,
			components.Agent,
			components.Genome,
			components.Inventory,
			components.LastDecision,
		](world),
		posMap:    ecs.NewMap1[components.Position](world),
		velMap:    ecs.NewMap1[components.Velocity](world),
		energyMap: ecs.NewMap1[components.Energy](world),
		agentMap:  ecs.NewMap1[components.Agent](world),
		genomeMap: ecs.NewMap1[components.Genome](world),
		invMap:    ecs.NewMap1[components.Inventory](world),
		decMap:    ecs.NewMap1[components.LastDecision](world),

		brains:   make(map[uint64]*neural.Network),
		arena:    arena,
		topology: neural.Topology(cfg.Neural.HiddenLayers),
	}

	e.grid = systems.NewSpatialGrid(
		cfg.Derived.WorldW32, cfg.Derived.WorldH32, float32(cfg.Engine.GridCellSize))
	e.pool = systems.NewResourcePool(rng, arena, cfg)
	e.sites = systems.NewSites(cfg.Construction.StallTicks, cfg.Construction.WearPerUse)
	e.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindow)
	e.parallel = newParallelState()

	if err := e.spawnInitialPopulation(); err != nil {
		return nil, err
	}

	e.log.Info("engine_ready",
		"seed", cfg.World.Seed,
		"population", e.aliveCount,
		"resource_nodes", len(e.pool.Nodes()),
		"topology", e.topology,
	)
	return e, nil
}

// spawnInitialPopulation seeds the arena with random genomes on passable
// terrain.
func (e *Engine) spawnInitialPopulation() error {
	w, h := e.arena.Bounds()
	for i := 0; i < e.cfg.Population.Initial; i++ {
		var x, y float32
		for {
			x = e.rng.Float32() * w
			y = e.rng.Float32() * h
			if e.arena.Passable(x, y) {
				break
			}
		}

		dna, err := genome.Random(e.rng, e.topology)
		if err != nil {
			return fmt.Errorf("engine: generating genome: %w", err)
		}
		if _, err := e.spawnBug(x, y, dna, float32(e.cfg.Entity.InitialEnergy), 0); err != nil {
			return err
		}
	}
	return nil
}

// spawnBug creates a bug entity with a compiled brain. Compilation validates
// the genome's neural encoding against its topology; a mismatch is a
// construction error, never a runtime panic.
func (e *Engine) spawnBug(x, y float32, dna *genome.DNA, energy float32, generation int32) (ecs.Entity, error) {
	brain, err := neural.Compile(dna.Neural)
	if err != nil {
		return ecs.Entity{}, fmt.Errorf("engine: compiling brain: %w", err)
	}

	id := e.nextID
	e.nextID++
	if generation > e.generation {
		e.generation = generation
	}

	maxEnergy := float32(e.cfg.Entity.MaxEnergy)
	if energy > maxEnergy {
		energy = maxEnergy
	}

	pos := components.Position{X: x, Y: y}
	vel := components.Velocity{}
	en := components.Energy{Value: energy, Max: maxEnergy, Alive: true}
	agent := components.Agent{ID: id, Generation: generation, Project: -1}
	gen := components.Genome{DNA: dna}
	inv := components.Inventory{}
	dec := components.LastDecision{}

	e.brains[id] = brain
	entity := e.bugMapper.NewEntity(&pos, &vel, &en, &agent, &gen, &inv, &dec)
	e.aliveCount++
	return entity, nil
}

// Start resumes the simulation.
func (e *Engine) Start() { e.running = true }

// Pause halts the simulation between ticks.
func (e *Engine) Pause() { e.running = false }

// IsRunning reports whether Step advances the world.
func (e *Engine) IsRunning() bool { return e.running }

// Tick returns the current tick number.
func (e *Engine) Tick() int64 { return e.tick }

// Generation returns the highest generation of any bug ever created. It
// never decreases, even when the latest generation dies out.
func (e *Engine) Generation() int32 { return e.generation }

// Alive returns the live bug count.
func (e *Engine) Alive() int { return e.aliveCount }

// Arena exposes the terrain grid for presentation layers.
func (e *Engine) Arena() *systems.Arena { return e.arena }

// ShouldFlush reports whether a telemetry window has elapsed.
func (e *Engine) ShouldFlush() bool { return e.collector.ShouldFlush(e.tick) }

// FlushWindow recomputes population statistics and flushes the telemetry
// window.
func (e *Engine) FlushWindow() telemetry.WindowStats {
	e.stats.Recompute(e.samples())
	return e.collector.Flush(e.tick, &e.stats)
}

// Stats returns the most recently computed population statistics.
func (e *Engine) Stats() telemetry.Statistics { return e.stats }

// Reset discards all simulation state and restarts from the configured seed.
func (e *Engine) Reset() error {
	e.parallel.stopWorkers()

	fresh, err := New(e.cfg, e.log)
	if err != nil {
		return err
	}
	*e = *fresh
	return nil
}

// Close releases worker goroutines. The engine is unusable afterwards.
func (e *Engine) Close() {
	e.parallel.stopWorkers()
}

// samples builds the statistics input from the living population.
func (e *Engine) samples() []telemetry.BugSample {
	samples := make([]telemetry.BugSample, 0, e.aliveCount)
	query := e.bugFilter.Query()
	for query.Next() {
		_, _, energy, agent, gen, _, _ := query.Get()
		if !energy.Alive {
			continue
		}
		samples = append(samples, telemetry.BugSample{
			Genes:      gen.DNA.Genes,
			Species:    gen.DNA.Species.Tag,
			Energy:     float64(energy.Value),
			Age:        float64(energy.Age),
			Generation: agent.Generation,
		})
	}
	return samples
}
