// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Terrain      TerrainConfig      `yaml:"terrain"`
	Entity       EntityConfig       `yaml:"entity"`
	Population   PopulationConfig   `yaml:"population"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Mutation     MutationConfig     `yaml:"mutation"`
	Neural       NeuralConfig       `yaml:"neural"`
	Energy       EnergyConfig       `yaml:"energy"`
	Resource     ResourceConfig     `yaml:"resource"`
	Construction ConstructionConfig `yaml:"construction"`
	Hunting      HuntingConfig      `yaml:"hunting"`
	Engine       EngineConfig       `yaml:"engine"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds arena dimensions in world units.
type WorldConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	TileSize float64 `yaml:"tile_size"`
	Seed     int64   `yaml:"seed"`
}

// TerrainConfig holds procedural terrain generation parameters.
type TerrainConfig struct {
	Scale          float64 `yaml:"scale"`           // Base noise frequency
	Octaves        int     `yaml:"octaves"`         // FBM octaves (detail level)
	Lacunarity     float64 `yaml:"lacunarity"`      // Frequency multiplier per octave
	Gain           float64 `yaml:"gain"`            // Amplitude multiplier per octave
	WallThreshold  float64 `yaml:"wall_threshold"`  // Elevation above this is wall
	HillThreshold  float64 `yaml:"hill_threshold"`  // Elevation above this is hill
	WaterThreshold float64 `yaml:"water_threshold"` // Elevation below this is water
	FoodThreshold  float64 `yaml:"food_threshold"`  // Moisture above this is food-rich
}

// EntityConfig holds bug creation and lifetime parameters.
type EntityConfig struct {
	InitialEnergy  float64 `yaml:"initial_energy"`
	MaxEnergy      float64 `yaml:"max_energy"`
	MaxAge         int     `yaml:"max_age"`          // Ticks before death by old age
	DeadGraceTicks int     `yaml:"dead_grace_ticks"` // Ticks dead bugs stay visible in snapshots
}

// PopulationConfig holds population management parameters.
type PopulationConfig struct {
	Initial int `yaml:"initial"`
	Max     int `yaml:"max"`
}

// ReproductionConfig holds reproduction parameters.
type ReproductionConfig struct {
	EnergyThreshold    float64 `yaml:"energy_threshold"`    // Fraction of max energy required
	MaturityAge        int     `yaml:"maturity_age"`        // Minimum age in ticks
	Cooldown           int     `yaml:"cooldown"`            // Ticks between reproductions
	Proximity          float64 `yaml:"proximity"`           // Max distance between parents
	ParentContribution float64 `yaml:"parent_contribution"` // Fraction of each parent's energy given to child
	SpawnOffset        float64 `yaml:"spawn_offset"`        // Child spawn distance from parents
}

// MutationConfig holds per-gene mutation parameters.
type MutationConfig struct {
	Rate     float64 `yaml:"rate"`      // Probability each gene mutates
	Sigma    float64 `yaml:"sigma"`     // Std deviation of perturbation
	BigRate  float64 `yaml:"big_rate"`  // Probability of a large mutation
	BigSigma float64 `yaml:"big_sigma"` // Sigma for large mutations
	Bound    float64 `yaml:"bound"`     // Hard cap on any single mutation delta
}

// NeuralConfig holds neural network parameters.
type NeuralConfig struct {
	HiddenLayers []int `yaml:"hidden_layers"` // Sizes of hidden layers, e.g. [12]
}

// EnergyConfig holds energy economics parameters.
type EnergyConfig struct {
	BaseCost   float64 `yaml:"base_cost"`   // Drain per tick for existing
	FoodEnergy float64 `yaml:"food_energy"` // Energy per unit of gathered food
	HuntGain   float64 `yaml:"hunt_gain"`   // Fraction of prey energy transferred on a kill
}

// ResourceConfig holds resource node parameters.
type ResourceConfig struct {
	FoodNodes     int     `yaml:"food_nodes"`
	MaterialNodes int     `yaml:"material_nodes"` // Wood/stone/fiber nodes, split evenly
	NodeCapacity  int     `yaml:"node_capacity"`
	RegrowRate    float64 `yaml:"regrow_rate"`   // Food units regrown per tick
	GatherRange   float64 `yaml:"gather_range"`  // Max distance to gather from a node
	GatherAmount  int     `yaml:"gather_amount"` // Units requested per gather action
}

// ConstructionConfig holds blueprint and tool parameters.
type ConstructionConfig struct {
	StallTicks    int     `yaml:"stall_ticks"`    // Ticks without progress before abandonment
	WearPerUse    float64 `yaml:"wear_per_use"`   // Durability lost per tool use
	WorkRange     float64 `yaml:"work_range"`     // Max distance to contribute or use
	StartDrive    float64 `yaml:"start_drive"`    // Min construction drive to found a blueprint
	FoundCooldown int     `yaml:"found_cooldown"` // Ticks between blueprint foundings per agent
	EnergyCost    float64 `yaml:"energy_cost"`    // Energy debit when founding a blueprint
}

// HuntingConfig holds predation parameters.
type HuntingConfig struct {
	BaseChance float64 `yaml:"base_chance"` // Baseline hunt success probability
	Range      float64 `yaml:"range"`       // Max distance to attempt a bite
	UrgeGate   float64 `yaml:"urge_gate"`   // Min hunting-urge output to attempt
}

// EngineConfig holds tick scheduling parameters.
type EngineConfig struct {
	GridCellSize      float64 `yaml:"grid_cell_size"`     // Spatial hash cell size
	ParallelThreshold int     `yaml:"parallel_threshold"` // Min population for worker pool
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per stats window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	WorldW32 float32
	WorldH32 float32
	GridW    int // Arena width in tiles
	GridH    int // Arena height in tiles
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// validate rejects configurations that cannot produce a consistent arena.
// These are the only fatal configuration errors; everything else is
// recoverable inside the tick loop.
func (c *Config) validate() error {
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("config: world dimensions must be positive, got %gx%g", c.World.Width, c.World.Height)
	}
	if c.World.TileSize <= 0 {
		return fmt.Errorf("config: tile_size must be positive, got %g", c.World.TileSize)
	}
	if c.Entity.MaxEnergy <= 0 {
		return fmt.Errorf("config: max_energy must be positive, got %g", c.Entity.MaxEnergy)
	}
	for i, n := range c.Neural.HiddenLayers {
		if n <= 0 {
			return fmt.Errorf("config: hidden layer %d has non-positive size %d", i, n)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.WorldW32 = float32(c.World.Width)
	c.Derived.WorldH32 = float32(c.World.Height)
	c.Derived.GridW = int(c.World.Width / c.World.TileSize)
	c.Derived.GridH = int(c.World.Height / c.World.TileSize)
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
