package telemetry

import (
	"log/slog"

	"github.com/cgcardona/bugtopia/genome"
)

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks int64

	windowStartTick int64

	births     [genome.NumSpecies]int
	deaths     [genome.NumSpecies]int
	starved    int
	agedOut    int
	huntsTried int
	huntsHit   int
	kills      int
	gathers    int
	gatherQty  int
	contribQty int
	founded    int
	completed  int
	abandoned  int
	toolUses   int
	toolsWorn  int
}

// NewCollector creates a collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int64(windowTicks)}
}

func (c *Collector) RecordBirth(s genome.Species) { c.births[s]++ }

// RecordDeath records a death. starved and aged classify the cause; a kill
// death sets neither.
func (c *Collector) RecordDeath(s genome.Species, starved, aged bool) {
	c.deaths[s]++
	if starved {
		c.starved++
	}
	if aged {
		c.agedOut++
	}
}

func (c *Collector) RecordHuntAttempt() { c.huntsTried++ }
func (c *Collector) RecordHuntHit()     { c.huntsHit++ }
func (c *Collector) RecordKill()        { c.kills++ }

// RecordGather records one gather action granting qty units.
func (c *Collector) RecordGather(qty int32) {
	c.gathers++
	c.gatherQty += int(qty)
}

func (c *Collector) RecordContribution(qty int32) { c.contribQty += int(qty) }
func (c *Collector) RecordFounding()              { c.founded++ }
func (c *Collector) RecordCompletion()            { c.completed++ }
func (c *Collector) RecordAbandonment()           { c.abandoned++ }
func (c *Collector) RecordToolUse()               { c.toolUses++ }
func (c *Collector) RecordToolWornOut()           { c.toolsWorn++ }

// ShouldFlush reports whether the current window has elapsed.
func (c *Collector) ShouldFlush(tick int64) bool {
	return tick-c.windowStartTick >= c.windowTicks
}

// WindowStats is one flushed telemetry window, shaped for CSV output.
type WindowStats struct {
	WindowStart int64 `csv:"-"`
	WindowEnd   int64 `csv:"window_end"`

	Population int `csv:"population"`
	Herbivores int `csv:"herbivores"`
	Carnivores int `csv:"carnivores"`
	Omnivores  int `csv:"omnivores"`
	Scavengers int `csv:"scavengers"`

	Births  int `csv:"births"`
	Deaths  int `csv:"deaths"`
	Starved int `csv:"starved"`
	AgedOut int `csv:"aged_out"`

	HuntsAttempted int     `csv:"hunts_attempted"`
	HuntsHit       int     `csv:"hunts_hit"`
	Kills          int     `csv:"kills"`
	HuntHitRate    float64 `csv:"hunt_hit_rate"`

	Gathers        int `csv:"gathers"`
	UnitsGathered  int `csv:"units_gathered"`
	UnitsDelivered int `csv:"units_delivered"`

	BlueprintsFounded   int `csv:"blueprints_founded"`
	BlueprintsCompleted int `csv:"blueprints_completed"`
	BlueprintsAbandoned int `csv:"blueprints_abandoned"`
	ToolUses            int `csv:"tool_uses"`
	ToolsWornOut        int `csv:"tools_worn_out"`

	EnergyMean     float64 `csv:"energy_mean"`
	EnergyP50      float64 `csv:"energy_p50"`
	AgeMean        float64 `csv:"age_mean"`
	GenerationMax  int32   `csv:"generation_max"`
	GenerationMean float64 `csv:"generation_mean"`

	SpeedMean      float64 `csv:"speed_mean"`
	VisionMean     float64 `csv:"vision_mean"`
	EfficiencyMean float64 `csv:"efficiency_mean"`
	AggressionMean float64 `csv:"aggression_mean"`
}

// Flush produces a WindowStats from the window's counters and the current
// population aggregate, then resets the counters for the next window.
func (c *Collector) Flush(tick int64, stats *Statistics) WindowStats {
	var births, deaths int
	for s := 0; s < genome.NumSpecies; s++ {
		births += c.births[s]
		deaths += c.deaths[s]
	}
	var hitRate float64
	if c.huntsTried > 0 {
		hitRate = float64(c.huntsHit) / float64(c.huntsTried)
	}

	ws := WindowStats{
		WindowStart: c.windowStartTick,
		WindowEnd:   tick,

		Population: stats.Population,
		Herbivores: stats.BySpecies[genome.Herbivore],
		Carnivores: stats.BySpecies[genome.Carnivore],
		Omnivores:  stats.BySpecies[genome.Omnivore],
		Scavengers: stats.BySpecies[genome.Scavenger],

		Births:  births,
		Deaths:  deaths,
		Starved: c.starved,
		AgedOut: c.agedOut,

		HuntsAttempted: c.huntsTried,
		HuntsHit:       c.huntsHit,
		Kills:          c.kills,
		HuntHitRate:    hitRate,

		Gathers:        c.gathers,
		UnitsGathered:  c.gatherQty,
		UnitsDelivered: c.contribQty,

		BlueprintsFounded:   c.founded,
		BlueprintsCompleted: c.completed,
		BlueprintsAbandoned: c.abandoned,
		ToolUses:            c.toolUses,
		ToolsWornOut:        c.toolsWorn,

		EnergyMean:     stats.EnergyMean,
		EnergyP50:      stats.EnergyP50,
		AgeMean:        stats.AgeMean,
		GenerationMax:  stats.GenerationMax,
		GenerationMean: stats.GenerationMean,

		SpeedMean:      stats.GeneMeans[genome.GeneSpeed],
		VisionMean:     stats.GeneMeans[genome.GeneVisionRadius],
		EfficiencyMean: stats.GeneMeans[genome.GeneEnergyEfficiency],
		AggressionMean: stats.GeneMeans[genome.GeneAggression],
	}

	*c = Collector{windowTicks: c.windowTicks, windowStartTick: tick}
	return ws
}

// LogStats logs the window through slog.
func (s WindowStats) LogStats(log *slog.Logger) {
	log.Info("window",
		"window_end", s.WindowEnd,
		"population", s.Population,
		"herbivores", s.Herbivores,
		"carnivores", s.Carnivores,
		"omnivores", s.Omnivores,
		"scavengers", s.Scavengers,
		"births", s.Births,
		"deaths", s.Deaths,
		"kills", s.Kills,
		"hunt_hit_rate", s.HuntHitRate,
		"units_gathered", s.UnitsGathered,
		"units_delivered", s.UnitsDelivered,
		"blueprints_completed", s.BlueprintsCompleted,
		"blueprints_abandoned", s.BlueprintsAbandoned,
		"tool_uses", s.ToolUses,
		"energy_mean", s.EnergyMean,
		"generation_max", s.GenerationMax,
	)
}
