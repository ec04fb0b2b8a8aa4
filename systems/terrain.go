// Package systems provides the world-level subsystems of the engine:
// terrain, spatial indexing, resources, and construction.
package systems

import (
	"fmt"

	"github.com/ojrac/opensimplex-go"

	"github.com/cgcardona/bugtopia/config"
	"github.com/cgcardona/bugtopia/genome"
	"github.com/cgcardona/bugtopia/world"
)

// Modifiers are the multiplicative factors a tile applies to a bug's base
// stats. Effective speed = gene speed x Speed, and likewise for vision and
// per-distance energy cost.
type Modifiers struct {
	Speed      float32
	Vision     float32
	EnergyCost float32
}

// baseModifiers is the intrinsic per-kind modifier table, before genome
// adaptation.
var baseModifiers = [world.NumTerrainKinds]Modifiers{
	world.Open:     {1.0, 1.0, 1.0},
	world.Water:    {0.6, 0.8, 1.6},
	world.Hill:     {0.7, 1.3, 1.5},
	world.Shadow:   {1.0, 0.5, 1.0},
	world.Predator: {1.0, 0.9, 1.1},
	world.Wind:     {0.8, 1.0, 1.3},
	world.Food:     {1.0, 1.0, 0.9},
	world.Wall:     {0.0, 0.2, 2.0},
}

// Arena is the immutable terrain grid. It is generated once per run;
// terrain kinds never change afterwards, so every accessor is safe for
// concurrent read-only use.
type Arena struct {
	grid     []world.TerrainKind
	gridW    int
	gridH    int
	tileSize float32
	width    float32
	height   float32
}

// NewArena generates procedural terrain from the configured seed.
// Construction inconsistencies (degenerate dimensions) are fatal and
// surface here, before the run starts.
func NewArena(cfg *config.Config) (*Arena, error) {
	gridW, gridH := cfg.Derived.GridW, cfg.Derived.GridH
	if gridW < 1 || gridH < 1 {
		return nil, fmt.Errorf("systems: arena grid %dx%d is degenerate (world %gx%g, tile %g)",
			gridW, gridH, cfg.World.Width, cfg.World.Height, cfg.World.TileSize)
	}

	a := &Arena{
		grid:     make([]world.TerrainKind, gridW*gridH),
		gridW:    gridW,
		gridH:    gridH,
		tileSize: float32(cfg.World.TileSize),
		width:    cfg.Derived.WorldW32,
		height:   cfg.Derived.WorldH32,
	}
	a.generate(cfg)
	return a, nil
}

// generate assigns a terrain kind to every tile from three noise channels:
// elevation (walls, hills, water), moisture (food-rich, shadow), and a
// high-frequency hazard channel (predator zones, wind corridors).
func (a *Arena) generate(cfg *config.Config) {
	tc := &cfg.Terrain
	elevation := opensimplex.NewNormalized(cfg.World.Seed)
	moisture := opensimplex.NewNormalized(cfg.World.Seed + 1)
	hazard := opensimplex.NewNormalized(cfg.World.Seed + 2)

	for gy := 0; gy < a.gridH; gy++ {
		for gx := 0; gx < a.gridW; gx++ {
			x := float64(gx) * tc.Scale
			y := float64(gy) * tc.Scale

			// Normalized noise is [0,1]; recentre to [-1,1] so the
			// threshold config reads naturally.
			e := fbm(elevation, x, y, tc.Octaves, tc.Lacunarity, tc.Gain)*2 - 1
			m := fbm(moisture, x, y, tc.Octaves, tc.Lacunarity, tc.Gain)*2 - 1
			h := hazard.Eval2(x*4, y*4)*2 - 1

			var kind world.TerrainKind
			switch {
			case e > tc.WallThreshold:
				kind = world.Wall
			case e > tc.HillThreshold:
				kind = world.Hill
			case e < tc.WaterThreshold:
				kind = world.Water
			case m > tc.FoodThreshold:
				kind = world.Food
			case m < -0.55:
				kind = world.Shadow
			case h > 0.75:
				kind = world.Predator
			case h < -0.65:
				kind = world.Wind
			default:
				kind = world.Open
			}
			a.grid[gy*a.gridW+gx] = kind
		}
	}
}

// fbm is fractal Brownian motion over the noise channel.
func fbm(n opensimplex.Noise, x, y float64, octaves int, lacunarity, gain float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	var sum, amp, norm float64
	amp = 1
	freq := 1.0
	for o := 0; o < octaves; o++ {
		sum += n.Eval2(x*freq, y*freq) * amp
		norm += amp
		amp *= gain
		freq *= lacunarity
	}
	return sum / norm
}

// KindAt returns the terrain kind at a world position. Positions outside
// the arena read as Wall.
func (a *Arena) KindAt(x, y float32) world.TerrainKind {
	// Integer conversion truncates toward zero, so (-tileSize, 0) would land
	// on column/row 0; reject negatives before dividing.
	if x < 0 || y < 0 {
		return world.Wall
	}
	gx := int(x / a.tileSize)
	gy := int(y / a.tileSize)
	if gx >= a.gridW || gy >= a.gridH {
		return world.Wall
	}
	return a.grid[gy*a.gridW+gx]
}

// ModifiersFor combines a kind's intrinsic modifiers with genome-dependent
// adaptation. Pure; callable concurrently. Camouflage deliberately does not
// enter here - it affects detection during hunting, not raw modifiers.
func ModifiersFor(kind world.TerrainKind, dna *genome.DNA) Modifiers {
	m := baseModifiers[kind]
	if kind == world.Wall {
		return m
	}

	switch kind {
	case world.Hill:
		// High stickiness halves the hill penalty.
		t := 0.5 * dna.Genes.Stickiness()
		m.Speed = lerp(m.Speed, 1.0, t)
		m.EnergyCost = lerp(m.EnergyCost, 1.0, t)
	case world.Water:
		t := 0.4 * dna.Genes.Strength()
		m.Speed = lerp(m.Speed, 1.0, t)
		m.EnergyCost = lerp(m.EnergyCost, 1.0, t)
	case world.Wind:
		// Big bodies hold their line in wind.
		sizeNorm := dna.Genes.Size() / genome.Range(genome.GeneSize).Max
		t := 0.6 * sizeNorm
		m.Speed = lerp(m.Speed, 1.0, t)
		m.EnergyCost = lerp(m.EnergyCost, 1.0, t)
	}
	return m
}

// ModifiersAt is ModifiersFor at a world position.
func (a *Arena) ModifiersAt(x, y float32, dna *genome.DNA) Modifiers {
	return ModifiersFor(a.KindAt(x, y), dna)
}

// FitnessFor scores how well a genome performs on a terrain kind: the
// speed-vision product discounted by energy cost. Used by the inspection
// surface, not by the tick loop.
func FitnessFor(kind world.TerrainKind, dna *genome.DNA) float32 {
	m := ModifiersFor(kind, dna)
	if m.EnergyCost <= 0 {
		return 0
	}
	return m.Speed * m.Vision / m.EnergyCost
}

// Passable reports whether a bug can occupy the world position.
func (a *Arena) Passable(x, y float32) bool {
	return a.KindAt(x, y).Passable()
}

// Clamp forces a position into arena bounds. Out-of-bounds positions are
// clamped, never an error.
func (a *Arena) Clamp(x, y float32) (float32, float32) {
	if x < 0 {
		x = 0
	} else if x >= a.width {
		x = a.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= a.height {
		y = a.height - 1
	}
	return x, y
}

// Bounds returns the arena extent in world units.
func (a *Arena) Bounds() (w, h float32) {
	return a.width, a.height
}

// TileSize returns the tile edge length in world units.
func (a *Arena) TileSize() float32 {
	return a.tileSize
}

// GridSize returns the arena extent in tiles.
func (a *Arena) GridSize() (w, h int) {
	return a.gridW, a.gridH
}

// TileKind returns the kind at grid coordinates, for presentation-layer
// tile iteration.
func (a *Arena) TileKind(gx, gy int) world.TerrainKind {
	if gx < 0 || gx >= a.gridW || gy < 0 || gy >= a.gridH {
		return world.Wall
	}
	return a.grid[gy*a.gridW+gx]
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
