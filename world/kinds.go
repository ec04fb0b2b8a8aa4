// Package world defines the closed enumerations shared across the engine:
// terrain kinds, resource kinds, and tool types.
package world

// TerrainKind classifies a tile. Terrain is generated once per run and never
// changes afterwards.
type TerrainKind uint8

const (
	Open TerrainKind = iota
	Water
	Hill
	Shadow
	Predator
	Wind
	Food
	Wall

	NumTerrainKinds = int(Wall) + 1
)

// TerrainNames maps terrain kinds to display names.
var terrainNames = [NumTerrainKinds]string{
	"open", "water", "hill", "shadow", "predator", "wind", "food", "wall",
}

func (k TerrainKind) String() string {
	if int(k) < len(terrainNames) {
		return terrainNames[k]
	}
	return "unknown"
}

// Passable reports whether agents can occupy a tile of this kind.
func (k TerrainKind) Passable() bool {
	return k != Wall
}

// ResourceKind classifies a gatherable resource.
type ResourceKind uint8

const (
	ResourceFood ResourceKind = iota
	ResourceWood
	ResourceStone
	ResourceFiber

	NumResourceKinds = int(ResourceFiber) + 1
)

var resourceNames = [NumResourceKinds]string{"food", "wood", "stone", "fiber"}

func (k ResourceKind) String() string {
	if int(k) < len(resourceNames) {
		return resourceNames[k]
	}
	return "unknown"
}

// Edible reports whether gathering this kind feeds the agent directly
// instead of going into its inventory.
func (k ResourceKind) Edible() bool {
	return k == ResourceFood
}

// ToolType classifies a constructed tool.
type ToolType uint8

const (
	ToolShelter ToolType = iota
	ToolBridge
	ToolTrap
	ToolRamp

	NumToolTypes = int(ToolRamp) + 1
)

var toolNames = [NumToolTypes]string{"shelter", "bridge", "trap", "ramp"}

func (t ToolType) String() string {
	if int(t) < len(toolNames) {
		return toolNames[t]
	}
	return "unknown"
}

// Manifest is a per-resource-kind quantity table, indexed by ResourceKind.
type Manifest [NumResourceKinds]int32

// Total returns the sum over all kinds.
func (m Manifest) Total() int32 {
	var sum int32
	for _, q := range m {
		sum += q
	}
	return sum
}

// BlueprintCost returns the resource manifest required to build a tool type.
func BlueprintCost(t ToolType) Manifest {
	switch t {
	case ToolShelter:
		return Manifest{0, 8, 4, 2}
	case ToolBridge:
		return Manifest{0, 10, 0, 4}
	case ToolTrap:
		return Manifest{0, 3, 2, 5}
	case ToolRamp:
		return Manifest{0, 4, 6, 0}
	default:
		return Manifest{}
	}
}
