package genome

import "math/rand"

// ToolIndex identifies a tool-related gene.
type ToolIndex uint8

const (
	ToolCraftingSkill ToolIndex = iota
	ToolProficiency
	ToolVision
	ToolConstructionDrive
	ToolCarryingCapacity
	ToolGatheringSkill
	ToolEngineering
	ToolCollaboration

	NumToolGenes = int(ToolCollaboration) + 1
)

var toolGeneNames = [NumToolGenes]string{
	"crafting_skill", "proficiency", "tool_vision", "construction_drive",
	"carrying_capacity", "gathering_skill", "engineering", "collaboration",
}

func (t ToolIndex) String() string {
	if int(t) < len(toolGeneNames) {
		return toolGeneNames[t]
	}
	return "unknown"
}

// toolRanges is the per-gene valid range table. Carrying capacity is an
// inventory slot count; everything else is a [0,1] skill.
var toolRanges = [NumToolGenes]GeneRange{
	ToolCraftingSkill:     {0, 1},
	ToolProficiency:       {0, 1},
	ToolVision:            {0, 1},
	ToolConstructionDrive: {0, 1},
	ToolCarryingCapacity:  {1, 20},
	ToolGatheringSkill:    {0, 1},
	ToolEngineering:       {0, 1},
	ToolCollaboration:     {0, 1},
}

// ToolRange returns the declared valid range for a tool gene.
func ToolRange(t ToolIndex) GeneRange {
	return toolRanges[t]
}

// ToolDNA holds crafting and construction traits.
type ToolDNA [NumToolGenes]float32

func (t *ToolDNA) CraftingSkill() float32     { return t[ToolCraftingSkill] }
func (t *ToolDNA) Proficiency() float32       { return t[ToolProficiency] }
func (t *ToolDNA) Vision() float32            { return t[ToolVision] }
func (t *ToolDNA) ConstructionDrive() float32 { return t[ToolConstructionDrive] }
func (t *ToolDNA) GatheringSkill() float32    { return t[ToolGatheringSkill] }
func (t *ToolDNA) Engineering() float32       { return t[ToolEngineering] }
func (t *ToolDNA) Collaboration() float32     { return t[ToolCollaboration] }

// CarryingCapacity returns the inventory capacity in resource units.
func (t *ToolDNA) CarryingCapacity() int {
	return int(t[ToolCarryingCapacity])
}

// Clamp forces every tool gene into its declared range.
func (t *ToolDNA) Clamp() {
	for i := range t {
		r := toolRanges[i]
		if t[i] < r.Min {
			t[i] = r.Min
		} else if t[i] > r.Max {
			t[i] = r.Max
		}
	}
}

// RandomToolDNA draws each tool gene uniformly from its valid range.
func RandomToolDNA(rng *rand.Rand) ToolDNA {
	var t ToolDNA
	for i := range t {
		r := toolRanges[i]
		t[i] = r.Min + rng.Float32()*(r.Max-r.Min)
	}
	return t
}
