package neural

// Network dimensions. The first topology layer must equal NumInputs and the
// last must equal NumOutputs; Compile enforces both.
const (
	NumInputs  = 16
	NumOutputs = 8
)

// Perception holds the normalized sensory state fed to the network.
//
// Input mapping:
//
//	[0]     energy_norm [0,1]
//	[1-2]   food_dx, food_dy [-1,1] (unit direction to nearest food, 0 if none)
//	[3]     food_dist [0,1] (1 = touching, 0 = out of range/none)
//	[4-5]   resource_dx, resource_dy [-1,1]
//	[6]     resource_dist [0,1]
//	[7-8]   agent_dx, agent_dy [-1,1] (nearest visible agent)
//	[9]     agent_dist [0,1]
//	[10]    agent_threat [0,1] (1 = can eat us, 0.5 = neutral, 0 = prey)
//	[11]    terrain_speed [0,~2] (effective modifiers at current tile)
//	[12]    terrain_vision [0,~2]
//	[13]    terrain_energy [0,~3]
//	[14]    aggression gene [0,1]
//	[15]    curiosity gene [0,1]
type Perception struct {
	EnergyNorm float32

	FoodDX, FoodDY float32
	FoodDist       float32

	ResourceDX, ResourceDY float32
	ResourceDist           float32

	AgentDX, AgentDY float32
	AgentDist        float32
	AgentThreat      float32

	TerrainSpeed  float32
	TerrainVision float32
	TerrainEnergy float32

	Aggression float32
	Curiosity  float32
}

// AsSlice writes the perception into dst, which must have NumInputs capacity.
func (p *Perception) AsSlice(dst []float32) []float32 {
	dst = dst[:NumInputs]
	dst[0] = p.EnergyNorm
	dst[1] = p.FoodDX
	dst[2] = p.FoodDY
	dst[3] = p.FoodDist
	dst[4] = p.ResourceDX
	dst[5] = p.ResourceDY
	dst[6] = p.ResourceDist
	dst[7] = p.AgentDX
	dst[8] = p.AgentDY
	dst[9] = p.AgentDist
	dst[10] = p.AgentThreat
	dst[11] = p.TerrainSpeed
	dst[12] = p.TerrainVision
	dst[13] = p.TerrainEnergy
	dst[14] = p.Aggression
	dst[15] = p.Curiosity
	return dst
}

// Decision is the decoded per-tick action vector.
type Decision struct {
	MoveX        float32 // [-1,1]
	MoveY        float32 // [-1,1]
	Aggression   float32 // [0,1]
	Exploration  float32 // [0,1]
	Social       float32 // [0,1]
	Reproduction float32 // [0,1]
	Hunting      float32 // [0,1]
	Fleeing      float32 // [0,1]
}

// DecodeDecision maps raw final-layer outputs positionally into the decision
// fields. Output order is fixed:
//
//	[0] move_x (tanh, [-1,1])
//	[1] move_y (tanh, [-1,1])
//	[2] aggression   (saturating, [0,1])
//	[3] exploration  (saturating, [0,1])
//	[4] social       (saturating, [0,1])
//	[5] reproduction (saturating, [0,1])
//	[6] hunting      (saturating, [0,1])
//	[7] fleeing      (saturating, [0,1])
func DecodeDecision(raw []float32) Decision {
	if len(raw) < NumOutputs {
		return Decision{}
	}
	return Decision{
		MoveX:        tanh(raw[0]),
		MoveY:        tanh(raw[1]),
		Aggression:   saturate01(raw[2]*0.5 + 0.5),
		Exploration:  saturate01(raw[3]*0.5 + 0.5),
		Social:       saturate01(raw[4]*0.5 + 0.5),
		Reproduction: saturate01(raw[5]*0.5 + 0.5),
		Hunting:      saturate01(raw[6]*0.5 + 0.5),
		Fleeing:      saturate01(raw[7]*0.5 + 0.5),
	}
}

// Decide runs one inference pass: perception in, bounded decision out.
// Pure given (perception, network).
func Decide(n *Network, p *Perception) Decision {
	var buf [NumInputs]float32
	return DecodeDecision(n.Forward(p.AsSlice(buf[:])))
}

// Topology returns the full layer-size sequence for a configured hidden
// layout, bracketing it with the fixed input and output sizes.
func Topology(hidden []int) []int {
	t := make([]int, 0, len(hidden)+2)
	t = append(t, NumInputs)
	t = append(t, hidden...)
	t = append(t, NumOutputs)
	return t
}
