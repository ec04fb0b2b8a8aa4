package genome

import "math/rand"

// Species is a closed variant over feeding strategies. Behavior systems
// dispatch on the tag; the trait records below are only meaningful for the
// tags that declare them.
type Species uint8

const (
	Herbivore Species = iota
	Carnivore
	Omnivore
	Scavenger

	NumSpecies = int(Scavenger) + 1
)

var speciesNames = [NumSpecies]string{"herbivore", "carnivore", "omnivore", "scavenger"}

func (s Species) String() string {
	if int(s) < len(speciesNames) {
		return speciesNames[s]
	}
	return "unknown"
}

// Hunts reports whether this species initiates hunting interactions.
func (s Species) Hunts() bool {
	return s == Carnivore || s == Omnivore
}

// Defends reports whether this species carries defensive traits against
// hunters.
func (s Species) Defends() bool {
	return s == Herbivore || s == Omnivore || s == Scavenger
}

// Eats reports whether hunter can consume prey. Hunting runs strictly down
// the trophic order.
func Eats(hunter, prey Species) bool {
	if !hunter.Hunts() {
		return false
	}
	switch hunter {
	case Carnivore:
		return prey != Carnivore
	case Omnivore:
		return prey == Herbivore || prey == Scavenger
	default:
		return false
	}
}

// HuntingTraits drive predation success for hunting species.
type HuntingTraits struct {
	Intensity float32 // [0,1] pursuit commitment
	Stealth   float32 // [0,1] approach concealment
}

// DefenseTraits drive escape odds for hunted species.
type DefenseTraits struct {
	PredatorDetection float32 // [0,1] chance scaling to notice hunters
	FleeSpeed         float32 // [0,1] burst speed under threat
}

// SpeciesTraits is the tagged species variant: the tag plus the trait
// record(s) its behavior needs.
type SpeciesTraits struct {
	Tag     Species
	Hunting HuntingTraits // Valid when Tag.Hunts()
	Defense DefenseTraits // Valid when Tag.Defends()
}

// speciesWeights biases random species assignment (higher = more common).
var speciesWeights = [NumSpecies]float32{
	Herbivore: 0.50,
	Carnivore: 0.15,
	Omnivore:  0.20,
	Scavenger: 0.15,
}

// RandomSpeciesTraits draws a species tag by weight and fills only the trait
// records that tag uses.
func RandomSpeciesTraits(rng *rand.Rand) SpeciesTraits {
	var total float32
	for _, w := range speciesWeights {
		total += w
	}
	pick := rng.Float32() * total
	tag := Herbivore
	for i, w := range speciesWeights {
		if pick < w {
			tag = Species(i)
			break
		}
		pick -= w
	}

	st := SpeciesTraits{Tag: tag}
	if tag.Hunts() {
		st.Hunting = HuntingTraits{
			Intensity: rng.Float32(),
			Stealth:   rng.Float32(),
		}
	}
	if tag.Defends() {
		st.Defense = DefenseTraits{
			PredatorDetection: rng.Float32(),
			FleeSpeed:         rng.Float32(),
		}
	}
	return st
}

// Compatible reports whether two bugs can reproduce. Pairing requires
// identical species tags.
func Compatible(a, b SpeciesTraits) bool {
	return a.Tag == b.Tag
}
