package slots

import (
	"math"

	"nutriplan/internal/config"
	"nutriplan/internal/nutrition"
)

// Mode selects the credential table. Single and multi-day generation spread
// their catalog traffic over different credentials.
type Mode int

const (
	SingleDay Mode = iota
	MultiDay
)

// Catalog meal types.
const (
	Breakfast = "Breakfast"
	Lunch     = "Lunch"
	Dinner    = "Dinner"
	Snack     = "Snack"
	Teatime   = "Teatime"
)

// Slot is one planned meal of a day.
type Slot struct {
	// Key names the slot in the stored meal distribution, e.g. "Dinner1".
	Key        string
	MealType   string
	Share      float64
	Calories   int
	DishType   string
	Credential config.CredentialRef
}

type slotDef struct {
	key      string
	mealType string
	share    float64
	dishType string
}

var regularDefs = []slotDef{
	{"Breakfast", Breakfast, 0.25, ""},
	{"Lunch", Lunch, 0.30, ""},
	{"Dinner", Dinner, 0.30, ""},
	{"Snack", Snack, 0.15, ""},
}

var conditionDefs = []slotDef{
	{"Breakfast1", Breakfast, 0.125, "Cereals"},
	{"Breakfast2", Breakfast, 0.125, ""},
	{"Snack", Snack, 0.15, ""},
	{"Lunch", Lunch, 0.15, ""},
	{"Teatime", Teatime, 0.15, "Drinks"},
	{"Dinner1", Dinner, 0.15, "Main course"},
	{"Dinner2", Dinner, 0.15, ""},
}

// credentialTable[mode][conditionSensitive] holds one ref per slot, in slot order.
var credentialTable = [2][2][]config.CredentialRef{
	SingleDay: {
		{config.RefEight, config.RefSeven, config.RefSix, config.RefFive},
		{config.RefOne, config.RefTwo, config.RefThree, config.RefFour, config.RefSix, config.RefSeven, config.RefEight},
	},
	MultiDay: {
		{config.RefOne, config.RefSix, config.RefNine, config.RefTen},
		{config.RefOne, config.RefTwo, config.RefNine, config.RefSeven, config.RefSix, config.RefTen, config.RefEight},
	},
}

func defsFor(t nutrition.UserType) []slotDef {
	if t.ConditionSensitive() {
		return conditionDefs
	}
	return regularDefs
}

// DefaultShares returns the default calorie distribution keyed by slot key.
func DefaultShares(t nutrition.UserType) map[string]float64 {
	defs := defsFor(t)
	out := make(map[string]float64, len(defs))
	for _, d := range defs {
		out[d.key] = d.share
	}
	return out
}

// Configure builds the slots of one day. Positive shares in overrides replace
// the default share of the slot with the same key. Other keys are ignored.
func Configure(t nutrition.UserType, mode Mode, overrides map[string]float64, goalCalories float64) []Slot {
	defs := defsFor(t)
	cond := 0
	if t.ConditionSensitive() {
		cond = 1
	}
	refs := credentialTable[mode][cond]

	out := make([]Slot, len(defs))
	for i, d := range defs {
		share := d.share
		if v, ok := overrides[d.key]; ok && v > 0 {
			share = v
		}
		out[i] = Slot{
			Key:        d.key,
			MealType:   d.mealType,
			Share:      share,
			Calories:   int(math.Round(goalCalories * share)),
			DishType:   d.dishType,
			Credential: refs[i],
		}
	}
	return out
}
