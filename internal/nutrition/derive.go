package nutrition

import (
	"math"
	"slices"
)

// Goal names accepted by Derive.
const (
	GoalLoseWeight     = "Lose Weight"
	GoalMaintainWeight = "Maintain Weight"
	GoalGainWeight     = "Gain Weight"
	GoalGainMuscle     = "Gain Muscle"
	GoalModifyDiet     = "Modify My Diet"
	GoalWeightGain     = "Weight Gain"
)

const (
	kcalPerKg             = 7700.0
	defaultWeightGainRate = 0.5
)

var activityMultipliers = map[string]float64{
	"Not Very Active": 1.2,
	"Lightly Active":  1.375,
	"Active":          1.55,
	"Very Active":     1.725,
}

type macroRange struct {
	protein, carbs, fats [2]float64
}

var goalMacroRanges = map[string]macroRange{
	GoalLoseWeight:     {protein: [2]float64{0.35, 0.45}, carbs: [2]float64{0.30, 0.40}, fats: [2]float64{0.20, 0.30}},
	GoalMaintainWeight: {protein: [2]float64{0.25, 0.35}, carbs: [2]float64{0.40, 0.50}, fats: [2]float64{0.20, 0.30}},
	GoalGainWeight:     {protein: [2]float64{0.20, 0.30}, carbs: [2]float64{0.50, 0.60}, fats: [2]float64{0.20, 0.30}},
	GoalGainMuscle:     {protein: [2]float64{0.35, 0.45}, carbs: [2]float64{0.35, 0.45}, fats: [2]float64{0.15, 0.25}},
	GoalModifyDiet:     {protein: [2]float64{0.25, 0.35}, carbs: [2]float64{0.35, 0.45}, fats: [2]float64{0.25, 0.35}},
}

var conditionMacroRanges = map[string]macroRange{
	"Diabetes":     {protein: [2]float64{0.30, 0.40}, carbs: [2]float64{0.30, 0.40}, fats: [2]float64{0.25, 0.30}},
	"PCOS":         {protein: [2]float64{0.30, 0.40}, carbs: [2]float64{0.20, 0.30}, fats: [2]float64{0.30, 0.40}},
	"PCOD":         {protein: [2]float64{0.30, 0.40}, carbs: [2]float64{0.20, 0.30}, fats: [2]float64{0.30, 0.40}},
	"Thyroid":      {protein: [2]float64{0.25, 0.35}, carbs: [2]float64{0.40, 0.50}, fats: [2]float64{0.20, 0.30}},
	"Hypertension": {protein: [2]float64{0.25, 0.35}, carbs: [2]float64{0.40, 0.50}, fats: [2]float64{0.20, 0.30}},
}

// Stats are the physical attributes used to derive a profile.
type Stats struct {
	WeightKg         float64
	HeightCm         float64
	Age              int
	Gender           string
	ActivityLevel    string
	Goals            []string
	WeightChangeRate float64
	GoalWeight       float64
	HealthConditions []string
}

// Derived holds the values computed from Stats.
type Derived struct {
	BMR          int
	TDEE         int
	GoalCalories int
	BMI          float64
	Macros       Macros
	Type         UserType
}

// Derive computes BMR, TDEE, goal calories, BMI and the macro split.
func Derive(s Stats) Derived {
	bmr := BMR(s.WeightKg, s.HeightCm, s.Age, s.Gender)
	tdee := TDEE(bmr, s.ActivityLevel)
	goal := GoalCalories(tdee, s.Goals, s.WeightChangeRate, s.GoalWeight)

	primaryGoal := GoalMaintainWeight
	if len(s.Goals) > 0 {
		primaryGoal = s.Goals[0]
	}

	return Derived{
		BMR:          bmr,
		TDEE:         tdee,
		GoalCalories: goal,
		BMI:          BMI(s.WeightKg, s.HeightCm),
		Macros:       MacroSplit(float64(goal), primaryGoal, s.HealthConditions),
		Type:         ClassifyConditions(s.HealthConditions),
	}
}

// BMR uses the Mifflin-St Jeor equation.
func BMR(weightKg, heightCm float64, age int, gender string) int {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if gender == "male" {
		return int(math.Round(base + 5))
	}
	return int(math.Round(base - 161))
}

func TDEE(bmr int, activityLevel string) int {
	m, ok := activityMultipliers[activityLevel]
	if !ok {
		m = 1.2
	}
	return int(math.Round(float64(bmr) * m))
}

// GoalCalories adjusts TDEE by the weekly weight change rate in kg.
func GoalCalories(tdee int, goals []string, rate, goalWeight float64) int {
	if len(goals) == 0 {
		return tdee
	}
	if goalWeight == 0 && rate == 0 && slices.Contains(goals, GoalWeightGain) {
		rate = defaultWeightGainRate
	}
	daily := rate * kcalPerKg / 7
	switch {
	case slices.Contains(goals, GoalLoseWeight):
		return int(math.Round(float64(tdee) - daily))
	case slices.Contains(goals, GoalWeightGain):
		return int(math.Round(float64(tdee) + daily))
	default:
		return tdee
	}
}

// BMI rounded to two decimals.
func BMI(weightKg, heightCm float64) float64 {
	if heightCm <= 0 {
		return 0
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*100) / 100
}

// MacroSplit converts calories into gram targets using the midpoint of the
// goal range, or the averaged condition ranges when any known condition is
// present. Unknown goals use the maintain-weight ranges.
func MacroSplit(calories float64, goal string, conditions []string) Macros {
	r, ok := goalMacroRanges[goal]
	if !ok {
		r = goalMacroRanges[GoalMaintainWeight]
	}

	var sum macroRange
	count := 0
	for _, c := range conditions {
		cr, ok := conditionMacroRanges[c]
		if !ok {
			continue
		}
		for i := 0; i < 2; i++ {
			sum.protein[i] += cr.protein[i]
			sum.carbs[i] += cr.carbs[i]
			sum.fats[i] += cr.fats[i]
		}
		count++
	}
	if count > 0 {
		n := float64(count)
		for i := 0; i < 2; i++ {
			sum.protein[i] /= n
			sum.carbs[i] /= n
			sum.fats[i] /= n
		}
		r = sum
	}

	mid := func(v [2]float64) float64 { return (v[0] + v[1]) / 2 }
	p, c, f := mid(r.protein), mid(r.carbs), mid(r.fats)
	total := p + c + f

	return Macros{
		Protein: math.Round(calories * p / total / 4),
		Carbs:   math.Round(calories * c / total / 4),
		Fat:     math.Round(calories * f / total / 9),
	}
}
