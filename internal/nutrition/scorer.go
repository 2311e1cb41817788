package nutrition

import "math"

// Normalize returns how close value is to target on a 0..1 scale, reaching 0
// at maxDeviation. A non-positive deviation only scores an exact hit.
func Normalize(value, target, maxDeviation float64) float64 {
	if maxDeviation <= 0 || math.IsNaN(maxDeviation) {
		if value == target {
			return 1
		}
		return 0
	}
	return math.Max(0, 1-math.Abs(value-target)/maxDeviation)
}

// Breakdown exposes the sub-scores behind a final score.
type Breakdown struct {
	Calorie  float64
	Macro    float64
	CarbDist float64
	GIGL     float64
}

// Score rates a recipe against the share of the daily target given by ratio
// (slot calories / daily calories). The result is in [0,1], rounded to 4 decimals.
func Score(v Values, p Profile, ratio float64) (float64, Breakdown) {
	cal := p.TargetCalories * ratio
	macros := p.TargetMacros.Scale(ratio)

	var b Breakdown
	b.Calorie = Normalize(v.Calories, cal, cal*0.5)
	b.Macro = 0.4*Normalize(v.Protein, macros.Protein, macros.Protein*0.5) +
		0.4*Normalize(v.Carbs, macros.Carbs, macros.Carbs*0.5) +
		0.2*Normalize(v.Fat, macros.Fat, macros.Fat*0.5)
	b.CarbDist = Normalize(v.Sugar, p.Targets.Sugar*ratio, 30*ratio)
	b.GIGL = (Normalize(v.PredictedGI, p.Targets.GI, 50) +
		Normalize(v.PredictedGL, p.Targets.GL*ratio, 30*ratio)) / 2

	w := p.Type.Weights()
	score := w.Calorie*b.Calorie + w.Macro*b.Macro + w.CarbDist*b.CarbDist + w.GIGL*b.GIGL
	score = math.Min(1, math.Max(0, score))
	return math.Round(score*10000) / 10000, b
}
