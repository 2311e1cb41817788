package nutrition

import "nutriplan/internal/catalog"

// Default glycemic values used until a prediction replaces them.
const (
	DefaultGI = 50
	DefaultGL = 15
)

// Values are the nutrient figures a recipe is scored on.
type Values struct {
	Calories    float64
	Protein     float64
	Carbs       float64
	Fat         float64
	Sugar       float64
	PredictedGI float64
	PredictedGL float64
}

// Extract reads the scoring values from a catalog recipe. Missing nutrients are 0.
func Extract(r catalog.Recipe) Values {
	n := r.TotalNutrients
	return Values{
		Calories:    r.Calories,
		Protein:     n.Quantity(catalog.NutrientProtein),
		Carbs:       n.Quantity(catalog.NutrientCarbs),
		Fat:         n.Quantity(catalog.NutrientFat),
		Sugar:       n.Quantity(catalog.NutrientSugar),
		PredictedGI: DefaultGI,
		PredictedGL: DefaultGL,
	}
}
