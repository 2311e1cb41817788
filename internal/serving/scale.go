package serving

import (
	"fmt"

	"nutriplan/internal/catalog"
)

// Factor is the multiplier that brings a recipe to the required calories.
// Recipes without calorie data are served as-is.
func Factor(requiredCalories, recipeCalories float64) float64 {
	if recipeCalories <= 0 {
		return 1
	}
	return requiredCalories / recipeCalories
}

// ScaledNutrient is a nutrient value after portion scaling, formatted to one decimal.
type ScaledNutrient struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// ScaleNutrients multiplies every nutrient in the bag by factor, keeping bag order.
func ScaleNutrients(bag catalog.NutrientBag, factor float64) []ScaledNutrient {
	out := make([]ScaledNutrient, 0, bag.Len())
	for _, e := range bag.Entries() {
		out = append(out, ScaledNutrient{
			Label: e.Label,
			Value: fmt.Sprintf("%.1f", e.Quantity*factor),
			Unit:  e.Unit,
		})
	}
	return out
}

// ScaledIngredient is a structured ingredient with its quantity scaled.
type ScaledIngredient struct {
	Text     string  `json:"text"`
	Quantity float64 `json:"quantity"`
	Measure  string  `json:"measure,omitempty"`
	Food     string  `json:"food"`
	Image    string  `json:"image,omitempty"`
}

// ScaleIngredients multiplies each quantity by factor. A missing quantity
// counts as one unit.
func ScaleIngredients(ingredients []catalog.Ingredient, factor float64) []ScaledIngredient {
	out := make([]ScaledIngredient, 0, len(ingredients))
	for _, ing := range ingredients {
		qty := ing.Quantity
		if qty == 0 {
			qty = 1
		}
		out = append(out, ScaledIngredient{
			Text:     ing.Text,
			Quantity: qty * factor,
			Measure:  ing.Measure,
			Food:     ing.Food,
			Image:    ing.Image,
		})
	}
	return out
}
