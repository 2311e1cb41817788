package shopping

import (
	"math"
	"slices"
	"strings"

	"nutriplan/internal/planner"
)

// unitless is the catalog's measure for counted ingredients ("2 eggs").
const unitless = "<unit>"

// Build aggregates the scaled ingredients of the plan's primary recipes.
// day limits the list to one plan day; 0 covers every day. Quantities of the
// same food and measure are summed.
func Build(plan *planner.MealPlan, day int) *ShoppingList {
	list := &ShoppingList{PlanID: plan.ID, UserID: plan.UserID, Day: day, Items: []Item{}}

	index := map[string]int{}
	for _, m := range plan.Meals {
		if day > 0 && m.DayNumber != day {
			continue
		}
		r := m.Recipe
		if len(r.Ingredients) == 0 {
			list.Lines = append(list.Lines, r.IngredientsLines...)
			continue
		}
		for _, ing := range r.Ingredients {
			food := strings.TrimSpace(strings.ToLower(ing.Food))
			if food == "" {
				continue
			}
			measure := ing.Measure
			if measure == unitless {
				measure = ""
			}

			key := food + "|" + measure
			i, ok := index[key]
			if !ok {
				i = len(list.Items)
				index[key] = i
				list.Items = append(list.Items, Item{Food: food, Measure: measure})
			}
			item := &list.Items[i]
			item.Quantity += ing.Quantity
			if !slices.Contains(item.Recipes, r.Label) {
				item.Recipes = append(item.Recipes, r.Label)
			}
		}
	}

	for i := range list.Items {
		list.Items[i].Quantity = math.Round(list.Items[i].Quantity*100) / 100
	}
	slices.SortStableFunc(list.Items, func(a, b Item) int {
		return strings.Compare(a.Food, b.Food)
	})
	return list
}
