package planner

import (
	"errors"
	"fmt"
	"time"

	"nutriplan/internal/serving"
)

// DateLayout is the ISO calendar date used for plan and meal dates.
const DateLayout = "2006-01-02"

var (
	ErrNoCandidates     = errors.New("no suitable recipes found for meal plan")
	ErrNoActivePlan     = errors.New("no active meal plan found")
	ErrMealTypeNotFound = errors.New("no meals found of type")
	ErrMealNotFound     = errors.New("meal not found in plan")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidUserID    = errors.New("invalid user id format")
)

// Recipe is a portion-scaled recipe embedded in a plan.
type Recipe struct {
	ID               string                     `json:"id"`
	Label            string                     `json:"label"`
	URL              string                     `json:"url"`
	Image            string                     `json:"image"`
	// Score is the match score in [0, 1] rounded to four decimals. It is
	// serialized as a JSON number, not a formatted string.
	Score            float64                    `json:"score"`
	Calories         float64                    `json:"calories"`
	Serving          string                     `json:"serving"`
	ServingAmount    float64                    `json:"servingAmount"`
	Nutrients        []serving.ScaledNutrient   `json:"nutrients"`
	Ingredients      []serving.ScaledIngredient `json:"ingredients,omitempty"`
	IngredientsLines []string                   `json:"ingredientsLines"`
	Cautions         []string                   `json:"cautions"`
	PredictedGI      *float64                   `json:"predictedGI,omitempty"`
	PredictedGL      *float64                   `json:"predictedGL,omitempty"`
}

// Meal is one slot of one day in a plan.
type Meal struct {
	MealType         string   `json:"mealType"`
	Recipe           Recipe   `json:"recipe"`
	AlternateRecipes []Recipe `json:"alternateRecipes"`
	DayNumber        int      `json:"dayNumber"`
	Date             string   `json:"date"`
}

// MealPlan is a persisted set of meals for a user.
type MealPlan struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	NutritionistID string    `json:"nutritionistId,omitempty"`
	Meals          []Meal    `json:"meals"`
	StartDate      string    `json:"startDate"`
	EndDate        string    `json:"endDate"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NumberOfDays counts the distinct day numbers present in the plan.
func (p *MealPlan) NumberOfDays() int {
	seen := map[int]struct{}{}
	for _, m := range p.Meals {
		seen[m.DayNumber] = struct{}{}
	}
	return len(seen)
}

// MealRef identifies a meal in "meal not found" details.
type MealRef struct {
	Type      string `json:"type"`
	RecipeID  string `json:"recipeId"`
	DayNumber int    `json:"dayNumber"`
}

// MealNotFoundError reports a swap target missing from the plan.
type MealNotFoundError struct {
	MealType       string
	OldRecipeID    string
	AvailableMeals []MealRef
}

func (e *MealNotFoundError) Error() string {
	return fmt.Sprintf("meal %s with recipe %s not found in plan", e.MealType, e.OldRecipeID)
}

func (e *MealNotFoundError) Is(target error) bool {
	return target == ErrMealNotFound
}
