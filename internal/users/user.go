package users

import (
	"time"

	"nutriplan/internal/nutrition"
)

// User is an account a meal plan is generated for.
type User struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Age              int                `json:"age"`
	Gender           string             `json:"gender"`
	HeightCm         float64            `json:"height"`
	WeightKg         float64            `json:"weight"`
	ActivityLevel    string             `json:"activityLevel"`
	Goals            []string           `json:"goals"`
	WeightChangeRate float64            `json:"weightChangeRate"`
	GoalWeight       float64            `json:"goalWeight,omitempty"`
	HealthConditions []string           `json:"healthConditions"`
	GoalCalories     float64            `json:"goalCalories"`
	Macros           nutrition.Macros   `json:"macros"`
	MealDistribution map[string]float64 `json:"mealDistribution,omitempty"`
	NutritionistID   string             `json:"nutritionistId,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// Type classifies the user from their health conditions.
func (u *User) Type() nutrition.UserType {
	return nutrition.ClassifyConditions(u.HealthConditions)
}

// Profile returns the nutrition targets a plan is generated against.
func (u *User) Profile() nutrition.Profile {
	return nutrition.NewProfile(u.Type(), u.GoalCalories, u.Macros)
}

// Stats returns the physical attributes used for derivation.
func (u *User) Stats() nutrition.Stats {
	return nutrition.Stats{
		WeightKg:         u.WeightKg,
		HeightCm:         u.HeightCm,
		Age:              u.Age,
		Gender:           u.Gender,
		ActivityLevel:    u.ActivityLevel,
		Goals:            u.Goals,
		WeightChangeRate: u.WeightChangeRate,
		GoalWeight:       u.GoalWeight,
		HealthConditions: u.HealthConditions,
	}
}

// FillDerived computes goal calories and macros when they are missing.
// It reports whether anything changed.
func (u *User) FillDerived() bool {
	changed := false
	d := nutrition.Derive(u.Stats())
	if u.GoalCalories <= 0 {
		u.GoalCalories = float64(d.GoalCalories)
		changed = true
	}
	if u.Macros == (nutrition.Macros{}) {
		u.Macros = nutrition.MacroSplit(u.GoalCalories, primaryGoal(u.Goals), u.HealthConditions)
		changed = true
	}
	return changed
}

func primaryGoal(goals []string) string {
	if len(goals) == 0 {
		return nutrition.GoalMaintainWeight
	}
	return goals[0]
}
