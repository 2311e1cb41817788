package notification

import (
	"fmt"
	"time"
)

// Notification types.
const (
	TypeMealPlan = "mealplan"
	TypeSystem   = "system"
	TypeReminder = "reminder"
)

// Priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const ActionViewMealPlan = "viewMealPlan"

// Notification is a message addressed to a user, usually a nutritionist.
type Notification struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Title      string    `json:"title"`
	Message    string    `json:"message"`
	Type       string    `json:"type"`
	Priority   string    `json:"priority"`
	Read       bool      `json:"read"`
	Actionable bool      `json:"actionable"`
	Action     string    `json:"action,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PlanGenerated tells recipient that a plan was generated for the named user.
func PlanGenerated(recipient, name string) Notification {
	return Notification{
		UserID:     recipient,
		Title:      "Meal Plan Generated",
		Message:    fmt.Sprintf("New meal plan has been generated for %s", name),
		Type:       TypeMealPlan,
		Priority:   PriorityMedium,
		Actionable: true,
		Action:     ActionViewMealPlan,
	}
}

// PlanNoRecipes reports a generation run that found no usable recipes.
func PlanNoRecipes(recipient, name string) Notification {
	return Notification{
		UserID:   recipient,
		Title:    "Meal Plan Generation Failed",
		Message:  fmt.Sprintf("Could not generate meal plan for %s. No suitable recipes found.", name),
		Type:     TypeMealPlan,
		Priority: PriorityHigh,
	}
}

// PlanFailed reports a generation run that ended with err.
func PlanFailed(recipient, name string, err error) Notification {
	if name == "" {
		name = "user"
	}
	return Notification{
		UserID:   recipient,
		Title:    "Meal Plan Generation Failed",
		Message:  fmt.Sprintf("Failed to generate meal plan for %s: %v", name, err),
		Type:     TypeMealPlan,
		Priority: PriorityHigh,
	}
}
