package planner

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"nutriplan/internal/logger"
	"nutriplan/internal/notification"
	"nutriplan/internal/nutrition"
	"nutriplan/internal/users"
)

// UserStore loads user accounts.
type UserStore interface {
	Get(ctx context.Context, id string) (*users.User, error)
}

// Notifier records notifications for nutritionists.
type Notifier interface {
	Notify(ctx context.Context, n notification.Notification) error
}

// GenerateInput is a generation request as received from a client.
type GenerateInput struct {
	UserID              string
	NutritionistID      string
	DietaryPreferences  []string
	HealthLabels        []string
	ExcludedIngredients []string
	NumberOfDays        int
	MaxPagesPerMeal     int
	MultiDay            bool
}

// Output is a plan together with the profile it was generated for. Profile
// is set even when generation fails once the user is known.
type Output struct {
	Plan    *MealPlan         `json:"mealPlan"`
	Profile nutrition.Summary `json:"userProfile"`
	Days    int               `json:"numberOfDays"`
}

// Service resolves users, runs the generator and notifies nutritionists.
type Service struct {
	generator *Generator
	users     UserStore
	notifier  Notifier
	log       *logger.Logger
}

// NewService creates a Service. notifier may be nil.
func NewService(g *Generator, u UserStore, n Notifier, log *logger.Logger) *Service {
	return &Service{generator: g, users: u, notifier: n, log: log.With("component", "planner_service")}
}

// Generate builds and stores a new plan for in.UserID.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (*Output, error) {
	user, err := s.loadUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	out := &Output{Profile: user.Profile().Summary()}

	req := Request{
		UserID:              user.ID,
		NutritionistID:      in.NutritionistID,
		Profile:             user.Profile(),
		MealDistribution:    user.MealDistribution,
		DietaryPreferences:  in.DietaryPreferences,
		HealthLabels:        in.HealthLabels,
		ExcludedIngredients: in.ExcludedIngredients,
		NumberOfDays:        in.NumberOfDays,
		MaxPagesPerMeal:     in.MaxPagesPerMeal,
	}

	var plan *MealPlan
	if in.MultiDay {
		plan, err = s.generator.GenerateDays(ctx, req)
	} else {
		plan, err = s.generator.GenerateDay(ctx, req)
	}

	switch {
	case errors.Is(err, ErrNoCandidates):
		s.log.Warn("No recipes found for plan", "user_id", user.ID, "multi_day", in.MultiDay)
		s.notify(ctx, in.NutritionistID, notification.PlanNoRecipes(in.NutritionistID, user.Name))
		return out, err
	case errors.Is(err, context.Canceled):
		s.log.Warn("Meal plan generation cancelled", "user_id", user.ID, "multi_day", in.MultiDay)
		return out, err
	case err != nil:
		s.log.Error("Meal plan generation failed", "user_id", user.ID, "error", err)
		s.notify(ctx, in.NutritionistID, notification.PlanFailed(in.NutritionistID, user.Name, err))
		return out, err
	}

	s.log.Info("Meal plan generated", "user_id", user.ID, "plan_id", plan.ID, "meals", len(plan.Meals))
	s.notify(ctx, in.NutritionistID, notification.PlanGenerated(in.NutritionistID, user.Name))

	out.Plan = plan
	out.Days = plan.NumberOfDays()
	return out, nil
}

// ActivePlan returns the user's latest active plan.
func (s *Service) ActivePlan(ctx context.Context, userID, nutritionistID string) (*Output, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &Output{Profile: user.Profile().Summary()}

	plan, err := s.generator.ActivePlan(ctx, user.ID, nutritionistID)
	if err != nil {
		return out, err
	}
	out.Plan = plan
	out.Days = plan.NumberOfDays()
	return out, nil
}

// Swap replaces one meal of the user's active plan.
func (s *Service) Swap(ctx context.Context, req SwapRequest) (*Meal, error) {
	if _, err := uuid.Parse(req.UserID); err != nil {
		return nil, ErrInvalidUserID
	}
	return s.generator.SwapMeal(ctx, req)
}

func (s *Service) loadUser(ctx context.Context, id string) (*users.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidUserID
	}
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// notify is a no-op without a recipient. The request context may already be
// cancelled, so the notification is written without its deadline.
func (s *Service) notify(ctx context.Context, recipient string, n notification.Notification) {
	if recipient == "" || s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(context.WithoutCancel(ctx), n); err != nil {
		s.log.Warn("Failed to create notification", "recipient", recipient, "title", n.Title, "error", err)
	}
}
