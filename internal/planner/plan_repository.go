package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	plandb "nutriplan/internal/planner/plan_db"
)

// PlanRepository is a database-backed repository for meal plans.
type PlanRepository struct {
	queries *plandb.Queries
	db      *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{
		queries: plandb.New(d),
		db:      d,
	}
}

// CreateActive stores plan as the user's active plan, deactivating any plan
// that was active before, in one transaction. ID and timestamps are filled in.
func (r *PlanRepository) CreateActive(ctx context.Context, plan *MealPlan) error {
	meals, err := json.Marshal(plan.Meals)
	if err != nil {
		return fmt.Errorf("failed to encode meals: %w", err)
	}

	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	plan.IsActive = true

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin plan transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	if err := q.DeactivateMealPlans(ctx, plandb.DeactivateMealPlansParams{
		UpdatedAt: now,
		UserID:    plan.UserID,
	}); err != nil {
		return fmt.Errorf("failed to deactivate plans for user %s: %w", plan.UserID, err)
	}
	if err := q.InsertMealPlan(ctx, plandb.InsertMealPlanParams{
		ID:             plan.ID,
		UserID:         plan.UserID,
		NutritionistID: plan.NutritionistID,
		Meals:          string(meals),
		StartDate:      plan.StartDate,
		EndDate:        plan.EndDate,
		IsActive:       1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		return fmt.Errorf("failed to insert meal plan: %w", err)
	}

	return tx.Commit()
}

// LatestActive returns the newest active plan for userID, or nil when there is
// none. The nutritionist filter applies only when nutritionistID is set.
func (r *PlanRepository) LatestActive(ctx context.Context, userID, nutritionistID string) (*MealPlan, error) {
	var (
		row plandb.MealPlan
		err error
	)
	if nutritionistID == "" {
		row, err = r.queries.GetLatestActiveMealPlan(ctx, userID)
	} else {
		row, err = r.queries.GetLatestActiveMealPlanForNutritionist(ctx, plandb.GetLatestActiveMealPlanForNutritionistParams{
			UserID:         userID,
			NutritionistID: nutritionistID,
		})
	}
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active meal plan for user %s: %w", userID, err)
	}
	return fromRow(row)
}

// UpdateMeals overwrites the meals of an existing plan.
func (r *PlanRepository) UpdateMeals(ctx context.Context, plan *MealPlan) error {
	meals, err := json.Marshal(plan.Meals)
	if err != nil {
		return fmt.Errorf("failed to encode meals: %w", err)
	}
	plan.UpdatedAt = time.Now().UTC()
	n, err := r.queries.UpdateMealPlanMeals(ctx, plandb.UpdateMealPlanMealsParams{
		Meals:     string(meals),
		UpdatedAt: plan.UpdatedAt,
		ID:        plan.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to update meal plan %s: %w", plan.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("meal plan %s: %w", plan.ID, ErrNoActivePlan)
	}
	return nil
}

func fromRow(row plandb.MealPlan) (*MealPlan, error) {
	var meals []Meal
	if err := json.Unmarshal([]byte(row.Meals), &meals); err != nil {
		return nil, fmt.Errorf("failed to decode meals of plan %s: %w", row.ID, err)
	}
	return &MealPlan{
		ID:             row.ID,
		UserID:         row.UserID,
		NutritionistID: row.NutritionistID,
		Meals:          meals,
		StartDate:      row.StartDate,
		EndDate:        row.EndDate,
		IsActive:       row.IsActive == 1,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}
