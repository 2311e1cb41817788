package planner

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriplan/internal/database"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func samplePlan(userID, nutritionistID, recipeID string) *MealPlan {
	return &MealPlan{
		UserID:         userID,
		NutritionistID: nutritionistID,
		StartDate:      "2026-10-14",
		EndDate:        "2026-10-15",
		Meals: []Meal{{
			MealType:         "Lunch",
			Recipe:           Recipe{ID: recipeID, Label: "Soup", Calories: 600, Serving: "1½", ServingAmount: 1.5},
			AlternateRecipes: []Recipe{},
			DayNumber:        1,
			Date:             "2026-10-14",
		}},
	}
}

func TestPlanRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPlanRepository(newTestDB(t).SQL)

	t.Run("no active plan", func(t *testing.T) {
		plan, err := repo.LatestActive(ctx, "nobody", "")
		require.NoError(t, err)
		assert.Nil(t, plan)
	})

	first := samplePlan("u1", "n1", "r1")
	require.NoError(t, repo.CreateActive(ctx, first))
	assert.NotEmpty(t, first.ID)
	assert.True(t, first.IsActive)

	second := samplePlan("u1", "n1", "r2")
	require.NoError(t, repo.CreateActive(ctx, second))

	t.Run("creating a plan deactivates the previous one", func(t *testing.T) {
		got, err := repo.LatestActive(ctx, "u1", "")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, "r2", got.Meals[0].Recipe.ID)
		assert.Equal(t, 1.5, got.Meals[0].Recipe.ServingAmount)

		var active int
		require.NoError(t, repo.db.QueryRow(`SELECT COUNT(*) FROM meal_plans WHERE user_id = ? AND is_active = 1`, "u1").Scan(&active))
		assert.Equal(t, 1, active)
	})

	t.Run("nutritionist filter", func(t *testing.T) {
		got, err := repo.LatestActive(ctx, "u1", "n1")
		require.NoError(t, err)
		require.NotNil(t, got)

		got, err = repo.LatestActive(ctx, "u1", "other")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("update meals", func(t *testing.T) {
		second.Meals[0].Recipe.Label = "Stew"
		require.NoError(t, repo.UpdateMeals(ctx, second))

		got, err := repo.LatestActive(ctx, "u1", "")
		require.NoError(t, err)
		assert.Equal(t, "Stew", got.Meals[0].Recipe.Label)

		missing := samplePlan("u1", "", "r3")
		missing.ID = "does-not-exist"
		assert.ErrorIs(t, repo.UpdateMeals(ctx, missing), ErrNoActivePlan)
	})
}

func TestMealPlan_NumberOfDays(t *testing.T) {
	p := &MealPlan{Meals: []Meal{{DayNumber: 1}, {DayNumber: 1}, {DayNumber: 2}, {DayNumber: 3}}}
	assert.Equal(t, 3, p.NumberOfDays())
}
