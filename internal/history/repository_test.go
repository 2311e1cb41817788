package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"nutriplan/internal/database"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	now := time.Now()

	err := repo.RecordServed(ctx, []Entry{
		{UserID: "u1", RecipeID: "r-old", MealType: "Lunch", ServedDate: now.AddDate(0, 0, -10)},
		{UserID: "u1", RecipeID: "r-new", MealType: "Dinner", ServedDate: now.AddDate(0, 0, -1)},
		{UserID: "u1", RecipeID: "r-future", MealType: "Snack", ServedDate: now.AddDate(0, 0, 3), DayNumber: 4},
		{UserID: "u2", RecipeID: "r-other", MealType: "Breakfast", ServedDate: now},
	})
	if err != nil {
		t.Fatalf("RecordServed failed: %v", err)
	}

	t.Run("SingleDayLookback", func(t *testing.T) {
		set, err := repo.PreviousRecipes(ctx, "u1", now.AddDate(0, 0, -SingleDayLookbackDays))
		if err != nil {
			t.Fatalf("PreviousRecipes failed: %v", err)
		}
		if set.Contains("r-old") {
			t.Error("Expected r-old to be outside the 7 day window")
		}
		if !set.Contains("r-new") || !set.Contains("r-future") {
			t.Error("Expected recent and future-dated entries to be inside the window")
		}
		if set.Contains("r-other") {
			t.Error("Expected other users' history to be excluded")
		}
	})

	t.Run("MultiDayLookback", func(t *testing.T) {
		set, err := repo.PreviousRecipes(ctx, "u1", now.AddDate(0, 0, -MultiDayLookbackDays))
		if err != nil {
			t.Fatalf("PreviousRecipes failed: %v", err)
		}
		if !set.Contains("r-old") {
			t.Error("Expected r-old to be inside the 14 day window")
		}
	})

	t.Run("Recent", func(t *testing.T) {
		entries, err := repo.Recent(ctx, "u1", 10)
		if err != nil {
			t.Fatalf("Recent failed: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("Expected 3 entries, got %d", len(entries))
		}
		if entries[0].RecipeID != "r-future" || entries[0].DayNumber != 4 {
			t.Errorf("Expected newest entry r-future on day 4, got %+v", entries[0])
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		n, err := repo.Cleanup(ctx, now.AddDate(0, 0, -7))
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Expected 1 deleted entry, got %d", n)
		}
		set, _ := repo.PreviousRecipes(ctx, "u1", now.AddDate(0, 0, -30))
		if set.Contains("r-old") {
			t.Error("Expected r-old to be deleted")
		}
	})

	t.Run("RecordNothing", func(t *testing.T) {
		if err := repo.RecordServed(ctx, nil); err != nil {
			t.Errorf("Expected no error for empty batch, got %v", err)
		}
	})
}

func TestRecipeSet(t *testing.T) {
	base := NewRecipeSet("a", "", "b")
	if base.Len() != 2 {
		t.Errorf("Expected empty ids to be skipped, got len %d", base.Len())
	}

	extended := base.With("c")
	if !extended.Contains("c") || !extended.Contains("a") {
		t.Error("Expected extended set to contain old and new ids")
	}
	if base.Contains("c") {
		t.Error("Expected With to leave the original set untouched")
	}

	var zero RecipeSet
	if zero.Contains("a") || zero.Len() != 0 {
		t.Error("Expected zero set to be empty")
	}
	if !zero.With("x").Contains("x") {
		t.Error("Expected With on zero set to work")
	}
}
