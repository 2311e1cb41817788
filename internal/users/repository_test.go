package users

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"nutriplan/internal/database"
	"nutriplan/internal/nutrition"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.SQL)
}

const userID = "3f0c6f0e-8d7d-4e36-9d9a-3a6c2c1f6b11"

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	t.Run("MissingUser", func(t *testing.T) {
		u, err := repo.Get(ctx, userID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if u != nil {
			t.Errorf("Expected nil user, got %+v", u)
		}
	})

	t.Run("UpsertAndGet", func(t *testing.T) {
		in := &User{
			ID:               userID,
			Name:             "Priya",
			Age:              29,
			Gender:           "female",
			HeightCm:         162,
			WeightKg:         64,
			HealthConditions: []string{"PCOS"},
			GoalCalories:     1800,
			Macros:           nutrition.Macros{Protein: 158, Carbs: 113, Fat: 70},
			MealDistribution: map[string]float64{"Lunch": 0.2},
			NutritionistID:   "n1",
		}
		if err := repo.Upsert(ctx, in); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}

		got, err := repo.Get(ctx, userID)
		if err != nil || got == nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Name != "Priya" || got.Macros.Carbs != 113 || got.MealDistribution["Lunch"] != 0.2 {
			t.Errorf("Unexpected user: %+v", got)
		}
		if got.Type() != nutrition.PCOS {
			t.Errorf("Expected PCOS user, got %v", got.Type())
		}
		if len(got.Goals) != 0 || got.Goals == nil {
			t.Errorf("Expected empty goals, got %#v", got.Goals)
		}

		p := got.Profile()
		if p.TargetCalories != 1800 || p.Targets != nutrition.PCOS.Targets() {
			t.Errorf("Unexpected profile: %+v", p)
		}
	})

	t.Run("UpsertReplaces", func(t *testing.T) {
		if err := repo.Upsert(ctx, &User{ID: userID, Name: "Priya S", GoalCalories: 1700}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
		got, _ := repo.Get(ctx, userID)
		if got.Name != "Priya S" || got.GoalCalories != 1700 || got.Type() != nutrition.Regular {
			t.Errorf("Expected replaced user, got %+v", got)
		}
		n, err := repo.Count(ctx)
		if err != nil || n != 1 {
			t.Errorf("Expected 1 user, got %d (%v)", n, err)
		}
	})
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	src := `[
		{"id": "` + userID + `", "name": "Sam", "age": 30, "gender": "male", "height": 180, "weight": 80,
		 "activityLevel": "Not Very Active", "goals": ["Maintain Weight"], "healthConditions": []},
		{"id": "9b2d8a4e-1f3c-4b5a-8e7d-6c5b4a3f2e1d", "name": "Ana", "goalCalories": 1500,
		 "macros": {"protein": 120, "carbs": 150, "fats": 50}, "healthConditions": ["Diabetes"]}
	]`

	res, err := repo.Import(ctx, strings.NewReader(src))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Imported != 2 || res.Derived != 1 {
		t.Errorf("Unexpected result: %+v", res)
	}

	sam, _ := repo.Get(ctx, userID)
	if sam.GoalCalories != 2136 {
		t.Errorf("Expected derived goal 2136, got %v", sam.GoalCalories)
	}
	want := nutrition.Macros{Protein: 160, Carbs: 240, Fat: 59}
	if sam.Macros != want {
		t.Errorf("Expected macros %+v, got %+v", want, sam.Macros)
	}

	ana, _ := repo.Get(ctx, "9b2d8a4e-1f3c-4b5a-8e7d-6c5b4a3f2e1d")
	if ana.GoalCalories != 1500 || ana.Type() != nutrition.Diabetes {
		t.Errorf("Imported user changed: %+v", ana)
	}

	t.Run("InvalidID", func(t *testing.T) {
		_, err := repo.Import(ctx, strings.NewReader(`[{"id": "not-a-uuid"}]`))
		if err == nil {
			t.Error("Expected error for invalid id")
		}
	})
}
