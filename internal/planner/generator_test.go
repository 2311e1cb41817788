package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriplan/internal/catalog"
	"nutriplan/internal/config"
	"nutriplan/internal/fetcher"
	"nutriplan/internal/history"
	"nutriplan/internal/logger"
	"nutriplan/internal/nutrition"
	"nutriplan/internal/shared"
	"nutriplan/internal/slots"
)

type fakeFetcher struct {
	mu       sync.Mutex
	excludes []history.RecipeSet
	opts     []fetcher.Options
	respond  func(call int, s slots.Slot) fetcher.Result
}

func (f *fakeFetcher) FetchDay(_ context.Context, day []slots.Slot, _ nutrition.Profile, exclude history.RecipeSet, opts fetcher.Options) []fetcher.Result {
	f.mu.Lock()
	call := len(f.excludes)
	f.excludes = append(f.excludes, exclude)
	f.opts = append(f.opts, opts)
	f.mu.Unlock()

	out := make([]fetcher.Result, len(day))
	for i, s := range day {
		out[i] = f.respond(call, s)
		out[i].Slot = s
	}
	return out
}

type memoryHistory struct {
	mu       sync.Mutex
	entries  []history.Entry
	previous history.RecipeSet
	failing  bool
}

func (h *memoryHistory) PreviousRecipes(context.Context, string, time.Time) (history.RecipeSet, error) {
	return h.previous, nil
}

func (h *memoryHistory) RecordServed(_ context.Context, entries []history.Entry) error {
	if h.failing {
		return errors.New("disk full")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, entries...)
	return nil
}

type memoryPlans struct {
	plans []*MealPlan
	err   error
}

func (m *memoryPlans) CreateActive(_ context.Context, plan *MealPlan) error {
	if m.err != nil {
		return m.err
	}
	for _, p := range m.plans {
		if p.UserID == plan.UserID {
			p.IsActive = false
		}
	}
	plan.ID = fmt.Sprintf("plan-%d", len(m.plans)+1)
	plan.IsActive = true
	m.plans = append(m.plans, plan)
	return nil
}

func (m *memoryPlans) LatestActive(_ context.Context, userID, nutritionistID string) (*MealPlan, error) {
	for i := len(m.plans) - 1; i >= 0; i-- {
		p := m.plans[i]
		if p.UserID == userID && p.IsActive && (nutritionistID == "" || p.NutritionistID == nutritionistID) {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memoryPlans) UpdateMeals(context.Context, *MealPlan) error {
	return nil
}

func scored(id string, score, calories float64) fetcher.ScoredRecipe {
	return fetcher.ScoredRecipe{
		ID:    id,
		Score: score,
		Recipe: catalog.Recipe{
			URI:             "http://www.edamam.com/ontologies/edamam.owl#recipe_" + id,
			Label:           "Recipe " + id,
			Calories:        calories,
			Yield:           2,
			IngredientLines: []string{"1 cup rice"},
			TotalNutrients: catalog.NewNutrientBag(
				catalog.NutrientEntry{Key: catalog.NutrientEnergy, Nutrient: catalog.Nutrient{Label: "Energy", Quantity: calories, Unit: "kcal"}},
			),
		},
	}
}

var regularProfile = nutrition.NewProfile(nutrition.Regular, 2000, nutrition.Macros{Protein: 100, Carbs: 200, Fat: 60})

func newTestGenerator(f SlotFetcher, h HistoryStore, p PlanStore) *Generator {
	g := NewGenerator(f, h, p, NewAssembler(nil, nil, nil, logger.NewNop()), logger.NewNop())
	g.now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) }
	return g
}

// perSlot returns n candidates for every slot, ids prefixed with the call and slot key.
func perSlot(n int) func(int, slots.Slot) fetcher.Result {
	return func(call int, s slots.Slot) fetcher.Result {
		recipes := make([]fetcher.ScoredRecipe, n)
		for i := range recipes {
			recipes[i] = scored(fmt.Sprintf("d%d-%s-%d", call+1, s.Key, i), 0.9-float64(i)*0.01, 400)
		}
		return fetcher.Result{Recipes: recipes}
	}
}

func TestGenerateDay_Regular(t *testing.T) {
	h := &memoryHistory{}
	plans := &memoryPlans{}
	g := newTestGenerator(&fakeFetcher{respond: perSlot(14)}, h, plans)

	plan, err := g.GenerateDay(context.Background(), Request{UserID: "u1", NutritionistID: "n1", Profile: regularProfile})
	require.NoError(t, err)

	require.Len(t, plan.Meals, 4)
	wantCalories := []float64{500, 600, 600, 300}
	wantTypes := []string{"Breakfast", "Lunch", "Dinner", "Snack"}
	for i, m := range plan.Meals {
		assert.Equal(t, wantTypes[i], m.MealType)
		assert.Equal(t, wantCalories[i], m.Recipe.Calories)
		assert.NotEmpty(t, m.Recipe.ID)
		assert.LessOrEqual(t, len(m.AlternateRecipes), 10)
		assert.Equal(t, 1, m.DayNumber)
		assert.Equal(t, "2026-10-14", m.Date)
		for _, alt := range m.AlternateRecipes {
			assert.NotEqual(t, m.Recipe.ID, alt.ID)
			assert.Equal(t, wantCalories[i], alt.Calories)
		}
	}
	assert.Equal(t, "1¼", plan.Meals[0].Recipe.Serving)
	assert.Equal(t, "2026-10-14", plan.StartDate)
	assert.Equal(t, "2026-10-15", plan.EndDate)
	assert.Len(t, plans.plans, 1)
	assert.Len(t, h.entries, 4)
	assert.Equal(t, 0, h.entries[0].DayNumber)
}

func TestGenerateDay_DinnerRule(t *testing.T) {
	f := &fakeFetcher{respond: func(_ int, s slots.Slot) fetcher.Result {
		return fetcher.Result{Recipes: []fetcher.ScoredRecipe{
			scored(s.Key+"-A", 0.95, 400),
			scored(s.Key+"-B", 0.90, 400),
		}}
	}}
	g := newTestGenerator(f, &memoryHistory{}, &memoryPlans{})

	plan, err := g.GenerateDay(context.Background(), Request{UserID: "u1", Profile: regularProfile})
	require.NoError(t, err)

	for _, m := range plan.Meals {
		if m.MealType == "Dinner" {
			assert.Equal(t, "Dinner-B", m.Recipe.ID)
			require.Len(t, m.AlternateRecipes, 1)
			assert.Equal(t, "Dinner-A", m.AlternateRecipes[0].ID)
			continue
		}
		assert.Equal(t, m.MealType+"-A", m.Recipe.ID)
	}
}

func TestGenerateDay_DinnerRuleSingleCandidate(t *testing.T) {
	f := &fakeFetcher{respond: func(_ int, s slots.Slot) fetcher.Result {
		return fetcher.Result{Recipes: []fetcher.ScoredRecipe{scored(s.Key+"-only", 0.7, 400)}}
	}}
	g := newTestGenerator(f, &memoryHistory{}, &memoryPlans{})

	plan, err := g.GenerateDay(context.Background(), Request{UserID: "u1", Profile: regularProfile})
	require.NoError(t, err)
	assert.Equal(t, "Dinner-only", plan.Meals[2].Recipe.ID)
	assert.Empty(t, plan.Meals[2].AlternateRecipes)
}

func TestGenerateDay_NoCandidates(t *testing.T) {
	f := &fakeFetcher{respond: func(int, slots.Slot) fetcher.Result {
		return fetcher.Result{Err: errors.New("rate limited")}
	}}
	h := &memoryHistory{}
	plans := &memoryPlans{}
	g := newTestGenerator(f, h, plans)

	_, err := g.GenerateDay(context.Background(), Request{UserID: "u1", Profile: regularProfile})
	assert.ErrorIs(t, err, ErrNoCandidates)
	assert.Empty(t, plans.plans)
	assert.Empty(t, h.entries)
}

func TestGenerateDay_PartialSlots(t *testing.T) {
	f := &fakeFetcher{respond: func(call int, s slots.Slot) fetcher.Result {
		if s.MealType == slots.Lunch {
			return fetcher.Result{Err: errors.New("max retries reached for rate limit")}
		}
		return perSlot(3)(call, s)
	}}
	g := newTestGenerator(f, &memoryHistory{failing: true}, &memoryPlans{})

	plan, err := g.GenerateDay(context.Background(), Request{UserID: "u1", Profile: regularProfile})
	require.NoError(t, err, "history failures must not fail generation")
	require.Len(t, plan.Meals, 3)
	for _, m := range plan.Meals {
		assert.NotEqual(t, slots.Lunch, m.MealType)
	}
}

func TestGenerateDays(t *testing.T) {
	f := &fakeFetcher{respond: perSlot(3)}
	h := &memoryHistory{previous: history.NewRecipeSet("old-1")}
	plans := &memoryPlans{}
	g := newTestGenerator(f, h, plans)

	plan, err := g.GenerateDays(context.Background(), Request{
		UserID:             "u1",
		Profile:            regularProfile,
		NumberOfDays:       10,
		DietaryPreferences: []string{"vegan"},
		HealthLabels:       []string{"vegan", "peanut-free"},
	})
	require.NoError(t, err)

	assert.Equal(t, 7, plan.NumberOfDays())
	assert.Len(t, plan.Meals, 28)
	assert.Len(t, f.excludes, 7)
	assert.Equal(t, "2026-10-14", plan.StartDate)
	assert.Equal(t, "2026-10-20", plan.EndDate)

	t.Run("days are tagged and dated", func(t *testing.T) {
		last := plan.Meals[len(plan.Meals)-1]
		assert.Equal(t, 7, last.DayNumber)
		assert.Equal(t, "2026-10-20", last.Date)
	})

	t.Run("multi-day options", func(t *testing.T) {
		opts := f.opts[0]
		assert.True(t, opts.Random)
		assert.True(t, opts.EarlyStop)
		assert.Equal(t, 2, opts.MaxPages)
		assert.Equal(t, []string{"vegan", "peanut-free"}, opts.Health)
	})

	t.Run("exclusions accumulate across days", func(t *testing.T) {
		assert.True(t, f.excludes[0].Contains("old-1"))
		assert.False(t, f.excludes[0].Contains("d1-Lunch-0"))
		assert.True(t, f.excludes[1].Contains("d1-Lunch-0"))
		assert.True(t, f.excludes[6].Contains("d6-Snack-0"))
		assert.True(t, f.excludes[6].Contains("old-1"))
		assert.Equal(t, 1+6*4, f.excludes[6].Len())
	})

	t.Run("history is dated per day", func(t *testing.T) {
		require.Len(t, h.entries, 28)
		lastEntry := h.entries[27]
		assert.Equal(t, 7, lastEntry.DayNumber)
		assert.Equal(t, "2026-10-20", lastEntry.ServedDate.Format(DateLayout))
	})
}

func TestGenerateDays_MinimumOneDay(t *testing.T) {
	f := &fakeFetcher{respond: perSlot(1)}
	g := newTestGenerator(f, &memoryHistory{}, &memoryPlans{})

	plan, err := g.GenerateDays(context.Background(), Request{UserID: "u1", Profile: regularProfile, NumberOfDays: -3})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.NumberOfDays())
	assert.Equal(t, plan.StartDate, plan.EndDate)
}

func TestGenerate_HistoryWrittenOnlyForStoredPlans(t *testing.T) {
	ctx := context.Background()

	t.Run("single day plan not stored", func(t *testing.T) {
		h := &memoryHistory{}
		plans := &memoryPlans{err: errors.New("database is locked")}
		g := newTestGenerator(&fakeFetcher{respond: perSlot(3)}, h, plans)

		_, err := g.GenerateDay(ctx, Request{UserID: "u1", Profile: regularProfile})
		assert.EqualError(t, err, "database is locked")
		assert.Empty(t, h.entries)
	})

	t.Run("multi day plan not stored", func(t *testing.T) {
		h := &memoryHistory{}
		plans := &memoryPlans{err: errors.New("database is locked")}
		f := &fakeFetcher{respond: perSlot(3)}
		g := newTestGenerator(f, h, plans)

		_, err := g.GenerateDays(ctx, Request{UserID: "u1", Profile: regularProfile, NumberOfDays: 3})
		assert.EqualError(t, err, "database is locked")
		assert.Len(t, f.excludes, 3)
		assert.Empty(t, h.entries)
	})
}

// cancelAfterFetch cancels the run once the first day has been fetched.
type cancelAfterFetch struct {
	*fakeFetcher
	cancel context.CancelFunc
}

func (c cancelAfterFetch) FetchDay(ctx context.Context, day []slots.Slot, p nutrition.Profile, exclude history.RecipeSet, opts fetcher.Options) []fetcher.Result {
	out := c.fakeFetcher.FetchDay(ctx, day, p, exclude, opts)
	c.cancel()
	return out
}

func TestGenerateDays_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := &fakeFetcher{respond: perSlot(3)}
	h := &memoryHistory{}
	plans := &memoryPlans{}
	g := newTestGenerator(cancelAfterFetch{fakeFetcher: f, cancel: cancel}, h, plans)

	_, err := g.GenerateDays(ctx, Request{UserID: "u1", Profile: regularProfile, NumberOfDays: 3})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.excludes, 1)
	assert.Empty(t, h.entries)
	assert.Empty(t, plans.plans)
}

func TestGenerateDay_DistinctPrimariesWithinDay(t *testing.T) {
	diabetic := nutrition.NewProfile(nutrition.Diabetes, 1800, nutrition.Macros{Protein: 90, Carbs: 180, Fat: 60})

	t.Run("repeated meal types pick different recipes", func(t *testing.T) {
		// Slots sharing a meal type get the same candidates, as the catalog would return.
		f := &fakeFetcher{respond: func(_ int, s slots.Slot) fetcher.Result {
			recipes := make([]fetcher.ScoredRecipe, 4)
			for i := range recipes {
				recipes[i] = scored(fmt.Sprintf("%s-%d", s.MealType, i), 0.9-float64(i)*0.01, 300)
			}
			return fetcher.Result{Recipes: recipes}
		}}
		g := newTestGenerator(f, &memoryHistory{}, &memoryPlans{})

		plan, err := g.GenerateDay(context.Background(), Request{UserID: "u1", Profile: diabetic})
		require.NoError(t, err)
		require.Len(t, plan.Meals, 7)

		picks := map[string]string{}
		seen := map[string]bool{}
		for i, m := range plan.Meals {
			assert.False(t, seen[m.Recipe.ID], "recipe %s served twice on one day", m.Recipe.ID)
			seen[m.Recipe.ID] = true
			picks[fmt.Sprintf("%d-%s", i, m.MealType)] = m.Recipe.ID
		}
		assert.Equal(t, "Breakfast-0", picks["0-Breakfast"])
		assert.Equal(t, "Breakfast-1", picks["1-Breakfast"])
		assert.Equal(t, "Dinner-1", picks["5-Dinner"])
		assert.Equal(t, "Dinner-2", picks["6-Dinner"])
	})

	t.Run("single shared candidate is kept", func(t *testing.T) {
		f := &fakeFetcher{respond: func(_ int, s slots.Slot) fetcher.Result {
			return fetcher.Result{Recipes: []fetcher.ScoredRecipe{scored(s.MealType+"-only", 0.8, 300)}}
		}}
		g := newTestGenerator(f, &memoryHistory{}, &memoryPlans{})

		plan, err := g.GenerateDay(context.Background(), Request{UserID: "u1", Profile: diabetic})
		require.NoError(t, err)
		require.Len(t, plan.Meals, 7)
		assert.Equal(t, "Breakfast-only", plan.Meals[0].Recipe.ID)
		assert.Equal(t, "Breakfast-only", plan.Meals[1].Recipe.ID)
	})
}

func TestClampDays(t *testing.T) {
	assert.Equal(t, 1, ClampDays(0))
	assert.Equal(t, 5, ClampDays(5))
	assert.Equal(t, 7, ClampDays(10))
}

func TestSwapMeal(t *testing.T) {
	ctx := context.Background()
	newPlans := func() *memoryPlans {
		p := &memoryPlans{}
		_ = p.CreateActive(ctx, &MealPlan{
			UserID:         "u1",
			NutritionistID: "n1",
			Meals: []Meal{
				{MealType: "Lunch", Recipe: Recipe{ID: "l1"}, DayNumber: 1},
				{MealType: "Lunch", Recipe: Recipe{ID: "l2"}, DayNumber: 2},
				{MealType: "Dinner", Recipe: Recipe{ID: "d1"}, DayNumber: 1},
			},
		})
		return p
	}
	newRecipe := SwapRecipe{Label: "Pho", Calories: 550, Serving: "1"}

	t.Run("by recipe id", func(t *testing.T) {
		plans := newPlans()
		g := newTestGenerator(nil, &memoryHistory{}, plans)
		meal, err := g.SwapMeal(ctx, SwapRequest{UserID: "u1", MealType: "Lunch", OldRecipeID: "l2", NewRecipeID: "pho", NewRecipe: newRecipe})
		require.NoError(t, err)
		assert.Equal(t, "pho", meal.Recipe.ID)
		assert.Equal(t, 2, meal.DayNumber)
		assert.Equal(t, "l1", plans.plans[0].Meals[0].Recipe.ID)
		assert.Equal(t, []string{}, meal.Recipe.Cautions)
	})

	t.Run("falls back to day number", func(t *testing.T) {
		plans := newPlans()
		g := newTestGenerator(nil, &memoryHistory{}, plans)
		meal, err := g.SwapMeal(ctx, SwapRequest{UserID: "u1", NutritionistID: "n1", MealType: "Lunch", OldRecipeID: "gone", NewRecipeID: "pho", NewRecipe: newRecipe})
		require.NoError(t, err)
		assert.Equal(t, 1, meal.DayNumber)
		assert.Equal(t, "pho", plans.plans[0].Meals[0].Recipe.ID)
	})

	t.Run("no active plan", func(t *testing.T) {
		g := newTestGenerator(nil, &memoryHistory{}, &memoryPlans{})
		_, err := g.SwapMeal(ctx, SwapRequest{UserID: "u1", MealType: "Lunch"})
		assert.ErrorIs(t, err, ErrNoActivePlan)
	})

	t.Run("meal type missing", func(t *testing.T) {
		g := newTestGenerator(nil, &memoryHistory{}, newPlans())
		_, err := g.SwapMeal(ctx, SwapRequest{UserID: "u1", MealType: "Teatime"})
		assert.ErrorIs(t, err, ErrMealTypeNotFound)
		assert.Contains(t, err.Error(), "Teatime")
	})

	t.Run("meal missing", func(t *testing.T) {
		g := newTestGenerator(nil, &memoryHistory{}, newPlans())
		_, err := g.SwapMeal(ctx, SwapRequest{UserID: "u1", MealType: "Dinner", OldRecipeID: "x", DayNumber: 3})
		require.ErrorIs(t, err, ErrMealNotFound)

		var nf *MealNotFoundError
		require.True(t, errors.As(err, &nf))
		assert.Len(t, nf.AvailableMeals, 3)
		assert.Equal(t, MealRef{Type: "Dinner", RecipeID: "d1", DayNumber: 1}, nf.AvailableMeals[2])
	})
}

type stubLineScaler struct{}

func (stubLineScaler) Scale(_ context.Context, lines []string, _, desired float64) (shared.Outcome[[]string], shared.AgentMeta) {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fmt.Sprintf("%s x%.2f", l, desired)
	}
	return shared.Fresh(out), shared.AgentMeta{AgentName: "stub", Usage: shared.TokenUsage{PromptTokens: 1}}
}

type usageCounter struct {
	mu    sync.Mutex
	count int
}

func (u *usageCounter) RecordMeta(context.Context, shared.AgentMeta) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.count++
	return nil
}

func TestAssembler_ScalesEachAlternateIndependently(t *testing.T) {
	usage := &usageCounter{}
	a := NewAssembler(stubLineScaler{}, nil, usage, logger.NewNop())

	res := fetcher.Result{
		Slot: slots.Slot{Key: "Lunch", MealType: "Lunch", Calories: 600, Credential: config.RefOne},
		Recipes: []fetcher.ScoredRecipe{
			scored("a", 0.9, 300),
			scored("b", 0.8, 1200),
		},
	}
	meal := a.Assemble(context.Background(), res, 1, "2026-10-14", false)
	require.NotNil(t, meal)

	assert.Equal(t, "2", meal.Recipe.Serving)
	assert.Equal(t, "1 cup rice x4.00", meal.Recipe.IngredientsLines[0])
	assert.Equal(t, "600.0", meal.Recipe.Nutrients[0].Value)

	alt := meal.AlternateRecipes[0]
	assert.Equal(t, "½", alt.Serving)
	assert.Equal(t, "600.0", alt.Nutrients[0].Value)
	assert.Equal(t, "1 cup rice x1.00", alt.IngredientsLines[0])
	assert.Equal(t, 2, usage.count)
}

func TestAssembler_EmptySlot(t *testing.T) {
	a := NewAssembler(nil, nil, nil, logger.NewNop())
	assert.Nil(t, a.Assemble(context.Background(), fetcher.Result{Err: errors.New("x")}, 1, "2026-10-14", false))
}

func testLogger() *logger.Logger {
	return logger.NewNop()
}

func fetchResult(mealType string, calories int, recipes ...fetcher.ScoredRecipe) fetcher.Result {
	return fetcher.Result{
		Slot:    slots.Slot{Key: mealType, MealType: mealType, Calories: calories},
		Recipes: recipes,
	}
}
