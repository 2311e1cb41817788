package planner

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"nutriplan/internal/fetcher"
	"nutriplan/internal/history"
	"nutriplan/internal/logger"
	"nutriplan/internal/nutrition"
	"nutriplan/internal/serving"
	"nutriplan/internal/slots"
)

const (
	MaxDays               = 7
	defaultMultiDayPages  = 2
	defaultSingleDayPages = 1
)

// SlotFetcher fetches the ranked candidates for a day of slots.
type SlotFetcher interface {
	FetchDay(ctx context.Context, day []slots.Slot, profile nutrition.Profile, exclude history.RecipeSet, opts fetcher.Options) []fetcher.Result
}

// HistoryStore reads and writes served recipes.
type HistoryStore interface {
	PreviousRecipes(ctx context.Context, userID string, since time.Time) (history.RecipeSet, error)
	RecordServed(ctx context.Context, entries []history.Entry) error
}

// PlanStore persists meal plans.
type PlanStore interface {
	CreateActive(ctx context.Context, plan *MealPlan) error
	LatestActive(ctx context.Context, userID, nutritionistID string) (*MealPlan, error)
	UpdateMeals(ctx context.Context, plan *MealPlan) error
}

// Request describes one generation run.
type Request struct {
	UserID              string
	NutritionistID      string
	Profile             nutrition.Profile
	MealDistribution    map[string]float64
	DietaryPreferences  []string
	HealthLabels        []string
	ExcludedIngredients []string
	NumberOfDays        int
	MaxPagesPerMeal     int
}

// ClampDays bounds a requested number of days to 1..MaxDays.
func ClampDays(n int) int {
	return min(max(n, 1), MaxDays)
}

// Generator produces and persists meal plans.
type Generator struct {
	fetcher   SlotFetcher
	history   HistoryStore
	plans     PlanStore
	assembler *Assembler
	log       *logger.Logger
	now       func() time.Time
}

func NewGenerator(f SlotFetcher, h HistoryStore, p PlanStore, a *Assembler, log *logger.Logger) *Generator {
	return &Generator{
		fetcher:   f,
		history:   h,
		plans:     p,
		assembler: a,
		log:       log.With("component", "generator"),
		now:       time.Now,
	}
}

// GenerateDay builds a single-day plan.
func (g *Generator) GenerateDay(ctx context.Context, req Request) (*MealPlan, error) {
	now := g.now()
	today := now.Format(DateLayout)

	exclude, err := g.history.PreviousRecipes(ctx, req.UserID, now.AddDate(0, 0, -history.SingleDayLookbackDays))
	if err != nil {
		return nil, err
	}

	daySlots := slots.Configure(req.Profile.Type, slots.SingleDay, req.MealDistribution, req.Profile.TargetCalories)
	pages := req.MaxPagesPerMeal
	if pages < 1 {
		pages = defaultSingleDayPages
	}
	opts := fetcher.Options{
		MaxPages: pages,
		Health:   mergeLabels(req.DietaryPreferences, req.HealthLabels),
		Excluded: req.ExcludedIngredients,
	}

	results := g.fetcher.FetchDay(ctx, daySlots, req.Profile, exclude, opts)
	meals := g.assembleDay(ctx, results, 1, today, false)
	if len(meals) == 0 {
		return nil, ErrNoCandidates
	}

	plan := &MealPlan{
		UserID:         req.UserID,
		NutritionistID: req.NutritionistID,
		Meals:          meals,
		StartDate:      today,
		EndDate:        now.AddDate(0, 0, 1).Format(DateLayout),
	}
	if err := g.plans.CreateActive(ctx, plan); err != nil {
		return nil, err
	}
	g.record(ctx, req.UserID, servedEntries(req.UserID, meals, now, 0))
	return plan, nil
}

// GenerateDays builds a plan of ClampDays(req.NumberOfDays) days. Days run in
// order and each day excludes the recipes picked on the days before it.
func (g *Generator) GenerateDays(ctx context.Context, req Request) (*MealPlan, error) {
	days := ClampDays(req.NumberOfDays)
	now := g.now()

	exclude, err := g.history.PreviousRecipes(ctx, req.UserID, now.AddDate(0, 0, -history.MultiDayLookbackDays))
	if err != nil {
		return nil, err
	}

	daySlots := slots.Configure(req.Profile.Type, slots.MultiDay, req.MealDistribution, req.Profile.TargetCalories)
	pages := req.MaxPagesPerMeal
	if pages < 1 {
		pages = defaultMultiDayPages
	}
	opts := fetcher.Options{
		MaxPages:  pages,
		Health:    mergeLabels(req.DietaryPreferences, req.HealthLabels),
		Excluded:  req.ExcludedIngredients,
		Random:    true,
		EarlyStop: true,
	}

	var (
		meals   []Meal
		entries []history.Entry
	)
	for day := 1; day <= days; day++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		served := now.AddDate(0, 0, day-1)

		results := g.fetcher.FetchDay(ctx, daySlots, req.Profile, exclude, opts)
		dayMeals := g.assembleDay(ctx, results, day, served.Format(DateLayout), true)
		entries = append(entries, servedEntries(req.UserID, dayMeals, served, day)...)

		picked := make([]string, 0, len(dayMeals))
		for _, m := range dayMeals {
			picked = append(picked, m.Recipe.ID)
		}
		exclude = exclude.With(picked...)
		meals = append(meals, dayMeals...)

		g.log.Info("Generated plan day", "user_id", req.UserID, "day", day, "meals", len(dayMeals))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, ErrNoCandidates
	}

	plan := &MealPlan{
		UserID:         req.UserID,
		NutritionistID: req.NutritionistID,
		Meals:          meals,
		StartDate:      now.Format(DateLayout),
		EndDate:        now.AddDate(0, 0, days-1).Format(DateLayout),
	}
	if err := g.plans.CreateActive(ctx, plan); err != nil {
		return nil, err
	}
	g.record(ctx, req.UserID, entries)
	return plan, nil
}

// assembleDay turns slot results into meals in slot order, dropping empty slots.
func (g *Generator) assembleDay(ctx context.Context, results []fetcher.Result, day int, date string, simplify bool) []Meal {
	results = distinctPrimaries(results)
	built := make([]*Meal, len(results))
	var eg errgroup.Group
	for i, res := range results {
		if res.Err != nil {
			g.log.Warn("Slot produced no candidates", "slot", res.Slot.Key, "day", day, "error", res.Err)
		}
		eg.Go(func() error {
			built[i] = g.assembler.Assemble(ctx, res, day, date, simplify)
			return nil
		})
	}
	_ = eg.Wait()

	meals := make([]Meal, 0, len(built))
	for _, m := range built {
		if m != nil {
			meals = append(meals, *m)
		}
	}
	return meals
}

// distinctPrimaries walks the slots in order and drops from each slot the
// recipes an earlier slot of the same day picked as primary. A slot keeps its
// candidates unchanged when every one of them was already picked.
func distinctPrimaries(results []fetcher.Result) []fetcher.Result {
	picked := map[string]struct{}{}
	out := make([]fetcher.Result, len(results))
	for i, res := range results {
		if len(picked) > 0 && len(res.Recipes) > 0 {
			kept := make([]fetcher.ScoredRecipe, 0, len(res.Recipes))
			for _, r := range res.Recipes {
				if _, dup := picked[r.ID]; !dup {
					kept = append(kept, r)
				}
			}
			if len(kept) > 0 {
				res.Recipes = kept
			}
		}
		if n := len(res.Recipes); n > 0 {
			picked[res.Recipes[primaryIndex(res.Slot.MealType, n)].ID] = struct{}{}
		}
		out[i] = res
	}
	return out
}

// servedEntries lists the primary picks of one day as history entries.
func servedEntries(userID string, meals []Meal, served time.Time, day int) []history.Entry {
	entries := make([]history.Entry, 0, len(meals))
	for _, m := range meals {
		entries = append(entries, history.Entry{
			UserID:     userID,
			RecipeID:   m.Recipe.ID,
			MealType:   m.MealType,
			ServedDate: served,
			DayNumber:  day,
		})
	}
	return entries
}

// record writes the picks of a stored plan to history. It runs only after the
// plan is persisted, so a failed or cancelled run leaves no history behind.
// A failed write is logged and does not fail generation.
func (g *Generator) record(ctx context.Context, userID string, entries []history.Entry) {
	if err := g.history.RecordServed(context.WithoutCancel(ctx), entries); err != nil {
		g.log.Warn("Failed to record served recipes", "user_id", userID, "entries", len(entries), "error", err)
	}
}

// SwapRecipe is the replacement recipe supplied by the client.
type SwapRecipe struct {
	Label            string                   `json:"label"`
	Image            string                   `json:"image"`
	Calories         float64                  `json:"calories"`
	Serving          string                   `json:"serving"`
	IngredientsLines []string                 `json:"ingredientsLines"`
	Nutrients        []serving.ScaledNutrient `json:"nutrients"`
	URL              string                   `json:"url"`
	Cautions         []string                 `json:"cautions"`
}

// SwapRequest replaces one meal of the active plan.
type SwapRequest struct {
	UserID         string
	NutritionistID string
	OldRecipeID    string
	NewRecipeID    string
	MealType       string
	// DayNumber picks the meal when OldRecipeID matches nothing. Defaults to 1.
	DayNumber int
	NewRecipe SwapRecipe
}

// SwapMeal replaces the recipe of one meal in the user's active plan and
// returns the updated meal.
func (g *Generator) SwapMeal(ctx context.Context, req SwapRequest) (*Meal, error) {
	plan, err := g.plans.LatestActive(ctx, req.UserID, req.NutritionistID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrNoActivePlan
	}

	idx, err := findMeal(plan, req)
	if err != nil {
		return nil, err
	}

	nr := req.NewRecipe
	plan.Meals[idx].Recipe = Recipe{
		ID:               req.NewRecipeID,
		Label:            nr.Label,
		Image:            nr.Image,
		Calories:         nr.Calories,
		Serving:          nr.Serving,
		IngredientsLines: nonNil(nr.IngredientsLines),
		Nutrients:        nonNilNutrients(nr.Nutrients),
		URL:              nr.URL,
		Cautions:         nonNil(nr.Cautions),
	}
	if err := g.plans.UpdateMeals(ctx, plan); err != nil {
		return nil, err
	}

	updated := plan.Meals[idx]
	return &updated, nil
}

// ActivePlan returns the user's latest active plan.
func (g *Generator) ActivePlan(ctx context.Context, userID, nutritionistID string) (*MealPlan, error) {
	plan, err := g.plans.LatestActive(ctx, userID, nutritionistID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrNoActivePlan
	}
	return plan, nil
}

func findMeal(plan *MealPlan, req SwapRequest) (int, error) {
	day := req.DayNumber
	if day < 1 {
		day = 1
	}

	byDay := -1
	found := false
	for i, m := range plan.Meals {
		if m.MealType != req.MealType {
			continue
		}
		found = true
		if req.OldRecipeID != "" && m.Recipe.ID == req.OldRecipeID {
			return i, nil
		}
		if byDay < 0 && m.DayNumber == day {
			byDay = i
		}
	}
	if !found {
		return -1, fmt.Errorf("%w %s", ErrMealTypeNotFound, req.MealType)
	}
	if byDay >= 0 {
		return byDay, nil
	}

	available := make([]MealRef, 0, len(plan.Meals))
	for _, m := range plan.Meals {
		available = append(available, MealRef{Type: m.MealType, RecipeID: m.Recipe.ID, DayNumber: m.DayNumber})
	}
	return -1, &MealNotFoundError{MealType: req.MealType, OldRecipeID: req.OldRecipeID, AvailableMeals: available}
}

// mergeLabels concatenates label lists, dropping blanks and duplicates.
func mergeLabels(lists ...[]string) []string {
	var out []string
	for _, list := range lists {
		for _, l := range list {
			if l == "" || slices.Contains(out, l) {
				continue
			}
			out = append(out, l)
		}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilNutrients(s []serving.ScaledNutrient) []serving.ScaledNutrient {
	if s == nil {
		return []serving.ScaledNutrient{}
	}
	return s
}
