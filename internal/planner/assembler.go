package planner

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"

	"nutriplan/internal/fetcher"
	"nutriplan/internal/logger"
	"nutriplan/internal/serving"
	"nutriplan/internal/shared"
	"nutriplan/internal/slots"
)

const (
	maxAlternates        = 10
	alternateConcurrency = 4
)

// LineScaler rescales free-text ingredient lines.
type LineScaler interface {
	Scale(ctx context.Context, lines []string, originalServings, desiredServings float64) (shared.Outcome[[]string], shared.AgentMeta)
}

// UsageRecorder stores model usage metadata.
type UsageRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// Assembler turns ranked slot candidates into plan meals.
type Assembler struct {
	lines  LineScaler
	labels *LabelSimplifier
	usage  UsageRecorder
	log    *logger.Logger
}

// NewAssembler creates an Assembler. labels and usage may be nil.
func NewAssembler(lines LineScaler, labels *LabelSimplifier, usage UsageRecorder, log *logger.Logger) *Assembler {
	return &Assembler{
		lines:  lines,
		labels: labels,
		usage:  usage,
		log:    log.With("component", "assembler"),
	}
}

// primaryIndex picks the slot's main recipe. Dinner slots take the runner-up
// so that the best dinner candidate stays available as an alternate.
func primaryIndex(mealType string, n int) int {
	if mealType == slots.Dinner && n > 1 {
		return 1
	}
	return 0
}

// Assemble builds the meal for one slot result, or returns nil when the slot
// has no candidates. simplify enables label simplification.
func (a *Assembler) Assemble(ctx context.Context, res fetcher.Result, day int, date string, simplify bool) *Meal {
	if len(res.Recipes) == 0 {
		return nil
	}

	idx := primaryIndex(res.Slot.MealType, len(res.Recipes))
	alternates := make([]fetcher.ScoredRecipe, 0, maxAlternates)
	for i, r := range res.Recipes {
		if i == idx {
			continue
		}
		if len(alternates) == maxAlternates {
			break
		}
		alternates = append(alternates, r)
	}

	required := float64(res.Slot.Calories)
	meal := &Meal{
		MealType:         res.Slot.MealType,
		AlternateRecipes: make([]Recipe, len(alternates)),
		DayNumber:        day,
		Date:             date,
	}

	var g errgroup.Group
	g.SetLimit(alternateConcurrency)
	g.Go(func() error {
		meal.Recipe = a.scale(ctx, res.Recipes[idx], required, true, simplify)
		return nil
	})
	for i, alt := range alternates {
		g.Go(func() error {
			meal.AlternateRecipes[i] = a.scale(ctx, alt, required, false, simplify)
			return nil
		})
	}
	_ = g.Wait()

	return meal
}

// scale sizes one candidate to the slot's calories with its own factor.
func (a *Assembler) scale(ctx context.Context, sr fetcher.ScoredRecipe, required float64, withIngredients, simplify bool) Recipe {
	r := sr.Recipe
	factor := serving.Factor(required, r.Calories)
	amount := serving.ForRatio(factor)

	yield := r.Yield
	if yield <= 0 {
		yield = 1
	}

	out := Recipe{
		ID:               sr.ID,
		Label:            r.Label,
		URL:              r.URL,
		Image:            r.Image,
		Score:            sr.Score,
		Calories:         math.Round(r.Calories * factor),
		Serving:          amount.Text,
		ServingAmount:    amount.Value,
		Nutrients:        serving.ScaleNutrients(r.TotalNutrients, factor),
		IngredientsLines: r.IngredientLines,
		Cautions:         r.Cautions,
		PredictedGI:      sr.PredictedGI,
		PredictedGL:      sr.PredictedGL,
	}
	if out.Cautions == nil {
		out.Cautions = []string{}
	}
	if withIngredients {
		out.Ingredients = serving.ScaleIngredients(r.Ingredients, factor)
	}

	if a.lines != nil {
		lines, meta := a.lines.Scale(ctx, r.IngredientLines, yield, yield*factor)
		if lines.Degraded {
			a.log.Warn("Ingredient line scaling degraded", "recipe_id", sr.ID, "reason", lines.Reason)
		}
		out.IngredientsLines = lines.Value
		a.record(ctx, meta)
	}
	if out.IngredientsLines == nil {
		out.IngredientsLines = []string{}
	}

	if simplify && a.labels != nil {
		label, meta := a.labels.Simplify(ctx, r.Label)
		if label.Degraded {
			a.log.Warn("Label simplification degraded", "recipe_id", sr.ID, "reason", label.Reason)
		}
		out.Label = label.Value
		a.record(ctx, meta)
	}
	return out
}

func (a *Assembler) record(ctx context.Context, meta shared.AgentMeta) {
	if a.usage == nil {
		return
	}
	if err := a.usage.RecordMeta(ctx, meta); err != nil {
		a.log.Warn("Failed to record model usage", "agent", meta.AgentName, "error", err)
	}
}
