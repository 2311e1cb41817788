package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"nutriplan/internal/catalog"
	"nutriplan/internal/config"
	"nutriplan/internal/glycemic"
	"nutriplan/internal/history"
	"nutriplan/internal/logger"
	"nutriplan/internal/nutrition"
	"nutriplan/internal/shared"
	"nutriplan/internal/slots"
)

// ErrNoCredential is returned for a slot whose credential ref is not configured.
var ErrNoCredential = errors.New("no catalog credential configured")

const predictConcurrency = 8

// Searcher runs catalog searches.
type Searcher interface {
	Search(ctx context.Context, q catalog.Query) (*catalog.SearchPage, error)
	Next(ctx context.Context, href string) (*catalog.SearchPage, error)
}

// Predictor estimates glycemic values for a recipe.
type Predictor interface {
	Predict(ctx context.Context, r catalog.Recipe, t nutrition.UserType) shared.Outcome[glycemic.Prediction]
}

// Policy holds the pagination and rate limit tunables.
type Policy struct {
	RequestDelay   time.Duration
	RetryBase      time.Duration
	MaxRetries     int
	HighScore      float64
	MinHighScorers int
}

func DefaultPolicy() Policy {
	return Policy{
		RequestDelay:   time.Second,
		RetryBase:      5 * time.Second,
		MaxRetries:     3,
		HighScore:      0.85,
		MinHighScorers: 5,
	}
}

// Options tune one fetch.
type Options struct {
	MaxPages int
	Health   []string
	Excluded []string
	Random   bool
	// EarlyStop ends pagination once enough fresh high scorers were seen.
	EarlyStop bool
}

// ScoredRecipe is a catalog recipe with its match score.
type ScoredRecipe struct {
	ID          string
	Recipe      catalog.Recipe
	Score       float64
	PredictedGI *float64
	PredictedGL *float64
}

// Result is the outcome of one slot fetch. A failed slot has no recipes and
// a non-nil Err.
type Result struct {
	Slot    slots.Slot
	Recipes []ScoredRecipe
	Pages   int
	Err     error
}

// Fetcher queries the catalog for meal slots.
type Fetcher struct {
	searcher  Searcher
	predictor Predictor
	creds     config.Credentials
	policy    Policy
	log       *logger.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

func New(searcher Searcher, predictor Predictor, creds config.Credentials, policy Policy, log *logger.Logger) *Fetcher {
	return &Fetcher{
		searcher:  searcher,
		predictor: predictor,
		creds:     creds,
		policy:    policy,
		log:       log.With("component", "fetcher"),
		sleep:     sleepCtx,
	}
}

// FetchDay fetches every slot concurrently. Results keep slot order and a
// failing slot never cancels its siblings.
func (f *Fetcher) FetchDay(ctx context.Context, day []slots.Slot, profile nutrition.Profile, exclude history.RecipeSet, opts Options) []Result {
	results := make([]Result, len(day))
	var g errgroup.Group
	for i, s := range day {
		g.Go(func() error {
			results[i] = f.FetchSlot(ctx, s, profile, exclude, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// FetchSlot searches, scores and ranks the candidates of one slot.
func (f *Fetcher) FetchSlot(ctx context.Context, slot slots.Slot, profile nutrition.Profile, exclude history.RecipeSet, opts Options) Result {
	log := f.log.With("slot", slot.Key, "meal_type", slot.MealType)
	res := Result{Slot: slot}

	cred, ok := f.creds.Lookup(slot.Credential)
	if !ok {
		res.Err = ErrNoCredential
		return res
	}

	maxPages := opts.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	var ratio float64
	if profile.TargetCalories > 0 {
		ratio = float64(slot.Calories) / profile.TargetCalories
	}

	q := catalog.Query{
		Credential:  cred,
		MealType:    slot.MealType,
		DishType:    slot.DishType,
		MinCalories: max(slot.Calories-100, 0),
		MaxCalories: slot.Calories + 300,
		Health:      opts.Health,
		Excluded:    opts.Excluded,
		Random:      opts.Random,
	}

	requests := 0
	page, err := f.request(ctx, &requests, func() (*catalog.SearchPage, error) {
		return f.searcher.Search(ctx, q)
	})
	if err != nil {
		log.Error("Catalog search failed", "error", err)
		res.Err = err
		return res
	}

	var all []ScoredRecipe
	highFresh := 0
	for len(page.Hits) > 0 && res.Pages < maxPages {
		res.Pages++
		scored := f.scorePage(ctx, page.Hits, profile, ratio)
		all = append(all, scored...)

		for _, r := range scored {
			if r.Score >= f.policy.HighScore && !exclude.Contains(r.ID) {
				highFresh++
			}
		}
		log.Debug("Scored catalog page", "page", res.Pages, "hits", len(scored), "high_fresh", highFresh)

		if opts.EarlyStop && highFresh >= f.policy.MinHighScorers {
			break
		}
		next := page.NextHref()
		if next == "" || res.Pages >= maxPages {
			break
		}
		page, err = f.request(ctx, &requests, func() (*catalog.SearchPage, error) {
			return f.searcher.Next(ctx, next)
		})
		if err != nil {
			log.Error("Catalog next page failed", "page", res.Pages+1, "error", err)
			res.Err = err
			return res
		}
	}

	res.Recipes = rank(all, exclude)
	log.Info("Fetched slot candidates", "pages", res.Pages, "candidates", len(res.Recipes))
	return res
}

// rank drops previously served recipes unless that would leave nothing,
// then orders by score.
func rank(all []ScoredRecipe, exclude history.RecipeSet) []ScoredRecipe {
	fresh := make([]ScoredRecipe, 0, len(all))
	for _, r := range all {
		if !exclude.Contains(r.ID) {
			fresh = append(fresh, r)
		}
	}
	if len(fresh) == 0 {
		fresh = append(fresh, all...)
	}
	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Score > fresh[j].Score
	})
	return fresh
}

func (f *Fetcher) scorePage(ctx context.Context, hits []catalog.Hit, profile nutrition.Profile, ratio float64) []ScoredRecipe {
	out := make([]ScoredRecipe, len(hits))
	var g errgroup.Group
	g.SetLimit(predictConcurrency)
	for i, hit := range hits {
		g.Go(func() error {
			out[i] = f.score(ctx, hit.Recipe, profile, ratio)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (f *Fetcher) score(ctx context.Context, r catalog.Recipe, profile nutrition.Profile, ratio float64) ScoredRecipe {
	v := nutrition.Extract(r)
	sr := ScoredRecipe{ID: r.ID(), Recipe: r}

	if profile.Type.ConditionSensitive() && f.predictor != nil {
		pred := f.predictor.Predict(ctx, r, profile.Type)
		if pred.Degraded {
			f.log.Debug("Glycemic prediction degraded", "recipe_id", sr.ID, "reason", pred.Reason)
		}
		v.PredictedGI = pred.Value.GI
		v.PredictedGL = pred.Value.GL
		sr.PredictedGI = &pred.Value.GI
		sr.PredictedGL = &pred.Value.GL
	}

	sr.Score, _ = nutrition.Score(v, profile, ratio)
	return sr
}

// request performs one catalog call, waiting RequestDelay before every call
// but the first and retrying rate limited calls with exponential backoff.
func (f *Fetcher) request(ctx context.Context, n *int, call func() (*catalog.SearchPage, error)) (*catalog.SearchPage, error) {
	for attempt := 0; ; attempt++ {
		if *n > 0 {
			if err := f.sleep(ctx, f.policy.RequestDelay); err != nil {
				return nil, err
			}
		}
		*n++

		page, err := call()
		if err == nil {
			return page, nil
		}
		if !catalog.IsRateLimited(err) {
			return nil, err
		}
		if attempt >= f.policy.MaxRetries {
			f.log.Warn("Catalog rate limit retries exhausted", "attempts", attempt+1)
			return nil, fmt.Errorf("max retries reached for rate limit: %w", err)
		}

		backoff := f.policy.RetryBase * time.Duration(1<<attempt)
		f.log.Info("Catalog rate limited, backing off", "retry", attempt+1, "backoff_ms", backoff.Milliseconds())
		if err := f.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
