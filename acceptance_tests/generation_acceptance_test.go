package acceptance_tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriplan/internal/api"
	"nutriplan/internal/app"
	"nutriplan/internal/config"
	"nutriplan/internal/logger"
	"nutriplan/internal/nutrition"
	"nutriplan/internal/planner"
	"nutriplan/internal/users"
)

const (
	testUserID       = "0b7e2a4c-5d6f-4a8b-9c0d-1e2f3a4b5c6d"
	testNutritionist = "nutritionist-1"
	jwtSecret        = "acceptance-secret"
)

// --- Fake Edamam catalog ---
type fakeCatalog struct {
	mu       sync.Mutex
	requests int
	empty    bool
}

func (f *fakeCatalog) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests++
	empty := f.empty
	f.mu.Unlock()

	q := r.URL.Query()
	if q.Get("app_id") == "" || q.Get("app_key") == "" {
		http.Error(w, "missing credentials", http.StatusUnauthorized)
		return
	}
	mealType := q.Get("mealType")
	minCal, _ := strconv.Atoi(strings.SplitN(q.Get("calories"), "-", 2)[0])
	target := float64(minCal + 100)

	hits := []map[string]any{}
	if !empty {
		// Each page carries fresh ids so multi-day runs never run out.
		suffix := strconv.FormatInt(time.Now().UnixNano(), 36)
		for i := 0; i < 4; i++ {
			cal := target * (1 + 0.05*float64(i))
			hits = append(hits, map[string]any{"recipe": map[string]any{
				"uri":      fmt.Sprintf("http://www.edamam.com/ontologies/edamam.owl#recipe_%s-%d-%s", strings.ToLower(mealType), i, suffix),
				"label":    fmt.Sprintf("%s dish %d", mealType, i),
				"url":      "https://example.com/" + mealType,
				"yield":    2,
				"calories": cal,
				"ingredients": []map[string]any{
					{"text": "1 cup oats", "quantity": 1, "measure": "cup", "food": "oats"},
				},
				"ingredientLines": []string{"1 cup oats"},
				"totalNutrients": map[string]any{
					"ENERC_KCAL": map[string]any{"label": "Energy", "quantity": cal, "unit": "kcal"},
					"PROCNT":     map[string]any{"label": "Protein", "quantity": cal * 0.05, "unit": "g"},
					"CHOCDF":     map[string]any{"label": "Carbs", "quantity": cal * 0.11, "unit": "g"},
					"FAT":        map[string]any{"label": "Fat", "quantity": cal * 0.033, "unit": "g"},
				},
				"cautions": []string{},
			}})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"from": 1, "to": len(hits), "count": len(hits), "hits": hits})
}

// --- Fake Groq chat completions ---
func newFakeLLM(t *testing.T) *httptest.Server {
	t.Helper()
	content := "```json\n{\"name\": \"Simple Dish\", \"scaledIngredients\": [\"2 cups oats\"]}\n```"
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"model":   "fake-model",
			"choices": []map[string]any{{"message": map[string]any{"content": content}}},
			"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		})
	}))
}

type harness struct {
	app     *app.App
	router  http.Handler
	token   string
	catalog *fakeCatalog
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	catalog := &fakeCatalog{}
	catalogSrv := httptest.NewServer(catalog)
	t.Cleanup(catalogSrv.Close)
	llmSrv := newFakeLLM(t)
	t.Cleanup(llmSrv.Close)

	creds := config.Credentials{}
	for _, ref := range config.AllCredentialRefs {
		creds[ref] = config.Credential{AppID: "id-" + string(ref), AppKey: "key-" + string(ref)}
	}
	cfg := &config.Config{
		Env:                  "test",
		DatabasePath:         filepath.Join(t.TempDir(), "nutriplan.db"),
		CatalogBaseURL:       catalogSrv.URL,
		CatalogCredentials:   creds,
		PredictorURL:         "http://127.0.0.1:1/predict",
		LLMProvider:          config.ProviderGroq,
		GroqAPIKey:           "test-key",
		GroqAPIURL:           llmSrv.URL,
		JWTSecret:            jwtSecret,
		HistoryRetentionDays: 14,
		MetricsRetentionDays: 30,
		RetentionInterval:    time.Hour,
	}

	a, err := app.New(ctx, cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	require.NoError(t, a.Users.Upsert(ctx, &users.User{
		ID:           testUserID,
		Name:         "Alex",
		GoalCalories: 2000,
		Macros:       nutrition.Macros{Protein: 100, Carbs: 220, Fat: 66},
	}))

	token, err := api.NewAuthMiddleware(jwtSecret, logger.NewNop()).Sign(testNutritionist, "", time.Hour)
	require.NoError(t, err)

	return &harness{app: a, router: a.Router(), token: token, catalog: catalog}
}

func (h *harness) post(t *testing.T, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	return w.Code, decoded
}

// --- Acceptance Tests ---
func TestSingleDayGeneration(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	code, body := h.post(t, "/api/generate/meals", map[string]any{
		"userId":         testUserID,
		"nutritionistId": testNutritionist,
	})
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	assert.Equal(t, true, body["success"])

	profile := body["userProfile"].(map[string]any)
	assert.Equal(t, 2000.0, profile["goalCalories"])

	plan := body["mealPlan"].(map[string]any)
	meals := plan["meals"].([]any)
	require.Len(t, meals, 4)

	wantTypes := []string{"Breakfast", "Lunch", "Dinner", "Snack"}
	wantCalories := []float64{500, 600, 600, 300}
	for i, raw := range meals {
		meal := raw.(map[string]any)
		assert.Equal(t, wantTypes[i], meal["mealType"])
		assert.Equal(t, 1.0, meal["dayNumber"])

		recipe := meal["recipe"].(map[string]any)
		assert.NotEmpty(t, recipe["id"])
		assert.InDelta(t, wantCalories[i], recipe["calories"], 1)
		assert.Equal(t, []any{"2 cups oats"}, recipe["ingredientsLines"])
		assert.LessOrEqual(t, len(meal["alternateRecipes"].([]any)), 10)
	}

	// Dinner takes the runner-up as its primary pick.
	dinner := meals[2].(map[string]any)["recipe"].(map[string]any)
	assert.True(t, strings.HasPrefix(dinner["id"].(string), "dinner-1-"), "dinner id %v", dinner["id"])

	active, err := h.app.Plans.ActivePlan(ctx, testUserID, testNutritionist)
	require.NoError(t, err)
	assert.Equal(t, plan["id"], active.Plan.ID)

	recent, err := h.app.History.Recent(ctx, testUserID, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 4)

	notes, _, err := h.app.Notifications.List(ctx, testNutritionist, 10)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, "Meal Plan Generated", notes[0].Title)

	// A second plan replaces the first as the active one.
	code, body = h.post(t, "/api/generate/meals", map[string]any{"userId": testUserID, "nutritionistId": testNutritionist})
	require.Equal(t, http.StatusOK, code)
	active, err = h.app.Plans.ActivePlan(ctx, testUserID, testNutritionist)
	require.NoError(t, err)
	assert.Equal(t, body["mealPlan"].(map[string]any)["id"], active.Plan.ID)
}

func TestMultiDayGeneration(t *testing.T) {
	h := newHarness(t)

	code, body := h.post(t, "/api/multi-day-generator/mealplan", map[string]any{
		"userId":              testUserID,
		"nutritionistId":      testNutritionist,
		"numberOfDays":        10,
		"maxPagesPerMeal":     1,
		"excludedIngredients": []string{"peanut"},
	})
	require.Equal(t, http.StatusOK, code, "body: %v", body)
	assert.Equal(t, 7.0, body["numberOfDays"])

	meals := body["mealPlan"].(map[string]any)["meals"].([]any)
	require.Len(t, meals, 28)

	seen := map[string]bool{}
	for _, raw := range meals {
		meal := raw.(map[string]any)
		recipe := meal["recipe"].(map[string]any)
		id := recipe["id"].(string)
		assert.False(t, seen[id], "recipe %s repeated", id)
		seen[id] = true
		assert.Equal(t, "Simple Dish", recipe["label"])
	}

	last := meals[len(meals)-1].(map[string]any)
	assert.Equal(t, 7.0, last["dayNumber"])
	assert.Equal(t, time.Now().AddDate(0, 0, 6).Format(planner.DateLayout), last["date"])
}

func TestGenerationWithoutCandidates(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.catalog.empty = true

	code, body := h.post(t, "/api/generate/meals", map[string]any{
		"userId":         testUserID,
		"nutritionistId": testNutritionist,
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])
	assert.NotNil(t, body["userProfile"])

	_, err := h.app.Plans.ActivePlan(ctx, testUserID, testNutritionist)
	assert.ErrorIs(t, err, planner.ErrNoActivePlan)

	notes, _, err := h.app.Notifications.List(ctx, testNutritionist, 10)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Meal Plan Generation Failed", notes[0].Title)
}

func TestGenerationValidation(t *testing.T) {
	h := newHarness(t)

	code, _ := h.post(t, "/api/generate/meals", map[string]any{"userId": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = h.post(t, "/api/generate/meals", map[string]any{"userId": "9f1c2d3e-4b5a-4c6d-8e7f-0a1b2c3d4e5f"})
	assert.Equal(t, http.StatusNotFound, code)

	assert.Zero(t, h.catalog.requests)
}
