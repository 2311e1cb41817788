package glycemic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"nutriplan/internal/catalog"
	"nutriplan/internal/nutrition"
	"nutriplan/internal/shared"
)

// Prediction is an estimated glycemic index and load.
type Prediction struct {
	GI float64
	GL float64
}

// Fallback returns the static estimate used when the predictor is unavailable.
func Fallback(t nutrition.UserType) Prediction {
	if t == nutrition.Diabetes {
		return Prediction{GI: 45, GL: 12}
	}
	return Prediction{GI: 50, GL: 15}
}

type predictRequest struct {
	Calories      float64 `json:"calories"`
	Proteins      float64 `json:"proteins"`
	Carbohydrates float64 `json:"carbohydrates"`
	Fats          float64 `json:"fats"`
}

type predictResponse struct {
	GlycemicIndex *struct {
		Value float64 `json:"value"`
	} `json:"glycemic_index"`
	GlycemicLoad *struct {
		Value float64 `json:"value"`
	} `json:"glycemic_load"`
}

// Client calls the GI/GL prediction service.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(url string) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Predict estimates GI/GL for a recipe. It never fails: any error yields the
// fallback for userType as a degraded outcome.
func (c *Client) Predict(ctx context.Context, r catalog.Recipe, userType nutrition.UserType) shared.Outcome[Prediction] {
	p, err := c.predict(ctx, r)
	if err != nil {
		return shared.Fallback(Fallback(userType), err)
	}
	return shared.Fresh(p)
}

func (c *Client) predict(ctx context.Context, r catalog.Recipe) (Prediction, error) {
	n := r.TotalNutrients
	body, err := json.Marshal(predictRequest{
		Calories:      n.Quantity(catalog.NutrientEnergy),
		Proteins:      n.Quantity(catalog.NutrientProtein),
		Carbohydrates: n.Quantity(catalog.NutrientCarbs),
		Fats:          n.Quantity(catalog.NutrientFat),
	})
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Prediction{}, fmt.Errorf("predictor returned status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Prediction{}, fmt.Errorf("failed to decode response: %w", err)
	}
	if out.GlycemicIndex == nil || out.GlycemicLoad == nil {
		return Prediction{}, fmt.Errorf("predictor response missing glycemic values")
	}
	return Prediction{GI: out.GlycemicIndex.Value, GL: out.GlycemicLoad.Value}, nil
}
