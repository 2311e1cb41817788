package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nutriplan/internal/config"
)

// StatusError is returned when the catalog answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("edamam recipe API error %d: %s", e.StatusCode, e.Body)
}

// IsRateLimited reports whether err is a catalog 429 response.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests
}

// Query describes one catalog search for a meal slot.
type Query struct {
	Credential  config.Credential
	MealType    string
	DishType    string
	MinCalories int
	MaxCalories int
	Health      []string
	Excluded    []string
	Random      bool
}

// Values encodes the query as catalog URL parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("type", "public")
	v.Set("app_id", q.Credential.AppID)
	v.Set("app_key", q.Credential.AppKey)
	v.Set("mealType", q.MealType)
	v.Set("calories", strconv.Itoa(q.MinCalories)+"-"+strconv.Itoa(q.MaxCalories))
	for _, h := range q.Health {
		v.Add("health", h)
	}
	for _, e := range q.Excluded {
		v.Add("excluded", e)
	}
	if q.DishType != "" {
		v.Set("dishType", q.DishType)
	}
	if q.Random {
		v.Set("random", "true")
	}
	return v
}

// Client is an Edamam recipe search client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
}

// NewClient creates a catalog client. cache may be nil.
func NewClient(cfg *config.Config, cache Cache) *Client {
	return &Client{
		baseURL:    cfg.CatalogBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache,
		cacheTTL:   cfg.CatalogCacheTTL,
	}
}

// Search runs the first page of a query.
func (c *Client) Search(ctx context.Context, q Query) (*SearchPage, error) {
	u := c.baseURL + "?" + q.Values().Encode()
	return c.fetch(ctx, u, !q.Random)
}

// Next follows an opaque next-page link returned by a previous page.
func (c *Client) Next(ctx context.Context, href string) (*SearchPage, error) {
	return c.fetch(ctx, href, !strings.Contains(href, "random=true"))
}

func (c *Client) fetch(ctx context.Context, rawURL string, cacheable bool) (*SearchPage, error) {
	key := cacheKey(rawURL)
	if cacheable && c.cache != nil {
		if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
			if page, err := decodePage(data); err == nil {
				return page, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	page, err := decodePage(data)
	if err != nil {
		return nil, err
	}

	if cacheable && c.cache != nil {
		_ = c.cache.Set(ctx, key, data, c.cacheTTL)
	}
	return page, nil
}

func decodePage(data []byte) (*SearchPage, error) {
	var page SearchPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	for i := range page.Hits {
		cleanRecipe(&page.Hits[i].Recipe)
	}
	return &page, nil
}

func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return "catalog:page:" + hex.EncodeToString(sum[:])
}
