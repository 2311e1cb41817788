package serving

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"nutriplan/internal/llm"
	"nutriplan/internal/shared"
)

//go:embed scale_ingredients_prompt.md
var scaleIngredientsPrompt string

var scaleIngredientsTmpl = template.Must(template.New("scale_ingredients").Parse(scaleIngredientsPrompt))

const lineScalerAgent = "IngredientScaler"

var errNoGenerator = errors.New("no text generator configured")

type scalePromptData struct {
	OriginalServings string
	DesiredServings  string
	Ingredients      []string
}

type rawScaledLines struct {
	ScaledIngredients []string `json:"scaledIngredients"`
}

// LineScaler rewrites free-text ingredient lines for a new serving count
// using a language model.
type LineScaler struct {
	textGen llm.TextGenerator
}

func NewLineScaler(textGen llm.TextGenerator) *LineScaler {
	return &LineScaler{textGen: textGen}
}

// Scale returns the rescaled lines. Any model or parsing failure returns the
// original lines as a degraded outcome.
func (s *LineScaler) Scale(ctx context.Context, lines []string, originalServings, desiredServings float64) (shared.Outcome[[]string], shared.AgentMeta) {
	meta := shared.AgentMeta{AgentName: lineScalerAgent}
	if len(lines) == 0 {
		return shared.Fresh([]string{}), meta
	}
	if s == nil || s.textGen == nil {
		return shared.Fallback(lines, errNoGenerator), meta
	}

	prompt, err := buildScalePrompt(scalePromptData{
		OriginalServings: formatServings(originalServings),
		DesiredServings:  formatServings(desiredServings),
		Ingredients:      lines,
	})
	if err != nil {
		return shared.Fallback(lines, err), meta
	}

	start := time.Now()
	resp, err := s.textGen.GenerateContent(ctx, prompt)
	meta.Latency = time.Since(start)
	if err != nil {
		return shared.Fallback(lines, err), meta
	}
	meta.Usage = resp.Usage

	scaled, err := parseScaledLines(resp.Content)
	if err != nil {
		return shared.Fallback(lines, err), meta
	}
	return shared.Fresh(scaled), meta
}

func parseScaledLines(content string) ([]string, error) {
	raw := rawScaledLines{}
	if err := json.Unmarshal([]byte(StripFences(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse scaled ingredients: %w", err)
	}
	if len(raw.ScaledIngredients) == 0 {
		return nil, errors.New("model returned no scaled ingredients")
	}
	return raw.ScaledIngredients, nil
}

// StripFences removes markdown code fences around a JSON payload.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func formatServings(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func buildScalePrompt(data scalePromptData) (string, error) {
	var buf bytes.Buffer
	if err := scaleIngredientsTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
