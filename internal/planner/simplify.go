package planner

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
	"nutriplan/internal/serving"
	"nutriplan/internal/shared"
)

//go:embed simplify_label_prompt.md
var simplifyLabelPrompt string

var simplifyLabelTmpl = template.Must(template.New("simplify_label").Parse(simplifyLabelPrompt))

const labelSimplifierAgent = "LabelSimplifier"

type rawSimplifiedLabel struct {
	Name string `json:"name"`
}

// LabelSimplifier asks a language model for the common name of a recipe.
type LabelSimplifier struct {
	textGen llm.TextGenerator
}

func NewLabelSimplifier(textGen llm.TextGenerator) *LabelSimplifier {
	return &LabelSimplifier{textGen: textGen}
}

// Simplify returns the common name for label, or label itself as a degraded
// outcome when the model fails.
func (s *LabelSimplifier) Simplify(ctx context.Context, label string) (shared.Outcome[string], shared.AgentMeta) {
	meta := shared.AgentMeta{AgentName: labelSimplifierAgent}
	if strings.TrimSpace(label) == "" {
		return shared.Fresh(label), meta
	}
	if s.textGen == nil {
		return shared.Fallback(label, errors.New("no text generator configured")), meta
	}

	var buf bytes.Buffer
	if err := simplifyLabelTmpl.Execute(&buf, struct{ Label string }{label}); err != nil {
		return shared.Fallback(label, err), meta
	}

	start := time.Now()
	resp, err := s.textGen.GenerateContent(ctx, buf.String())
	meta.Latency = time.Since(start)
	if err != nil {
		return shared.Fallback(label, err), meta
	}
	meta.Usage = resp.Usage

	raw := rawSimplifiedLabel{}
	if err := json.Unmarshal([]byte(serving.StripFences(resp.Content)), &raw); err != nil {
		return shared.Fallback(label, fmt.Errorf("failed to parse simplified label: %w", err)), meta
	}
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return shared.Fallback(label, errors.New("model returned an empty name")), meta
	}
	return shared.Fresh(name), meta
}
