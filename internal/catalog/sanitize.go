package catalog

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// cleanRecipe strips markup and HTML entities that the catalog sometimes
// leaves in labels and ingredient lines.
func cleanRecipe(r *Recipe) {
	r.Label = cleanText(r.Label)
	for i, line := range r.IngredientLines {
		r.IngredientLines[i] = cleanText(line)
	}
	for i := range r.Ingredients {
		r.Ingredients[i].Text = cleanText(r.Ingredients[i].Text)
	}
}

var (
	markupTag = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)
	entityRef = regexp.MustCompile(`&(#\d+|#[xX][0-9a-fA-F]+|[a-zA-Z]+);`)
)

// cleanText collapses whitespace and, when s holds a tag or an entity, strips
// the markup. A bare "<" or "&" is plain text.
func cleanText(s string) string {
	if !markupTag.MatchString(s) && !entityRef.MatchString(s) {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
