package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Nutrient keys used by the Edamam totalNutrients bag.
const (
	NutrientEnergy  = "ENERC_KCAL"
	NutrientProtein = "PROCNT"
	NutrientCarbs   = "CHOCDF"
	NutrientFat     = "FAT"
	NutrientSugar   = "SUGAR"
)

// Nutrient is one entry of a recipe's nutrient bag.
type Nutrient struct {
	Label    string  `json:"label"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// NutrientEntry is a keyed nutrient, as it appears in catalog order.
type NutrientEntry struct {
	Key string
	Nutrient
}

// NutrientBag is the totalNutrients object of a recipe. It keeps the
// catalog's key order so scaled nutrient lists render in a stable order.
type NutrientBag struct {
	entries []NutrientEntry
	index   map[string]int
}

// NewNutrientBag builds a bag from entries in the given order.
func NewNutrientBag(entries ...NutrientEntry) NutrientBag {
	b := NutrientBag{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		b.set(e)
	}
	return b
}

func (b *NutrientBag) set(e NutrientEntry) {
	if b.index == nil {
		b.index = map[string]int{}
	}
	if i, ok := b.index[e.Key]; ok {
		b.entries[i] = e
		return
	}
	b.index[e.Key] = len(b.entries)
	b.entries = append(b.entries, e)
}

// Get returns the nutrient stored under key.
func (b NutrientBag) Get(key string) (Nutrient, bool) {
	i, ok := b.index[key]
	if !ok {
		return Nutrient{}, false
	}
	return b.entries[i].Nutrient, true
}

// Quantity returns the quantity stored under key, or 0.
func (b NutrientBag) Quantity(key string) float64 {
	n, _ := b.Get(key)
	return n.Quantity
}

// Entries returns the nutrients in catalog order.
func (b NutrientBag) Entries() []NutrientEntry {
	return b.entries
}

func (b NutrientBag) Len() int {
	return len(b.entries)
}

// UnmarshalJSON decodes the object while preserving key order. Entries whose
// value is not a well-formed nutrient are kept with the fields that could be
// read, so one bad value never fails the whole recipe. A bag that is not an
// object decodes as empty.
func (b *NutrientBag) UnmarshalJSON(data []byte) error {
	*b = NutrientBag{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("nutrient bag: expected key, got %v", keyTok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("nutrient bag: decoding %s: %w", key, err)
		}
		b.set(NutrientEntry{Key: key, Nutrient: lenientNutrient(raw)})
	}
	_, err = dec.Token()
	return err
}

// lenientNutrient decodes a nutrient value field by field. Numeric strings are
// accepted as quantities; anything else leaves the field zero.
func lenientNutrient(raw json.RawMessage) Nutrient {
	var n Nutrient
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Nutrient{}
	}
	n = Nutrient{}
	n.Label, _ = fields["label"].(string)
	n.Unit, _ = fields["unit"].(string)
	switch q := fields["quantity"].(type) {
	case float64:
		n.Quantity = q
	case string:
		if v, err := strconv.ParseFloat(strings.TrimSpace(q), 64); err == nil {
			n.Quantity = v
		}
	}
	return n
}

// MarshalJSON writes the bag back as an object in catalog order.
func (b NutrientBag) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range b.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Nutrient)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Ingredient is one structured ingredient of a recipe.
type Ingredient struct {
	Text     string  `json:"text"`
	Quantity float64 `json:"quantity"`
	Measure  string  `json:"measure"`
	Food     string  `json:"food"`
	Weight   float64 `json:"weight"`
	Image    string  `json:"image"`
}

// Recipe is a single catalog search hit.
type Recipe struct {
	URI             string       `json:"uri"`
	Label           string       `json:"label"`
	Image           string       `json:"image"`
	URL             string       `json:"url"`
	Yield           float64      `json:"yield"`
	Calories        float64      `json:"calories"`
	Ingredients     []Ingredient `json:"ingredients"`
	IngredientLines []string     `json:"ingredientLines"`
	TotalNutrients  NutrientBag  `json:"totalNutrients"`
	Cautions        []string     `json:"cautions"`
	HealthLabels    []string     `json:"healthLabels"`
}

const recipeIDMarker = "#recipe_"

// ID returns the catalog recipe id encoded in the recipe URI.
func (r Recipe) ID() string {
	if i := strings.Index(r.URI, recipeIDMarker); i >= 0 {
		return r.URI[i+len(recipeIDMarker):]
	}
	return ""
}

// Hit wraps a recipe in a search response.
type Hit struct {
	Recipe Recipe `json:"recipe"`
}

// Link is a HAL style pagination link.
type Link struct {
	Href  string `json:"href"`
	Title string `json:"title"`
}

// SearchPage is one page of catalog search results.
type SearchPage struct {
	From  int   `json:"from"`
	To    int   `json:"to"`
	Count int   `json:"count"`
	Hits  []Hit `json:"hits"`
	Links struct {
		Next *Link `json:"next"`
	} `json:"_links"`
}

// NextHref returns the opaque next-page link, or "" on the last page.
func (p *SearchPage) NextHref() string {
	if p == nil || p.Links.Next == nil {
		return ""
	}
	return p.Links.Next.Href
}
