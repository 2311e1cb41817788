package shopping

// Item is one aggregated ingredient of a shopping list.
type Item struct {
	Food     string   `json:"food"`
	Quantity float64  `json:"quantity"`
	Measure  string   `json:"measure,omitempty"`
	Recipes  []string `json:"recipes"`
}

// ShoppingList represents a shopping list for a meal plan.
type ShoppingList struct {
	PlanID string `json:"planId"`
	UserID string `json:"userId"`
	// Day is 0 when the list covers the whole plan.
	Day   int    `json:"day,omitempty"`
	Items []Item `json:"items"`
	// Lines holds the ingredient lines of meals without structured
	// ingredients, such as swapped-in recipes.
	Lines []string `json:"lines,omitempty"`
}
