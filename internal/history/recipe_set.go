package history

// RecipeSet is an immutable set of recipe ids that must not be served again.
// With returns a new set, so each generation step can hand the next step
// an explicit, extended exclusion set.
type RecipeSet struct {
	ids map[string]struct{}
}

// NewRecipeSet builds a set from ids.
func NewRecipeSet(ids ...string) RecipeSet {
	s := RecipeSet{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			s.ids[id] = struct{}{}
		}
	}
	return s
}

// Contains reports whether id is in the set.
func (s RecipeSet) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of ids in the set.
func (s RecipeSet) Len() int {
	return len(s.ids)
}

// With returns a copy of the set extended with ids.
func (s RecipeSet) With(ids ...string) RecipeSet {
	out := RecipeSet{ids: make(map[string]struct{}, len(s.ids)+len(ids))}
	for id := range s.ids {
		out.ids[id] = struct{}{}
	}
	for _, id := range ids {
		if id != "" {
			out.ids[id] = struct{}{}
		}
	}
	return out
}
