package users

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// ImportResult summarizes an import run.
type ImportResult struct {
	Imported int
	Derived  int
}

// Import reads a JSON array of users from r and upserts each one. Users
// without goal calories or macros get them derived from their stats.
func (r *Repository) Import(ctx context.Context, src io.Reader) (ImportResult, error) {
	var batch []User
	if err := json.NewDecoder(src).Decode(&batch); err != nil {
		return ImportResult{}, fmt.Errorf("failed to decode users: %w", err)
	}

	res := ImportResult{}
	for i := range batch {
		u := &batch[i]
		if _, err := uuid.Parse(u.ID); err != nil {
			return res, fmt.Errorf("user %d has an invalid id %q: %w", i, u.ID, err)
		}
		if u.FillDerived() {
			res.Derived++
		}
		if err := r.Upsert(ctx, u); err != nil {
			return res, err
		}
		res.Imported++
	}
	return res, nil
}
