package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	historydb "nutriplan/internal/history/history_db"
)

// Lookback windows for "previously served" filtering.
const (
	SingleDayLookbackDays = 7
	MultiDayLookbackDays  = 14
)

// Entry is one served-recipe record.
type Entry struct {
	UserID     string
	RecipeID   string
	MealType   string
	ServedDate time.Time
	// DayNumber is set for entries written by multi-day generation.
	DayNumber int
}

// Repository is a database-backed store of served recipes.
type Repository struct {
	queries *historydb.Queries
	db      *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{
		queries: historydb.New(d),
		db:      d,
	}
}

// PreviousRecipes returns the ids of recipes served to userID at or after since.
func (r *Repository) PreviousRecipes(ctx context.Context, userID string, since time.Time) (RecipeSet, error) {
	ids, err := r.queries.ListRecipeIDsServedSince(ctx, historydb.ListRecipeIDsServedSinceParams{
		UserID:     userID,
		ServedDate: normalize(since),
	})
	if err != nil {
		return RecipeSet{}, fmt.Errorf("failed to list recipe history for user %s: %w", userID, err)
	}
	return NewRecipeSet(ids...), nil
}

// RecordServed stores entries in a single transaction. Recording never deletes
// old entries; retention is handled by Cleanup.
func (r *Repository) RecordServed(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin history transaction: %w", err)
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)
	now := normalize(time.Now())
	for _, e := range entries {
		var day sql.NullInt64
		if e.DayNumber > 0 {
			day = sql.NullInt64{Int64: int64(e.DayNumber), Valid: true}
		}
		served := e.ServedDate
		if served.IsZero() {
			served = now
		}
		if err := q.InsertRecipeHistory(ctx, historydb.InsertRecipeHistoryParams{
			UserID:     e.UserID,
			RecipeID:   e.RecipeID,
			MealType:   e.MealType,
			ServedDate: normalize(served),
			DayNumber:  day,
			CreatedAt:  now,
		}); err != nil {
			return fmt.Errorf("failed to record recipe %s for user %s: %w", e.RecipeID, e.UserID, err)
		}
	}

	return tx.Commit()
}

// Recent returns the latest entries for userID, newest first.
func (r *Repository) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	rows, err := r.queries.ListRecipeHistoryByUser(ctx, historydb.ListRecipeHistoryByUserParams{
		UserID: userID,
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent history for user %s: %w", userID, err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{
			UserID:     row.UserID,
			RecipeID:   row.RecipeID,
			MealType:   row.MealType,
			ServedDate: row.ServedDate,
			DayNumber:  int(row.DayNumber.Int64),
		})
	}
	return entries, nil
}

// Cleanup removes entries served before the cutoff, for every user.
func (r *Repository) Cleanup(ctx context.Context, before time.Time) (int64, error) {
	n, err := r.queries.DeleteRecipeHistoryBefore(ctx, normalize(before))
	if err != nil {
		return 0, fmt.Errorf("failed to clean up recipe history: %w", err)
	}
	return n, nil
}

// Stored timestamps are UTC with second precision so text comparison in
// sqlite orders them correctly.
func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
