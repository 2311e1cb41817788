package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	usersdb "nutriplan/internal/users/users_db"
)

// Repository is a database-backed store of user accounts.
type Repository struct {
	queries *usersdb.Queries
	now     func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{queries: usersdb.New(db), now: time.Now}
}

// Upsert inserts u or replaces the stored account with the same id.
func (r *Repository) Upsert(ctx context.Context, u *User) error {
	goals, err := json.Marshal(nonNil(u.Goals))
	if err != nil {
		return fmt.Errorf("failed to marshal goals: %w", err)
	}
	conditions, err := json.Marshal(nonNil(u.HealthConditions))
	if err != nil {
		return fmt.Errorf("failed to marshal health conditions: %w", err)
	}
	macros, err := json.Marshal(u.Macros)
	if err != nil {
		return fmt.Errorf("failed to marshal macros: %w", err)
	}
	dist := u.MealDistribution
	if dist == nil {
		dist = map[string]float64{}
	}
	distribution, err := json.Marshal(dist)
	if err != nil {
		return fmt.Errorf("failed to marshal meal distribution: %w", err)
	}

	now := r.now().UTC().Truncate(time.Second)
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	err = r.queries.UpsertUser(ctx, usersdb.UpsertUserParams{
		ID:               u.ID,
		Name:             u.Name,
		Age:              int64(u.Age),
		Gender:           u.Gender,
		HeightCm:         u.HeightCm,
		WeightKg:         u.WeightKg,
		ActivityLevel:    u.ActivityLevel,
		Goals:            string(goals),
		WeightChangeRate: u.WeightChangeRate,
		HealthConditions: string(conditions),
		GoalCalories:     u.GoalCalories,
		Macros:           string(macros),
		MealDistribution: string(distribution),
		NutritionistID:   u.NutritionistID,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", u.ID, err)
	}
	return nil
}

// Get returns the user with id, or nil when there is none.
func (r *Repository) Get(ctx context.Context, id string) (*User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	u := &User{
		ID:               row.ID,
		Name:             row.Name,
		Age:              int(row.Age),
		Gender:           row.Gender,
		HeightCm:         row.HeightCm,
		WeightKg:         row.WeightKg,
		ActivityLevel:    row.ActivityLevel,
		WeightChangeRate: row.WeightChangeRate,
		GoalCalories:     row.GoalCalories,
		NutritionistID:   row.NutritionistID,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(row.Goals), &u.Goals); err != nil {
		return nil, fmt.Errorf("failed to unmarshal goals for user %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(row.HealthConditions), &u.HealthConditions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal health conditions for user %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(row.Macros), &u.Macros); err != nil {
		return nil, fmt.Errorf("failed to unmarshal macros for user %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(row.MealDistribution), &u.MealDistribution); err != nil {
		return nil, fmt.Errorf("failed to unmarshal meal distribution for user %s: %w", id, err)
	}
	return u, nil
}

// Count returns the number of stored accounts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	n, err := r.queries.CountUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
