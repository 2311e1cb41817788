package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nutriplan/internal/planner"
)

// PlanArchive keeps JSON snapshots of generated meal plans on disk, one file
// per user and start date.
type PlanArchive struct {
	basePath string
}

// NewPlanArchive creates a new PlanArchive and ensures the base directory exists.
func NewPlanArchive(basePath string) (*PlanArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", basePath, err)
	}
	return &PlanArchive{basePath: basePath}, nil
}

// sanitizeName makes an id or date safe for filenames.
func sanitizeName(s string) string {
	return strings.NewReplacer(":", "-", "/", "-", "\\", "-").Replace(s)
}

// getVersionedPath returns the full path for a user's plan starting on startDate.
func (a *PlanArchive) getVersionedPath(userID, startDate string) string {
	filename := fmt.Sprintf("%s_%s.json", sanitizeName(userID), sanitizeName(startDate))
	return filepath.Join(a.basePath, filename)
}

// Save writes the plan, replacing any snapshot with the same user and start date.
func (a *PlanArchive) Save(plan *planner.MealPlan) error {
	if plan == nil || plan.UserID == "" {
		return errors.New("plan has no user")
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	filePath := a.getVersionedPath(plan.UserID, plan.StartDate)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

// Load reads the snapshot of a user's plan starting on startDate.
func (a *PlanArchive) Load(userID, startDate string) (*planner.MealPlan, error) {
	filePath := a.getVersionedPath(userID, startDate)
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var plan planner.MealPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plan: %w", err)
	}
	return &plan, nil
}

// Exists checks if a snapshot for the user and start date exists.
func (a *PlanArchive) Exists(userID, startDate string) bool {
	_, err := os.Stat(a.getVersionedPath(userID, startDate))
	return !os.IsNotExist(err)
}

// RemoveStaleVersions removes every snapshot of userID.
func (a *PlanArchive) RemoveStaleVersions(userID string) error {
	pattern := filepath.Join(a.basePath, fmt.Sprintf("%s_*.json", sanitizeName(userID)))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to glob stale files: %w", err)
	}

	for _, match := range matches {
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("failed to remove stale file %s: %w", match, err)
		}
	}
	return nil
}
