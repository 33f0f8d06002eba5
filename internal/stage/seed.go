package stage

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/corkboard/corkboard/internal/models"
)

// SeedStage describes one stage of a custom seed list. Order in the slice
// is the stage order; flags are trusted as supplied once the list passes
// the completed-uniqueness check.
type SeedStage struct {
	Name        string `yaml:"name" json:"name"`
	IsCompleted bool   `yaml:"is_completed" json:"is_completed"`
	IsPending   bool   `yaml:"is_pending" json:"is_pending"`
	TaskLimit   *int   `yaml:"task_limit" json:"task_limit,omitempty"`
}

// DefaultSeed is the stage list every new project receives unless the
// caller supplies its own.
func DefaultSeed() []SeedStage {
	return []SeedStage{
		{Name: "Pending", IsPending: true},
		{Name: "In Progress"},
		{Name: "Completed", IsCompleted: true},
	}
}

// Seed inserts a project's initial stages at positions 1..n. The whole
// list is validated before any row is written; it runs inside the caller's
// transaction so project creation and seeding commit together.
func Seed(tx *gorm.DB, projectID string, list []SeedStage) error {
	completed := 0
	for i, s := range list {
		if s.Name == "" {
			return fmt.Errorf("stage: seed[%d]: name is required: %w", i, models.ErrValidation)
		}
		if s.IsCompleted {
			completed++
		}
	}
	if completed > 1 {
		return fmt.Errorf("stage: seed list has %d completed stages, want at most one: %w",
			completed, models.ErrValidation)
	}

	for i, s := range list {
		id, err := models.NewID("stg")
		if err != nil {
			return err
		}
		st := models.Stage{
			ID:          id,
			ProjectID:   projectID,
			Name:        s.Name,
			Position:    i + 1,
			IsCompleted: s.IsCompleted,
			IsPending:   s.IsPending,
			TaskLimit:   s.TaskLimit,
		}
		if err := tx.Create(&st).Error; err != nil {
			return fmt.Errorf("stage: seed %q in %s: %w", s.Name, projectID, err)
		}
	}
	return nil
}
