// Package project provides project lifecycle operations. Creating a
// project seeds its workflow stages in the same transaction; deleting one
// cascades to its stages and tasks.
package project

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/stage"
)

// CreateOpts holds parameters for creating a project. A nil Stages list
// seeds the default Pending / In Progress / Completed columns.
type CreateOpts struct {
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	Stages      []stage.SeedStage
}

// Update is a partial project update.
type Update struct {
	Name        models.Opt[string]
	Description models.Opt[string]
	StartDate   models.Opt[*time.Time]
	EndDate     models.Opt[*time.Time]
}

// Empty reports whether no field is supplied.
func (u Update) Empty() bool {
	return !u.Name.Set && !u.Description.Set && !u.StartDate.Set && !u.EndDate.Set
}

// Create creates a project and its initial stages atomically.
func Create(db *gorm.DB, opts CreateOpts) (*models.Project, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("project: name is required: %w", models.ErrValidation)
	}

	seed := opts.Stages
	if seed == nil {
		seed = stage.DefaultSeed()
	}

	var created models.Project
	err := db.Transaction(func(tx *gorm.DB) error {
		id, err := models.NewID("prj")
		if err != nil {
			return err
		}
		created = models.Project{
			ID:          id,
			Name:        opts.Name,
			Description: opts.Description,
			StartDate:   opts.StartDate,
			EndDate:     opts.EndDate,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("project: create %q: %w", opts.Name, err)
		}
		return stage.Seed(tx, id, seed)
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Get retrieves a project by ID.
func Get(db *gorm.DB, id string) (*models.Project, error) {
	var p models.Project
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project: not found: %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("project: get %s: %w", id, err)
	}
	return &p, nil
}

// List returns all projects, newest first.
func List(db *gorm.DB) ([]models.Project, error) {
	var projects []models.Project
	if err := db.Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}
	return projects, nil
}

// Apply applies a partial update.
func Apply(db *gorm.DB, id string, upd Update) error {
	if upd.Empty() {
		return fmt.Errorf("project: no fields to update: %w", models.ErrValidation)
	}
	if _, err := Get(db, id); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if upd.Name.Set {
		if upd.Name.Value == "" {
			return fmt.Errorf("project: name cannot be blank: %w", models.ErrValidation)
		}
		updates["name"] = upd.Name.Value
	}
	if upd.Description.Set {
		updates["description"] = upd.Description.Value
	}
	if upd.StartDate.Set {
		updates["start_date"] = upd.StartDate.Value
	}
	if upd.EndDate.Set {
		updates["end_date"] = upd.EndDate.Value
	}

	if err := db.Model(&models.Project{}).Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("project: update %s: %w", id, err)
	}
	return nil
}

// Delete removes a project with all its stages and tasks.
func Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := Get(tx, id); err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("project: delete tasks of %s: %w", id, err)
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Stage{}).Error; err != nil {
			return fmt.Errorf("project: delete stages of %s: %w", id, err)
		}
		if err := tx.Delete(&models.Project{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("project: delete %s: %w", id, err)
		}
		return nil
	})
}
