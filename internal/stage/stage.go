// Package stage provides workflow-stage lifecycle operations: positioned
// creation, partial update, deletion with gap close, and the
// completed-stage uniqueness protocol.
package stage

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/position"
)

// Resolution is the caller's answer to a completed-stage conflict.
type Resolution string

const (
	// ResolveNone reports the conflict back to the caller.
	ResolveNone Resolution = ""
	// ResolveReplace clears the flag on the current holder first.
	ResolveReplace Resolution = "replace"
	// ResolveKeep proceeds with is_completed forced off.
	ResolveKeep Resolution = "keep"
)

// CompletedConflictError reports that another stage in the project already
// holds is_completed. The caller must resubmit with an explicit resolution.
type CompletedConflictError struct {
	HolderID   string
	HolderName string
}

func (e *CompletedConflictError) Error() string {
	return fmt.Sprintf("stage: completed stage already exists: %s (%s)", e.HolderName, e.HolderID)
}

// CreateOpts holds parameters for creating a stage.
type CreateOpts struct {
	ProjectID   string
	Name        string
	Position    *int // desired; nil appends at the end, out of range clamps
	IsCompleted bool
	IsPending   bool
	TaskLimit   *int
	Resolution  Resolution
}

// Update is a partial stage update. Only fields with Set apply; TaskLimit
// set to nil clears the limit.
type Update struct {
	Name        models.Opt[string]
	IsCompleted models.Opt[bool]
	IsPending   models.Opt[bool]
	TaskLimit   models.Opt[*int]
	Resolution  Resolution
}

// Empty reports whether no field is supplied.
func (u Update) Empty() bool {
	return !u.Name.Set && !u.IsCompleted.Set && !u.IsPending.Set && !u.TaskLimit.Set
}

// Create inserts a stage at the requested position, shifting later stages
// up. The shift and the insert commit together or not at all.
func Create(db *gorm.DB, opts CreateOpts) (*models.Stage, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("stage: name is required: %w", models.ErrValidation)
	}

	var created models.Stage
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := position.LockParent(tx, "projects", opts.ProjectID); err != nil {
			return err
		}

		isCompleted := opts.IsCompleted
		if isCompleted {
			resolved, err := resolveCompleted(tx, opts.ProjectID, "", opts.Resolution)
			if err != nil {
				return err
			}
			isCompleted = resolved
		}

		var desired int
		if opts.Position != nil {
			// Out-of-range values, 0 included, clamp inside InsertAt.
			desired = *opts.Position
		} else {
			count, err := position.Stages.Count(tx, opts.ProjectID)
			if err != nil {
				return err
			}
			desired = position.Stages.Base + count
		}
		pos, err := position.Stages.InsertAt(tx, opts.ProjectID, desired)
		if err != nil {
			return err
		}

		id, err := models.NewID("stg")
		if err != nil {
			return err
		}
		created = models.Stage{
			ID:          id,
			ProjectID:   opts.ProjectID,
			Name:        opts.Name,
			Position:    pos,
			IsCompleted: isCompleted,
			IsPending:   opts.IsPending,
			TaskLimit:   opts.TaskLimit,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("stage: create %q in %s: %w", opts.Name, opts.ProjectID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Get retrieves a stage by ID.
func Get(db *gorm.DB, id string) (*models.Stage, error) {
	var st models.Stage
	if err := db.Where("id = ?", id).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("stage: not found: %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("stage: get %s: %w", id, err)
	}
	return &st, nil
}

// List returns a project's stages ordered by position.
func List(db *gorm.DB, projectID string) ([]models.Stage, error) {
	var stages []models.Stage
	if err := db.Where("project_id = ?", projectID).
		Order("position ASC").Find(&stages).Error; err != nil {
		return nil, fmt.Errorf("stage: list for %s: %w", projectID, err)
	}
	return stages, nil
}

// Apply applies a partial update. Setting is_completed while another stage
// holds it runs the conflict protocol. An empty update is a validation
// failure.
func Apply(db *gorm.DB, id string, upd Update) error {
	if upd.Empty() {
		return fmt.Errorf("stage: no fields to update: %w", models.ErrValidation)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		st, err := Get(tx, id)
		if err != nil {
			return err
		}
		if err := position.LockParent(tx, "projects", st.ProjectID); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if upd.Name.Set {
			if upd.Name.Value == "" {
				return fmt.Errorf("stage: name cannot be blank: %w", models.ErrValidation)
			}
			updates["name"] = upd.Name.Value
		}
		if upd.IsCompleted.Set {
			want := upd.IsCompleted.Value
			if want {
				resolved, err := resolveCompleted(tx, st.ProjectID, st.ID, upd.Resolution)
				if err != nil {
					return err
				}
				want = resolved
			}
			updates["is_completed"] = want
		}
		if upd.IsPending.Set {
			updates["is_pending"] = upd.IsPending.Value
		}
		if upd.TaskLimit.Set {
			updates["task_limit"] = upd.TaskLimit.Value
		}

		if err := tx.Model(&models.Stage{}).Where("id = ?", id).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("stage: update %s: %w", id, err)
		}
		return nil
	})
}

// Delete removes a stage, its tasks and their subtasks, then closes the
// position gap. Delete-then-close-gap order is load-bearing.
func Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		st, err := Get(tx, id)
		if err != nil {
			return err
		}
		if err := position.LockParent(tx, "projects", st.ProjectID); err != nil {
			return err
		}

		// Subtasks of this stage's tasks may sit in other stages.
		sub := tx.Model(&models.Task{}).Select("id").Where("stage_id = ?", id)
		if err := tx.Where("parent_task_id IN (?)", sub).
			Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("stage: delete subtasks of %s: %w", id, err)
		}
		if err := tx.Where("stage_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("stage: delete tasks of %s: %w", id, err)
		}
		if err := tx.Delete(&models.Stage{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("stage: delete %s: %w", id, err)
		}
		return position.Stages.CloseGap(tx, st.ProjectID, st.Position)
	})
}

// Reorder overwrites the project's stage order from the supplied final id
// list. An empty list is a no-op success, since a reorder dialog may be
// opened and cancelled. Every listed stage must already belong to the
// project; Reassign adopts listed rows into the parent, so an unchecked
// foreign id would pull a stage out of its own project.
func Reorder(db *gorm.DB, projectID string, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := position.LockParent(tx, "projects", projectID); err != nil {
			return err
		}
		for _, id := range orderedIDs {
			st, err := Get(tx, id)
			if err != nil {
				return err
			}
			if st.ProjectID != projectID {
				return fmt.Errorf("stage: %s belongs to another project: %w",
					id, models.ErrValidation)
			}
		}
		return position.Stages.Reassign(tx, projectID, orderedIDs)
	})
}

// resolveCompleted runs the uniqueness protocol for an operation that wants
// is_completed on a stage other than excludeID. It returns the flag value
// the operation should proceed with.
func resolveCompleted(tx *gorm.DB, projectID, excludeID string, res Resolution) (bool, error) {
	holder, err := completedHolder(tx, projectID, excludeID)
	if err != nil {
		return false, err
	}
	if holder == nil {
		return true, nil
	}
	switch res {
	case ResolveReplace:
		if err := tx.Model(&models.Stage{}).Where("id = ?", holder.ID).
			Update("is_completed", false).Error; err != nil {
			return false, fmt.Errorf("stage: clear completed on %s: %w", holder.ID, err)
		}
		return true, nil
	case ResolveKeep:
		return false, nil
	default:
		return false, &CompletedConflictError{HolderID: holder.ID, HolderName: holder.Name}
	}
}

// completedHolder finds the stage holding is_completed in a project,
// excluding excludeID. Returns nil when no other stage holds it.
func completedHolder(tx *gorm.DB, projectID, excludeID string) (*models.Stage, error) {
	q := tx.Where("project_id = ? AND is_completed = ?", projectID, true)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var holder models.Stage
	result := q.Limit(1).Find(&holder)
	if result.Error != nil {
		return nil, fmt.Errorf("stage: find completed holder in %s: %w", projectID, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &holder, nil
}
