// Package task provides task lifecycle operations. Top-level tasks hold a
// 0-based dense position within their stage; subtasks sit outside the
// ordering entirely and only use their stage to express done/not done.
package task

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/position"
	"github.com/corkboard/corkboard/internal/stage"
)

// CreateOpts holds parameters for creating a task. An empty StageID lands
// the task in the project's pending stage. A non-empty ParentTaskID
// creates a subtask.
type CreateOpts struct {
	ProjectID    string
	StageID      string
	Title        string
	Description  string
	IsPriority   bool
	ParentTaskID string
}

// Update is a partial task update.
type Update struct {
	Title       models.Opt[string]
	Description models.Opt[string]
	IsPriority  models.Opt[bool]
}

// Empty reports whether no field is supplied.
func (u Update) Empty() bool {
	return !u.Title.Set && !u.Description.Set && !u.IsPriority.Set
}

// Create creates a task. Top-level tasks append at the end of their
// stage's sequence; subtasks receive no position and inherit the parent's
// stage unless one is supplied.
func Create(db *gorm.DB, opts CreateOpts) (*models.Task, error) {
	if opts.Title == "" {
		return nil, fmt.Errorf("task: title is required: %w", models.ErrValidation)
	}

	var created models.Task
	err := db.Transaction(func(tx *gorm.DB) error {
		id, err := models.NewID("tsk")
		if err != nil {
			return err
		}
		created = models.Task{
			ID:          id,
			ProjectID:   opts.ProjectID,
			StageID:     opts.StageID,
			Title:       opts.Title,
			Description: opts.Description,
			IsPriority:  opts.IsPriority,
		}

		if opts.ParentTaskID != "" {
			parent, err := Get(tx, opts.ParentTaskID)
			if err != nil {
				return err
			}
			if parent.Subtask() {
				return fmt.Errorf("task: %s is a subtask and cannot have children: %w",
					opts.ParentTaskID, models.ErrValidation)
			}
			created.ParentTaskID = &parent.ID
			created.ProjectID = parent.ProjectID
			if created.StageID == "" {
				created.StageID = parent.StageID
			}
			if err := tx.Create(&created).Error; err != nil {
				return fmt.Errorf("task: create subtask of %s: %w", parent.ID, err)
			}
			return nil
		}

		if created.StageID == "" {
			stages, err := stage.List(tx, opts.ProjectID)
			if err != nil {
				return err
			}
			landing := stage.PendingStage(stages)
			if landing == nil {
				return fmt.Errorf("task: project %s has no stages: %w",
					opts.ProjectID, gorm.ErrRecordNotFound)
			}
			created.StageID = landing.ID
		} else {
			st, err := stage.Get(tx, created.StageID)
			if err != nil {
				return err
			}
			if created.ProjectID == "" {
				created.ProjectID = st.ProjectID
			} else if created.ProjectID != st.ProjectID {
				return fmt.Errorf("task: stage %s belongs to another project: %w",
					created.StageID, models.ErrValidation)
			}
		}

		if err := position.LockParent(tx, "stages", created.StageID); err != nil {
			return err
		}
		count, err := position.Tasks.Count(tx, created.StageID)
		if err != nil {
			return err
		}
		pos := position.Tasks.Base + count
		created.Position = &pos

		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("task: create %q in %s: %w", opts.Title, created.StageID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Get retrieves a task by ID.
func Get(db *gorm.DB, id string) (*models.Task, error) {
	var t models.Task
	if err := db.Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task: not found: %s: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("task: get %s: %w", id, err)
	}
	return &t, nil
}

// Apply applies a partial update to a task's own fields. Stage and
// position moves go through MoveStatus or reorder.Tasks.
func Apply(db *gorm.DB, id string, upd Update) error {
	if upd.Empty() {
		return fmt.Errorf("task: no fields to update: %w", models.ErrValidation)
	}
	if _, err := Get(db, id); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	if upd.Title.Set {
		if upd.Title.Value == "" {
			return fmt.Errorf("task: title cannot be blank: %w", models.ErrValidation)
		}
		updates["title"] = upd.Title.Value
	}
	if upd.Description.Set {
		updates["description"] = upd.Description.Value
	}
	if upd.IsPriority.Set {
		updates["is_priority"] = upd.IsPriority.Value
	}

	if err := db.Model(&models.Task{}).Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("task: update %s: %w", id, err)
	}
	return nil
}

// Delete removes a task and its subtasks, then closes the position gap in
// its stage. Subtask deletion leaves positions untouched.
func Delete(db *gorm.DB, id string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		t, err := Get(tx, id)
		if err != nil {
			return err
		}
		if !t.Subtask() {
			if err := position.LockParent(tx, "stages", t.StageID); err != nil {
				return err
			}
		}
		if err := tx.Where("parent_task_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return fmt.Errorf("task: delete subtasks of %s: %w", id, err)
		}
		if err := tx.Delete(&models.Task{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("task: delete %s: %w", id, err)
		}
		if t.Subtask() || t.Position == nil {
			return nil
		}
		return position.Tasks.CloseGap(tx, t.StageID, *t.Position)
	})
}

// ListByProject returns a project's top-level tasks ordered by stage
// position, then task position with a stable id tie-break.
func ListByProject(db *gorm.DB, projectID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := db.Model(&models.Task{}).
		Joins("JOIN stages ON stages.id = tasks.stage_id").
		Where("tasks.project_id = ? AND tasks.parent_task_id IS NULL", projectID).
		Order("stages.position ASC, tasks.position ASC, tasks.id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list for project %s: %w", projectID, err)
	}
	return tasks, nil
}

// ListByStage returns a stage's top-level tasks in position order.
func ListByStage(db *gorm.DB, stageID string) ([]models.Task, error) {
	var tasks []models.Task
	if err := db.Where("stage_id = ? AND parent_task_id IS NULL", stageID).
		Order("position ASC, id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list for stage %s: %w", stageID, err)
	}
	return tasks, nil
}

// ListSubtasks returns a task's subtasks in creation order.
func ListSubtasks(db *gorm.DB, parentID string) ([]models.Task, error) {
	if _, err := Get(db, parentID); err != nil {
		return nil, err
	}
	var subtasks []models.Task
	if err := db.Where("parent_task_id = ?", parentID).
		Order("created_at ASC, id ASC").Find(&subtasks).Error; err != nil {
		return nil, fmt.Errorf("task: list subtasks of %s: %w", parentID, err)
	}
	return subtasks, nil
}
