package task

import (
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/position"
	"github.com/corkboard/corkboard/internal/stage"
)

// MoveStatus moves a task to another stage of its project. For a top-level
// task the source gap is closed and the task appends at the destination's
// end in the same transaction, so positions stay dense on both sides. For
// a subtask only the stage field changes.
func MoveStatus(db *gorm.DB, taskID, destStageID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		t, err := Get(tx, taskID)
		if err != nil {
			return err
		}
		dest, err := stage.Get(tx, destStageID)
		if err != nil {
			return err
		}
		if dest.ProjectID != t.ProjectID {
			return fmt.Errorf("task: stage %s belongs to another project: %w",
				destStageID, models.ErrValidation)
		}
		if t.StageID == destStageID {
			return nil
		}

		if t.Subtask() {
			if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
				Update("stage_id", destStageID).Error; err != nil {
				return fmt.Errorf("task: move subtask %s: %w", taskID, err)
			}
			return nil
		}

		// Lock both stages in a fixed order so two opposing moves
		// cannot deadlock.
		for _, id := range lockOrder(t.StageID, destStageID) {
			if err := position.LockParent(tx, "stages", id); err != nil {
				return err
			}
		}

		count, err := position.Tasks.Count(tx, destStageID)
		if err != nil {
			return err
		}
		newPos := position.Tasks.Base + count

		oldStage, oldPos := t.StageID, 0
		if t.Position != nil {
			oldPos = *t.Position
		}
		if err := tx.Model(&models.Task{}).Where("id = ?", taskID).
			Updates(map[string]interface{}{
				"stage_id": destStageID,
				"position": newPos,
			}).Error; err != nil {
			return fmt.Errorf("task: move %s to %s: %w", taskID, destStageID, err)
		}
		return position.Tasks.CloseGap(tx, oldStage, oldPos)
	})
}

// MoveNext moves a task to the stage immediately after its current one in
// project order. Used as the one-click done/advance toggle.
func MoveNext(db *gorm.DB, taskID string) error {
	t, err := Get(db, taskID)
	if err != nil {
		return err
	}
	stages, err := stage.List(db, t.ProjectID)
	if err != nil {
		return err
	}
	next := stage.NextStage(stages, t.StageID)
	if next == nil {
		return fmt.Errorf("task: %s is already in the last stage: %w",
			taskID, models.ErrValidation)
	}
	return MoveStatus(db, taskID, next.ID)
}

func lockOrder(a, b string) []string {
	ids := []string{a, b}
	sort.Strings(ids)
	return ids
}
