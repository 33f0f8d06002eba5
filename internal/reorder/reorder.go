// Package reorder turns a client's settled drag result into position
// writes. The coordinator never computes drag geometry; it persists the
// final order it is handed, one bulk reassign per affected collection,
// inside a single transaction.
package reorder

import (
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/position"
	"github.com/corkboard/corkboard/internal/stage"
	"github.com/corkboard/corkboard/internal/task"
)

// StagePlacement is one entry of a stage-reorder request.
type StagePlacement struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}

// TaskPlacement is one entry of a task-reorder request. A task whose
// StageID differs from its stored stage is adopted by the new stage.
type TaskPlacement struct {
	ID       string `json:"id"`
	StageID  string `json:"status_id"`
	Position int    `json:"position"`
}

// Stages overwrites a project's stage order from the reorder dialog's
// final list. An empty list is a no-op success.
func Stages(db *gorm.DB, projectID string, placements []StagePlacement) error {
	if len(placements) == 0 {
		return nil
	}
	ordered := make([]StagePlacement, len(placements))
	copy(ordered, placements)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})
	ids := make([]string, len(ordered))
	for i, p := range ordered {
		ids[i] = p.ID
	}
	return stage.Reorder(db, projectID, ids)
}

// Tasks overwrites the ordering of every stage a drag touched. Same-stage
// and cross-stage drops take the same path: per stage, the supplied final
// id list is reassigned dense from zero, and a task listed under a new
// stage changes stage as part of the same write.
func Tasks(db *gorm.DB, placements []TaskPlacement) error {
	if len(placements) == 0 {
		return nil
	}

	perStage := map[string][]TaskPlacement{}
	stageIDs := []string{}
	seenTask := map[string]bool{}
	for _, p := range placements {
		// A task listed twice would be repacked by one stage and then
		// adopted by another, leaving the first stage non-dense.
		if seenTask[p.ID] {
			return fmt.Errorf("reorder: task %s listed more than once: %w",
				p.ID, models.ErrValidation)
		}
		seenTask[p.ID] = true
		if _, seen := perStage[p.StageID]; !seen {
			stageIDs = append(stageIDs, p.StageID)
		}
		perStage[p.StageID] = append(perStage[p.StageID], p)
	}
	sort.Strings(stageIDs) // fixed lock order

	return db.Transaction(func(tx *gorm.DB) error {
		project := ""
		for _, id := range stageIDs {
			st, err := stage.Get(tx, id)
			if err != nil {
				return err
			}
			if project == "" {
				project = st.ProjectID
			} else if st.ProjectID != project {
				return fmt.Errorf("reorder: stages %v span projects: %w",
					stageIDs, models.ErrValidation)
			}
			if err := position.LockParent(tx, "stages", id); err != nil {
				return err
			}
		}

		for _, stageID := range stageIDs {
			group := perStage[stageID]
			sort.SliceStable(group, func(i, j int) bool {
				return group[i].Position < group[j].Position
			})
			ids := make([]string, len(group))
			for i, p := range group {
				t, err := task.Get(tx, p.ID)
				if err != nil {
					return err
				}
				if t.Subtask() {
					return fmt.Errorf("reorder: %s is a subtask: %w",
						p.ID, models.ErrValidation)
				}
				if t.ProjectID != project {
					return fmt.Errorf("reorder: task %s belongs to another project: %w",
						p.ID, models.ErrValidation)
				}
				ids[i] = p.ID
			}
			if err := position.Tasks.Reassign(tx, stageID, ids); err != nil {
				return err
			}
		}
		return nil
	})
}
