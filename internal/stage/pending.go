package stage

import "github.com/corkboard/corkboard/internal/models"

// PendingStage resolves the landing stage for new tasks from a stage list
// ordered by position: the first stage flagged is_pending, else the first
// non-completed stage, else the first stage, else nil for an empty list.
// This is the one place that fallback order lives.
func PendingStage(stages []models.Stage) *models.Stage {
	for i := range stages {
		if stages[i].IsPending {
			return &stages[i]
		}
	}
	for i := range stages {
		if !stages[i].IsCompleted {
			return &stages[i]
		}
	}
	if len(stages) > 0 {
		return &stages[0]
	}
	return nil
}

// NextStage returns the stage immediately after current in project order,
// or nil when current is last or absent.
func NextStage(stages []models.Stage, currentID string) *models.Stage {
	for i := range stages {
		if stages[i].ID == currentID && i+1 < len(stages) {
			return &stages[i+1]
		}
	}
	return nil
}
