package stage

import (
	"gorm.io/gorm"

	"github.com/corkboard/corkboard/internal/position"
)

// LimitStatus is the advisory task-limit report for one stage. The limit
// is never enforced; Over only tells the caller to surface a warning.
type LimitStatus struct {
	Count int  `json:"count"`
	Limit *int `json:"limit,omitempty"`
	Over  bool `json:"over"`
}

// CheckLimit compares a stage's live top-level task count to its stored
// limit. Subtasks never count.
func CheckLimit(db *gorm.DB, stageID string) (*LimitStatus, error) {
	st, err := Get(db, stageID)
	if err != nil {
		return nil, err
	}
	count, err := position.Tasks.Count(db, stageID)
	if err != nil {
		return nil, err
	}
	status := &LimitStatus{Count: count, Limit: st.TaskLimit}
	if st.TaskLimit != nil && count > *st.TaskLimit {
		status.Over = true
	}
	return status, nil
}
