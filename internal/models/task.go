package models

import "time"

// Task is a work item. Top-level tasks carry a 0-based position dense
// within their stage; subtasks (ParentTaskID set) have a NULL position and
// never participate in ordering or limit counts.
type Task struct {
	ID           string    `gorm:"primaryKey;size:32" json:"id"`
	ProjectID    string    `gorm:"size:32;not null;index" json:"project_id"`
	StageID      string    `gorm:"size:32;not null;index" json:"status_id"`
	Position     *int      `json:"position,omitempty"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	IsPriority   bool      `gorm:"default:false" json:"is_priority"`
	ParentTaskID *string   `gorm:"size:32;index" json:"parent_task_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Parent   *Task  `gorm:"foreignKey:ParentTaskID" json:"-"`
	Subtasks []Task `gorm:"foreignKey:ParentTaskID" json:"subtasks,omitempty"`
}

// Subtask reports whether the task is excluded from positional bookkeeping.
func (t *Task) Subtask() bool {
	return t.ParentTaskID != nil
}
