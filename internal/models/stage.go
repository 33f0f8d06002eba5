package models

import "time"

// Stage is a workflow column within a project. Positions are 1-based and
// dense per project. At most one stage per project carries IsCompleted.
type Stage struct {
	ID          string    `gorm:"primaryKey;size:32" json:"id"`
	ProjectID   string    `gorm:"size:32;not null;index" json:"project_id"`
	Name        string    `gorm:"not null" json:"name"`
	Position    int       `gorm:"not null;index" json:"position"`
	IsCompleted bool      `gorm:"default:false" json:"is_completed"`
	IsPending   bool      `gorm:"default:false" json:"is_pending"`
	TaskLimit   *int      `json:"task_limit,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Tasks []Task `gorm:"foreignKey:StageID" json:"tasks,omitempty"`
}
