package models

import "time"

// Project owns an ordered set of stages and, through them, tasks.
type Project struct {
	ID          string     `gorm:"primaryKey;size:32" json:"id"`
	Name        string     `gorm:"not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Stages []Stage `gorm:"foreignKey:ProjectID" json:"stages,omitempty"`
	Tasks  []Task  `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}
