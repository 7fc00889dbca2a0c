package models

import "time"

// Comment is attached to a project and/or a task. Both links are nullable
// independently, so a comment linked only to a project survives deletion
// of a task.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ProjectID *uint     `gorm:"index" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	TaskID    *uint     `gorm:"index" json:"task_id"`
	Task      *Task     `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	CreatedBy uint      `gorm:"index;not null" json:"created_by"`
	Author    *User     `gorm:"foreignKey:CreatedBy" json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }
