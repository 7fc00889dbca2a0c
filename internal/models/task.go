package models

import "time"

// TaskStatus is the closed set of task states.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists every valid status value.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone}

// Valid reports whether s is one of the three known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Points returns the progress points a task in this status contributes
// to its project's progress score.
func (s TaskStatus) Points() int {
	switch s {
	case TaskStatusInProgress:
		return 5
	case TaskStatusDone:
		return 10
	default:
		return 0
	}
}

// Task belongs to exactly one project and has at most one assignee.
// Deleting the creating user removes their tasks; deleting the assignee
// only clears the assignment.
type Task struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null;uniqueIndex:idx_tasks_title_project" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"size:50;default:TODO" json:"status"`
	ProjectID   uint       `gorm:"not null;uniqueIndex:idx_tasks_title_project" json:"project_id"`
	Project     *Project   `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	AssignedTo  *uint      `gorm:"index" json:"assigned_to"`
	Assignee    *User      `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	CreatedBy   uint       `gorm:"index;not null" json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }
