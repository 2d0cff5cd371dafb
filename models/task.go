package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusReview     TaskStatus = "REVIEW"
	StatusDone       TaskStatus = "DONE"
)

// Valid reports whether s is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// TaskPriority is the urgency level of a task
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
	PriorityUrgent TaskPriority = "URGENT"
)

// Valid reports whether p is one of the known task priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task belongs to exactly one project and may reference a parent task in the
// same project, forming a tree.
type Task struct {
	gorm.Model

	ProjectID   uint   `gorm:"index;not null" json:"project_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	CreatorID   uint   `gorm:"not null" json:"creator_id"`

	AssigneeID     *uint        `json:"assignee_id,omitempty"`
	Status         TaskStatus   `gorm:"type:varchar(16);not null;default:'TODO'" json:"status"`
	Priority       TaskPriority `gorm:"type:varchar(16);not null;default:'MEDIUM'" json:"priority"`
	Deadline       *time.Time   `json:"deadline,omitempty"`
	EstimatedHours *int         `json:"estimated_hours,omitempty"`

	ParentTaskID *uint  `gorm:"index" json:"parent_task_id,omitempty"`
	Subtasks     []Task `gorm:"foreignKey:ParentTaskID" json:"subtasks,omitempty"`
}
