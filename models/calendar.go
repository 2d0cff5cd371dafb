package models

import (
	"time"

	"gorm.io/gorm"
)

// CalendarEventType classifies calendar events
type CalendarEventType string

const (
	EventTaskDeadline CalendarEventType = "TASK_DEADLINE"
	EventMilestone    CalendarEventType = "MILESTONE"
	EventSprintStart  CalendarEventType = "SPRINT_START"
	EventSprintEnd    CalendarEventType = "SPRINT_END"
	EventMeeting      CalendarEventType = "MEETING"
	EventOther        CalendarEventType = "OTHER"
)

// Valid reports whether t is one of the known event types.
func (t CalendarEventType) Valid() bool {
	switch t {
	case EventTaskDeadline, EventMilestone, EventSprintStart, EventSprintEnd, EventMeeting, EventOther:
		return true
	}
	return false
}

// ProjectCalendar is the single calendar attached to a project
type ProjectCalendar struct {
	gorm.Model

	ProjectID   uint   `gorm:"uniqueIndex;not null" json:"project_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	Events []CalendarEvent `gorm:"foreignKey:CalendarID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
}

// CalendarEvent is an entry in a project calendar, optionally linked to a task
// in the same project.
type CalendarEvent struct {
	gorm.Model

	CalendarID  uint              `gorm:"index;not null" json:"calendar_id"`
	Title       string            `gorm:"not null" json:"title"`
	Description string            `gorm:"type:text" json:"description"`
	EventType   CalendarEventType `gorm:"type:varchar(16);not null;default:'OTHER'" json:"event_type"`

	StartTime time.Time  `gorm:"not null" json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	AllDay    bool       `gorm:"default:false" json:"all_day"`
	Location  string     `json:"location"`

	TaskID    *uint `json:"task_id,omitempty"`
	CreatedBy uint  `gorm:"not null" json:"created_by"`
}
