package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrTrackingStopped is returned when a time entry is stopped a second time.
var ErrTrackingStopped = errors.New("time tracking is already stopped")

// TimeTracking records time a user spent on a task. EndTime is nil while the
// entry is running; setting it is a one-way transition.
type TimeTracking struct {
	gorm.Model

	TaskID      uint   `gorm:"index;not null" json:"task_id"`
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	Description string `gorm:"type:text" json:"description"`

	StartTime time.Time  `gorm:"not null" json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// Running reports whether the entry is still open.
func (t *TimeTracking) Running() bool {
	return t.EndTime == nil
}

// Stop closes the entry at the given time, defaulting to now. Stopping an
// already-stopped entry is rejected.
func (t *TimeTracking) Stop(at *time.Time) error {
	if t.EndTime != nil {
		return ErrTrackingStopped
	}
	end := time.Now()
	if at != nil {
		end = *at
	}
	t.EndTime = &end
	return nil
}

// DurationMinutes is the tracked time in whole minutes, zero while running.
func (t *TimeTracking) DurationMinutes() int64 {
	if t.EndTime == nil {
		return 0
	}
	return int64(t.EndTime.Sub(t.StartTime) / time.Minute)
}
