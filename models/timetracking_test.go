package models

import (
	"errors"
	"testing"
	"time"
)

func TestStopTracking(t *testing.T) {
	start := time.Now().Add(-90 * time.Minute)
	entry := &TimeTracking{TaskID: 1, UserID: 2, StartTime: start}

	if !entry.Running() {
		t.Fatalf("fresh entry should be running")
	}
	if entry.DurationMinutes() != 0 {
		t.Fatalf("running entry duration must be 0")
	}

	end := start.Add(90 * time.Minute)
	if err := entry.Stop(&end); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if entry.Running() {
		t.Fatalf("stopped entry must not be running")
	}
	if got := entry.DurationMinutes(); got != 90 {
		t.Fatalf("DurationMinutes = %d, want 90", got)
	}

	err := entry.Stop(nil)
	if !errors.Is(err, ErrTrackingStopped) {
		t.Fatalf("second Stop = %v, want ErrTrackingStopped", err)
	}
}

func TestStopTrackingDefaultsToNow(t *testing.T) {
	entry := &TimeTracking{TaskID: 1, UserID: 2, StartTime: time.Now().Add(-5 * time.Minute)}

	if err := entry.Stop(nil); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if entry.EndTime == nil {
		t.Fatalf("EndTime should be set")
	}
	if time.Since(*entry.EndTime) > time.Minute {
		t.Fatalf("EndTime should default to roughly now")
	}
}

func TestActivationTokenExpired(t *testing.T) {
	fresh := &ActivationToken{ExpiresAt: time.Now().Add(10 * time.Minute)}
	if fresh.Expired() {
		t.Fatalf("future expiry must not be expired")
	}

	stale := &ActivationToken{ExpiresAt: time.Now().Add(-1 * time.Minute)}
	if !stale.Expired() {
		t.Fatalf("past expiry must be expired")
	}
}

func TestPasswordResetTokenUsable(t *testing.T) {
	valid := &PasswordResetToken{ExpiresAt: time.Now().Add(time.Hour)}
	if !valid.Usable() {
		t.Fatalf("fresh token should be usable")
	}

	used := &PasswordResetToken{ExpiresAt: time.Now().Add(time.Hour), Used: true}
	if used.Usable() {
		t.Fatalf("used token must not be usable")
	}

	expired := &PasswordResetToken{ExpiresAt: time.Now().Add(-time.Hour)}
	if expired.Usable() {
		t.Fatalf("expired token must not be usable")
	}
}
