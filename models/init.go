package models

import "gorm.io/gorm"

// MigrateAuthDB creates the identity-service tables.
func MigrateAuthDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&UserProfile{},
		&ActivationToken{},
		&PasswordResetToken{},
	)
}

// MigrateProjectDB creates the project-service tables.
func MigrateProjectDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&Project{},
		&ProjectMember{},
		&Task{},
		&ProjectCalendar{},
		&CalendarEvent{},
		&TimeTracking{},
	)
}
