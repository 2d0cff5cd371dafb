package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// ProjectRole is the privilege level a member holds within a project
type ProjectRole string

const (
	RoleOwner     ProjectRole = "OWNER"
	RoleAdmin     ProjectRole = "ADMIN"
	RoleManager   ProjectRole = "MANAGER"
	RoleDeveloper ProjectRole = "DEVELOPER"
	RoleQA        ProjectRole = "QA"
	RoleMember    ProjectRole = "MEMBER"
)

// Valid reports whether r is one of the known project roles.
func (r ProjectRole) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleDeveloper, RoleQA, RoleMember:
		return true
	}
	return false
}

// Project is the aggregate root for tasks, members and the calendar
type Project struct {
	gorm.Model

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	OwnerID     uint   `gorm:"index;not null" json:"owner_id"`

	Tasks    []Task           `gorm:"constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
	Members  []ProjectMember  `gorm:"constraint:OnDelete:CASCADE" json:"members,omitempty"`
	Calendar *ProjectCalendar `gorm:"constraint:OnDelete:CASCADE" json:"calendar,omitempty"`
}

// ProjectMember links a user to a project with a role. The (project_id, user_id)
// pair is unique; concurrent invitations for the same user are serialized by the
// database constraint, not by application checks.
type ProjectMember struct {
	gorm.Model

	ProjectID uint        `gorm:"not null;uniqueIndex:idx_project_user" json:"project_id"`
	UserID    uint        `gorm:"not null;uniqueIndex:idx_project_user" json:"user_id"`
	Role      ProjectRole `gorm:"type:varchar(16);not null;default:'MEMBER'" json:"role"`

	JoinedAt           time.Time `gorm:"not null;autoCreateTime" json:"joined_at"`
	InvitedBy          *uint     `json:"invited_by,omitempty"`
	InvitationAccepted bool      `gorm:"default:false" json:"invitation_accepted"`
}

var (
	// ErrInvitationAccepted is returned when an already-accepted invitation is
	// accepted again.
	ErrInvitationAccepted = errors.New("invitation already accepted")
)

// Accept moves a pending invitation to the accepted state. Accepting twice is
// rejected; the transition fires exactly once.
func (m *ProjectMember) Accept() error {
	if m.InvitationAccepted {
		return ErrInvitationAccepted
	}
	m.InvitationAccepted = true
	return nil
}
