// Package policy holds the project authorization rules shared by every entity
// type in the project service. Decisions are pure functions over the actor id,
// the project's owner id and the relevant member rows; no I/O happens here so
// the rules are testable in isolation.
package policy

import "teampulse/models"

// Membership is the actor's member row, or nil when the actor has none.
type Membership = *models.ProjectMember

func isAdmin(m Membership) bool {
	return m != nil && m.Role == models.RoleAdmin
}

// IsOwner reports whether the actor owns the project.
func IsOwner(actorID uint, project *models.Project) bool {
	return project.OwnerID == actorID
}

// CanManageProject gates project update and delete: owner only.
func CanManageProject(actorID uint, project *models.Project) bool {
	return IsOwner(actorID, project)
}

// CanReadProject gates every read on the project aggregate: owner or any
// member. Membership existence is sufficient; the role does not gate reads.
func CanReadProject(actorID uint, project *models.Project, actor Membership) bool {
	return IsOwner(actorID, project) || actor != nil
}

// CanContribute gates task creation, calendar events and starting time
// tracking: owner or any member, no role distinction.
func CanContribute(actorID uint, project *models.Project, actor Membership) bool {
	return CanReadProject(actorID, project, actor)
}

// CanManageMembers gates inviting members and changing roles: owner or ADMIN.
func CanManageMembers(actorID uint, project *models.Project, actor Membership) bool {
	return IsOwner(actorID, project) || isAdmin(actor)
}

// CanRemoveMember applies the member-removal rules: the actor must be owner or
// ADMIN, the owner's row can never be removed, and an ADMIN may not remove
// another ADMIN.
func CanRemoveMember(actorID uint, project *models.Project, actor, target Membership) bool {
	if !CanManageMembers(actorID, project, actor) {
		return false
	}
	if target == nil {
		return false
	}
	if target.UserID == project.OwnerID {
		return false
	}
	if !IsOwner(actorID, project) && target.Role == models.RoleAdmin {
		return false
	}
	return true
}

// CanGrantRole reports whether the actor may set the target role. Granting
// OWNER (ownership transfer) is reserved to the current owner.
func CanGrantRole(actorID uint, project *models.Project, actor Membership, role models.ProjectRole) bool {
	if !CanManageMembers(actorID, project, actor) {
		return false
	}
	if role == models.RoleOwner {
		return IsOwner(actorID, project)
	}
	return true
}

// CanModifyTask gates task update and delete: creator, assignee, owner or
// ADMIN.
func CanModifyTask(actorID uint, project *models.Project, actor Membership, task *models.Task) bool {
	if task.CreatorID == actorID {
		return true
	}
	if task.AssigneeID != nil && *task.AssigneeID == actorID {
		return true
	}
	return IsOwner(actorID, project) || isAdmin(actor)
}

// CanModifyEvent gates calendar-event update and delete: creator, owner or
// ADMIN.
func CanModifyEvent(actorID uint, project *models.Project, actor Membership, event *models.CalendarEvent) bool {
	if event.CreatedBy == actorID {
		return true
	}
	return IsOwner(actorID, project) || isAdmin(actor)
}

// CanControlTimeEntry gates stopping and deleting a time entry: the user who
// started it, or owner/ADMIN.
func CanControlTimeEntry(actorID uint, project *models.Project, actor Membership, entry *models.TimeTracking) bool {
	if entry.UserID == actorID {
		return true
	}
	return IsOwner(actorID, project) || isAdmin(actor)
}

// CanLeaveProject gates the leave operation: any member except the owner, who
// must transfer ownership first.
func CanLeaveProject(actorID uint, project *models.Project, actor Membership) bool {
	return actor != nil && !IsOwner(actorID, project)
}
