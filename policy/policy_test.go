package policy

import (
	"testing"

	"teampulse/models"
)

func member(userID uint, role models.ProjectRole) *models.ProjectMember {
	return &models.ProjectMember{UserID: userID, Role: role, InvitationAccepted: true}
}

func TestCanManageProject(t *testing.T) {
	project := &models.Project{OwnerID: 1}

	if !CanManageProject(1, project) {
		t.Fatalf("owner should manage the project")
	}
	if CanManageProject(2, project) {
		t.Fatalf("non-owner must not manage the project")
	}
}

func TestCanReadProject(t *testing.T) {
	project := &models.Project{OwnerID: 1}

	cases := []struct {
		name    string
		actorID uint
		actor   Membership
		want    bool
	}{
		{"owner without member row", 1, nil, true},
		{"plain member", 2, member(2, models.RoleMember), true},
		{"admin member", 3, member(3, models.RoleAdmin), true},
		{"outsider", 4, nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanReadProject(tc.actorID, project, tc.actor); got != tc.want {
				t.Fatalf("CanReadProject = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanManageMembers(t *testing.T) {
	project := &models.Project{OwnerID: 1}

	if !CanManageMembers(1, project, nil) {
		t.Fatalf("owner should manage members")
	}
	if !CanManageMembers(2, project, member(2, models.RoleAdmin)) {
		t.Fatalf("admin should manage members")
	}
	if CanManageMembers(3, project, member(3, models.RoleMember)) {
		t.Fatalf("plain member must not manage members")
	}
	if CanManageMembers(4, project, nil) {
		t.Fatalf("outsider must not manage members")
	}
}

func TestCanRemoveMember(t *testing.T) {
	project := &models.Project{OwnerID: 1}
	ownerRow := member(1, models.RoleOwner)
	admin := member(2, models.RoleAdmin)
	otherAdmin := member(3, models.RoleAdmin)
	plain := member(4, models.RoleMember)

	if !CanRemoveMember(1, project, nil, otherAdmin) {
		t.Fatalf("owner should remove an admin")
	}
	if !CanRemoveMember(2, project, admin, plain) {
		t.Fatalf("admin should remove a plain member")
	}
	if CanRemoveMember(2, project, admin, otherAdmin) {
		t.Fatalf("admin must not remove another admin")
	}
	if CanRemoveMember(2, project, admin, ownerRow) {
		t.Fatalf("the owner's row must never be removable")
	}
	if CanRemoveMember(1, project, nil, ownerRow) {
		t.Fatalf("even the owner cannot remove their own row")
	}
	if CanRemoveMember(4, project, plain, otherAdmin) {
		t.Fatalf("plain member must not remove anyone")
	}
	if CanRemoveMember(2, project, admin, nil) {
		t.Fatalf("removing a missing member row must be rejected")
	}
}

func TestCanGrantRole(t *testing.T) {
	project := &models.Project{OwnerID: 1}
	admin := member(2, models.RoleAdmin)

	if !CanGrantRole(1, project, nil, models.RoleOwner) {
		t.Fatalf("owner should grant OWNER")
	}
	if CanGrantRole(2, project, admin, models.RoleOwner) {
		t.Fatalf("admin must not grant OWNER")
	}
	if !CanGrantRole(2, project, admin, models.RoleAdmin) {
		t.Fatalf("admin should grant ADMIN")
	}
	if !CanGrantRole(2, project, admin, models.RoleMember) {
		t.Fatalf("admin should grant MEMBER")
	}
	if CanGrantRole(3, project, member(3, models.RoleMember), models.RoleMember) {
		t.Fatalf("plain member must not grant roles")
	}
}

func TestCanModifyTask(t *testing.T) {
	project := &models.Project{OwnerID: 1}
	assignee := uint(5)
	task := &models.Task{CreatorID: 4, AssigneeID: &assignee}

	if !CanModifyTask(4, project, member(4, models.RoleMember), task) {
		t.Fatalf("creator should modify the task")
	}
	if !CanModifyTask(5, project, member(5, models.RoleMember), task) {
		t.Fatalf("assignee should modify the task")
	}
	if !CanModifyTask(1, project, nil, task) {
		t.Fatalf("owner should modify any task")
	}
	if !CanModifyTask(2, project, member(2, models.RoleAdmin), task) {
		t.Fatalf("admin should modify any task")
	}
	if CanModifyTask(6, project, member(6, models.RoleMember), task) {
		t.Fatalf("unrelated member must not modify the task")
	}
}

func TestCanModifyEvent(t *testing.T) {
	project := &models.Project{OwnerID: 1}
	event := &models.CalendarEvent{CreatedBy: 4}

	if !CanModifyEvent(4, project, member(4, models.RoleMember), event) {
		t.Fatalf("creator should modify the event")
	}
	if !CanModifyEvent(1, project, nil, event) {
		t.Fatalf("owner should modify any event")
	}
	if !CanModifyEvent(2, project, member(2, models.RoleAdmin), event) {
		t.Fatalf("admin should modify any event")
	}
	if CanModifyEvent(6, project, member(6, models.RoleMember), event) {
		t.Fatalf("unrelated member must not modify the event")
	}
}

func TestCanControlTimeEntry(t *testing.T) {
	project := &models.Project{OwnerID: 1}
	entry := &models.TimeTracking{UserID: 4}

	if !CanControlTimeEntry(4, project, member(4, models.RoleMember), entry) {
		t.Fatalf("the user who started the entry should control it")
	}
	if !CanControlTimeEntry(1, project, nil, entry) {
		t.Fatalf("owner should control any entry")
	}
	if !CanControlTimeEntry(2, project, member(2, models.RoleAdmin), entry) {
		t.Fatalf("admin should control any entry")
	}
	if CanControlTimeEntry(6, project, member(6, models.RoleMember), entry) {
		t.Fatalf("unrelated member must not control the entry")
	}
}

func TestCanLeaveProject(t *testing.T) {
	project := &models.Project{OwnerID: 1}

	if CanLeaveProject(1, project, member(1, models.RoleOwner)) {
		t.Fatalf("owner must not leave without transferring ownership")
	}
	if !CanLeaveProject(2, project, member(2, models.RoleMember)) {
		t.Fatalf("member should be able to leave")
	}
	if CanLeaveProject(3, project, nil) {
		t.Fatalf("outsider has nothing to leave")
	}
}
