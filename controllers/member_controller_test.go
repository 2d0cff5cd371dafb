package controller

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"teampulse/client"
	"teampulse/models"
)

func memberRoutes(db *gorm.DB) func(app *fiber.App) {
	mc := NewMemberController(db, client.NewUserClient("http://127.0.0.1:1", client.StrictExists), testLogger())
	return func(app *fiber.App) {
		app.Put("/projects/:projectId/members/:userId/role", mc.UpdateMemberRole)
		app.Delete("/projects/:projectId/members/:userId", mc.RemoveMember)
	}
}

// Granting OWNER reassigns the project and demotes the previous owner to an
// accepted ADMIN row, all visible after the transaction.
func TestOwnershipTransfer(t *testing.T) {
	db := newTestDB(t)

	project := models.Project{Name: "atlas", OwnerID: 1}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	target := models.ProjectMember{ProjectID: project.ID, UserID: 2, Role: models.RoleMember, InvitationAccepted: true}
	if err := db.Create(&target).Error; err != nil {
		t.Fatalf("create member: %v", err)
	}

	app := appAs(1, memberRoutes(db))
	url := fmt.Sprintf("/projects/%d/members/2/role", project.ID)
	resp, err := app.Test(jsonRequest(t, "PUT", url, UpdateRoleRequest{Role: models.RoleOwner}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var reloaded models.Project
	if err := db.First(&reloaded, project.ID).Error; err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if reloaded.OwnerID != 2 {
		t.Fatalf("owner_id = %d, want 2", reloaded.OwnerID)
	}

	var newOwner models.ProjectMember
	if err := db.Where("project_id = ? AND user_id = ?", project.ID, 2).First(&newOwner).Error; err != nil {
		t.Fatalf("reload target row: %v", err)
	}
	if newOwner.Role != models.RoleOwner {
		t.Fatalf("target role = %s, want OWNER", newOwner.Role)
	}

	var demoted models.ProjectMember
	if err := db.Where("project_id = ? AND user_id = ?", project.ID, 1).First(&demoted).Error; err != nil {
		t.Fatalf("previous owner should have a member row: %v", err)
	}
	if demoted.Role != models.RoleAdmin {
		t.Fatalf("previous owner role = %s, want ADMIN", demoted.Role)
	}
	if !demoted.InvitationAccepted {
		t.Fatalf("previous owner's row must be accepted")
	}
}

// A previous owner who already holds a member row keeps exactly one row, with
// its role rewritten to ADMIN.
func TestOwnershipTransferDemotesExistingRow(t *testing.T) {
	db := newTestDB(t)

	project := models.Project{Name: "atlas", OwnerID: 1}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	rows := []models.ProjectMember{
		{ProjectID: project.ID, UserID: 1, Role: models.RoleOwner, InvitationAccepted: true},
		{ProjectID: project.ID, UserID: 2, Role: models.RoleMember, InvitationAccepted: true},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("create members: %v", err)
	}

	app := appAs(1, memberRoutes(db))
	url := fmt.Sprintf("/projects/%d/members/2/role", project.ID)
	resp, err := app.Test(jsonRequest(t, "PUT", url, UpdateRoleRequest{Role: models.RoleOwner}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var count int64
	if err := db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, 1).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Fatalf("previous owner rows = %d, want exactly 1", count)
	}

	var demoted models.ProjectMember
	if err := db.Where("project_id = ? AND user_id = ?", project.ID, 1).First(&demoted).Error; err != nil {
		t.Fatalf("reload previous owner row: %v", err)
	}
	if demoted.Role != models.RoleAdmin {
		t.Fatalf("previous owner role = %s, want ADMIN", demoted.Role)
	}
}

// Only the current owner may transfer ownership; an ADMIN gets 403 and nothing
// changes.
func TestOwnershipTransferRejectedForAdmin(t *testing.T) {
	db := newTestDB(t)

	project := models.Project{Name: "atlas", OwnerID: 1}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	rows := []models.ProjectMember{
		{ProjectID: project.ID, UserID: 2, Role: models.RoleAdmin, InvitationAccepted: true},
		{ProjectID: project.ID, UserID: 3, Role: models.RoleMember, InvitationAccepted: true},
	}
	if err := db.Create(&rows).Error; err != nil {
		t.Fatalf("create members: %v", err)
	}

	app := appAs(2, memberRoutes(db))
	url := fmt.Sprintf("/projects/%d/members/3/role", project.ID)
	resp, err := app.Test(jsonRequest(t, "PUT", url, UpdateRoleRequest{Role: models.RoleOwner}))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}

	var reloaded models.Project
	if err := db.First(&reloaded, project.ID).Error; err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if reloaded.OwnerID != 1 {
		t.Fatalf("owner_id = %d, ownership must not move", reloaded.OwnerID)
	}
}

// An outsider removing a member is rejected on permission alone; whether the
// target is a member must not show through the status code.
func TestRemoveMemberPermissionCheckedFirst(t *testing.T) {
	db := newTestDB(t)

	project := models.Project{Name: "atlas", OwnerID: 1}
	if err := db.Create(&project).Error; err != nil {
		t.Fatalf("create project: %v", err)
	}
	member := models.ProjectMember{ProjectID: project.ID, UserID: 2, Role: models.RoleMember, InvitationAccepted: true}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("create member: %v", err)
	}

	app := appAs(9, memberRoutes(db))

	for _, targetID := range []int{2, 77} {
		url := fmt.Sprintf("/projects/%d/members/%d", project.ID, targetID)
		resp, err := app.Test(jsonRequest(t, "DELETE", url, nil))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		if resp.StatusCode != fiber.StatusForbidden {
			t.Fatalf("target %d: status = %d, want 403 for both existing and missing members", targetID, resp.StatusCode)
		}
	}
}
