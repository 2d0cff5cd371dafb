package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teampulse/apperrors"
	"teampulse/client"
	"teampulse/middleware"
	"teampulse/models"
	"teampulse/policy"
	"teampulse/utils"
)

type InviteMemberRequest struct {
	UserID uint               `json:"user_id" validate:"required"`
	Role   models.ProjectRole `json:"role"`
}

type UpdateRoleRequest struct {
	Role models.ProjectRole `json:"role" validate:"required"`
}

type MemberController struct {
	DB     *gorm.DB
	Users  *client.UserClient
	Logger *log.Logger
}

func NewMemberController(db *gorm.DB, users *client.UserClient, logger *log.Logger) *MemberController {
	return &MemberController{DB: db, Users: users, Logger: logger}
}

// InviteMember adds a pending member row. Only owner or ADMIN may invite.
func (mc *MemberController) InviteMember(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	var req InviteMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	if !role.Valid() || role == models.RoleOwner {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid role"))
	}

	project, err := loadProject(mc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(mc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanManageMembers(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("Only project owner or admin can invite members"))
	}

	exists, err := mc.Users.UserExists(c.Context(), req.UserID, middleware.TokenFromCtx(c))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	if !exists {
		return apperrors.Respond(c, apperrors.BadRequest("User does not exist"))
	}

	member := models.ProjectMember{
		ProjectID:          id,
		UserID:             req.UserID,
		Role:               role,
		InvitedBy:          &identity.UserID,
		InvitationAccepted: false,
	}

	// The (project_id, user_id) unique index is the duplicate check; racing
	// invitations lose here instead of in an application-level lookup.
	res := mc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&member)
	if res.Error != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to invite member"))
	}
	if res.RowsAffected == 0 {
		return apperrors.Respond(c, apperrors.BadRequest("User is already a member of this project"))
	}

	mc.Logger.Printf("user %d invited to project %d as %s by %d", req.UserID, id, role, identity.UserID)
	return c.Status(fiber.StatusCreated).JSON(member)
}

// GetMembers lists a project's member rows; any member or the owner may read.
func (mc *MemberController) GetMembers(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	project, err := loadProject(mc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(mc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanReadProject(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not a member of this project"))
	}

	var members []models.ProjectMember
	if err := mc.DB.Where("project_id = ?", id).Find(&members).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to list members"))
	}

	return c.JSON(members)
}

// AcceptInvitation marks the caller's pending invitation accepted. Accepting
// twice is rejected.
func (mc *MemberController) AcceptInvitation(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if _, err := loadProject(mc.DB, id); err != nil {
		return apperrors.Respond(c, err)
	}

	member, err := loadMembership(mc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	if member == nil {
		return apperrors.Respond(c, apperrors.BadRequest("No invitation found for this project"))
	}

	if err := member.Accept(); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invitation already accepted"))
	}

	if err := mc.DB.Save(member).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to accept invitation"))
	}

	return c.JSON(member)
}

// LeaveProject removes the caller's member row. The owner cannot leave.
func (mc *MemberController) LeaveProject(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	project, err := loadProject(mc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(mc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	if actor == nil {
		return apperrors.Respond(c, apperrors.BadRequest("User is not a member of this project"))
	}

	if !policy.CanLeaveProject(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.BadRequest("Project owner cannot leave the project. Transfer ownership first"))
	}

	if err := mc.DB.Delete(actor).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to leave project"))
	}

	mc.Logger.Printf("user %d left project %d", identity.UserID, id)
	return c.SendStatus(fiber.StatusNoContent)
}

// UpdateMemberRole changes a member's role. Granting OWNER transfers
// ownership: project.owner_id is reassigned and the previous owner's member
// row becomes ADMIN, in one transaction.
func (mc *MemberController) UpdateMemberRole(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	targetID, err := c.ParamsInt("userId")
	if err != nil || targetID <= 0 {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid user id"))
	}

	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}
	if !req.Role.Valid() {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid role"))
	}

	project, err := loadProject(mc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(mc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanManageMembers(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("Only project owner or admin can update member roles"))
	}
	if !policy.CanGrantRole(identity.UserID, project, actor, req.Role) {
		return apperrors.Respond(c, apperrors.Unauthorized("Only the current owner can transfer ownership"))
	}

	member, err := loadMembership(mc.DB, id, uint(targetID))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	if member == nil {
		return apperrors.Respond(c, apperrors.BadRequest("User is not a member of this project"))
	}

	err = mc.DB.Transaction(func(tx *gorm.DB) error {
		if req.Role == models.RoleOwner {
			previousOwner := project.OwnerID
			project.OwnerID = member.UserID
			if err := tx.Save(project).Error; err != nil {
				return err
			}

			// Demote the previous owner to ADMIN, creating the member row if
			// ownership predates the membership table.
			demoted := models.ProjectMember{
				ProjectID:          id,
				UserID:             previousOwner,
				Role:               models.RoleAdmin,
				InvitationAccepted: true,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
				DoUpdates: clause.Assignments(map[string]interface{}{"role": models.RoleAdmin}),
			}).Create(&demoted).Error; err != nil {
				return err
			}
		}

		member.Role = req.Role
		return tx.Save(member).Error
	})
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to update member role"))
	}

	mc.Logger.Printf("user %d role in project %d set to %s by %d", targetID, id, req.Role, identity.UserID)
	return c.JSON(member)
}

// RemoveMember deletes a member row. The owner's row cannot be removed, and
// an ADMIN cannot remove another ADMIN.
func (mc *MemberController) RemoveMember(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	targetID, err := c.ParamsInt("userId")
	if err != nil || targetID <= 0 {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid user id"))
	}

	project, err := loadProject(mc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(mc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	// Permission is decided before the target lookup so an unprivileged
	// caller cannot learn who is a member from the status code.
	if !policy.CanManageMembers(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("Only project owner or admin can remove members"))
	}

	target, err := loadMembership(mc.DB, id, uint(targetID))
	if err != nil {
		return apperrors.Respond(c, err)
	}
	if target == nil {
		return apperrors.Respond(c, apperrors.BadRequest("User is not a member of this project"))
	}

	if target.UserID == project.OwnerID {
		return apperrors.Respond(c, apperrors.BadRequest("Cannot remove the project owner"))
	}
	if !policy.CanRemoveMember(identity.UserID, project, actor, target) {
		return apperrors.Respond(c, apperrors.Unauthorized("Admin cannot remove another admin"))
	}

	if err := mc.DB.Delete(target).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to remove member"))
	}

	mc.Logger.Printf("user %d removed from project %d by %d", targetID, id, identity.UserID)
	return c.SendStatus(fiber.StatusNoContent)
}
