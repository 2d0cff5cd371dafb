package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"teampulse/apperrors"
	"teampulse/middleware"
	"teampulse/models"
	"teampulse/policy"
	"teampulse/utils"
)

type ProjectRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

type ProjectController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewProjectController(db *gorm.DB, logger *log.Logger) *ProjectController {
	return &ProjectController{DB: db, Logger: logger}
}

// loadProject fetches the project or reports NotFound.
func loadProject(db *gorm.DB, projectID uint) (*models.Project, error) {
	var project models.Project
	if err := db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Project not found")
		}
		return nil, apperrors.Internal("Failed to load project")
	}
	return &project, nil
}

// loadMembership returns the user's member row for the project, or nil when
// the user has none. Only the nil-ness and the role matter to the policy
// checks.
func loadMembership(db *gorm.DB, projectID, userID uint) (*models.ProjectMember, error) {
	var member models.ProjectMember
	err := db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.Internal("Failed to load membership")
	}
	return &member, nil
}

// projectID parses the :projectId route param.
func projectID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("projectId")
	if err != nil || id <= 0 {
		return 0, apperrors.BadRequest("Invalid project id")
	}
	return uint(id), nil
}

// CreateProject creates a project owned by the caller.
func (pc *ProjectController) CreateProject(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	var req ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		OwnerID:     identity.UserID,
	}

	if err := pc.DB.Create(&project).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to create project"))
	}

	pc.Logger.Printf("project %d created by user %d", project.ID, identity.UserID)
	return c.Status(fiber.StatusCreated).JSON(project)
}

// GetProjects lists projects the caller owns or is a member of.
func (pc *ProjectController) GetProjects(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	var projects []models.Project
	err := pc.DB.
		Where("owner_id = ?", identity.UserID).
		Or("id IN (?)", pc.DB.Model(&models.ProjectMember{}).
			Select("project_id").
			Where("user_id = ?", identity.UserID)).
		Find(&projects).Error
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to list projects"))
	}

	return c.JSON(projects)
}

// GetProject returns one project the caller may read.
func (pc *ProjectController) GetProject(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	project, err := loadProject(pc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	member, err := loadMembership(pc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanReadProject(identity.UserID, project, member) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not authorized to access this project"))
	}

	return c.JSON(project)
}

// UpdateProject updates name/description; owner only.
func (pc *ProjectController) UpdateProject(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	project, err := loadProject(pc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanManageProject(identity.UserID, project) {
		return apperrors.Respond(c, apperrors.Unauthorized("Only project owner can update the project"))
	}

	var req ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	project.Name = req.Name
	project.Description = req.Description

	if err := pc.DB.Save(project).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to update project"))
	}

	return c.JSON(project)
}

// DeleteProject removes the project and its owned rows; owner only.
func (pc *ProjectController) DeleteProject(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	project, err := loadProject(pc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanManageProject(identity.UserID, project) {
		return apperrors.Respond(c, apperrors.Unauthorized("Only project owner can delete the project"))
	}

	if err := pc.DB.Select("Tasks", "Members", "Calendar").Delete(project).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to delete project"))
	}

	pc.Logger.Printf("project %d deleted by user %d", id, identity.UserID)
	return c.SendStatus(fiber.StatusNoContent)
}
