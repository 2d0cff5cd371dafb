package controller

import (
	"errors"
	"log"
	"time"

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

type TaskRequest struct {
	Title          string              `json:"title" validate:"required,max=200"`
	Description    string              `json:"description"`
	AssigneeID     *uint               `json:"assignee_id"`
	Status         models.TaskStatus   `json:"status"`
	Priority       models.TaskPriority `json:"priority"`
	Deadline       *time.Time          `json:"deadline"`
	EstimatedHours *int                `json:"estimated_hours"`
	ParentTaskID   *uint               `json:"parent_task_id"`
}

type TaskController struct {
	DB     *gorm.DB
	AI     *client.AIClient
	Logger *log.Logger
}

func NewTaskController(db *gorm.DB, ai *client.AIClient, logger *log.Logger) *TaskController {
	return &TaskController{DB: db, AI: ai, Logger: logger}
}

// loadTask fetches a task and checks it belongs to the project.
func loadTask(db *gorm.DB, projectID, taskID uint) (*models.Task, error) {
	var task models.Task
	if err := db.First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Task not found")
		}
		return nil, apperrors.Internal("Failed to load task")
	}
	if task.ProjectID != projectID {
		return nil, apperrors.NotFound("Task not found")
	}
	return &task, nil
}

func taskID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("taskId")
	if err != nil || id <= 0 {
		return 0, apperrors.BadRequest("Invalid task id")
	}
	return uint(id), nil
}

// checkParent validates a parent reference: the parent must exist, belong to
// the same project, and differ from the task itself.
func (tc *TaskController) checkParent(projectID uint, parentID uint, selfID uint) error {
	if selfID != 0 && parentID == selfID {
		return apperrors.BadRequest("Task cannot be its own parent")
	}
	var parent models.Task
	if err := tc.DB.First(&parent, parentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.BadRequest("Parent task does not belong to this project")
		}
		return apperrors.Internal("Failed to load parent task")
	}
	if parent.ProjectID != projectID {
		return apperrors.BadRequest("Parent task does not belong to this project")
	}
	return nil
}

// enrollAssignee makes sure the assignee has a member row, inserting a MEMBER
// with the invitation pre-accepted. Existing rows are left untouched, so an
// ADMIN assignee keeps the ADMIN role.
func (tc *TaskController) enrollAssignee(projectID, userID, invitedBy uint) error {
	member := models.ProjectMember{
		ProjectID:          projectID,
		UserID:             userID,
		Role:               models.RoleMember,
		InvitedBy:          &invitedBy,
		InvitationAccepted: true,
	}
	return tc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(&member).Error
}

// CreateTask adds a task to the project. Any contributing member may create;
// assigning a user auto-enrolls them as an accepted MEMBER.
func (tc *TaskController) CreateTask(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	status := req.Status
	if status == "" {
		status = models.StatusTodo
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !status.Valid() {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid task status"))
	}
	if !priority.Valid() {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid task priority"))
	}

	project, err := loadProject(tc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(tc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanContribute(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not a member of this project"))
	}

	if req.ParentTaskID != nil {
		if err := tc.checkParent(id, *req.ParentTaskID, 0); err != nil {
			return apperrors.Respond(c, err)
		}
	}

	task := models.Task{
		ProjectID:      id,
		Title:          req.Title,
		Description:    req.Description,
		CreatorID:      identity.UserID,
		AssigneeID:     req.AssigneeID,
		Status:         status,
		Priority:       priority,
		Deadline:       req.Deadline,
		EstimatedHours: req.EstimatedHours,
		ParentTaskID:   req.ParentTaskID,
	}

	if err := tc.DB.Create(&task).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to create task"))
	}

	if req.AssigneeID != nil {
		if err := tc.enrollAssignee(id, *req.AssigneeID, identity.UserID); err != nil {
			return apperrors.Respond(c, apperrors.Internal("Failed to enroll assignee"))
		}
	}

	tc.Logger.Printf("task %d created in project %d by user %d", task.ID, id, identity.UserID)
	return c.Status(fiber.StatusCreated).JSON(task)
}

// GetTasks lists the project's top-level tasks with their subtasks nested.
func (tc *TaskController) GetTasks(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	project, err := loadProject(tc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(tc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanReadProject(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not a member of this project"))
	}

	var tasks []models.Task
	err = tc.DB.
		Preload("Subtasks").
		Where("project_id = ? AND parent_task_id IS NULL", id).
		Order("created_at").
		Find(&tasks).Error
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to list tasks"))
	}

	return c.JSON(tasks)
}

// GetTask returns one task with its subtasks.
func (tc *TaskController) GetTask(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	tid, err := taskID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	project, err := loadProject(tc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(tc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanReadProject(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not a member of this project"))
	}

	var task models.Task
	if err := tc.DB.Preload("Subtasks").First(&task, tid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Respond(c, apperrors.NotFound("Task not found"))
		}
		return apperrors.Respond(c, apperrors.Internal("Failed to load task"))
	}
	if task.ProjectID != id {
		return apperrors.Respond(c, apperrors.NotFound("Task not found"))
	}

	return c.JSON(task)
}

// UpdateTask applies changes to a task. Allowed for the creator, the assignee,
// the owner, or an ADMIN.
func (tc *TaskController) UpdateTask(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	tid, err := taskID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	project, err := loadProject(tc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	task, err := loadTask(tc.DB, id, tid)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(tc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanModifyTask(identity.UserID, project, actor, task) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not allowed to modify this task"))
	}

	var req TaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	if req.Status != "" && !req.Status.Valid() {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid task status"))
	}
	if req.Priority != "" && !req.Priority.Valid() {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid task priority"))
	}
	if req.ParentTaskID != nil {
		if err := tc.checkParent(id, *req.ParentTaskID, task.ID); err != nil {
			return apperrors.Respond(c, err)
		}
	}

	task.Title = req.Title
	task.Description = req.Description
	task.AssigneeID = req.AssigneeID
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.Priority != "" {
		task.Priority = req.Priority
	}
	task.Deadline = req.Deadline
	task.EstimatedHours = req.EstimatedHours
	task.ParentTaskID = req.ParentTaskID

	if err := tc.DB.Save(task).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to update task"))
	}

	if req.AssigneeID != nil {
		if err := tc.enrollAssignee(id, *req.AssigneeID, identity.UserID); err != nil {
			return apperrors.Respond(c, apperrors.Internal("Failed to enroll assignee"))
		}
	}

	return c.JSON(task)
}

// DeleteTask removes a task and, through the parent reference, orphans no
// subtasks: they are deleted alongside.
func (tc *TaskController) DeleteTask(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	tid, err := taskID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	project, err := loadProject(tc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	task, err := loadTask(tc.DB, id, tid)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(tc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanModifyTask(identity.UserID, project, actor, task) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not allowed to delete this task"))
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_task_id = ?", task.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to delete task"))
	}

	tc.Logger.Printf("task %d deleted from project %d by user %d", tid, id, identity.UserID)
	return c.SendStatus(fiber.StatusNoContent)
}

// GenerateTaskPlan asks the AI endpoint for a work plan for the task. The
// response carries the plan text even when generation fails, so clients always
// get a usable body.
func (tc *TaskController) GenerateTaskPlan(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	tid, err := taskID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	project, err := loadProject(tc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	task, err := loadTask(tc.DB, id, tid)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(tc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanReadProject(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not a member of this project"))
	}

	plan := tc.AI.GenerateTaskPlan(c.Context(), task)

	return c.JSON(fiber.Map{
		"task_id": task.ID,
		"plan":    plan,
	})
}
