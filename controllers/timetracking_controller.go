package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"teampulse/apperrors"
	"teampulse/middleware"
	"teampulse/models"
	"teampulse/policy"
)

type StartTrackingRequest struct {
	Description string     `json:"description"`
	StartTime   *time.Time `json:"start_time"`
}

type StopTrackingRequest struct {
	EndTime *time.Time `json:"end_time"`
}

// TimeEntryResponse adds the derived duration to the stored entry.
type TimeEntryResponse struct {
	models.TimeTracking
	DurationMinutes int64 `json:"duration_minutes"`
}

type TimeTrackingController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTimeTrackingController(db *gorm.DB, logger *log.Logger) *TimeTrackingController {
	return &TimeTrackingController{DB: db, Logger: logger}
}

func entryResponse(entry *models.TimeTracking) TimeEntryResponse {
	return TimeEntryResponse{TimeTracking: *entry, DurationMinutes: entry.DurationMinutes()}
}

func (tc *TimeTrackingController) loadEntry(taskID, entryID uint) (*models.TimeTracking, error) {
	var entry models.TimeTracking
	if err := tc.DB.First(&entry, entryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Time tracking entry not found")
		}
		return nil, apperrors.Internal("Failed to load time tracking entry")
	}
	if entry.TaskID != taskID {
		return nil, apperrors.NotFound("Time tracking entry not found")
	}
	return &entry, nil
}

// StartTracking opens a time entry on the task for the caller. A caller with a
// still-running entry on the same task must stop it first.
func (tc *TimeTrackingController) StartTracking(c *fiber.Ctx) error {
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

	if !policy.CanContribute(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not a member of this project"))
	}

	if _, err := loadTask(tc.DB, id, tid); err != nil {
		return apperrors.Respond(c, err)
	}

	var req StartTrackingRequest
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}

	var running int64
	err = tc.DB.Model(&models.TimeTracking{}).
		Where("task_id = ? AND user_id = ? AND end_time IS NULL", tid, identity.UserID).
		Count(&running).Error
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to start time tracking"))
	}
	if running > 0 {
		return apperrors.Respond(c, apperrors.BadRequest("A time tracking entry is already running for this task"))
	}

	start := time.Now()
	if req.StartTime != nil {
		start = *req.StartTime
	}

	entry := models.TimeTracking{
		TaskID:      tid,
		UserID:      identity.UserID,
		Description: req.Description,
		StartTime:   start,
	}
	if err := tc.DB.Create(&entry).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to start time tracking"))
	}

	tc.Logger.Printf("time tracking %d started on task %d by user %d", entry.ID, tid, identity.UserID)
	return c.Status(fiber.StatusCreated).JSON(entryResponse(&entry))
}

// StopTracking closes an entry. Stopping twice is rejected; only the user who
// started it, the owner or an ADMIN may stop it.
func (tc *TimeTrackingController) StopTracking(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	tid, err := taskID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	entryID, err := c.ParamsInt("timeTrackingId")
	if err != nil || entryID <= 0 {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid time tracking id"))
	}

	project, err := loadProject(tc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(tc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	// Membership gates the lookup so outsiders cannot probe entry existence.
	if !policy.CanReadProject(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not a member of this project"))
	}

	if _, err := loadTask(tc.DB, id, tid); err != nil {
		return apperrors.Respond(c, err)
	}

	entry, err := tc.loadEntry(tid, uint(entryID))
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanControlTimeEntry(identity.UserID, project, actor, entry) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not allowed to stop this entry"))
	}

	var req StopTrackingRequest
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}
	if req.EndTime != nil && req.EndTime.Before(entry.StartTime) {
		return apperrors.Respond(c, apperrors.BadRequest("End time must not precede start time"))
	}

	if err := entry.Stop(req.EndTime); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Time tracking entry is already stopped"))
	}

	if err := tc.DB.Save(entry).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to stop time tracking"))
	}

	return c.JSON(entryResponse(entry))
}

// GetTaskEntries lists all entries on a task.
func (tc *TimeTrackingController) GetTaskEntries(c *fiber.Ctx) error {
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

	if _, err := loadTask(tc.DB, id, tid); err != nil {
		return apperrors.Respond(c, err)
	}

	var entries []models.TimeTracking
	if err := tc.DB.Where("task_id = ?", tid).Order("start_time").Find(&entries).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to list time tracking entries"))
	}

	out := make([]TimeEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, entryResponse(&entries[i]))
	}
	return c.JSON(out)
}

// GetMyEntries lists the caller's entries across all tasks of the project.
func (tc *TimeTrackingController) GetMyEntries(c *fiber.Ctx) error {
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

	var entries []models.TimeTracking
	err = tc.DB.
		Where("user_id = ?", identity.UserID).
		Where("task_id IN (?)", tc.DB.Model(&models.Task{}).Select("id").Where("project_id = ?", id)).
		Order("start_time").
		Find(&entries).Error
	if err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to list time tracking entries"))
	}

	out := make([]TimeEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, entryResponse(&entries[i]))
	}
	return c.JSON(out)
}

// DeleteEntry removes an entry under the same rule as StopTracking.
func (tc *TimeTrackingController) DeleteEntry(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	tid, err := taskID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	entryID, err := c.ParamsInt("timeTrackingId")
	if err != nil || entryID <= 0 {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid time tracking id"))
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

	if _, err := loadTask(tc.DB, id, tid); err != nil {
		return apperrors.Respond(c, err)
	}

	entry, err := tc.loadEntry(tid, uint(entryID))
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanControlTimeEntry(identity.UserID, project, actor, entry) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not allowed to delete this entry"))
	}

	if err := tc.DB.Delete(entry).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to delete time tracking entry"))
	}

	tc.Logger.Printf("time tracking %d deleted from task %d by user %d", entryID, tid, identity.UserID)
	return c.SendStatus(fiber.StatusNoContent)
}
