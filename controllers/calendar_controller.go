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
	"teampulse/utils"
)

type CalendarRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description"`
}

type CalendarEventRequest struct {
	Title       string                   `json:"title" validate:"required,max=200"`
	Description string                   `json:"description"`
	EventType   models.CalendarEventType `json:"event_type"`
	StartTime   *time.Time               `json:"start_time" validate:"required"`
	EndTime     *time.Time               `json:"end_time"`
	AllDay      bool                     `json:"all_day"`
	Location    string                   `json:"location"`
	TaskID      *uint                    `json:"task_id"`
}

type CalendarController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCalendarController(db *gorm.DB, logger *log.Logger) *CalendarController {
	return &CalendarController{DB: db, Logger: logger}
}

// loadCalendar returns the project's calendar or NotFound.
func (cc *CalendarController) loadCalendar(projectID uint) (*models.ProjectCalendar, error) {
	var calendar models.ProjectCalendar
	err := cc.DB.Where("project_id = ?", projectID).First(&calendar).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Project has no calendar")
		}
		return nil, apperrors.Internal("Failed to load calendar")
	}
	return &calendar, nil
}

// getOrCreateCalendar returns the project's calendar, creating the default one
// on first use. The project_id unique index resolves concurrent first uses.
func (cc *CalendarController) getOrCreateCalendar(projectID uint, projectName string) (*models.ProjectCalendar, error) {
	calendar, err := cc.loadCalendar(projectID)
	if err == nil {
		return calendar, nil
	}
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) || appErr.Status != fiber.StatusNotFound {
		return nil, err
	}

	fresh := models.ProjectCalendar{
		ProjectID: projectID,
		Name:      projectName + " calendar",
	}
	if err := cc.DB.Create(&fresh).Error; err != nil {
		// Another request won the race; re-read the surviving row.
		return cc.loadCalendar(projectID)
	}
	return &fresh, nil
}

// CreateCalendar creates the project's calendar explicitly. Owner or ADMIN
// only; a second calendar is rejected.
func (cc *CalendarController) CreateCalendar(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	var req CalendarRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	project, err := loadProject(cc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(cc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanManageMembers(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("Only project owner or admin can create the calendar"))
	}

	if _, err := cc.loadCalendar(id); err == nil {
		return apperrors.Respond(c, apperrors.BadRequest("Project already has a calendar"))
	}

	calendar := models.ProjectCalendar{
		ProjectID:   id,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := cc.DB.Create(&calendar).Error; err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Project already has a calendar"))
	}

	cc.Logger.Printf("calendar created for project %d by user %d", id, identity.UserID)
	return c.Status(fiber.StatusCreated).JSON(calendar)
}

// GetCalendar returns the project's calendar with its events.
func (cc *CalendarController) GetCalendar(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	project, err := loadProject(cc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(cc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanReadProject(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not a member of this project"))
	}

	var calendar models.ProjectCalendar
	err = cc.DB.Preload("Events").Where("project_id = ?", id).First(&calendar).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Respond(c, apperrors.NotFound("Project has no calendar"))
		}
		return apperrors.Respond(c, apperrors.Internal("Failed to load calendar"))
	}

	return c.JSON(calendar)
}

// AddEvent creates an event on the project calendar, creating the calendar on
// first use. A linked task must belong to the same project.
func (cc *CalendarController) AddEvent(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	var req CalendarEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	eventType := req.EventType
	if eventType == "" {
		eventType = models.EventOther
	}
	if !eventType.Valid() {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid event type"))
	}
	if req.EndTime != nil && req.EndTime.Before(*req.StartTime) {
		return apperrors.Respond(c, apperrors.BadRequest("Event end time must not precede start time"))
	}

	project, err := loadProject(cc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(cc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanContribute(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not a member of this project"))
	}

	if req.TaskID != nil {
		if _, err := loadTask(cc.DB, id, *req.TaskID); err != nil {
			return apperrors.Respond(c, apperrors.BadRequest("Linked task does not belong to this project"))
		}
	}

	calendar, err := cc.getOrCreateCalendar(id, project.Name)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	event := models.CalendarEvent{
		CalendarID:  calendar.ID,
		Title:       req.Title,
		Description: req.Description,
		EventType:   eventType,
		StartTime:   *req.StartTime,
		EndTime:     req.EndTime,
		AllDay:      req.AllDay,
		Location:    req.Location,
		TaskID:      req.TaskID,
		CreatedBy:   identity.UserID,
	}
	if err := cc.DB.Create(&event).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to create event"))
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

// GetEvents lists the calendar's events, optionally restricted to a time range
// via the from/to query params (RFC 3339).
func (cc *CalendarController) GetEvents(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	project, err := loadProject(cc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(cc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanReadProject(identity.UserID, project, actor) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not a member of this project"))
	}

	calendar, err := cc.loadCalendar(id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	query := cc.DB.Where("calendar_id = ?", calendar.ID)
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return apperrors.Respond(c, apperrors.BadRequest("Invalid 'from' timestamp"))
		}
		query = query.Where("start_time >= ?", t)
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return apperrors.Respond(c, apperrors.BadRequest("Invalid 'to' timestamp"))
		}
		query = query.Where("start_time <= ?", t)
	}

	var events []models.CalendarEvent
	if err := query.Order("start_time").Find(&events).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to list events"))
	}

	return c.JSON(events)
}

// loadEvent fetches an event and checks it belongs to the project's calendar.
func (cc *CalendarController) loadEvent(projectID, eventID uint) (*models.CalendarEvent, error) {
	calendar, err := cc.loadCalendar(projectID)
	if err != nil {
		return nil, err
	}

	var event models.CalendarEvent
	if err := cc.DB.First(&event, eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Event not found")
		}
		return nil, apperrors.Internal("Failed to load event")
	}
	if event.CalendarID != calendar.ID {
		return nil, apperrors.NotFound("Event not found")
	}
	return &event, nil
}

// UpdateEvent edits an event. Allowed for the event creator, the owner, or an
// ADMIN.
func (cc *CalendarController) UpdateEvent(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	eventID, err := c.ParamsInt("eventId")
	if err != nil || eventID <= 0 {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid event id"))
	}

	project, err := loadProject(cc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(cc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	event, err := cc.loadEvent(id, uint(eventID))
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanModifyEvent(identity.UserID, project, actor, event) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not allowed to modify this event"))
	}

	var req CalendarEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid request body"))
	}
	if err := utils.ValidateStruct(req); err != nil {
		return apperrors.Respond(c, apperrors.BadRequest(err.Error()))
	}

	if req.EventType != "" && !req.EventType.Valid() {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid event type"))
	}
	if req.EndTime != nil && req.EndTime.Before(*req.StartTime) {
		return apperrors.Respond(c, apperrors.BadRequest("Event end time must not precede start time"))
	}
	if req.TaskID != nil {
		if _, err := loadTask(cc.DB, id, *req.TaskID); err != nil {
			return apperrors.Respond(c, apperrors.BadRequest("Linked task does not belong to this project"))
		}
	}

	event.Title = req.Title
	event.Description = req.Description
	if req.EventType != "" {
		event.EventType = req.EventType
	}
	event.StartTime = *req.StartTime
	event.EndTime = req.EndTime
	event.AllDay = req.AllDay
	event.Location = req.Location
	event.TaskID = req.TaskID

	if err := cc.DB.Save(event).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to update event"))
	}

	return c.JSON(event)
}

// DeleteEvent removes an event under the same rule as UpdateEvent.
func (cc *CalendarController) DeleteEvent(c *fiber.Ctx) error {
	identity := middleware.IdentityFromCtx(c)

	id, err := projectID(c)
	if err != nil {
		return apperrors.Respond(c, err)
	}
	eventID, err := c.ParamsInt("eventId")
	if err != nil || eventID <= 0 {
		return apperrors.Respond(c, apperrors.BadRequest("Invalid event id"))
	}

	project, err := loadProject(cc.DB, id)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	actor, err := loadMembership(cc.DB, id, identity.UserID)
	if err != nil {
		return apperrors.Respond(c, err)
	}

	event, err := cc.loadEvent(id, uint(eventID))
	if err != nil {
		return apperrors.Respond(c, err)
	}

	if !policy.CanModifyEvent(identity.UserID, project, actor, event) {
		return apperrors.Respond(c, apperrors.Unauthorized("User is not allowed to delete this event"))
	}

	if err := cc.DB.Delete(event).Error; err != nil {
		return apperrors.Respond(c, apperrors.Internal("Failed to delete event"))
	}

	cc.Logger.Printf("event %d deleted from project %d by user %d", eventID, id, identity.UserID)
	return c.SendStatus(fiber.StatusNoContent)
}
