package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"teampulse/client"
	"teampulse/config"
	controller "teampulse/controllers"
	"teampulse/middleware"
)

// SetupProjectRoutes mounts the project service's endpoints on app. Every
// project route sits behind the Identify middleware, which resolves the caller
// against the identity service.
func SetupProjectRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, users *client.UserClient, ai *client.AIClient, logger *log.Logger) {
	projectController := controller.NewProjectController(db, logger)
	memberController := controller.NewMemberController(db, users, logger)
	taskController := controller.NewTaskController(db, ai, logger)
	calendarController := controller.NewCalendarController(db, logger)
	trackingController := controller.NewTimeTrackingController(db, logger)

	projects := app.Group("/projects", middleware.Identify(users, cfg.JWTSecret, logger))

	projects.Post("/", projectController.CreateProject)
	projects.Get("/", projectController.GetProjects)
	projects.Get("/:projectId", projectController.GetProject)
	projects.Put("/:projectId", projectController.UpdateProject)
	projects.Delete("/:projectId", projectController.DeleteProject)

	members := projects.Group("/:projectId/members")
	members.Post("/", memberController.InviteMember)
	members.Get("/", memberController.GetMembers)
	members.Post("/accept-invitation", memberController.AcceptInvitation)
	members.Delete("/leave", memberController.LeaveProject)
	members.Put("/:userId/role", memberController.UpdateMemberRole)
	members.Delete("/:userId", memberController.RemoveMember)

	tasks := projects.Group("/:projectId/tasks")
	tasks.Post("/", taskController.CreateTask)
	tasks.Get("/", taskController.GetTasks)
	tasks.Get("/:taskId", taskController.GetTask)
	tasks.Put("/:taskId", taskController.UpdateTask)
	tasks.Delete("/:taskId", taskController.DeleteTask)
	tasks.Get("/:taskId/ai-plan", taskController.GenerateTaskPlan)

	calendar := projects.Group("/:projectId/calendar")
	calendar.Post("/", calendarController.CreateCalendar)
	calendar.Get("/", calendarController.GetCalendar)
	calendar.Post("/events", calendarController.AddEvent)
	calendar.Get("/events", calendarController.GetEvents)
	calendar.Put("/events/:eventId", calendarController.UpdateEvent)
	calendar.Delete("/events/:eventId", calendarController.DeleteEvent)

	tracking := tasks.Group("/:taskId/time-tracking")
	tracking.Post("/", trackingController.StartTracking)
	tracking.Get("/", trackingController.GetTaskEntries)
	tracking.Put("/:timeTrackingId", trackingController.StopTracking)
	tracking.Delete("/:timeTrackingId", trackingController.DeleteEntry)

	projects.Get("/:projectId/time-tracking/my", trackingController.GetMyEntries)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "projects"})
	})

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}
