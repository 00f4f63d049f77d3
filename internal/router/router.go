package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/moses-maker/educore-api/internal/config"
	"github.com/moses-maker/educore-api/internal/handler"
	"github.com/moses-maker/educore-api/internal/middleware"
	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/observability"
	"github.com/moses-maker/educore-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	UserHandler       *handler.UserHandler
	CourseHandler     *handler.CourseHandler
	AssignmentHandler *handler.AssignmentHandler
	SubmissionHandler *handler.SubmissionHandler
	AuditHandler      *handler.AuditHandler
	DashboardHandler  *handler.DashboardHandler
	AuditRecorder     service.AuditRecorder
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Every mutating request by an authenticated user lands in the audit
	// trail; the adapter runs inside the authenticated groups only.
	requestAudit := middleware.RequestAudit(middleware.RequestAuditConfig{
		Recorder:         deps.AuditRecorder,
		ExcludedPrefixes: cfg.AuditExclusions,
	})

	if deps.AuthHandler != nil {
		auth := api.Group("/auth", middleware.RateLimit("auth", 10, time.Minute))
		deps.AuthHandler.RegisterPublic(auth)

		authProtected := api.Group("/auth", jwtMiddleware, requestAudit)
		deps.AuthHandler.RegisterProtected(authProtected)
	}

	if deps.UserHandler != nil {
		users := api.Group("/users", jwtMiddleware, requestAudit)
		deps.UserHandler.Register(users)

		admin := users.Group("", middleware.RequireRoleAudited(deps.AuditRecorder, string(models.RoleAdmin)))
		deps.UserHandler.RegisterAdmin(admin)
	}

	if deps.CourseHandler != nil {
		courses := api.Group("/courses", jwtMiddleware, requestAudit)
		deps.CourseHandler.Register(courses)
	}

	if deps.AssignmentHandler != nil {
		assignments := api.Group("/assignments", jwtMiddleware, requestAudit)
		deps.AssignmentHandler.Register(assignments)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware, requestAudit)
		deps.SubmissionHandler.Register(submissions)
	}

	if deps.AuditHandler != nil {
		audit := api.Group("/audit-logs", jwtMiddleware,
			middleware.RequireRoleAudited(deps.AuditRecorder, string(models.RoleAdmin)))
		deps.AuditHandler.Register(audit)
	}

	if deps.DashboardHandler != nil {
		dashboard := api.Group("/dashboard", jwtMiddleware,
			middleware.RequireRole(string(models.RoleStudent)))
		deps.DashboardHandler.Register(dashboard)
	}
}
