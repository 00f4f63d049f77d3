package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/moses-maker/educore-api/internal/config"
	"github.com/moses-maker/educore-api/internal/database"
	"github.com/moses-maker/educore-api/internal/events"
	"github.com/moses-maker/educore-api/internal/handler"
	"github.com/moses-maker/educore-api/internal/middleware"
	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/repository"
	"github.com/moses-maker/educore-api/internal/router"
	"github.com/moses-maker/educore-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Enrollment{},
		&models.Assignment{},
		&models.Submission{},
		&models.AuditLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// NATS is optional: without a URL the publisher drops events silently.
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}
	publisher := events.NewNATSPublisher(natsConn, logger)

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)

	auditService := service.NewAuditService(auditRepo, logger)
	registerAuditTargets(auditService, userRepo, courseRepo, enrollmentRepo, assignmentRepo, submissionRepo)

	authService := service.NewAuthService(userRepo, service.NewBcryptHasher(), auditService, validate, cfg.JWTSecret, cfg.TokenTTL, logger)
	userService := service.NewUserService(userRepo, validate, logger)
	courseService := service.NewCourseService(courseRepo, validate, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, auditService, publisher, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, enrollmentRepo, validate, auditService, publisher, logger)
	dashboardService := service.NewStudentDashboardService(enrollmentRepo, assignmentRepo, submissionRepo, redisClient, cfg.DashboardCacheTTL, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(userService, logger)
	courseHandler := handler.NewCourseHandler(courseService, enrollmentService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	auditHandler := handler.NewAuditHandler(auditService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		CourseHandler:     courseHandler,
		AssignmentHandler: assignmentHandler,
		SubmissionHandler: submissionHandler,
		AuditHandler:      auditHandler,
		DashboardHandler:  dashboardHandler,
		AuditRecorder:     auditService,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

// registerAuditTargets binds each referenceable entity type to a loader so
// audit entries can be followed back to the affected record.
func registerAuditTargets(
	audit service.AuditService,
	users repository.UserRepository,
	courses repository.CourseRepository,
	enrollments repository.EnrollmentRepository,
	assignments repository.AssignmentRepository,
	submissions repository.SubmissionRepository,
) {
	audit.RegisterTarget("user", func(ctx context.Context, id uint) (interface{}, error) {
		record, err := users.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return record, nil
	})
	audit.RegisterTarget("course", func(ctx context.Context, id uint) (interface{}, error) {
		record, err := courses.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return record, nil
	})
	audit.RegisterTarget("enrollment", func(ctx context.Context, id uint) (interface{}, error) {
		record, err := enrollments.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return record, nil
	})
	audit.RegisterTarget("assignment", func(ctx context.Context, id uint) (interface{}, error) {
		record, err := assignments.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return record, nil
	})
	audit.RegisterTarget("submission", func(ctx context.Context, id uint) (interface{}, error) {
		record, err := submissions.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return record, nil
	})
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
