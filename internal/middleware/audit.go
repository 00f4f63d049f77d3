package middleware

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/service"
)

// auditedMethods maps mutating HTTP methods to their audit action.
var auditedMethods = map[string]models.AuditAction{
	fiber.MethodPost:   models.AuditActionCreate,
	fiber.MethodPut:    models.AuditActionUpdate,
	fiber.MethodPatch:  models.AuditActionUpdate,
	fiber.MethodDelete: models.AuditActionDelete,
}

// defaultAuditExclusions lists path prefixes never recorded: probes, metric
// scrapes and static assets would otherwise flood the trail.
var defaultAuditExclusions = []string{
	"/api/v1/health",
	"/metrics",
	"/docs",
	"/static",
}

// RequestAuditConfig customises the request audit middleware.
type RequestAuditConfig struct {
	Recorder service.AuditRecorder
	Logger   zerolog.Logger
	// ExcludedPrefixes overrides the default exclusion list when non-nil.
	ExcludedPrefixes []string
}

// RequestAudit records one audit entry per mutating request (POST, PUT,
// PATCH, DELETE) made by an authenticated user. It runs after the handler so
// it can capture the response status; success is any status in [200, 400).
// The middleware never alters the forwarded response, and its own failures
// are swallowed so auditing can never break the request path.
func RequestAudit(cfg RequestAuditConfig) fiber.Handler {
	excluded := cfg.ExcludedPrefixes
	if excluded == nil {
		excluded = defaultAuditExclusions
	}
	logger := cfg.Logger.With().Str("component", "request_audit").Logger()

	return func(c *fiber.Ctx) error {
		action, audited := auditedMethods[c.Method()]
		if !audited || cfg.Recorder == nil {
			return c.Next()
		}

		path := c.Path()
		for _, prefix := range excluded {
			if strings.HasPrefix(path, prefix) {
				return c.Next()
			}
		}

		// Snapshot the request before the handler runs; fiber recycles
		// buffers once the response is written. Malformed JSON bodies are
		// tolerated and simply omitted.
		method := c.Method()
		var body map[string]interface{}
		if raw := c.Body(); len(raw) > 0 {
			if unmarshalErr := json.Unmarshal(raw, &body); unmarshalErr != nil {
				body = nil
			}
		}
		ip := clientIP(c)
		userAgent := c.Get(fiber.HeaderUserAgent)

		err := c.Next()

		// Requests without an authenticated user are not audited.
		userID := userIDFromLocals(c)
		if userID == nil {
			return err
		}

		status := c.Response().StatusCode()
		if err != nil {
			if fiberErr, ok := err.(*fiber.Error); ok {
				status = fiberErr.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error().Interface("panic", r).Msg("request audit panicked")
				}
			}()

			success := status >= fiber.StatusOK && status < fiber.StatusBadRequest
			extra := map[string]interface{}{"status_code": status}
			if body != nil {
				extra["body"] = body
			}

			entry := service.AuditEntry{
				UserID:        userID,
				Action:        action,
				Description:   fmt.Sprintf("%s %s", method, path),
				IPAddress:     ip,
				UserAgent:     userAgent,
				RequestMethod: method,
				RequestPath:   path,
				ExtraData:     extra,
				Success:       success,
			}
			if !success {
				entry.ErrorMessage = fmt.Sprintf("status code: %d", status)
			}

			cfg.Recorder.Record(c.UserContext(), entry)
		}()

		return err
	}
}

// clientIP prefers the first hop of X-Forwarded-For when present so audit
// entries survive a reverse proxy.
func clientIP(c *fiber.Ctx) string {
	if forwarded := c.Get(fiber.HeaderXForwardedFor); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	return c.IP()
}

func userIDFromLocals(c *fiber.Ctx) *uint {
	if id, ok := c.Locals("user_id").(uint); ok && id > 0 {
		return &id
	}
	return nil
}
