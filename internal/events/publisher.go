package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Subjects for submission and enrollment lifecycle events.
const (
	SubjectSubmissionSubmitted = "educore.submission.submitted"
	SubjectSubmissionGraded    = "educore.submission.graded"
	SubjectEnrollmentCreated   = "educore.enrollment.created"
)

// SubmissionEvent is the payload published on submission lifecycle changes.
type SubmissionEvent struct {
	SubmissionID uint      `json:"submission_id"`
	AssignmentID uint      `json:"assignment_id"`
	StudentID    uint      `json:"student_id"`
	ActorID      uint      `json:"actor_id"`
	PointsEarned *float64  `json:"points_earned,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EnrollmentEvent is the payload published when a student joins a course.
type EnrollmentEvent struct {
	EnrollmentID uint      `json:"enrollment_id"`
	StudentID    uint      `json:"student_id"`
	CourseID     uint      `json:"course_id"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Publisher emits domain events. Publishing is best-effort: failures are
// logged and never surfaced to the business flow.
type Publisher interface {
	Publish(subject string, payload interface{})
}

type natsPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// NewNATSPublisher wraps a NATS connection. A nil connection yields a
// publisher that silently drops events, so callers never need nil checks.
func NewNATSPublisher(conn *nats.Conn, logger zerolog.Logger) Publisher {
	return &natsPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "event_publisher").Logger(),
	}
}

func (p *natsPublisher) Publish(subject string, payload interface{}) {
	if p.conn == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to encode event")
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}
