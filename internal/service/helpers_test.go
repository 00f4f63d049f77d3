package service

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func ptrUint(v uint) *uint {
	return &v
}

func ptrFloat(v float64) *float64 {
	return &v
}

// recordingAudit captures audit entries for assertions.
type recordingAudit struct {
	entries []AuditEntry
}

func (r *recordingAudit) Record(_ context.Context, entry AuditEntry) uint {
	r.entries = append(r.entries, entry)
	return uint(len(r.entries))
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	subjects []string
	payloads []interface{}
}

func (r *recordingPublisher) Publish(subject string, payload interface{}) {
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, payload)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
