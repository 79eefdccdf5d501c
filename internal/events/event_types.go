package events

import (
	"time"

	"github.com/spec-kit/bug-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBugCreated EventType = "bug_created"
	EventBugUpdated EventType = "bug_updated"
	EventBugDeleted EventType = "bug_deleted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	BugID     string    `json:"bug_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// BugCreatedPayload payload.
type BugCreatedPayload struct {
	Title      string             `json:"title"`
	Severity   domain.BugSeverity `json:"severity"`
	Priority   int                `json:"priority"`
	ReportedBy string             `json:"reported_by"`
}

// BugUpdatedPayload lists the fields a partial update touched.
type BugUpdatedPayload struct {
	ChangedFields []string         `json:"changed_fields"`
	Status        domain.BugStatus `json:"status"`
}
