package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// BugSeverity classifies the impact of a bug.
type BugSeverity string

const (
	BugSeverityLow    BugSeverity = "low"
	BugSeverityMedium BugSeverity = "medium"
	BugSeverityHigh   BugSeverity = "high"
)

// BugStatus enumerates workflow states for bugs.
type BugStatus string

const (
	BugStatusOpen       BugStatus = "open"
	BugStatusInProgress BugStatus = "in-progress"
	BugStatusClosed     BugStatus = "closed"
)

// DefaultBugPriority is applied on creation when no priority is supplied.
const DefaultBugPriority = 3

// ErrBugNotFound is returned by repositories when no bug matches the id.
var ErrBugNotFound = errors.New("bug not found")

// Bug is the tracked defect record.
type Bug struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Severity    BugSeverity `json:"severity"`
	Priority    int         `json:"priority"`
	Status      BugStatus   `json:"status"`
	ReportedBy  string      `json:"reportedBy"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// BugPatch carries the fields of a partial update. Nil fields are left untouched.
type BugPatch struct {
	Title       *string
	Description *string
	Severity    *BugSeverity
	Priority    *int
	Status      *BugStatus
	ReportedBy  *string
}

// IsEmpty reports whether the patch changes nothing.
func (p BugPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Severity == nil &&
		p.Priority == nil && p.Status == nil && p.ReportedBy == nil
}

// Apply merges the supplied fields onto bug.
func (p BugPatch) Apply(bug *Bug) {
	if p.Title != nil {
		bug.Title = *p.Title
	}
	if p.Description != nil {
		bug.Description = *p.Description
	}
	if p.Severity != nil {
		bug.Severity = *p.Severity
	}
	if p.Priority != nil {
		bug.Priority = *p.Priority
	}
	if p.Status != nil {
		bug.Status = *p.Status
	}
	if p.ReportedBy != nil {
		bug.ReportedBy = *p.ReportedBy
	}
}

// IsValidBugID reports whether id has the shape of a stored bug identifier.
func IsValidBugID(id string) bool {
	_, ok := CanonicalBugID(id)
	return ok
}

// CanonicalBugID returns the lowercase hyphenated form stores key on. Any
// spelling uuid.Parse accepts (uppercase, braces, urn:uuid:, bare hex) maps to it.
func CanonicalBugID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}
