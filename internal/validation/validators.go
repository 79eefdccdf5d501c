// Package validation holds the field rules for bug records.
package validation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spec-kit/bug-tracker/internal/domain"
)

const (
	MaxTitleLength       = 100
	MinDescriptionLength = 10
	MaxDescriptionLength = 1000
	MinPriority          = 1
	MaxPriority          = 5
)

var (
	validSeverities = []domain.BugSeverity{domain.BugSeverityLow, domain.BugSeverityMedium, domain.BugSeverityHigh}
	validStatuses   = []domain.BugStatus{domain.BugStatusOpen, domain.BugStatusInProgress, domain.BugStatusClosed}
)

// Result is the verdict of a single field check.
type Result struct {
	Valid bool
	Error string
}

// Report is the verdict of a multi-field check. Errors keeps the order the checks ran in.
type Report struct {
	Valid  bool
	Errors []string
}

// Error joins every failure message.
func (r Report) Error() string {
	return strings.Join(r.Errors, "; ")
}

func ok() Result { return Result{Valid: true} }

func fail(msg string) Result { return Result{Error: msg} }

// ValidateTitle requires a non-blank title of at most MaxTitleLength characters after trimming.
func ValidateTitle(title string) Result {
	if title == "" {
		return fail("Title is required and must be a string")
	}
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return fail("Title cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return fail(fmt.Sprintf("Title cannot exceed %d characters", MaxTitleLength))
	}
	return ok()
}

// ValidateDescription bounds a description to [MinDescriptionLength, MaxDescriptionLength] characters.
func ValidateDescription(description string) Result {
	n := utf8.RuneCountInString(description)
	if n < MinDescriptionLength {
		return fail(fmt.Sprintf("Description must be at least %d characters", MinDescriptionLength))
	}
	if n > MaxDescriptionLength {
		return fail(fmt.Sprintf("Description cannot exceed %d characters", MaxDescriptionLength))
	}
	return ok()
}

// ParsePriority parses raw as an integer priority in [MinPriority, MaxPriority].
func ParsePriority(raw string) (int, Result) {
	p, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, priorityFailure()
	}
	return p, ValidatePriorityValue(p)
}

// ValidatePriority checks a raw priority value.
func ValidatePriority(raw string) Result {
	_, res := ParsePriority(raw)
	return res
}

// ValidatePriorityValue checks an already parsed priority.
func ValidatePriorityValue(p int) Result {
	if p < MinPriority || p > MaxPriority {
		return priorityFailure()
	}
	return ok()
}

func priorityFailure() Result {
	return fail(fmt.Sprintf("Priority must be between %d and %d", MinPriority, MaxPriority))
}

// ValidateSeverity requires one of low, medium, high.
func ValidateSeverity(severity string) Result {
	for _, s := range validSeverities {
		if string(s) == severity {
			return ok()
		}
	}
	return fail("Severity must be one of: " + joinEnum(validSeverities))
}

// ValidateStatus requires one of open, in-progress, closed.
func ValidateStatus(status string) Result {
	for _, s := range validStatuses {
		if string(s) == status {
			return ok()
		}
	}
	return fail("Status must be one of: " + joinEnum(validStatuses))
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// BugData is raw bug input. A nil field is treated as absent.
type BugData struct {
	Title       *string
	Description *string
	Priority    *string
	Severity    *string
	Status      *string
}

// ValidateBugData checks a full record: title always, the rest only when present.
func ValidateBugData(data BugData) Report {
	title := ""
	if data.Title != nil {
		title = *data.Title
	}
	data.Title = &title
	return validate(data)
}

// ValidateBugPatch checks only the fields present in data.
func ValidateBugPatch(data BugData) Report {
	return validate(data)
}

func validate(data BugData) Report {
	var errs []string
	check := func(res Result) {
		if !res.Valid {
			errs = append(errs, res.Error)
		}
	}

	if data.Title != nil {
		check(ValidateTitle(*data.Title))
	}
	if data.Description != nil {
		check(ValidateDescription(*data.Description))
	}
	if data.Priority != nil {
		check(ValidatePriority(*data.Priority))
	}
	if data.Severity != nil {
		check(ValidateSeverity(*data.Severity))
	}
	if data.Status != nil {
		check(ValidateStatus(*data.Status))
	}

	if len(errs) > 0 {
		return Report{Errors: errs}
	}
	return Report{Valid: true}
}
