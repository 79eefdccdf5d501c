package dto

import (
	"bytes"
	"encoding/json"
	"strings"
)

// CreateBugRequest payload for POST /bugs. Absent fields stay nil.
type CreateBugRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Severity    *string         `json:"severity"`
	Priority    json.RawMessage `json:"priority"`
	Status      *string         `json:"status"`
	ReportedBy  *string         `json:"reportedBy"`
}

// UpdateBugRequest payload for PUT /bugs/:id. Only present fields change.
type UpdateBugRequest struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Severity    *string         `json:"severity"`
	Priority    json.RawMessage `json:"priority"`
	Status      *string         `json:"status"`
	ReportedBy  *string         `json:"reportedBy"`
}

// PriorityText returns the priority as text, accepting both JSON numbers and
// numeric strings. A missing or null priority yields nil.
func PriorityText(raw json.RawMessage) *string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return &s
	}
	text := strings.TrimSpace(string(raw))
	return &text
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
