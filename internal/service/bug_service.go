package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/bug-tracker/internal/cache"
	"github.com/spec-kit/bug-tracker/internal/domain"
	"github.com/spec-kit/bug-tracker/internal/events"
	"github.com/spec-kit/bug-tracker/internal/repository"
	"github.com/spec-kit/bug-tracker/internal/validation"
	apperrors "github.com/spec-kit/bug-tracker/pkg/util"
)

// BugService owns the bug workflow rules: required fields, validation,
// defaults, id checks and error translation.
type BugService struct {
	bugs       repository.BugRepository
	cache      cache.BugCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// BugDependencies bundles collaborators for the bug service. Cache and
// Dispatcher are optional.
type BugDependencies struct {
	BugRepo    repository.BugRepository
	Cache      cache.BugCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// BugCreateInput describes bug creation payload. Nil optional fields are absent.
type BugCreateInput struct {
	Title       string
	Description string
	ReportedBy  string
	Severity    *string
	Priority    *string
	Status      *string
}

// BugUpdateInput describes a partial update. Only non-nil fields change.
type BugUpdateInput struct {
	Title       *string
	Description *string
	Severity    *string
	Priority    *string
	Status      *string
	ReportedBy  *string
}

// BugListFilter holds raw list query values.
type BugListFilter struct {
	Status   string
	Priority string
	SortBy   string
}

// NewBugService constructs the service.
func NewBugService(deps BugDependencies) *BugService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BugService{
		bugs:       deps.BugRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// CreateBug validates input, applies defaults and persists a new bug.
func (s *BugService) CreateBug(ctx context.Context, input BugCreateInput) (*domain.Bug, error) {
	var missing []string
	if strings.TrimSpace(input.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(input.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(input.ReportedBy) == "" {
		missing = append(missing, "reportedBy")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError(
			"Missing required fields: "+strings.Join(missing, ", "),
			map[string]any{"fields": missing},
		)
	}

	report := validation.ValidateBugData(validation.BugData{
		Title:       &input.Title,
		Description: &input.Description,
		Priority:    input.Priority,
		Severity:    input.Severity,
		Status:      input.Status,
	})
	if !report.Valid {
		return nil, validationFailure(report.Errors)
	}

	bug := &domain.Bug{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Severity:    domain.BugSeverityMedium,
		Priority:    domain.DefaultBugPriority,
		Status:      domain.BugStatusOpen,
		ReportedBy:  strings.TrimSpace(input.ReportedBy),
	}
	if input.Severity != nil {
		bug.Severity = domain.BugSeverity(*input.Severity)
	}
	if input.Priority != nil {
		bug.Priority, _ = validation.ParsePriority(*input.Priority)
	}
	if input.Status != nil {
		bug.Status = domain.BugStatus(*input.Status)
	}

	if err := s.bugs.Create(ctx, bug); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:  events.EventBugCreated,
		BugID: bug.ID,
		Payload: events.BugCreatedPayload{
			Title:      bug.Title,
			Severity:   bug.Severity,
			Priority:   bug.Priority,
			ReportedBy: bug.ReportedBy,
		},
	})
	return bug, nil
}

// ListBugs returns bugs matching the optional status and priority filters.
func (s *BugService) ListBugs(ctx context.Context, filter BugListFilter) ([]domain.Bug, error) {
	repoFilter := repository.BugFilter{}
	if status := strings.TrimSpace(filter.Status); status != "" {
		st := domain.BugStatus(status)
		repoFilter.Status = &st
	}
	if raw := strings.TrimSpace(filter.Priority); raw != "" {
		p, res := validation.ParsePriority(raw)
		if !res.Valid {
			return nil, validationFailure([]string{res.Error})
		}
		repoFilter.Priority = &p
	}
	if strings.EqualFold(strings.TrimSpace(filter.SortBy), string(repository.BugSortRecent)) {
		repoFilter.Sort = repository.BugSortRecent
	}

	bugs, err := s.bugs.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if bugs == nil {
		bugs = []domain.Bug{}
	}
	return bugs, nil
}

// GetBug fetches a bug by id.
func (s *BugService) GetBug(ctx context.Context, rawID string) (*domain.Bug, error) {
	id, ok := domain.CanonicalBugID(rawID)
	if !ok {
		return nil, apperrors.NewInvalidID("bug")
	}
	if s.cache != nil {
		if bug, ok := s.cache.Get(ctx, id); ok {
			return bug, nil
		}
	}

	bug, err := s.bugs.GetByID(ctx, id)
	if err != nil {
		return nil, translateBugError(err)
	}
	if s.cache != nil {
		s.cache.Set(ctx, bug)
	}
	return bug, nil
}

// UpdateBug merges the supplied fields onto an existing bug.
func (s *BugService) UpdateBug(ctx context.Context, rawID string, input BugUpdateInput) (*domain.Bug, error) {
	id, ok := domain.CanonicalBugID(rawID)
	if !ok {
		return nil, apperrors.NewInvalidID("bug")
	}

	report := validation.ValidateBugPatch(validation.BugData{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Severity:    input.Severity,
		Status:      input.Status,
	})
	errs := report.Errors
	if input.ReportedBy != nil && strings.TrimSpace(*input.ReportedBy) == "" {
		errs = append(errs, "Reported by cannot be empty")
	}
	if len(errs) > 0 {
		return nil, validationFailure(errs)
	}

	// Invalidate on both sides of the write: a concurrent GetBug that read the
	// old row may repopulate the entry between the first call and the update.
	patch, changed := buildPatch(input)
	s.invalidate(ctx, id)
	bug, err := s.bugs.Update(ctx, id, patch)
	if err != nil {
		return nil, translateBugError(err)
	}
	s.invalidate(ctx, id)

	s.publishEvent(ctx, events.Event{
		Type:    events.EventBugUpdated,
		BugID:   bug.ID,
		Payload: events.BugUpdatedPayload{ChangedFields: changed, Status: bug.Status},
	})
	return bug, nil
}

// DeleteBug removes a bug permanently.
func (s *BugService) DeleteBug(ctx context.Context, rawID string) error {
	id, ok := domain.CanonicalBugID(rawID)
	if !ok {
		return apperrors.NewInvalidID("bug")
	}
	s.invalidate(ctx, id)
	if err := s.bugs.Delete(ctx, id); err != nil {
		return translateBugError(err)
	}
	s.invalidate(ctx, id)

	s.publishEvent(ctx, events.Event{Type: events.EventBugDeleted, BugID: id})
	return nil
}

func (s *BugService) invalidate(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}

func buildPatch(input BugUpdateInput) (domain.BugPatch, []string) {
	var (
		patch   domain.BugPatch
		changed []string
	)
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		patch.Title = &title
		changed = append(changed, "title")
	}
	if input.Description != nil {
		patch.Description = input.Description
		changed = append(changed, "description")
	}
	if input.Severity != nil {
		severity := domain.BugSeverity(*input.Severity)
		patch.Severity = &severity
		changed = append(changed, "severity")
	}
	if input.Priority != nil {
		p, _ := validation.ParsePriority(*input.Priority)
		patch.Priority = &p
		changed = append(changed, "priority")
	}
	if input.Status != nil {
		status := domain.BugStatus(*input.Status)
		patch.Status = &status
		changed = append(changed, "status")
	}
	if input.ReportedBy != nil {
		reporter := strings.TrimSpace(*input.ReportedBy)
		patch.ReportedBy = &reporter
		changed = append(changed, "reportedBy")
	}
	return patch, changed
}

func validationFailure(errs []string) error {
	return apperrors.NewValidationError(strings.Join(errs, "; "), map[string]any{"errors": errs})
}

func translateBugError(err error) error {
	if errors.Is(err, domain.ErrBugNotFound) {
		return apperrors.NewNotFound("Bug", nil)
	}
	return apperrors.NewInternalError(err)
}

func (s *BugService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("bug_id", event.BugID),
			zap.Error(err))
	}
}
