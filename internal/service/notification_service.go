package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/bug-tracker/internal/config"
	"github.com/spec-kit/bug-tracker/internal/events"
)

// EventPublisher forwards serialized events to an external broker.
type EventPublisher interface {
	Publish(ctx context.Context, body []byte) error
}

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  EventPublisher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service. publisher may be nil.
func NewNotificationService(dispatcher events.Dispatcher, publisher EventPublisher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventBugCreated, n.handleBugCreated)
	n.dispatcher.Subscribe(events.EventBugUpdated, n.handleBugUpdated)
	n.dispatcher.Subscribe(events.EventBugDeleted, n.handleBugDeleted)
}

func (n *NotificationService) handleBugCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("BugCreated", zap.String("bug_id", event.BugID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return n.forward(ctx, event)
}

func (n *NotificationService) handleBugUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("BugUpdated", zap.String("bug_id", event.BugID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return n.forward(ctx, event)
}

func (n *NotificationService) handleBugDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("BugDeleted", zap.String("bug_id", event.BugID))
	n.sendWebhookNotificationStub(ctx, event)
	return n.forward(ctx, event)
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if n.publisher == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.publisher.Publish(ctx, body)
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("bug_id", event.BugID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("bug_id", event.BugID),
		zap.String("event_type", string(event.Type)))
}
