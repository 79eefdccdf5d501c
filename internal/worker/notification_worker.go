package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/bug-tracker/internal/config"
	"github.com/spec-kit/bug-tracker/internal/events"
	"github.com/spec-kit/bug-tracker/internal/service"
	"github.com/spec-kit/bug-tracker/pkg/rabbitmq"
)

// NotificationWorker owns the notification subscriptions and the broker connection behind them.
type NotificationWorker struct {
	broker *rabbitmq.Client
	logger *zap.Logger
}

// StartNotificationWorker subscribes notification handlers to bug events. When a
// broker URL is configured, events are also forwarded to RabbitMQ; a broker that
// cannot be reached is logged and skipped.
func StartNotificationWorker(cfg *config.Config, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationWorker {
	w := &NotificationWorker{logger: logger}

	var publisher service.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		client, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
		if err != nil {
			logger.Warn("rabbitmq unavailable, events stay in process", zap.Error(err))
		} else {
			logger.Info("rabbitmq connected", zap.String("queue", cfg.RabbitMQ.Queue))
			w.broker = client
			publisher = client
		}
	}

	service.NewNotificationService(dispatcher, publisher, logger, cfg.Notification).RegisterHandlers()
	return w
}

// Stop releases the broker connection.
func (w *NotificationWorker) Stop() {
	if w == nil || w.broker == nil {
		return
	}
	if err := w.broker.Close(); err != nil {
		w.logger.Warn("rabbitmq close failed", zap.Error(err))
	}
}
