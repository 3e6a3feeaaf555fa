package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/telesales/callops-service/internal/config"
	"github.com/telesales/callops-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventProtocolCreated, n.handleProtocolCreated)
	n.dispatcher.Subscribe(events.EventProtocolStatusChanged, n.handleProtocolStatusChanged)
	n.dispatcher.Subscribe(events.EventProtocolReassigned, n.handleProtocolReassigned)
	n.dispatcher.Subscribe(events.EventTasksImported, n.handleTasksImported)
}

func (n *NotificationService) handleProtocolCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ProtocolCreated", zap.String("actor_id", event.ActorID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleProtocolStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ProtocolStatusChanged", zap.String("actor_id", event.ActorID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleProtocolReassigned(ctx context.Context, event events.Event) error {
	n.logger.Info("ProtocolReassigned", zap.String("actor_id", event.ActorID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleTasksImported(ctx context.Context, event events.Event) error {
	n.logger.Info("TasksImported", zap.String("actor_id", event.ActorID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_type", string(event.Type)))
}
