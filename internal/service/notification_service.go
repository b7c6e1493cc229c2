package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/commerce-kit/backoffice-core/internal/config"
	"github.com/commerce-kit/backoffice-core/internal/events"
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
	n.dispatcher.Subscribe(events.EventOrderTransitionApplied, n.handleOrderTransition)
	n.dispatcher.Subscribe(events.EventOrderStaffAssigned, n.handleOrderAssigned)
	n.dispatcher.Subscribe(events.EventSessionStarted, n.handleSessionEvent)
	n.dispatcher.Subscribe(events.EventSessionRenewed, n.handleSessionEvent)
	n.dispatcher.Subscribe(events.EventSessionEnded, n.handleSessionEvent)
}

func (n *NotificationService) handleOrderTransition(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderTransitionApplied", zap.String("order_id", event.OrderID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleOrderAssigned(ctx context.Context, event events.Event) error {
	n.logger.Info("OrderStaffAssigned", zap.String("order_id", event.OrderID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSessionEvent(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("operator_id", event.Actor.OperatorID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("order_id", event.OrderID),
		zap.String("event_type", string(event.Type)))
}
