package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/commerce-kit/backoffice-core/internal/auth"
	"github.com/commerce-kit/backoffice-core/internal/domain"
	"github.com/commerce-kit/backoffice-core/internal/events"
	"github.com/commerce-kit/backoffice-core/internal/remote"
	apperrors "github.com/commerce-kit/backoffice-core/pkg/util"
)

// TransitionPayload carries the side-payload of a transition request.
// Cancellation requires a non-empty Reason; every other edge takes an
// optional Note.
type TransitionPayload struct {
	Note   string
	Reason string
}

// OrderWorkflowService enforces the order state machine before any
// state-changing call reaches the commerce API.
type OrderWorkflowService struct {
	orders     *remote.OrdersClient
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewOrderWorkflowService constructs the service.
func NewOrderWorkflowService(orders *remote.OrdersClient, dispatcher events.Dispatcher, logger *zap.Logger) *OrderWorkflowService {
	return &OrderWorkflowService{orders: orders, dispatcher: dispatcher, logger: logger}
}

// GetOrder fetches the current server-side order.
func (s *OrderWorkflowService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.orders.Get(ctx, orderID)
}

// RequestTransition validates a transition against the table, the caller's
// role, and the required payload, then issues it. All validation happens
// before any network call. The server's returned order is authoritative.
func (s *OrderWorkflowService) RequestTransition(ctx context.Context, order *domain.Order, target domain.OrderStatus, identity *domain.Identity, payload TransitionPayload) (*domain.Order, error) {
	rule, ok := domain.TransitionFor(order.Status, target)
	if !ok {
		return nil, apperrors.NewIllegalTransition(string(order.Status), string(target))
	}
	if err := auth.Authorize(identity, rule.Roles...); err != nil {
		return nil, err
	}

	var (
		updated *domain.Order
		err     error
	)
	if rule.RequiresReason {
		reason := strings.TrimSpace(payload.Reason)
		if reason == "" {
			return nil, apperrors.NewInvalidPayload("cancellation requires a non-empty reason",
				map[string]any{"field": "reason"})
		}
		updated, err = s.orders.Cancel(ctx, order.ID, reason)
	} else {
		var notes *string
		if note := strings.TrimSpace(payload.Note); note != "" {
			notes = &note
		}
		updated, err = s.orders.UpdateStatus(ctx, order.ID, target, notes)
	}
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventOrderTransitionApplied,
		OrderID: updated.ID,
		Actor:   events.Actor{OperatorID: identity.ID, Role: identity.Role},
		Payload: events.OrderTransitionAppliedPayload{
			OldStatus: order.Status,
			NewStatus: updated.Status,
			Note:      strings.TrimSpace(payload.Note),
			Reason:    strings.TrimSpace(payload.Reason),
		},
	})
	s.logger.Info("order transition applied",
		zap.String("order_id", updated.ID),
		zap.String("from", string(order.Status)),
		zap.String("to", string(updated.Status)),
		zap.String("operator_id", identity.ID),
	)
	return updated, nil
}

// AssignStaff sets the responsible staff member without touching status.
// Admin only.
func (s *OrderWorkflowService) AssignStaff(ctx context.Context, order *domain.Order, staffID string, identity *domain.Identity) (*domain.Order, error) {
	if err := auth.Authorize(identity, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if strings.TrimSpace(staffID) == "" {
		return nil, apperrors.NewInvalidPayload("staff id required", map[string]any{"field": "staff_id"})
	}

	updated, err := s.orders.Assign(ctx, order.ID, staffID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventOrderStaffAssigned,
		OrderID: updated.ID,
		Actor:   events.Actor{OperatorID: identity.ID, Role: identity.Role},
		Payload: events.OrderStaffAssignedPayload{StaffID: staffID},
	})
	return updated, nil
}

func (s *OrderWorkflowService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
