package events

import (
	"time"

	"github.com/commerce-kit/backoffice-core/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventOrderTransitionApplied EventType = "order_transition_applied"
	EventOrderStaffAssigned     EventType = "order_staff_assigned"
	EventSessionStarted         EventType = "session_started"
	EventSessionRenewed         EventType = "session_renewed"
	EventSessionEnded           EventType = "session_ended"
)

// Actor encapsulates the operator behind an event.
type Actor struct {
	OperatorID string      `json:"operator_id,omitempty"`
	Role       domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	OrderID   string      `json:"order_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// OrderTransitionAppliedPayload payload.
type OrderTransitionAppliedPayload struct {
	OldStatus domain.OrderStatus `json:"old_status"`
	NewStatus domain.OrderStatus `json:"new_status"`
	Note      string             `json:"note,omitempty"`
	Reason    string             `json:"reason,omitempty"`
}

// OrderStaffAssignedPayload payload.
type OrderStaffAssignedPayload struct {
	StaffID string `json:"staff_id"`
}

// SessionStartedPayload payload.
type SessionStartedPayload struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// SessionEndedPayload payload.
type SessionEndedPayload struct {
	Reason string `json:"reason"`
}
