package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/commerce-kit/backoffice-core/internal/domain"
)

// orderPayload mirrors the API's order representation.
type orderPayload struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	FinalAmount     float64 `json:"final_amount"`
	PaymentStatus   string  `json:"payment_status"`
	AssignedStaffID *string `json:"assigned_staff_id,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	StaffNotes      *string `json:"staff_notes,omitempty"`
}

func (p orderPayload) toDomain() *domain.Order {
	return &domain.Order{
		ID:              p.ID,
		Status:          domain.OrderStatus(p.Status),
		FinalAmount:     p.FinalAmount,
		PaymentStatus:   p.PaymentStatus,
		AssignedStaffID: p.AssignedStaffID,
		Notes:           p.Notes,
		StaffNotes:      p.StaffNotes,
	}
}

type updateStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes,omitempty"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type assignRequest struct {
	StaffID string `json:"staff_id"`
}

// OrdersClient exposes the order endpoints through the authorized pipeline.
type OrdersClient struct {
	pipeline *Pipeline
}

// NewOrdersClient builds the order client.
func NewOrdersClient(pipeline *Pipeline) *OrdersClient {
	return &OrdersClient{pipeline: pipeline}
}

// Get fetches the current server-side order.
func (c *OrdersClient) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	var resp orderPayload
	if err := c.pipeline.Do(ctx, http.MethodGet, fmt.Sprintf("/orders/%s", orderID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// UpdateStatus issues PUT /orders/{id}/status and returns the server's order.
func (c *OrdersClient) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, notes *string) (*domain.Order, error) {
	var resp orderPayload
	req := updateStatusRequest{Status: string(status), Notes: notes}
	if err := c.pipeline.Do(ctx, http.MethodPut, fmt.Sprintf("/orders/%s/status", orderID), req, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// Cancel issues POST /orders/{id}/cancel and returns the server's order.
func (c *OrdersClient) Cancel(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	var resp orderPayload
	if err := c.pipeline.Do(ctx, http.MethodPost, fmt.Sprintf("/orders/%s/cancel", orderID), cancelRequest{Reason: reason}, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}

// Assign issues PUT /orders/{id}/assign and returns the server's order.
func (c *OrdersClient) Assign(ctx context.Context, orderID, staffID string) (*domain.Order, error) {
	var resp orderPayload
	if err := c.pipeline.Do(ctx, http.MethodPut, fmt.Sprintf("/orders/%s/assign", orderID), assignRequest{StaffID: staffID}, &resp); err != nil {
		return nil, err
	}
	return resp.toDomain(), nil
}
