package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/commerce-kit/backoffice-core/internal/api/dto"
	"github.com/commerce-kit/backoffice-core/internal/domain"
	"github.com/commerce-kit/backoffice-core/internal/service"
	apperrors "github.com/commerce-kit/backoffice-core/pkg/util"
)

// OrdersHandler exposes the order workflow to the UI collaborator.
type OrdersHandler struct {
	workflow *service.OrderWorkflowService
	sessions *service.SessionManager
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(workflow *service.OrderWorkflowService, sessions *service.SessionManager) *OrdersHandler {
	return &OrdersHandler{workflow: workflow, sessions: sessions}
}

// Get handles GET /orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	order, err := h.workflow.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.orderResponse(order)})
}

// UpdateStatus handles PUT /orders/:id/status.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Status == "" {
		return fiber.NewError(http.StatusBadRequest, "status required")
	}

	order, err := h.workflow.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	payload := service.TransitionPayload{Note: req.Note}
	updated, err := h.workflow.RequestTransition(c.UserContext(), order, domain.OrderStatus(req.Status), h.sessions.CurrentIdentity(), payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.orderResponse(updated)})
}

// Cancel handles POST /orders/:id/cancel.
func (h *OrdersHandler) Cancel(c *fiber.Ctx) error {
	var req dto.CancelRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	order, err := h.workflow.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	payload := service.TransitionPayload{Reason: req.Reason}
	updated, err := h.workflow.RequestTransition(c.UserContext(), order, domain.OrderStatusCancelled, h.sessions.CurrentIdentity(), payload)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.orderResponse(updated)})
}

// Assign handles PUT /orders/:id/assign.
func (h *OrdersHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.StaffID == "" {
		return apperrors.NewInvalidPayload("staff id required", map[string]any{"field": "staff_id"})
	}

	order, err := h.workflow.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	updated, err := h.workflow.AssignStaff(c.UserContext(), order, req.StaffID, h.sessions.CurrentIdentity())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.orderResponse(updated)})
}

// orderResponse projects the order plus the transitions the current operator
// may take from its status. The transition table is the only source of truth;
// this list exists for menu filtering, nothing enforces from it.
func (h *OrdersHandler) orderResponse(order *domain.Order) dto.OrderResponse {
	identity := h.sessions.CurrentIdentity()
	allowed := []string{}
	for _, next := range domain.AllowedNext(order.Status) {
		rule, ok := domain.TransitionFor(order.Status, next)
		if !ok {
			continue
		}
		for _, role := range rule.Roles {
			if identity != nil && identity.Role == role {
				allowed = append(allowed, string(next))
				break
			}
		}
	}
	return dto.OrderResponse{
		ID:              order.ID,
		Status:          string(order.Status),
		FinalAmount:     order.FinalAmount,
		PaymentStatus:   order.PaymentStatus,
		AssignedStaffID: order.AssignedStaffID,
		Notes:           order.Notes,
		StaffNotes:      order.StaffNotes,
		AllowedNext:     allowed,
	}
}
