package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/commerce-kit/backoffice-core/internal/api/dto"
	"github.com/commerce-kit/backoffice-core/internal/domain"
	"github.com/commerce-kit/backoffice-core/internal/service"
	apperrors "github.com/commerce-kit/backoffice-core/pkg/util"
)

// SessionHandler exposes the session lifecycle to the UI collaborator.
type SessionHandler struct {
	sessions *service.SessionManager
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Login handles POST /session/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	identity, err := h.sessions.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": identityResponse(identity)})
}

// Logout handles POST /session/logout.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out"}})
}

// Current handles GET /session.
func (h *SessionHandler) Current(c *fiber.Ctx) error {
	identity := h.sessions.CurrentIdentity()
	if identity == nil {
		return apperrors.NewUnauthenticated("no active session")
	}
	return c.JSON(fiber.Map{"data": identityResponse(identity)})
}

func identityResponse(identity *domain.Identity) dto.IdentityResponse {
	return dto.IdentityResponse{
		ID:       identity.ID,
		Email:    identity.Email,
		FullName: identity.FullName,
		Role:     string(identity.Role),
		Status:   string(identity.Status),
	}
}
