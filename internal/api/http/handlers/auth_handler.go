package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/api/dto"
	"github.com/wahid-dev1/semina/internal/service"
	apperrors "github.com/wahid-dev1/semina/pkg/util/errorutil"
)

// AuthHandler exposes login, session and password endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	res, err := h.authService.Login(c.UserContext(), req.Email, req.Password, clientInfo(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(res)})
}

// LoginQR handles POST /auth/login-qr.
func (h *AuthHandler) LoginQR(c *fiber.Ctx) error {
	var req dto.QRLoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Code == "" {
		return apperrors.NewValidationError("code required", nil)
	}

	res, err := h.authService.LoginWithQR(c.UserContext(), req.Code, clientInfo(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(res)})
}

// Refresh handles POST /auth/refresh.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.RefreshToken == "" {
		return apperrors.NewValidationError("refresh_token required", nil)
	}

	res, err := h.authService.Refresh(c.UserContext(), req.RefreshToken, clientInfo(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": authResponse(res)})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	if err := h.authService.Logout(c.UserContext(), principal, clientInfo(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	summary, err := h.authService.Me(c.UserContext(), principal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": principalResponse(*summary)})
}

// Sessions handles GET /auth/sessions.
func (h *AuthHandler) Sessions(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	sessions, err := h.authService.ListSessions(c.UserContext(), principal)
	if err != nil {
		return err
	}
	resp := make([]dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		resp = append(resp, sessionResponse(&sessions[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// ChangePassword handles POST /auth/password/change.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	var req dto.PasswordChangeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return apperrors.NewValidationError("current and new password required", nil)
	}
	if err := h.authService.ChangePassword(c.UserContext(), principal, req.CurrentPassword, req.NewPassword, clientInfo(c)); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
