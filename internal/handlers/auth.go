package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/shopsphere/internal/middleware"
	"github.com/example/shopsphere/internal/services"
)

// AuthHandler bundles dependencies for authentication endpoints.
type AuthHandler struct {
	auth *services.AuthService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	userID, err := h.auth.Register(c.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return serviceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user_id": userID,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	MFACode  string `json:"mfa_code"`
}

// Login authenticates an existing user, optionally with a TOTP code.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.auth.Login(c.Context(), req.Email, req.Password, req.MFACode)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   session.Token,
		"user":    session.User,
	})
}

type oauthLoginRequest struct {
	Provider    string `json:"provider"`
	AccessToken string `json:"access_token"`
}

// OAuthLogin signs a user in with a provider-issued access token.
func (h *AuthHandler) OAuthLogin(c *fiber.Ctx) error {
	var req oauthLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	session, err := h.auth.OAuthLogin(c.Context(), req.Provider, req.AccessToken)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"token":   session.Token,
		"user":    session.User,
	})
}

type enableMFARequest struct {
	Code string `json:"code"`
}

// EnableMFA turns on MFA for the authenticated user.
func (h *AuthHandler) EnableMFA(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req enableMFARequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.auth.EnableMFA(c.Context(), userID, req.Code); err != nil {
		return serviceError(err)
	}

	return c.JSON(fiber.Map{"success": true, "mfa_enabled": true})
}

// Logout invalidates the current session token. Safe to call twice.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.auth.Logout(c.Context(), middleware.GetCurrentToken(c))
	return c.JSON(fiber.Map{"success": true})
}
