package controllers

import (
	"errors"

	"tts-guard-backend/config"
	"tts-guard-backend/middleware"
	"tts-guard-backend/token"
	"tts-guard-backend/users/services"
	"tts-guard-backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AuthController struct {
	Users *services.UserService
	App   *middleware.AppContext
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ac *AuthController) LoginUser(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request", err)
	}

	user, err := ac.Users.Authenticate(c.UserContext(), req.Email, req.Password, c.IP())
	switch {
	case errors.Is(err, services.ErrTooManyAttempts):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   "Too many login attempts. Try again in a minute.",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   "Invalid email or password.",
		})
	case err != nil:
		return utils.RespondError(c, "Authentication failed", err)
	}

	tokens, err := ac.App.IssueSession(token.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return utils.RespondError(c, "Could not start session", err)
	}
	middleware.SetSessionCookies(c, tokens)

	config.Logger.Info("User logged in", zap.String("email", user.Email), zap.String("client_ip", c.IP()))
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"data":    user,
	})
}

func (ac *AuthController) LogoutUser(c *fiber.Ctx) error {
	if refreshToken := c.Cookies("refresh_token"); refreshToken != "" {
		if err := ac.App.Sessions.Delete(ac.App.Ctx, refreshToken); err != nil {
			config.Logger.Error("Failed to revoke refresh token during logout", zap.Error(err))
		}
	}
	middleware.ClearSessionCookies(c)

	config.Logger.Info("User logged out", zap.String("client_ip", c.IP()))
	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
		"data":    nil,
	})
}

// Me returns the account behind the current session.
func (ac *AuthController) Me(c *fiber.Ctx) error {
	payload, ok := c.Locals("user").(*token.Payload)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Unauthorized",
			"error":   "Authentication required",
		})
	}
	user, err := ac.Users.GetUser(c.UserContext(), payload.UserID)
	if err != nil {
		return utils.RespondError(c, "Failed to load profile", err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile retrieved",
		"data":    user,
	})
}
