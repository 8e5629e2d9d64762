package middleware

import (
	"errors"

	"tts-guard-backend/config"
	"tts-guard-backend/token"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func unauthorized(c *fiber.Ctx, reason string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Unauthorized",
		"error":   reason,
	})
}

// ProtectedRoute accepts a valid access token cookie. Failing that it
// rotates the refresh token: the old one is consumed and a new pair is set.
func ProtectedRoute(ctx *AppContext) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := c.Cookies("access_token")
		refreshToken := c.Cookies("refresh_token")

		if accessToken != "" {
			payload, err := ctx.PasetoMaker.VerifyToken(accessToken)
			if err == nil {
				c.Locals("user", payload)
				return c.Next()
			}
			config.Logger.Debug("Invalid access token encountered", zap.Error(err))
		}

		if refreshToken == "" {
			return unauthorized(c, "Authentication required")
		}

		refreshPayload, err := ctx.PasetoMaker.VerifyToken(refreshToken)
		if err != nil {
			config.Logger.Warn("Refresh token verification failed", zap.Error(err))
			return unauthorized(c, "Session expired or invalid. Please log in again.")
		}

		userID, err := ctx.Sessions.Take(ctx.Ctx, refreshToken)
		if errors.Is(err, token.ErrSessionNotFound) {
			config.Logger.Warn("Refresh token not recognised",
				zap.String("payload_id", refreshPayload.ID.String()),
				zap.String("email", refreshPayload.Email))
			return unauthorized(c, "Session invalid. Please log in again.")
		}
		if err != nil {
			config.Logger.Error("Error validating refresh token",
				zap.String("email", refreshPayload.Email),
				zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Something went wrong",
				"error":   "An internal server error occurred.",
			})
		}

		tokens, err := ctx.IssueSession(refreshPayload.Subject())
		if err != nil {
			config.Logger.Error("Could not rotate session",
				zap.String("user_id", userID),
				zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Something went wrong",
				"error":   "An internal server error occurred.",
			})
		}
		SetSessionCookies(c, tokens)

		c.Locals("user", refreshPayload)
		return c.Next()
	}
}

// RequireRole rejects authenticated users whose role is not listed.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload, ok := c.Locals("user").(*token.Payload)
		if !ok {
			return unauthorized(c, "Authentication required")
		}
		for _, role := range roles {
			if payload.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Forbidden",
			"error":   "Your role does not allow this action",
		})
	}
}
