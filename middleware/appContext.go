package middleware

import (
	"context"
	"fmt"
	"time"

	"tts-guard-backend/config"
	"tts-guard-backend/token"

	"github.com/gofiber/fiber/v2"
)

const (
	AccessTokenDuration  = 15 * time.Minute
	RefreshTokenDuration = 7 * 24 * time.Hour
)

// AppContext bundles what the auth middleware and the login handlers share.
type AppContext struct {
	PasetoMaker token.Maker
	Ctx         context.Context
	Sessions    token.SessionStore
}

type SessionTokens struct {
	AccessToken  string
	RefreshToken string
}

// IssueSession mints an access/refresh pair and registers the refresh token.
func (a *AppContext) IssueSession(subject token.Subject) (SessionTokens, error) {
	access, err := a.PasetoMaker.CreateToken(subject, AccessTokenDuration)
	if err != nil {
		return SessionTokens{}, fmt.Errorf("create access token: %w", err)
	}
	refresh, err := a.PasetoMaker.CreateToken(subject, RefreshTokenDuration)
	if err != nil {
		return SessionTokens{}, fmt.Errorf("create refresh token: %w", err)
	}
	if err := a.Sessions.Save(a.Ctx, refresh, subject.UserID.String(), RefreshTokenDuration); err != nil {
		return SessionTokens{}, err
	}
	return SessionTokens{AccessToken: access, RefreshToken: refresh}, nil
}

func sessionCookie(name, value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    value,
		Expires:  expires,
		HTTPOnly: true,
		Secure:   config.GetEnvBool("COOKIE_SECURE", false),
		SameSite: config.GetEnvDefault("COOKIE_SAMESITE", "Lax"),
		Path:     "/",
		Domain:   config.GetEnv("COOKIE_DOMAIN"),
	}
}

func SetSessionCookies(c *fiber.Ctx, tokens SessionTokens) {
	now := time.Now()
	c.Cookie(sessionCookie("access_token", tokens.AccessToken, now.Add(AccessTokenDuration)))
	c.Cookie(sessionCookie("refresh_token", tokens.RefreshToken, now.Add(RefreshTokenDuration)))
}

// ClearSessionCookies expires both cookies on the client.
func ClearSessionCookies(c *fiber.Ctx) {
	past := time.Now().Add(-time.Hour)
	c.Cookie(sessionCookie("access_token", "", past))
	c.Cookie(sessionCookie("refresh_token", "", past))
}
