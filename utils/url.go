package utils

import (
	"fmt"
	"path/filepath"

	"tts-guard-backend/config"

	"github.com/gofiber/fiber/v2"
)

// GetDownloadURL returns the absolute URL of an exported file served from
// /public/files. PUBLIC_BASE_URL overrides the request host.
func GetDownloadURL(c *fiber.Ctx, filePath string) string {
	name := filepath.Base(filePath)
	if base := config.GetEnv("PUBLIC_BASE_URL"); base != "" {
		return fmt.Sprintf("%s/public/files/%s", base, name)
	}
	scheme := "http"
	if config.GetEnv("APP_ENV") == "production" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/public/files/%s", scheme, c.Hostname(), name)
}
