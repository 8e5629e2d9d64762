package middleware

import (
	"strings"

	"tts-guard-backend/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// InitCors allows the dashboard frontend origins listed in ALLOWED_ORIGINS.
func InitCors(app *fiber.App) {
	origins := config.GetEnvList("ALLOWED_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, Cookie",
		AllowCredentials: true,
	}))
}
