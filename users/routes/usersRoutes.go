package routes

import (
	"tts-guard-backend/db/models"
	"tts-guard-backend/middleware"
	"tts-guard-backend/users/controllers"
	"tts-guard-backend/users/services"

	"github.com/gofiber/fiber/v2"
)

// AuthRouterInit registers login on api, then returns the group every other
// route must be mounted on. Login has to be registered before the protected
// group's middleware.
func AuthRouterInit(api fiber.Router, users *services.UserService, appCtx *middleware.AppContext) fiber.Router {
	auth := &controllers.AuthController{Users: users, App: appCtx}
	userController := &controllers.UserController{Users: users}

	api.Post("/auth/login", auth.LoginUser)

	protected := api.Group("", middleware.ProtectedRoute(appCtx))
	protected.Post("/auth/logout", auth.LogoutUser)
	protected.Get("/auth/me", auth.Me)

	admin := middleware.RequireRole(string(models.AdminRole))
	protected.Get("/users", admin, userController.GetFilteredUsers)
	protected.Post("/users", admin, userController.CreateUser)
	protected.Patch("/users/:id/status", admin, userController.UpdateUserStatus)
	return protected
}
