package controllers

import (
	"tts-guard-backend/db/models"
	"tts-guard-backend/users/services"
	"tts-guard-backend/utils"
	"tts-guard-backend/utils/pagination"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Users *services.UserService
}

type createUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (uc *UserController) CreateUser(c *fiber.Ctx) error {
	var req createUserRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Invalid request body", err)
	}

	user, err := uc.Users.CreateUser(c.UserContext(), services.CreateUserRequest{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.Role(req.Role),
	}, utils.ActorFromLocals(c.Locals("user")))
	if err != nil {
		return utils.RespondError(c, "Failed to create user", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user,
	})
}

func (uc *UserController) GetFilteredUsers(c *fiber.Ctx) error {
	params := pagination.ParsePaginationParams(c)
	if err := pagination.ValidatePaginationParams(params); err != nil {
		return utils.BadRequest(c, "Invalid pagination parameters", err)
	}

	users, total, err := uc.Users.ListUsers(params.PageSize, params.Offset(), params.Filters)
	if err != nil {
		return utils.RespondError(c, "Failed to fetch users", err)
	}
	return c.JSON(pagination.NewPaginatedResponse(c, users, total, params))
}

func (uc *UserController) UpdateUserStatus(c *fiber.Ctx) error {
	id, err := utils.ParseUUIDParam("user id", c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid user id", err)
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequest(c, "Invalid request body", err)
	}

	user, err := uc.Users.SetActive(c.UserContext(), id, body.Active)
	if err != nil {
		return utils.RespondError(c, "Failed to update user", err)
	}
	return c.JSON(fiber.Map{
		"message": "User updated",
		"data":    user,
	})
}
