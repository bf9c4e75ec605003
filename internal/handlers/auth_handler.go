package handlers

import (
	"watchlist-backend/internal/apperror"
	"watchlist-backend/internal/middleware"
	"watchlist-backend/internal/services"
	"watchlist-backend/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	users  services.UserService
	logger *logrus.Logger
}

func NewAuthHandler(users services.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		logger: logger,
	}
}

// Register godoc
// @Summary Register a new account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body services.RegisterInput true "Account details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	result, err := h.users.Register(c.UserContext(), input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusCreated, "Account created", result)
}

// Login godoc
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body services.LoginInput true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := parseBody(c, &input); err != nil {
		return err
	}

	result, err := h.users.Login(c.UserContext(), input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "Logged in", result)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, err := h.users.GetUser(c.UserContext(), middleware.OwnerID(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "", user)
}

// GetUser godoc
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *AuthHandler) GetUser(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.NewNotFound("User")
	}

	user, err := h.users.GetUser(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.StatusOK, "", user)
}
