package handlers

import (
	"errors"
	"fmt"

	"usersvc/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CreateUserRequest is the body of POST /api/users, as JSON or form fields.
type CreateUserRequest struct {
	Email     string `json:"email" form:"email" validate:"required"`
	Firstname string `json:"firstname" form:"firstname" validate:"required"`
}

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service  *services.UserService
	validate *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the user routes with the Fiber app.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	userRoutes := router.Group("/users")
	userRoutes.Post("/", h.HandleCreateUser)
	userRoutes.Get("/", h.HandleListUsers)
}

// HandleCreateUser registers a new user whose email passed validation.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		logrus.WithError(err).Debug("Error parsing create user request body")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	user, err := h.service.CreateUser(c.UserContext(), req.Email, req.Firstname)
	if errors.Is(err, services.ErrEmailRejected) {
		c.Status(fiber.StatusForbidden)
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to create user: %w", err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleListUsers returns every stored user.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	users, err := h.service.ListUsers(c.UserContext())
	if err != nil {
		return fmt.Errorf("unable to fetch users: %w", err)
	}
	return c.Status(fiber.StatusOK).JSON(users)
}
