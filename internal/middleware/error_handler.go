package middleware

import (
	"errors"
	"runtime/debug"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
)

// stackLocalKey holds the stack of a recovered panic until ErrorHandler logs it.
const stackLocalKey = "panic_stack"

// ErrorHandler is the fiber error boundary. Errors raised with fiber.NewError keep
// their status; every other error is logged once and answered with a generic 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"message": fe.Message,
		})
	}

	entry := requestLogger(c).WithError(err)
	if stack, ok := c.Locals(stackLocalKey).(string); ok {
		entry = entry.WithField("stack", stack)
	}
	entry.Error("Request failed")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Internal Server Error",
	})
}

// Recover turns handler panics into errors for ErrorHandler, keeping the stack for its log entry.
func Recover() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, _ interface{}) {
			c.Locals(stackLocalKey, string(debug.Stack()))
		},
	})
}

func requestLogger(c *fiber.Ctx) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"request_id": c.Locals(requestid.ConfigDefault.ContextKey),
		"method":     c.Method(),
		"path":       c.Path(),
	})
}
