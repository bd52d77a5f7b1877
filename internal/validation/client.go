// Package validation talks to the external email validation service.
package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ResultValid is the only result value that accepts an email.
const ResultValid = "valid"

// ServiceError reports a validation call that produced no usable verdict.
type ServiceError struct {
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("validation service responded with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("validation service unreachable: %v", e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Client calls GET {baseURL}/validate?email=... on the validation service.
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient creates a Client. A non-positive timeout falls back to five seconds.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// Validate reports whether the service accepts email.
//
// An unreachable service and any non-200 status are indistinguishable from an
// explicit rejection: both yield false with a nil error and are only logged.
// Any JSON body whose "result" is not the string "valid" is a rejection too.
// The error is non-nil when a 200 response carries a body that is not JSON, or
// when ctx ends before the service answers.
func (c *Client) Validate(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, context.DeadlineExceeded
		}
		if remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Get(c.baseURL + "/validate")
	agent.QueryString(url.Values{"email": []string{email}}.Encode())
	agent.Timeout(timeout)

	// fasthttp requests are not context-aware; the call stays bounded by timeout.
	done := make(chan reply, 1)
	go func() {
		code, body, errs := agent.Bytes()
		done <- reply{code: code, body: body, errs: errs}
	}()

	var r reply
	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case r = <-done:
	}

	if len(r.errs) > 0 {
		logrus.WithError(&ServiceError{Err: errors.Join(r.errs...)}).
			WithField("email", email).
			Warn("Email validation service unreachable, treating email as invalid")
		return false, nil
	}
	if r.code != fiber.StatusOK {
		logrus.WithField("status", r.code).
			WithField("email", email).
			Warn("Email validation service returned non-200, treating email as invalid")
		return false, nil
	}

	var payload any
	if err := json.Unmarshal(r.body, &payload); err != nil {
		return false, &ServiceError{StatusCode: r.code, Err: fmt.Errorf("decode response: %w", err)}
	}
	fields, _ := payload.(map[string]any)
	result, _ := fields["result"].(string)
	return result == ResultValid, nil
}

type reply struct {
	code int
	body []byte
	errs []error
}
