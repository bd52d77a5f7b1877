package repositories

import (
	"context"

	"usersvc/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create inserts the user and sets its generated ID.
	Create(ctx context.Context, user *models.User) error
	// GetAll returns every user in the store's native order.
	GetAll(ctx context.Context) ([]models.User, error)
	Ping(ctx context.Context) error
}
