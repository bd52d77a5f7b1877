package services

import (
	"context"
	"errors"

	"usersvc/internal/models"
	"usersvc/internal/repositories"

	"github.com/sirupsen/logrus"
)

// ErrEmailRejected is returned when the validation service does not accept an email.
var ErrEmailRejected = errors.New("email rejected by validation service")

// EmailValidator decides whether an email may be registered.
type EmailValidator interface {
	Validate(ctx context.Context, email string) (bool, error)
}

// EventPublisher announces users that were created.
type EventPublisher interface {
	PublishUserCreated(user *models.User) error
}

// UserService handles business logic related to user registration.
type UserService struct {
	repo      repositories.UserRepository
	cache     repositories.UserCache
	validator EmailValidator
	publisher EventPublisher // optional
}

// NewUserService creates a new UserService. publisher may be nil.
func NewUserService(repo repositories.UserRepository, cache repositories.UserCache, validator EmailValidator, publisher EventPublisher) *UserService {
	return &UserService{
		repo:      repo,
		cache:     cache,
		validator: validator,
		publisher: publisher,
	}
}

// CreateUser validates the email, inserts the user and caches the stored record.
//
// A rejected email returns ErrEmailRejected before anything is written. The
// insert and the cache write are independent steps: when the cache write fails
// the row stays in the store and the error is still returned to the caller.
func (s *UserService) CreateUser(ctx context.Context, email, firstname string) (*models.User, error) {
	ok, err := s.validator.Validate(ctx, email)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEmailRejected
	}

	user := &models.User{Email: email, Firstname: firstname}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.cache.Put(ctx, user.ID, user.Record()); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishUserCreated(user); err != nil {
			logrus.WithError(err).WithField("user_id", user.ID).Warn("Failed to publish user created event")
		}
	}

	return user, nil
}

// ListUsers retrieves all users.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.GetAll(ctx)
}
