package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mealmafia/mealmafia-go/internal/model"
	"github.com/mealmafia/mealmafia-go/internal/repository"
)

// UserStore is the persistence the user service needs. It is satisfied by
// the Mongo, MySQL and in-memory repositories.
type UserStore interface {
	UpsertByEmail(ctx context.Context, user *model.User) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SetRole(ctx context.Context, id, role string) (model.UpdateResult, error)
}

// UserService handles user business logic.
type UserService struct {
	store UserStore
	now   func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore) *UserService {
	return &UserService{store: store, now: time.Now}
}

// Upsert stores the user on first sight of its email and returns the stored
// document. Later calls with the same email return that document unchanged.
func (s *UserService) Upsert(ctx context.Context, user model.User) (*model.User, error) {
	user.Email = strings.TrimSpace(user.Email)
	if user.Email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(user.FullName) == "" {
		return nil, ErrFullNameRequired
	}

	// Roles are granted only through SetRole.
	user.Role = ""
	user.Timestamp = s.now().UnixMilli()

	stored, err := s.store.UpsertByEmail(ctx, &user)
	if err != nil {
		return nil, storageError(err)
	}
	return stored, nil
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, storageError(err)
	}
	return users, nil
}

// SetRole changes the role of the user with the given id. An empty role
// means admin.
func (s *UserService) SetRole(ctx context.Context, id, role string) (model.UpdateResult, error) {
	if role == "" {
		role = model.RoleAdmin
	}
	if role != model.RoleAdmin && role != model.RoleUser {
		return model.UpdateResult{}, ErrInvalidRole
	}

	res, err := s.store.SetRole(ctx, id, role)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidID) {
			return model.UpdateResult{}, ErrInvalidID
		}
		return model.UpdateResult{}, storageError(err)
	}
	return res, nil
}

// Role returns the persisted role for email, empty when none is set.
func (s *UserService) Role(ctx context.Context, email string) (string, error) {
	user, err := s.get(ctx, email)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// RequireAdmin reads the current role of email from storage on every call.
// It returns ErrNotAdmin when the user is unknown or not an admin.
func (s *UserService) RequireAdmin(ctx context.Context, email string) error {
	user, err := s.get(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrNotAdmin
		}
		return err
	}
	if !user.IsAdmin() {
		return ErrNotAdmin
	}
	return nil
}

func (s *UserService) get(ctx context.Context, email string) (*model.User, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError(err)
	}
	return user, nil
}
