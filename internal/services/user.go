package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/eduequip/eduequip/internal/models"
	"github.com/eduequip/eduequip/internal/store"
	"github.com/eduequip/eduequip/internal/utils"
	"github.com/eduequip/eduequip/pkg/logger"
)

// UserService manages user accounts through the persistence gateway.
type UserService struct {
	gw *store.Gateway
}

func NewUserService(gw *store.Gateway) *UserService {
	return &UserService{gw: gw}
}

// List returns all users. The built-in administrator (id "1") is synthesized
// and prepended when the backing collection does not contain it.
func (s *UserService) List(ctx context.Context) []models.User {
	records := s.gw.List(ctx, store.CollectionUsers)

	users := make([]models.User, 0, len(records))
	for _, rec := range records {
		var user models.User
		if err := store.FromRecord(rec, &user); err != nil {
			logger.Warn().Str("id", rec.ID()).Err(err).Msg("skipping malformed user record")
			continue
		}
		users = append(users, user)
	}

	for _, user := range users {
		if user.ID == models.AdminUserID {
			return users
		}
	}
	return append(models.SeedUsers(), users...)
}

// FindByLogin looks a user up by username or email, case-insensitively.
func (s *UserService) FindByLogin(ctx context.Context, login string) (*models.User, bool) {
	for _, user := range s.List(ctx) {
		if strings.EqualFold(user.Username, login) || strings.EqualFold(user.Email, login) {
			return &user, true
		}
	}
	return nil, false
}

// Save upserts a user. newPassword, when non-empty, is an administrator
// resetting the account's password: it is hashed and the user is forced to
// rotate it at next login regardless of the previous flag.
func (s *UserService) Save(ctx context.Context, user *models.User, newPassword string) error {
	if user.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(user.Username) == "" {
		return fmt.Errorf("username is required")
	}
	for _, other := range s.List(ctx) {
		if other.ID != user.ID && strings.EqualFold(other.Username, user.Username) {
			return fmt.Errorf("username %q is already taken", user.Username)
		}
	}

	if newPassword != "" {
		if len(newPassword) < MinPasswordLength {
			return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
		}
		hash, err := utils.HashPassword(newPassword)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		user.MustChangePassword = true
	}

	rec, err := store.ToRecord(user)
	if err != nil {
		return err
	}
	return s.gw.Save(ctx, store.CollectionUsers, rec)
}

// Delete removes a user. The built-in administrator cannot be deleted.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if id == models.AdminUserID {
		return fmt.Errorf("the built-in administrator cannot be deleted")
	}
	return s.gw.Delete(ctx, store.CollectionUsers, id)
}
