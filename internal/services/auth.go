package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/eduequip/eduequip/internal/models"
	"github.com/eduequip/eduequip/internal/store"
	"github.com/eduequip/eduequip/internal/utils"
	"github.com/eduequip/eduequip/pkg/logger"
)

// MinPasswordLength is the shortest password accepted on rotation.
const MinPasswordLength = 6

// Session lifetimes. There is no server-side session table; the locally
// persisted user plus expiry timestamp is the session.
const (
	sessionDuration  = 24 * time.Hour
	rememberDuration = 3 * 24 * time.Hour
)

// LoginStatus is the outcome of a login attempt.
type LoginStatus int

const (
	// LoginRejected covers unknown users and wrong passwords alike.
	LoginRejected LoginStatus = iota
	// LoginMustRotate means the credentials were valid but the account is
	// flagged for forced password rotation; no session was established.
	LoginMustRotate
	// LoginAuthenticated means a session was established.
	LoginAuthenticated
)

// LoginResult is returned from Login. User carries the pending account for
// LoginMustRotate and the session user for LoginAuthenticated.
type LoginResult struct {
	Status    LoginStatus
	User      *models.User
	ExpiresAt time.Time
}

// AuthService verifies credentials and manages the persisted session.
type AuthService struct {
	users *UserService
	local *store.LocalStore
}

func NewAuthService(users *UserService, local *store.LocalStore) *AuthService {
	return &AuthService{users: users, local: local}
}

// Login authenticates a user by username or email. Authorization failures are
// reported through the result status, never as an error.
func (s *AuthService) Login(ctx context.Context, login, password string, remember bool) LoginResult {
	user, ok := s.users.FindByLogin(ctx, login)
	if !ok {
		return LoginResult{Status: LoginRejected}
	}

	if !verifyPassword(user, password) {
		return LoginResult{Status: LoginRejected}
	}

	if user.MustChangePassword {
		return LoginResult{Status: LoginMustRotate, User: user}
	}

	return s.establishSession(ctx, user, remember)
}

// verifyPassword checks the supplied plaintext against the stored hash.
// Accounts without a stored hash predate password storage; for those the
// literal password "admin" or the username itself is accepted. This is a
// migration shim carried over deliberately, not a security guarantee.
func verifyPassword(user *models.User, password string) bool {
	if user.PasswordHash == "" {
		return password == "admin" || password == user.Username
	}
	return utils.CheckPassword(password, user.PasswordHash)
}

func (s *AuthService) establishSession(ctx context.Context, user *models.User, remember bool) LoginResult {
	now := time.Now()

	user.LastLogin = now.UnixMilli()
	if err := s.users.Save(ctx, user, ""); err != nil {
		logger.Warn().Str("user", user.Username).Err(err).Msg("could not record last login")
	}

	duration := sessionDuration
	if remember {
		duration = rememberDuration
	}
	expiresAt := now.Add(duration)

	payload, err := json.Marshal(user)
	if err != nil {
		logger.Error().Err(err).Msg("could not serialize session user")
		return LoginResult{Status: LoginRejected}
	}
	if err := s.local.Set(store.KeyAuthUser, string(payload)); err != nil {
		logger.Error().Err(err).Msg("could not persist session user")
		return LoginResult{Status: LoginRejected}
	}
	if err := s.local.Set(store.KeyAuthExpiry, strconv.FormatInt(expiresAt.UnixMilli(), 10)); err != nil {
		logger.Error().Err(err).Msg("could not persist session expiry")
		return LoginResult{Status: LoginRejected}
	}

	return LoginResult{Status: LoginAuthenticated, User: user, ExpiresAt: expiresAt}
}

// Restore loads the persisted session on startup. An expired or malformed
// session is cleared as if the user had logged out; there is no renewal.
func (s *AuthService) Restore() (*models.User, bool) {
	rawUser, okUser, err := s.local.Get(store.KeyAuthUser)
	if err != nil || !okUser {
		return nil, false
	}
	rawExpiry, okExpiry, err := s.local.Get(store.KeyAuthExpiry)
	if err != nil || !okExpiry {
		s.Logout()
		return nil, false
	}

	expiryMillis, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil || time.Now().UnixMilli() >= expiryMillis {
		s.Logout()
		return nil, false
	}

	var user models.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		s.Logout()
		return nil, false
	}
	return &user, true
}

// Logout clears the persisted session. It is idempotent.
func (s *AuthService) Logout() {
	if err := s.local.Remove(store.KeyAuthUser); err != nil {
		logger.Warn().Err(err).Msg("could not clear session user")
	}
	if err := s.local.Remove(store.KeyAuthExpiry); err != nil {
		logger.Warn().Err(err).Msg("could not clear session expiry")
	}
}

// UpdatePassword completes a forced rotation: the new password is validated,
// hashed and written back with the rotation flag cleared, then an ordinary
// login establishes the session transparently.
func (s *AuthService) UpdatePassword(ctx context.Context, user *models.User, newPassword, confirm string, remember bool) (LoginResult, error) {
	if len(newPassword) < MinPasswordLength {
		return LoginResult{Status: LoginRejected}, fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if newPassword != confirm {
		return LoginResult{Status: LoginRejected}, fmt.Errorf("passwords do not match")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return LoginResult{Status: LoginRejected}, err
	}

	updated := *user
	updated.PasswordHash = hash
	updated.MustChangePassword = false
	if err := s.users.Save(ctx, &updated, ""); err != nil {
		return LoginResult{Status: LoginRejected}, err
	}

	return s.Login(ctx, updated.Username, newPassword, remember), nil
}
