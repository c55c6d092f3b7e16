// Package auth registers users, checks passwords and issues the bearer
// tokens the HTTP layer uses to scope every ledger call to one user.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"budget/internal/core"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTokenTTL   = 7 * 24 * time.Hour
	DefaultBcryptCost = 10
)

// ErrInvalidCredentials covers unknown emails, wrong passwords and bad
// tokens alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Options struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
}

type Service struct {
	users core.UserStore
	opts  Options
	now   func() time.Time
}

type Session struct {
	Token string    `json:"token"`
	User  core.User `json:"-"`
}

func NewService(users core.UserStore, opts Options) *Service {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = DefaultBcryptCost
	}
	return &Service{users: users, opts: opts, now: time.Now}
}

// NormalizeEmail lower-cases and trims an address so lookups match the
// stored form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(name, email, password string) error {
	ve := &core.ValidationError{}
	if n := utf8.RuneCountInString(strings.TrimSpace(name)); n < 2 || n > 80 {
		ve.Add("name", "name must be between 2 and 80 characters")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		ve.Add("email", "email must be a valid address")
	}
	if n := len(password); n < 8 || n > 100 {
		ve.Add("password", "password must be between 8 and 100 characters")
	}
	return ve.OrNil()
}

// Register creates the user and returns a session token. A taken email
// yields core.ErrConflict.
func (s *Service) Register(ctx context.Context, name, email, password string) (Session, error) {
	email = NormalizeEmail(email)
	if err := validateRegistration(name, email, password); err != nil {
		return Session{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if core.IsConflict(err) {
			return Session{}, fmt.Errorf("email already registered: %w", core.ErrConflict)
		}
		return Session{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID)
	return s.issue(user)
}

// Login checks the password and returns a fresh token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.users.FindUserByEmail(ctx, NormalizeEmail(email))
	if core.IsNotFound(err) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		slog.InfoContext(ctx, "Login rejected", "user_id", user.ID)
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(user)
}

// Me returns the profile of an authenticated user.
func (s *Service) Me(ctx context.Context, userID string) (core.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	return user, nil
}

// Verify resolves a bearer token to its user id.
func (s *Service) Verify(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidCredentials
	}
	claims, err := ParseToken(s.opts.Secret, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return claims.UserID, nil
}

func (s *Service) issue(user core.User) (Session, error) {
	token, err := GenerateToken(s.opts.Secret, user.ID, s.opts.TokenTTL, s.now())
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}
