package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/todolist/todo-api/internal/core/domain"
	"github.com/todolist/todo-api/internal/core/ports"
	"github.com/todolist/todo-api/internal/pkg/password"
)

// PasswordVerifier checks a plaintext password against its stored hash.
// DummyHash is verified against when no account matches, so both paths
// cost the same.
type PasswordVerifier interface {
	Verify(plain, encoded string) error
	NeedsRehash(encoded string) bool
	DummyHash() string
}

// AuthService implements registration and login.
type AuthService struct {
	repo      ports.UserRepository
	verifier  PasswordVerifier
	jwtSecret string
	tokenTTL  time.Duration
	logger    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, verifier PasswordVerifier, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, verifier: verifier, jwtSecret: jwtSecret, tokenTTL: tokenTTL, logger: logger}
}

// Register creates an account. The repository hashes the password on save.
func (s *AuthService) Register(ctx context.Context, username, email, plain string) (*domain.User, error) {
	user := domain.NewUser(username, email, plain)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID.Hex()).Msg("user registered")
	return user, nil
}

// Login checks credentials and issues a signed token. Hashes produced by an
// older algorithm or weaker parameters are replaced on success.
func (s *AuthService) Login(ctx context.Context, email, plain string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || plain == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = s.verifier.Verify(plain, s.verifier.DummyHash())
		}
		return "", nil, err
	}

	if err := s.verifier.Verify(plain, user.Password); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			s.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("stored password hash unreadable")
		}
		return "", nil, domain.ErrInvalidCredentials
	}

	if s.verifier.NeedsRehash(user.Password) {
		user.SetPassword(plain)
		if err := s.repo.Save(ctx, user); err != nil {
			s.logger.Warn().Err(err).Str("user_id", user.ID.Hex()).Msg("password rehash failed")
		}
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// CurrentUser loads the account identified by a token subject.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.FindByID(ctx, oid)
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID.Hex(),
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
