package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avolkov/url-shortener/internal/database"
	"github.com/avolkov/url-shortener/internal/models"
)

// ErrInvalidCredentials is returned when a login or token check fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines the interface for working with users at the business logic layer.
type UserRepository interface {
	Create(ctx context.Context, id, username, email, passwordHash string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenClaims are the JWT claims issued on registration and login.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// AuthService registers users and issues HS256-signed tokens that carry the
// user ID used for ownership checks.
type AuthService struct {
	userRepo UserRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(userRepo UserRepository, secret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// Register creates a user with a bcrypt-hashed password and returns a signed
// token. Duplicate usernames or emails surface database.ErrUserExists.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, error) {
	const op = "service.AuthService.Register"

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := s.userRepo.Create(ctx, uuid.NewString(), username, email, string(hash))
	if err != nil {
		return "", fmt.Errorf("%s: failed to register user: %w", op, err)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("%s: failed to issue token: %w", op, err)
	}

	return token, nil
}

// Login checks the credentials and returns a signed token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	const op = "service.AuthService.Login"

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return "", fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("%s: failed to issue token: %w", op, err)
	}

	return token, nil
}

// VerifyToken parses a signed token and returns the user ID it carries.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	const op = "service.AuthService.VerifyToken"

	claims := new(TokenClaims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return claims.UserID, nil
}

func (s *AuthService) issueToken(userID string) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
		UserID: userID,
	})

	return token.SignedString(s.secret)
}
