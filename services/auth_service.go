// File: /services/auth_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"eventhub-api/models"
	"eventhub-api/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 7 * 24 * time.Hour

type AuthService struct {
	store     *repositories.Store
	jwtSecret string
	now       func() time.Time
}

func NewAuthService(store *repositories.Store, jwtSecret string) *AuthService {
	return &AuthService{store: store, jwtSecret: jwtSecret, now: utcNow}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  models.User  `json:"user"`
	Host  *models.Host `json:"host,omitempty"`
}

// Register creates a USER or HOST account. HOST accounts get a host profile
// in the same transaction.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role := models.RoleUser
	if req.Role != "" {
		parsed, ok := ParseSelfServiceRole(req.Role)
		if !ok {
			return nil, BadRequest("role must be USER or HOST")
		}
		role = parsed
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.store.FindUserByEmail(ctx, email); err == nil {
		return nil, BadRequest("email already registered")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, Internal("check email", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Internal("failed to hash password", err)
	}

	user := models.User{
		ID:       uuid.New().String(),
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Password: string(hashed),
		Role:     role,
		Location: req.Location,
	}
	var host *models.Host

	err = s.store.Transaction(ctx, func(tx *repositories.Store) error {
		if err := tx.CreateUser(ctx, &user); err != nil {
			return Internal("failed to create user", err)
		}
		if role != models.RoleHost {
			return nil
		}
		host = &models.Host{
			ID:     uuid.New().String(),
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Bio:    req.Bio,
		}
		if err := tx.CreateHost(ctx, host); err != nil {
			return Internal("failed to create host profile", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.IssueToken(&user)
	if err != nil {
		return nil, Internal("failed to generate token", err)
	}
	return &AuthResponse{Token: token, User: user, Host: host}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, Internal("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, Unauthorized("invalid credentials")
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return nil, Internal("failed to generate token", err)
	}
	return &AuthResponse{Token: token, User: *user}, nil
}

// IssueToken signs an HS256 token carrying the user id, email and role.
func (s *AuthService) IssueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    string(user.Role),
		"exp":     s.now().Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseSelfServiceRole accepts the roles a user may pick at registration.
func ParseSelfServiceRole(s string) (models.Role, bool) {
	role, ok := models.ParseRole(s)
	if !ok || role == models.RoleAdmin {
		return "", false
	}
	return role, true
}
