package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/tasknest/core/internal/domain/entities"
	"github.com/tasknest/core/internal/infrastructure/config"
	"github.com/tasknest/core/internal/infrastructure/logger"
	"github.com/tasknest/core/internal/ports"
)

// Claims represents the JWT claims. The user id is the only custom claim.
type Claims struct {
	UserID int64 `json:"id"`
	jwt.RegisteredClaims
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo    ports.UserRepository
	jwtConfig   config.JWTConfig
	bcryptCost  int
	mirrorPlain bool
	logger      *logger.Logger
}

// PasswordHashCost is the bcrypt cost factor for stored passwords
const PasswordHashCost = 10

// NewAuthService creates a new auth service
func NewAuthService(userRepo ports.UserRepository, jwtConfig config.JWTConfig, security config.SecurityConfig, logger *logger.Logger) *AuthService {
	cost := security.BcryptCost
	if cost == 0 {
		cost = PasswordHashCost
	}

	return &AuthService{
		userRepo:    userRepo,
		jwtConfig:   jwtConfig,
		bcryptCost:  cost,
		mirrorPlain: security.PlainPasswordMirror,
		logger:      logger,
	}
}

// Register creates a new user account
func (s *AuthService) Register(ctx context.Context, req ports.RegisterRequest) (*entities.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return nil, entities.Validation("Name, email and password are required")
	}

	// Check if user already exists
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, entities.Conflict("User already exists")
	}
	if err != nil && !errors.Is(err, entities.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Name:          name,
		Email:         email,
		PasswordHash:  string(hashedPassword),
		PasswordPlain: s.plainMirror(req.Password),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)

	return user, nil
}

// Login authenticates a user and returns a signed token with profile fields
func (s *AuthService) Login(ctx context.Context, req ports.LoginRequest) (*ports.LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, entities.Validation("Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			s.logger.Warn("Login attempt with non-existent email", "email", email)
			return nil, entities.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Login attempt with invalid password", "email", email, "user_id", user.ID)
		return nil, entities.ErrInvalidCredentials
	}

	token, err := s.generateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)

	return &ports.LoginResponse{
		Token:         token,
		UserID:        user.ID,
		Name:          user.Name,
		Email:         user.Email,
		PasswordPlain: deref(user.PasswordPlain),
	}, nil
}

// UpdateName trims and stores a new display name
func (s *AuthService) UpdateName(ctx context.Context, userID int64, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", entities.Validation("Name is required")
	}

	if err := s.userRepo.UpdateName(ctx, userID, name); err != nil {
		return "", err
	}

	s.logger.LogUserAction(userID, "update_name", nil)

	return name, nil
}

// GetPassword returns the cleartext mirror, empty when none is stored
func (s *AuthService) GetPassword(ctx context.Context, userID int64) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}

	return deref(user.PasswordPlain), nil
}

// ChangePassword rotates the password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req ports.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return entities.Validation("Current password and new password are required")
	}
	if utf8.RuneCountInString(req.NewPassword) < entities.MinPasswordLength {
		return entities.Validation("New password must be at least %d characters", entities.MinPasswordLength)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		s.logger.Warn("Password change with incorrect current password", "user_id", userID)
		return entities.BadRequest("Current password is incorrect")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, string(hashedPassword), s.plainMirror(req.NewPassword)); err != nil {
		return err
	}

	s.logger.LogUserAction(userID, "change_password", nil)

	return nil
}

// ValidateToken validates a JWT token and returns the user id it carries
func (s *AuthService) ValidateToken(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, entities.ErrInvalidToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.Secret), nil
	})
	if err != nil {
		return 0, entities.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return 0, entities.ErrInvalidToken
	}

	return claims.UserID, nil
}

func (s *AuthService) generateAccessToken(userID int64) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtConfig.ExpiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// plainMirror returns the value stored in passwordPlain
func (s *AuthService) plainMirror(password string) *string {
	if !s.mirrorPlain {
		return nil
	}
	return &password
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
