package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/nutriscan/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

var emailRegex = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)

// RegisterRequest is the sign-up form
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ChangePasswordRequest replaces a user's password after checking the current one
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Session is returned after a successful login
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Profile   *domain.Profile `json:"profile"`
}

// AuthServiceConfig holds configuration for the auth service
type AuthServiceConfig struct {
	BcryptCost int
}

// AuthService handles registration, login and password management
type AuthService struct {
	users      domain.UserRepository
	profiles   domain.ProfileRepository
	tokens     domain.TokenIssuer
	bcryptCost int
	now        func() time.Time
	logger     *zap.Logger
}

// NewAuthService creates a new auth service with dependencies
func NewAuthService(
	users domain.UserRepository,
	profiles domain.ProfileRepository,
	tokens domain.TokenIssuer,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	cost := config.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:      users,
		profiles:   profiles,
		tokens:     tokens,
		bcryptCost: cost,
		now:        time.Now,
		logger:     logger.Named("auth"),
	}
}

// ValidatePassword checks the password policy and returns the first rule broken
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return domain.NewValidationError("Password must be at least 6 characters long")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return domain.NewValidationError("Password must contain at least one uppercase letter")
	}
	if !hasLower {
		return domain.NewValidationError("Password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return domain.NewValidationError("Password must contain at least one number")
	}
	return nil
}

// ValidateEmail reports whether email looks like an address
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Register creates an account and an empty profile for it
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" || email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, domain.NewValidationError("Please fill in all fields")
	}
	if len(username) < minUsernameLength {
		return nil, domain.NewValidationError("Username must be at least 3 characters long")
	}
	if !ValidateEmail(email) {
		return nil, domain.NewValidationError("Please enter a valid email address")
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if req.Password != req.ConfirmPassword {
		return nil, domain.NewValidationError("Passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Username:     username,
		Email:        email,
		Name:         username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// A missing profile reads as empty, so the account stays usable
	if err := s.profiles.Save(ctx, username, &domain.Profile{}); err != nil {
		s.logger.Warn("failed to initialize profile", zap.String("username", username), zap.Error(err))
	}

	s.logger.Info("user registered", zap.String("username", username))
	return user, nil
}

// Login verifies credentials and returns a signed session with the stored profile
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, domain.NewValidationError("Please fill in all fields")
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed", zap.String("username", username))
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	profile, err := s.profiles.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Username:  user.Username,
		Email:     user.Email,
		Name:      user.Name,
		Profile:   profile,
	}, nil
}

// ResetPassword replaces the password of the account matching username and
// email with a generated temporary password, which is returned once
func (s *AuthService) ResetPassword(ctx context.Context, username, email string) (string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return "", domain.NewValidationError("Please fill in all fields")
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", fmt.Errorf("%w: invalid username or email", domain.ErrInvalidCredentials)
		}
		return "", err
	}
	if !strings.EqualFold(user.Email, email) {
		return "", fmt.Errorf("%w: invalid username or email", domain.ErrInvalidCredentials)
	}

	temp := temporaryPassword()
	if err := s.setPassword(ctx, user, temp); err != nil {
		return "", err
	}

	s.logger.Info("password reset", zap.String("username", username))
	return temp, nil
}

// ChangePassword sets a new password after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, username string, req ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return domain.NewValidationError("Please fill in all fields")
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return fmt.Errorf("%w: current password is incorrect", domain.ErrInvalidCredentials)
	}
	if err := ValidatePassword(req.NewPassword); err != nil {
		return err
	}
	if req.NewPassword != req.ConfirmPassword {
		return domain.NewValidationError("Passwords do not match")
	}

	return s.setPassword(ctx, user, req.NewPassword)
}

func (s *AuthService) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = s.now().UTC()
	return s.users.Update(ctx, user)
}

// temporaryPassword returns a random password that satisfies ValidatePassword
func temporaryPassword() string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "Nx" + random[:10] + "9"
}
