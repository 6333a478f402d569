package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/campusconnect/internal/app/models"
	"github.com/yigit/campusconnect/internal/app/repositories"
	"github.com/yigit/campusconnect/internal/pkg/apperrors"
	"github.com/yigit/campusconnect/internal/pkg/auth"
	"github.com/yigit/campusconnect/internal/pkg/email"
	"github.com/yigit/campusconnect/internal/pkg/validation"
)

// AuthOptions are the signup policies taken from configuration
type AuthOptions struct {
	EmailRule               *validation.CollegeEmailRule
	MinPasswordLength       int
	ExposeVerificationToken bool
}

// SignupResult is the outcome of a successful signup
type SignupResult struct {
	User *models.User
	// Set only when tokens are exposed for local development
	VerificationToken string
}

// LoginResult is a session token with its user
type LoginResult struct {
	Token     string
	ExpiresIn int
	User      *models.User
}

// Caller is the identity attached to an authenticated request
type Caller struct {
	ID               int64
	Email            string
	Verified         bool
	ProfileCompleted bool
}

// AuthService handles signup, verification and sessions
type AuthService struct {
	users      UserStore
	jwtService *auth.JWTService
	mailer     email.EmailService
	options    AuthOptions
	logger     zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	users UserStore,
	jwtService *auth.JWTService,
	mailer email.EmailService,
	options AuthOptions,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		jwtService: jwtService,
		mailer:     mailer,
		options:    options,
		logger:     logger,
	}
}

// Signup registers an unverified account and sends the verification email
func (s *AuthService) Signup(ctx context.Context, name, emailAddr, password string) (*SignupResult, error) {
	name = strings.TrimSpace(name)
	emailAddr = validation.NormalizeEmail(emailAddr)

	if name == "" || emailAddr == "" || password == "" {
		return nil, apperrors.NewValidationError("Name, email, and password are required")
	}
	if len(name) > validation.NameMaxLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Name must be at most %d characters", validation.NameMaxLength))
	}
	if !validation.EmailPattern.MatchString(emailAddr) {
		return nil, apperrors.NewValidationError("Invalid email format")
	}
	if !s.options.EmailRule.Allows(emailAddr) {
		return nil, apperrors.NewValidationError("Only college/university email addresses are allowed")
	}
	if len(password) < s.options.MinPasswordLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Password must be at least %d characters", s.options.MinPasswordLength))
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	token := uuid.New().String()
	user := &models.User{
		Name:              name,
		Email:             emailAddr,
		Password:          hashed,
		VerificationToken: &token,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("email", emailAddr).Msg("Failed to create user")
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	// delivery failures do not undo the signup; the token stays valid
	if err := s.mailer.SendVerificationEmail(user.Email, user.Name, token); err != nil {
		s.logger.Error().Err(err).Int64("userID", user.ID).Msg("Failed to send verification email")
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User signed up")

	result := &SignupResult{User: user}
	if s.options.ExposeVerificationToken {
		result.VerificationToken = token
	}
	return result, nil
}

// VerifyEmail consumes a verification token
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.NewValidationError("Verification token required")
	}

	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NewValidationError("Invalid or expired verification token")
		}
		return fmt.Errorf("error verifying email: %w", err)
	}
	if user.IsVerified {
		return apperrors.NewValidationError("Email already verified")
	}

	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("error verifying email: %w", err)
	}

	if err := s.mailer.SendWelcomeEmail(user.Email, user.Name); err != nil {
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to send welcome email")
	}

	s.logger.Info().Int64("userID", user.ID).Msg("Email verified")
	return nil
}

// Login checks credentials and issues a session token
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (*LoginResult, error) {
	emailAddr = validation.NormalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return nil, apperrors.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}

	if !auth.CheckPassword(user.Password, password) {
		s.logger.Debug().Int64("userID", user.ID).Msg("Login rejected, wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return nil, apperrors.ErrEmailNotVerified
	}

	token, expiresIn, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User logged in")

	return &LoginResult{Token: token, ExpiresIn: expiresIn, User: user}, nil
}

// Logout is stateless; clients discard the token
func (s *AuthService) Logout(_ context.Context, userID int64) {
	s.logger.Debug().Int64("userID", userID).Msg("User logged out")
}

// ResolveCaller loads the current state of the user behind a token. It runs
// on every authenticated request so verification and profile changes apply
// immediately.
func (s *AuthService) ResolveCaller(ctx context.Context, userID int64) (*Caller, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewUnauthenticatedError("User not found").WithCode(apperrors.CodeInvalidToken)
		}
		return nil, fmt.Errorf("error resolving caller: %w", err)
	}

	return &Caller{
		ID:               user.ID,
		Email:            user.Email,
		Verified:         user.IsVerified,
		ProfileCompleted: user.ProfileCompleted,
	}, nil
}

// EnsureProfileCompleted returns an error unless userID is verified and has
// completed their profile. Long lived connections call it before each write.
func (s *AuthService) EnsureProfileCompleted(ctx context.Context, userID int64) error {
	caller, err := s.ResolveCaller(ctx, userID)
	if err != nil {
		return err
	}
	if !caller.Verified {
		return apperrors.ErrEmailNotVerified
	}
	if !caller.ProfileCompleted {
		return apperrors.ErrProfileNotCompleted
	}
	return nil
}
