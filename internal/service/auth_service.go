package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/moses-maker/educore-api/internal/dto"
	"github.com/moses-maker/educore-api/internal/models"
	"github.com/moses-maker/educore-api/internal/repository"
)

// PasswordHasher abstracts the credential hashing capability.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns the default bcrypt-backed hasher.
func NewBcryptHasher() PasswordHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h *bcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RequestMeta carries transport details for audit entries created by auth
// operations.
type RequestMeta struct {
	IPAddress string
	UserAgent string
	Method    string
	Path      string
}

// AuthService handles registration, credential checks and token issuance.
type AuthService interface {
	Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error)
	Login(ctx context.Context, payload dto.LoginRequest, meta RequestMeta) (dto.TokenResponse, error)
	Logout(ctx context.Context, actor Actor, meta RequestMeta)
	ChangePassword(ctx context.Context, actor Actor, payload dto.ChangePasswordRequest) error
}

type authService struct {
	users     repository.UserRepository
	hasher    PasswordHasher
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(users repository.UserRepository, hasher PasswordHasher, audit AuditRecorder, validate *validator.Validate, jwtSecret string, tokenTTL time.Duration, logger zerolog.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	return &authService{
		users:     users,
		hasher:    hasher,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "auth_service").Logger(),
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// Register creates a student or lecturer account. Admin accounts cannot be
// self-registered.
func (s *authService) Register(ctx context.Context, payload dto.RegisterRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, err
	}

	if payload.Password != payload.PasswordConfirm {
		return dto.UserResponse{}, fmt.Errorf("passwords do not match: %w", ErrValidation)
	}

	role := models.RoleStudent
	if payload.Role != "" {
		role = models.UserRole(payload.Role)
	}

	hash, err := s.hasher.Hash(payload.Password)
	if err != nil {
		return dto.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        strings.ToLower(strings.TrimSpace(payload.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(payload.FirstName),
		LastName:     strings.TrimSpace(payload.LastName),
		Role:         role,
		PhoneNumber:  strings.TrimSpace(payload.PhoneNumber),
		Bio:          sanitizeText(payload.Bio),
		IsActive:     true,
	}

	if err := s.users.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.UserResponse{}, fmt.Errorf("email already registered: %w", ErrConflict)
		}
		return dto.UserResponse{}, err
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")

	return dto.NewUserResponse(user), nil
}

// Login verifies credentials and issues a signed token. Both successful and
// failed attempts are audited.
func (s *authService) Login(ctx context.Context, payload dto.LoginRequest, meta RequestMeta) (dto.TokenResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TokenResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordLogin(ctx, nil, meta, false, "unknown email")
			return dto.TokenResponse{}, ErrInvalidCredentials
		}
		return dto.TokenResponse{}, err
	}

	if !user.IsActive || !s.hasher.Verify(user.PasswordHash, payload.Password) {
		s.recordLogin(ctx, &user.ID, meta, false, "invalid credentials")
		return dto.TokenResponse{}, ErrInvalidCredentials
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  issuedAt.Unix(),
		"exp":  expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.jwtSecret))
	if err != nil {
		return dto.TokenResponse{}, fmt.Errorf("failed to sign token: %w", err)
	}

	lastLogin := issuedAt
	user.LastLogin = &lastLogin
	if err := s.users.Update(ctx, &user); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", user.ID).Msg("failed to stamp last login")
	}

	s.recordLogin(ctx, &user.ID, meta, true, "")

	return dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        dto.NewUserResponse(user),
	}, nil
}

// Logout only audits the event; tokens are stateless and expire on their
// own.
func (s *authService) Logout(ctx context.Context, actor Actor, meta RequestMeta) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		UserID:        &actor.ID,
		Action:        models.AuditActionLogout,
		Description:   "user logged out",
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
		RequestMethod: meta.Method,
		RequestPath:   meta.Path,
		Success:       true,
	})
}

// ChangePassword verifies the old credential before storing a new hash.
func (s *authService) ChangePassword(ctx context.Context, actor Actor, payload dto.ChangePasswordRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	if payload.NewPassword != payload.NewPasswordConfirm {
		return fmt.Errorf("passwords do not match: %w", ErrValidation)
	}

	user, err := s.users.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if !s.hasher.Verify(user.PasswordHash, payload.OldPassword) {
		return ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(payload.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user.PasswordHash = hash
	if err := s.users.Update(ctx, &user); err != nil {
		return err
	}

	s.logger.Info().Uint("user_id", user.ID).Msg("password changed")
	return nil
}

func (s *authService) recordLogin(ctx context.Context, userID *uint, meta RequestMeta, success bool, reason string) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, AuditEntry{
		UserID:        userID,
		Action:        models.AuditActionLogin,
		Description:   "login attempt",
		IPAddress:     meta.IPAddress,
		UserAgent:     meta.UserAgent,
		RequestMethod: meta.Method,
		RequestPath:   meta.Path,
		Success:       success,
		ErrorMessage:  reason,
	})
}
