package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/lyceo/charge-api/internal/models"
	"github.com/lyceo/charge-api/pkg/config"
	appErrors "github.com/lyceo/charge-api/pkg/errors"
)

type teacherAccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.TeacherAccount, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

// LoginRequest captures the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued token alongside the account.
type LoginResponse struct {
	Token     string                `json:"token"`
	ExpiresAt time.Time             `json:"expires_at"`
	Teacher   models.TeacherAccount `json:"teacher"`
}

// AuthService issues and validates access tokens for planning staff.
type AuthService struct {
	repo      teacherAccountRepository
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.JWTConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo teacherAccountRepository, validate *validator.Validate, logger *zap.Logger, cfg config.JWTConfig) *AuthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, cfg: cfg}
}

// Login authenticates a teacher and returns an access token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	account, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch account")
	}

	if !account.Active {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "account is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.cfg.Expiration)
	claims := models.TokenClaims{
		Email: account.Email,
		Name:  account.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   account.ID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	if err := s.repo.UpdateLastLogin(ctx, account.ID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	return &LoginResponse{Token: token, ExpiresAt: expiresAt, Teacher: *account}, nil
}

// ValidateToken parses and verifies an access token.
func (s *AuthService) ValidateToken(token string) (*models.TokenClaims, error) {
	claims := &models.TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unexpected signing method")
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	return claims, nil
}
