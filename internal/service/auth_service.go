package service

import (
	"context"
	"crypto/subtle"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-siswa-web/internal/models"
	appErrors "github.com/noah-isme/sma-siswa-web/pkg/errors"
)

// AuthConfig holds the single accepted credential pair.
type AuthConfig struct {
	Username string
	Password string
}

// AuthService checks login attempts against the configured credential.
// There is no user store, lockout or password hashing.
type AuthService struct {
	config  AuthConfig
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(config AuthConfig, metrics *MetricsService, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{config: config, metrics: metrics, logger: logger}
}

// Login returns nil when the credentials match, otherwise an
// INVALID_CREDENTIALS error carrying the user facing message.
func (s *AuthService) Login(_ context.Context, req models.LoginRequest) error {
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.config.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.config.Password)) == 1
	if s.config.Username == "" || !userOK || !passOK {
		s.metrics.RecordLogin(false)
		s.logger.Info("login rejected", zap.String("username", req.Username), zap.String("ip", req.IP))
		return appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	s.metrics.RecordLogin(true)
	s.logger.Info("login accepted", zap.String("username", req.Username), zap.String("ip", req.IP))
	return nil
}
