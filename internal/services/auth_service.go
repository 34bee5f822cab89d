package services

import (
	"context"
	"strings"
	"time"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/auth"
	"github.com/civic-reports/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CredentialStore is the lookup the login flow needs; *repositories.StaffRepo
// satisfies it.
type CredentialStore interface {
	GetCredentials(ctx context.Context, email string) (*models.StaffUser, string, error)
}

type AuthService struct {
	creds         CredentialStore
	jwtSecret     string
	jwtExpiration time.Duration
	log           *zap.Logger
}

func NewAuthService(creds CredentialStore, jwtSecret string, jwtExpiration time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{creds: creds, jwtSecret: jwtSecret, jwtExpiration: jwtExpiration, log: log}
}

type LoginResult struct {
	Token string            `json:"token"`
	User  *models.StaffUser `json:"user"`
}

// Login verifies the email and password and issues a JWT. Lookup failures and
// bad passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	user, hash, err := s.creds.GetCredentials(ctx, email)
	if err != nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		s.log.Info("failed login attempt", zap.String("email", email))
		return nil, apperr.Unauthorized("invalid credentials")
	}

	token, err := auth.GenerateJWT(s.jwtSecret, user.ID, user.Role, user.Department, s.jwtExpiration)
	if err != nil {
		return nil, apperr.Internal("could not issue token")
	}
	return &LoginResult{Token: token, User: user}, nil
}
