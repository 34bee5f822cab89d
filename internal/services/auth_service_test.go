package services

import (
	"context"
	"testing"
	"time"

	"github.com/civic-reports/backend/internal/apperr"
	"github.com/civic-reports/backend/internal/auth"
	"github.com/civic-reports/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeCredentialStore struct {
	users map[string]*models.StaffUser
	hash  map[string]string
}

func (s *fakeCredentialStore) GetCredentials(_ context.Context, email string) (*models.StaffUser, string, error) {
	u, ok := s.users[email]
	if !ok {
		return nil, "", apperr.NotFound("staff user not found")
	}
	return u, s.hash[email], nil
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	creds := &fakeCredentialStore{
		users: map[string]*models.StaffUser{
			"ana@city.gov": {ID: 1, Name: "Ana Torres", Email: "ana@city.gov", Role: models.RoleStaff, Department: "public_works", Active: true},
		},
		hash: map[string]string{"ana@city.gov": string(hash)},
	}
	svc := NewAuthService(creds, "test-secret", time.Hour, zap.NewNop())

	t.Run("valid credentials", func(t *testing.T) {
		res, err := svc.Login(context.Background(), "  Ana@City.gov ", "s3cret-pw")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		claims, err := auth.ParseJWT("test-secret", res.Token)
		if err != nil {
			t.Fatalf("ParseJWT: %v", err)
		}
		if claims.StaffID != 1 || claims.Role != models.RoleStaff || claims.Department != "public_works" {
			t.Errorf("claims = %+v", claims)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Login(context.Background(), "ana@city.gov", "wrong"); !apperr.IsType(err, apperr.TypeUnauthorized) {
			t.Errorf("err = %v, want unauthorized", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := svc.Login(context.Background(), "ghost@city.gov", "s3cret-pw"); !apperr.IsType(err, apperr.TypeUnauthorized) {
			t.Errorf("err = %v, want unauthorized", err)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		if _, err := svc.Login(context.Background(), "", ""); !apperr.IsType(err, apperr.TypeValidation) {
			t.Errorf("err = %v, want validation_error", err)
		}
	})
}
