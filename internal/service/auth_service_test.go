package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/Fluffaro/desk-cartel/internal/config"
	"github.com/Fluffaro/desk-cartel/internal/domain"
	"github.com/Fluffaro/desk-cartel/internal/repository/memory"
	apperrors "github.com/Fluffaro/desk-cartel/pkg/util"
)

func newAuthService() (*AuthService, *memory.Store) {
	store := memory.NewStore()
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}, store.Users())
	return svc, store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Frodo", "Frodo@Example.com", "longpassword")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "frodo@example.com" {
		t.Errorf("email = %s, want lowercased", user.Email)
	}
	if user.Role != domain.UserRoleUser {
		t.Errorf("role = %s, want USER", user.Role)
	}
	if user.PasswordHash == "longpassword" {
		t.Error("password stored in plaintext")
	}

	got, token, _, err := svc.Login(ctx, "frodo@example.com", "longpassword")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("login returned user %s, want %s", got.ID, user.ID)
	}
	claims, err := svc.TokenManager().ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token subject = %s, want %s", claims.UserID, user.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Frodo", "frodo@example.com", "longpassword"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, "Imposter", "frodo@example.com", "otherpassword")
	domainErr := apperrors.ToDomainError(err)
	if domainErr == nil || domainErr.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	svc, _ := newAuthService()

	_, err := svc.Register(context.Background(), "Frodo", "frodo@example.com", "short")
	domainErr := apperrors.ToDomainError(err)
	if domainErr == nil || domainErr.Code != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %v", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Frodo", "frodo@example.com", "longpassword"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Wrong password and unknown email must be indistinguishable.
	_, _, _, wrongPass := svc.Login(ctx, "frodo@example.com", "wrongpassword")
	_, _, _, unknown := svc.Login(ctx, "nobody@example.com", "longpassword")
	for _, err := range []error{wrongPass, unknown} {
		domainErr := apperrors.ToDomainError(err)
		if domainErr == nil || domainErr.Code != "UNAUTHORIZED" {
			t.Errorf("expected UNAUTHORIZED, got %v", err)
		}
	}
}
