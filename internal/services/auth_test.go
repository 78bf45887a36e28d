package services

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/repos"
	"github.com/tooltag/tooltag-backend/internal/types"
)

func newAuthEnv(t *testing.T, cfg AuthConfig) (AuthService, *testEnv) {
	t.Helper()
	env := newTestEnv(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := env.db.Create(&types.AdminCredential{Username: "ADMINISTRADOR", PasswordHash: string(hash)}).Error; err != nil {
		t.Fatalf("seed credential: %v", err)
	}

	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	if cfg.TTL == 0 {
		cfg.TTL = time.Hour
	}
	adminRepo := repos.NewAdminRepo(env.db, env.log)
	return NewAuthService(env.db, env.log, adminRepo, cfg), env
}

func TestLoginAndVerify(t *testing.T) {
	auth, _ := newAuthEnv(t, AuthConfig{})
	ctx := context.Background()

	token, err := auth.Login(ctx, "administrador", "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	username, err := auth.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if username != "ADMINISTRADOR" {
		t.Fatalf("username = %s", username)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	auth, _ := newAuthEnv(t, AuthConfig{})
	ctx := context.Background()

	if _, err := auth.Login(ctx, "ADMINISTRADOR", "wrong"); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := auth.Login(ctx, "nobody", "hunter22"); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestVerifyRejectsGarbageToken(t *testing.T) {
	auth, _ := newAuthEnv(t, AuthConfig{})

	if _, err := auth.Verify("not-a-token"); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestResetCredentials(t *testing.T) {
	auth, _ := newAuthEnv(t, AuthConfig{FactoryUser: "FACTORY", FactoryPass: "factory-pass"})
	ctx := context.Background()

	if err := auth.ResetCredentials(ctx, "FACTORY", "wrong", "newadmin", "newpass"); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if err := auth.ResetCredentials(ctx, "FACTORY", "factory-pass", "newadmin", "abc"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation for short password, got %v", err)
	}
	if err := auth.ResetCredentials(ctx, "FACTORY", "factory-pass", "newadmin", "newpass"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if _, err := auth.Login(ctx, "ADMINISTRADOR", "hunter22"); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("old credentials still work: %v", err)
	}
	token, err := auth.Login(ctx, "newadmin", "newpass")
	if err != nil {
		t.Fatalf("login with new credentials: %v", err)
	}
	if username, err := auth.Verify(token); err != nil || username != "newadmin" {
		t.Fatalf("verify new session: %s, %v", username, err)
	}
}

func TestResetDisabledWithoutFactoryCredentials(t *testing.T) {
	auth, _ := newAuthEnv(t, AuthConfig{})

	err := auth.ResetCredentials(context.Background(), "any", "any", "newadmin", "newpass")
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
