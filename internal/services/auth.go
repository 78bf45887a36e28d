package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/repos"
	"github.com/tooltag/tooltag-backend/internal/types"
)

type AuthService interface {
	// Login checks the credential row and returns a signed session token.
	Login(ctx context.Context, username, password string) (string, error)
	// Verify parses a session token and returns the embedded username.
	Verify(token string) (string, error)
	// ResetCredentials replaces the admin credential after the caller proves
	// knowledge of the factory credentials.
	ResetCredentials(ctx context.Context, factoryUser, factoryPass, newUser, newPass string) error
	SessionTTL() time.Duration
}

type AuthConfig struct {
	Secret      string
	TTL         time.Duration
	FactoryUser string
	FactoryPass string
}

type authService struct {
	db    *gorm.DB
	log   *logger.Logger
	admin repos.AdminRepo
	cfg   AuthConfig
}

func NewAuthService(db *gorm.DB, baseLog *logger.Logger, admin repos.AdminRepo, cfg AuthConfig) AuthService {
	return &authService{
		db:    db,
		log:   baseLog.With("service", "AuthService"),
		admin: admin,
		cfg:   cfg,
	}
}

func (s *authService) SessionTTL() time.Duration { return s.cfg.TTL }

func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	cred, err := s.admin.Get(ctx, nil)
	if err != nil {
		return "", err
	}
	if cred == nil || !strings.EqualFold(cred.Username, strings.TrimSpace(username)) {
		return "", apperr.E(apperr.KindUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", apperr.E(apperr.KindUnauthorized, "invalid credentials")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   cred.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", err
	}
	s.log.Info("Admin logged in", "username", cred.Username)
	return token, nil
}

func (s *authService) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.E(apperr.KindUnauthorized, "unexpected signing method")
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return "", apperr.E(apperr.KindUnauthorized, "invalid session")
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", apperr.E(apperr.KindUnauthorized, "invalid session")
	}
	return claims.Subject, nil
}

func (s *authService) ResetCredentials(ctx context.Context, factoryUser, factoryPass, newUser, newPass string) error {
	if s.cfg.FactoryUser == "" || s.cfg.FactoryPass == "" {
		return apperr.E(apperr.KindValidation, "credential reset is disabled")
	}
	if factoryUser != s.cfg.FactoryUser || factoryPass != s.cfg.FactoryPass {
		return apperr.E(apperr.KindUnauthorized, "invalid factory credentials")
	}
	newUser = strings.TrimSpace(newUser)
	if newUser == "" || len(newPass) < 4 {
		return apperr.E(apperr.KindValidation, "new username and a password of at least 4 characters are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPass), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cred, err := s.admin.Get(ctx, tx)
		if err != nil {
			return err
		}
		if cred == nil {
			cred = &types.AdminCredential{}
		}
		cred.Username = newUser
		cred.PasswordHash = string(hash)
		if err := s.admin.Save(ctx, tx, cred); err != nil {
			return err
		}
		s.log.Info("Admin credentials reset", "username", newUser)
		return nil
	})
}
