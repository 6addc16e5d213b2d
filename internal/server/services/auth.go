package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"minventory/internal/common"
	"minventory/internal/cryptox"
	"minventory/internal/logging"
	"minventory/internal/server/auth"
	"minventory/internal/server/config"
	"minventory/internal/server/models"
	"minventory/internal/server/repositories/repomanager"
	"minventory/internal/server/session"

	"github.com/google/uuid"
)

const bcryptCost = 10

// dummyHash is compared against when the username does not exist, so the
// failure path costs the same either way.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("minventory-dummy"), bcryptCost)

// AuthService owns registration and the session lifecycle: login, the
// two-factor fence, the privacy lock and logout. It is the only place a
// master key is ever derived.
type AuthService struct {
	db       *sql.DB
	repos    repomanager.RepositoryManager
	sessions *session.Manager
	logger   logging.Logger

	jwtSecret  []byte
	sessionTTL time.Duration
}

func NewAuthService(db *sql.DB, repos repomanager.RepositoryManager, sessions *session.Manager, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:         db,
		repos:      repos,
		sessions:   sessions,
		logger:     logger.With("module", "auth_service"),
		jwtSecret:  []byte(cfg.SecretKey),
		sessionTTL: cfg.SessionTTL,
	}
}

// Register creates an account with a bcrypt password verifier and a fresh
// key-derivation salt.
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	repo := s.repos.Users(s.db)

	if _, err := repo.GetByUserName(ctx, username); err == nil {
		return nil, common.ErrAlreadyExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrInternal
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		UserName:     username,
		PasswordHash: hash,
		KeySalt:      cryptox.NewSalt(),
	}
	if _, err := repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// LoginResult is what a successful login hands back to the transport layer.
type LoginResult struct {
	Token             string
	SessionID         string
	TwoFactorRequired bool
}

// Login verifies the password, derives the master key and opens a session.
// The failure message is uniform whether the username exists or not. The
// privacy gate always starts locked on a fresh login.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByUserName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// burn the same bcrypt cost as a real comparison
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, common.ErrAuthenticationFailed
		}
		return nil, common.ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrAuthenticationFailed
	}

	key, err := cryptox.DeriveKey([]byte(password), user.KeySalt)
	if err != nil {
		return nil, err
	}

	sess := s.sessions.Create(user.ID, key, user.TwoFactorEnabled)

	token, err := auth.GenerateToken(sess.ID(), s.jwtSecret, s.sessionTTL)
	if err != nil {
		s.sessions.Destroy(sess.ID())
		return nil, common.ErrInternal
	}

	s.logger.Info(ctx, "login", "user_id", user.ID, "two_factor_required", user.TwoFactorEnabled)
	return &LoginResult{
		Token:             token,
		SessionID:         sess.ID(),
		TwoFactorRequired: user.TwoFactorEnabled,
	}, nil
}

// SessionFromToken resolves a bearer token to its live session.
func (s *AuthService) SessionFromToken(token string) (*session.Session, error) {
	sessionID, err := auth.GetSessionIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return s.sessions.Get(sessionID)
}

// SetupTwoFactor provisions (or re-provisions) a TOTP secret for the
// account and returns the otpauth enrollment URI. The account's enabled
// flag is untouched: it flips on the first successful verification.
func (s *AuthService) SetupTwoFactor(ctx context.Context, sess *session.Session) (secret, uri string, err error) {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByID(ctx, sess.UserID())
	if err != nil {
		return "", "", common.ErrInternal
	}

	secret, uri, err = auth.GenerateTOTPSecret(user.UserName)
	if err != nil {
		return "", "", common.ErrInternal
	}

	if err := repo.UpdateTwoFactor(ctx, user.ID, secret, user.TwoFactorEnabled); err != nil {
		return "", "", common.ErrInternal
	}
	return secret, uri, nil
}

// VerifyTwoFactor checks a TOTP code for the session's account. The first
// successful verification of a provisioned-but-unconfirmed secret enables
// two-factor permanently. A bad code leaves all state unchanged.
func (s *AuthService) VerifyTwoFactor(ctx context.Context, sess *session.Session, code string) error {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByID(ctx, sess.UserID())
	if err != nil {
		return common.ErrInternal
	}

	if !auth.ValidateTOTP(code, user.TwoFactorSecret) {
		return common.ErrInvalidCode
	}

	if !user.TwoFactorEnabled {
		if err := repo.UpdateTwoFactor(ctx, user.ID, user.TwoFactorSecret, true); err != nil {
			return common.ErrInternal
		}
		s.logger.Info(ctx, "two-factor enabled", "user_id", user.ID)
	}

	sess.SatisfyTwoFactor()
	return nil
}

// UnlockPrivacy re-verifies the password and opens the privacy gate. The
// existing session key is reused; nothing is re-derived.
func (s *AuthService) UnlockPrivacy(ctx context.Context, sess *session.Session, password string) error {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByID(ctx, sess.UserID())
	if err != nil {
		return common.ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return common.ErrAuthenticationFailed
	}

	sess.UnlockPrivacy()
	s.logger.Info(ctx, "privacy unlocked", "user_id", user.ID)
	return nil
}

// LockPrivacy unconditionally closes the privacy gate.
func (s *AuthService) LockPrivacy(sess *session.Session) {
	sess.LockPrivacy()
}

// Logout destroys the session and zeroes its key.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) {
	s.sessions.Destroy(sess.ID())
	s.logger.Info(ctx, "logout", "user_id", sess.UserID())
}
