package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/taskhive/taskhive/pkg/hash"
	"github.com/taskhive/taskhive/pkg/logging"
	"github.com/taskhive/taskhive/pkg/tokens"
	"github.com/taskhive/taskhive/services/auth/internal/events"
	"github.com/taskhive/taskhive/services/auth/internal/models"
	"github.com/taskhive/taskhive/services/auth/internal/repo"
	"github.com/taskhive/taskhive/services/auth/internal/tokenstore"
)

// refreshTokenBytes is the entropy of a raw refresh token before encoding.
const refreshTokenBytes = 64

// TokenService owns the refresh-token lifecycle: it alone decides when
// records are created, rotated and removed. All state lives in the store,
// the service itself is stateless per request.
type TokenService struct {
	Users  *repo.UserRepo
	Store  *tokenstore.Store
	Signer *tokens.Signer
	Events *events.Producer

	RefreshTTL time.Duration
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// Login verifies the credentials and issues a fresh access/refresh pair.
// Unknown username and wrong password are indistinguishable to the caller.
func (s *TokenService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, user.ID, "user_logged_in")
	l.Info("login_successful", "user_id", user.ID)
	return pair, nil
}

// Refresh exchanges a live refresh token for a new pair. Rotation is strict:
// the old record is deleted before the new one is written, so the supplied
// token is good for exactly one exchange.
func (s *TokenService) Refresh(ctx context.Context, rawRefreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	digest := hash.DigestToken(rawRefreshToken)
	rec, found, err := s.Store.Get(ctx, digest)
	if err != nil {
		return nil, fmt.Errorf("refresh lookup: %w", err)
	}
	if !found {
		l.Warn("refresh_failed", "status", 401, "reason", "token unknown or expired")
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Users.GetByID(ctx, rec.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "user gone", "user_id", rec.UserID)
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("user lookup: %w", err)
	}

	if err := s.Store.Delete(ctx, digest); err != nil {
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, user.ID, "tokens_refreshed")
	l.Info("refresh_successful", "user_id", user.ID)
	return pair, nil
}

// Logout removes the refresh-token record by key. It is idempotent: an
// unknown or already-expired token is not an error.
func (s *TokenService) Logout(ctx context.Context, rawRefreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	digest := hash.DigestToken(rawRefreshToken)
	rec, found, err := s.Store.Get(ctx, digest)
	if err != nil {
		return fmt.Errorf("refresh lookup: %w", err)
	}
	if !found {
		return nil
	}
	if err := s.Store.Delete(ctx, digest); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	s.publish(ctx, rec.UserID, "user_logged_out")
	l.Info("logout_successful", "user_id", rec.UserID)
	return nil
}

func (s *TokenService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessExp := time.Now().Add(tokens.AccessTokenTTL)
	accessToken, err := s.Signer.Issue(user.ID, user.Username, user.Email, user.Role, tokens.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	rawRefresh, err := newRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	digest := hash.DigestToken(rawRefresh)
	refreshExp := time.Now().Add(s.RefreshTTL)
	rec := tokenstore.Record{
		UserID:    user.ID,
		TokenHash: digest,
		ExpiresAt: refreshExp,
	}
	if err := s.Store.Put(ctx, digest, rec, s.RefreshTTL); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

func (s *TokenService) publish(ctx context.Context, userID uint, eventType string) {
	event := map[string]any{
		"type":    eventType,
		"user_id": userID,
		"at":      time.Now().UTC(),
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.Events.PublishEvent(pubCtx, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "event", eventType, "error", err)
	}
}

func newRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
