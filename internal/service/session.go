package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/authkit/authctl/internal/client"
	"github.com/authkit/authctl/internal/config"
	"github.com/authkit/authctl/internal/model"
)

// RefreshWindow is how close to expiry a stored token may get before
// Open refreshes it.
const RefreshWindow = 30 * time.Second

// ErrNoSession is returned when a profile has never logged in.
var ErrNoSession = errors.New("no stored session; run 'authctl login' first")

// SessionManager ties stored sessions to API clients.
type SessionManager struct {
	store    *config.Store
	settings config.Settings
	logger   *slog.Logger

	// HTTPClient, when set, supplies the transport of every client built.
	HTTPClient *http.Client
	now        func() time.Time
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(store *config.Store, settings config.Settings, logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		store:    store,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// NewClient builds an unauthenticated client from the settings.
func (m *SessionManager) NewClient() (*client.Client, error) {
	return m.newClient("", "")
}

func (m *SessionManager) newClient(token, refresh string) (*client.Client, error) {
	return client.New(client.Options{
		BaseURL:      m.settings.BaseURL,
		Timeout:      m.settings.Timeout,
		Token:        token,
		RefreshToken: refresh,
		RateLimit:    m.settings.RateLimit,
		Logger:       m.logger,
		HTTPClient:   m.HTTPClient,
	})
}

// Open returns a client carrying the stored tokens of profile. A token
// close to expiry is refreshed first. Sessions stored for another base
// URL are not used, so tokens never leak to a different backend.
func (m *SessionManager) Open(ctx context.Context, profile string) (*client.Client, *model.Session, error) {
	sess, err := m.store.GetSession(ctx, profile)
	if errors.Is(err, config.ErrNotFound) {
		return nil, nil, fmt.Errorf("profile %q: %w", profile, ErrNoSession)
	}
	if err != nil {
		return nil, nil, err
	}
	c, err := m.newClient("", "")
	if err != nil {
		return nil, nil, err
	}
	if sess.BaseURL != c.BaseURL() {
		return nil, nil, fmt.Errorf("profile %q is logged in to %s, not %s: %w", profile, sess.BaseURL, c.BaseURL(), ErrNoSession)
	}

	c, err = m.newClient(sess.AccessToken, sess.RefreshToken)
	if err != nil {
		return nil, nil, err
	}

	if sess.ExpiresAt != nil && sess.ExpiresAt.Sub(m.now()) < RefreshWindow && sess.RefreshToken != "" {
		m.logger.Debug("access token near expiry, refreshing", "profile", profile, "expires_at", sess.ExpiresAt)
		if err := m.refresh(ctx, c, sess); err != nil {
			// The stale token is still tried; the backend decides.
			m.logger.Warn("token refresh failed", "profile", profile, "error", err)
		}
	}
	return c, sess, nil
}

// Login authenticates and stores the resulting session under profile.
func (m *SessionManager) Login(ctx context.Context, profile, email, password string) (*model.LoginResult, *model.Session, error) {
	c, err := m.newClient("", "")
	if err != nil {
		return nil, nil, err
	}
	res, err := c.Login(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	sess := &model.Session{
		Profile:      profile,
		BaseURL:      c.BaseURL(),
		Email:        email,
		UserID:       res.User.ID.String(),
		AccessToken:  c.Token(),
		RefreshToken: c.RefreshToken(),
	}
	m.stampExpiry(sess)
	if err := m.store.SaveSession(ctx, sess); err != nil {
		return nil, nil, err
	}
	return res, sess, nil
}

// Refresh forces a token refresh for profile.
func (m *SessionManager) Refresh(ctx context.Context, profile string) (*model.Session, error) {
	sess, err := m.store.GetSession(ctx, profile)
	if errors.Is(err, config.ErrNotFound) {
		return nil, fmt.Errorf("profile %q: %w", profile, ErrNoSession)
	}
	if err != nil {
		return nil, err
	}
	c, err := m.newClient(sess.AccessToken, sess.RefreshToken)
	if err != nil {
		return nil, err
	}
	if err := m.refresh(ctx, c, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Logout revokes the refresh token server-side and forgets the session.
// The local session is removed even when the backend call fails or the
// session belongs to another base URL.
func (m *SessionManager) Logout(ctx context.Context, profile string) error {
	c, _, err := m.Open(ctx, profile)
	if err != nil {
		derr := m.store.DeleteSession(ctx, profile)
		if derr == nil {
			m.logger.Warn("session removed without server-side logout", "profile", profile, "error", err)
			return nil
		}
		if !errors.Is(derr, config.ErrNotFound) {
			return derr
		}
		return err
	}
	apiErr := c.Logout(ctx)
	if err := m.store.DeleteSession(ctx, profile); err != nil && !errors.Is(err, config.ErrNotFound) {
		return err
	}
	return apiErr
}

func (m *SessionManager) refresh(ctx context.Context, c *client.Client, sess *model.Session) error {
	if _, err := c.Refresh(ctx); err != nil {
		return err
	}
	sess.AccessToken = c.Token()
	sess.RefreshToken = c.RefreshToken()
	m.stampExpiry(sess)
	return m.store.SaveSession(ctx, sess)
}

func (m *SessionManager) stampExpiry(sess *model.Session) {
	sess.ExpiresAt = nil
	info, err := InspectToken(sess.AccessToken)
	if err != nil {
		m.logger.Debug("access token is not a JWT", "profile", sess.Profile, "error", err)
		return
	}
	if info.ExpiresAt != nil {
		exp := info.ExpiresAt.UTC()
		sess.ExpiresAt = &exp
	}
}
