package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"sync"
	"time"

	"department-service/internal/auth"

	"github.com/labstack/echo/v4"
)

const (
	csrfTokenLength = 32
	csrfTokenTTL    = 24 * time.Hour
	cleanupInterval = 1 * time.Hour

	// CSRFHeaderName and CSRFFormField carry the token on unsafe requests.
	CSRFHeaderName = "X-CSRF-Token"
	CSRFFormField  = "csrf_token"

	msgCSRFMissing = "CSRF token required"
	msgCSRFInvalid = "invalid CSRF token"
)

// CSRFToken represents a CSRF token with expiry
type CSRFToken struct {
	Token     string
	ExpiresAt time.Time
}

// CSRFMiddleware issues one token per logged-in user and checks it on
// every unsafe request made with that session.
type CSRFMiddleware struct {
	tokens  sync.Map // userID -> *CSRFToken
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewCSRFMiddleware creates a new CSRF middleware with background cleanup
func NewCSRFMiddleware(ctx context.Context) *CSRFMiddleware {
	cleanupCtx, cancel := context.WithCancel(ctx)
	m := &CSRFMiddleware{
		ctx:     cleanupCtx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

// Stop gracefully stops the cleanup goroutine
func (m *CSRFMiddleware) Stop() {
	m.cancel()
	<-m.stopped
}

func (m *CSRFMiddleware) cleanupLoop() {
	defer close(m.stopped)

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.CleanupExpiredTokens()
		}
	}
}

func generateToken() (string, error) {
	bytes := make([]byte, csrfTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// GetOrCreateToken returns the user's live token, minting one if needed.
func (m *CSRFMiddleware) GetOrCreateToken(userID int64) (string, error) {
	if tokenRaw, exists := m.tokens.Load(userID); exists {
		if csrfToken, ok := tokenRaw.(*CSRFToken); ok && time.Now().Before(csrfToken.ExpiresAt) {
			return csrfToken.Token, nil
		}
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	m.tokens.Store(userID, &CSRFToken{
		Token:     token,
		ExpiresAt: time.Now().Add(csrfTokenTTL),
	})
	return token, nil
}

// Middleware must run after the session middleware. Requests without a
// resolved actor are left alone.
func (m *CSRFMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return next(c)
			}

			actor, err := auth.GetActor(c)
			if err != nil {
				return next(c)
			}

			provided := c.Request().Header.Get(CSRFHeaderName)
			if provided == "" {
				provided = c.FormValue(CSRFFormField)
			}
			if provided == "" {
				return echo.NewHTTPError(http.StatusForbidden, msgCSRFMissing)
			}

			tokenRaw, exists := m.tokens.Load(actor.UserID)
			if !exists {
				return echo.NewHTTPError(http.StatusForbidden, msgCSRFInvalid)
			}
			csrfToken, ok := tokenRaw.(*CSRFToken)
			if !ok || time.Now().After(csrfToken.ExpiresAt) {
				return echo.NewHTTPError(http.StatusForbidden, msgCSRFInvalid)
			}

			if subtle.ConstantTimeCompare([]byte(provided), []byte(csrfToken.Token)) != 1 {
				return echo.NewHTTPError(http.StatusForbidden, msgCSRFInvalid)
			}

			return next(c)
		}
	}
}

// Forget drops the user's token, used on logout.
func (m *CSRFMiddleware) Forget(userID int64) {
	m.tokens.Delete(userID)
}

// CleanupExpiredTokens removes expired tokens (called by background goroutine)
func (m *CSRFMiddleware) CleanupExpiredTokens() {
	now := time.Now()
	m.tokens.Range(func(key, value any) bool {
		if csrfToken, ok := value.(*CSRFToken); ok && now.After(csrfToken.ExpiresAt) {
			m.tokens.Delete(key)
		}
		return true
	})
}

// NoCSRF stands in when protection is switched off by configuration.
type NoCSRF struct{}

func (NoCSRF) GetOrCreateToken(int64) (string, error) { return "", nil }
func (NoCSRF) Forget(int64)                           {}
func (NoCSRF) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
}
