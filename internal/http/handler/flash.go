package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	flashCookieName   = "dept_flash"
	flashSeparator    = "|"
	flashMACSeparator = "."
	flashMACLabel     = "dept-flash:"

	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Level   string
	Message string
}

// Flashes carries one-shot messages across a redirect in a cookie signed
// with the session secret. Cookies that fail the check are ignored.
type Flashes struct {
	key []byte
}

func NewFlashes(secret string) *Flashes {
	return &Flashes{key: []byte(secret)}
}

func (f *Flashes) sign(payload string) string {
	mac := hmac.New(sha256.New, f.key)
	mac.Write([]byte(flashMACLabel + payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (f *Flashes) set(c echo.Context, level, message string) {
	payload := base64.RawURLEncoding.EncodeToString([]byte(level + flashSeparator + message))
	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    payload + flashMACSeparator + f.sign(payload),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// pop reads and clears the pending message, if any.
func (f *Flashes) pop(c echo.Context) *Flash {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	payload, sig, ok := strings.Cut(cookie.Value, flashMACSeparator)
	if !ok || !hmac.Equal([]byte(sig), []byte(f.sign(payload))) {
		return nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil
	}
	level, message, ok := strings.Cut(string(raw), flashSeparator)
	if !ok || message == "" {
		return nil
	}
	return &Flash{Level: level, Message: message}
}

// redirect queues message and sends the browser to target.
func (f *Flashes) redirect(c echo.Context, level, message, target string) error {
	f.set(c, level, message)
	return c.Redirect(http.StatusFound, target)
}
