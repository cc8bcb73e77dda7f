package handler

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flashTestSecret = "k9Xq2LmP7vR4tY8wZ1bN6cF3hJ5sD0gA"

// issueFlash returns the cookie a redirect carrying message would set.
func issueFlash(t *testing.T, f *Flashes, level, message string) *http.Cookie {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	require.NoError(t, f.redirect(c, level, message, "/profile/"))
	assert.Equal(t, http.StatusFound, rec.Code)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == flashCookieName {
			return cookie
		}
	}
	t.Fatal("flash cookie not set")
	return nil
}

func popWith(f *Flashes, cookie *http.Cookie) (*Flash, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/profile/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	return f.pop(e.NewContext(req, rec)), rec
}

func TestFlashes_RoundTrip(t *testing.T) {
	f := NewFlashes(flashTestSecret)
	cookie := issueFlash(t, f, FlashSuccess, "Task updated.")

	got, rec := popWith(f, cookie)
	require.NotNil(t, got)
	assert.Equal(t, FlashSuccess, got.Level)
	assert.Equal(t, "Task updated.", got.Message)

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

func TestFlashes_RejectsForgedCookies(t *testing.T) {
	f := NewFlashes(flashTestSecret)
	genuine := issueFlash(t, f, FlashSuccess, "Task updated.")
	forgedPayload := base64.RawURLEncoding.EncodeToString([]byte("error|Your account was suspended."))

	tests := []struct {
		name  string
		value string
		flash *Flashes
	}{
		{
			name:  "unsigned payload",
			value: forgedPayload,
			flash: f,
		},
		{
			name:  "payload swapped under a valid signature",
			value: forgedPayload + genuine.Value[len(genuine.Value)-44:],
			flash: f,
		},
		{
			name:  "signed with another secret",
			value: genuine.Value,
			flash: NewFlashes("another-secret-another-secret-xx"),
		},
		{
			name:  "garbage",
			value: "not.base64!",
			flash: f,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := popWith(tt.flash, &http.Cookie{Name: flashCookieName, Value: tt.value})
			assert.Nil(t, got)
		})
	}
}
