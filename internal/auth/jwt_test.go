package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "k9Xq2LmP7vR4tY8wZ1bN6cF3hJ5sD0gA"

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	token, err := svc.Generate(42, "erin")
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "erin", claims.Username)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	token, err := svc.Generate(42, "erin")
	require.NoError(t, err)

	t.Run("other secret", func(t *testing.T) {
		other := NewJWTService("another-secret-another-secret-xx", time.Hour)
		_, err := other.Verify(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTService(testSecret, time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Verify(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify("not.a.token")
		assert.Error(t, err)
	})

	t.Run("non-positive user", func(t *testing.T) {
		bad, err := svc.Generate(0, "ghost")
		require.NoError(t, err)
		_, err = svc.Verify(bad)
		assert.Error(t, err)
	})
}

func TestSafeRedirect(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/profile/", "/profile/"},
		{"", "/"},
		{"https://evil.example", "/"},
		{"//evil.example", "/"},
		{"/\\evil.example", "/"},
		{"/\t/evil.example", "/"},
		{"/\n/evil.example", "/"},
		{"/assign/?next=%2F", "/assign/?next=%2F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeRedirect(tt.next, "/"), tt.next)
	}
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, LoginPath, LoginURL(""))
	assert.Equal(t, "/login/?next=%2Fassign%2F", LoginURL("/assign/"))
}
