package auth

import "time"

const (
	ContextKeyActor = "actor"

	SessionCookieName = "dept_session"
	LoginPath         = "/login/"
	NextParam         = "next"

	jsonKeyError = "error"

	sessionCookiePath = "/"
	minExpiry         = time.Minute
)

const (
	msgNotAuthenticated        = "Authentication required"
	msgPermissionDenied        = "Permission denied"
	msgActorMissing            = "actor not found in context"
	msgInvalidActorCtx         = "invalid actor in context"
	msgUnexpectedSigningMethod = "unexpected signing method: %v"
	msgTokenParseFailed        = "failed to parse token: %w"
	msgInvalidTokenClaims      = "invalid token claims"
	msgSignToken               = "failed to sign session token: %w"
)
