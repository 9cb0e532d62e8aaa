// Package common contains shared constants and sentinel errors used across
// itemkeeper components.
package common

const (
	// RefreshTokenCookieName is the HttpOnly cookie that carries the refresh
	// token for browser-style clients.
	RefreshTokenCookieName = "refreshToken"

	// AuthorizationHeaderName carries "Bearer <token>" for access tokens and,
	// on /auth/refresh and /auth/logout, for refresh tokens of cookie-less clients.
	AuthorizationHeaderName = "Authorization"

	// AuthorizationMetadataKey is the gRPC metadata key equivalent of
	// AuthorizationHeaderName (metadata keys are lower-case).
	AuthorizationMetadataKey = "authorization"

	// BearerPrefix is the scheme prefix expected in the authorization value.
	BearerPrefix = "Bearer "
)
