package rpc

import "time"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken           string    `json:"accessToken"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

// RefreshRequest is empty: the refresh token rides in the authorization
// metadata as a bearer credential.
type RefreshRequest struct{}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

type LogoutRequest struct{}

type LogoutResponse struct {
	Message string `json:"message"`
}

type MeRequest struct{}

type MeResponse struct {
	ID       string `json:"id"`
	UserName string `json:"username"`
	Email    string `json:"email"`
}
