package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/itemkeeper/internal/common"
)

type registerRequest struct {
	UserName string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetTokenResponse struct {
	ResetToken string `json:"resetToken"`
}

type resetPasswordRequest struct {
	ResetToken  string `json:"resetToken"`
	NewPassword string `json:"newPassword"`
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := s.sessions.Register(r.Context(), req.UserName, req.Email, req.Password)
	switch {
	case err == nil:
		writeMessage(w, http.StatusCreated, "User registered successfully")
	case errors.Is(err, common.ErrorValidation):
		writeMessage(w, http.StatusBadRequest, "Please provide username, email, and password")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeMessage(w, http.StatusBadRequest, "User already exists with this email")
	default:
		s.serverError(w, r, "registration", err)
	}
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	pair, err := s.sessions.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		s.cookies.setRefreshToken(w, pair.RefreshToken)
		writeJSON(w, http.StatusOK, tokenResponse{Message: "Login successful", AccessToken: pair.AccessToken})
	case errors.Is(err, common.ErrorValidation):
		writeMessage(w, http.StatusBadRequest, "Please provide email and password")
	case errors.Is(err, common.ErrorInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid email or password")
	default:
		s.serverError(w, r, "login", err)
	}
}

func (s *HTTPServer) refresh(w http.ResponseWriter, r *http.Request) {
	access, err := s.sessions.Refresh(r.Context(), refreshTokenFromRequest(r))
	if err != nil {
		s.refreshTokenError(w, r, "token refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Message: "Token refreshed successfully", AccessToken: access})
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Logout(r.Context(), refreshTokenFromRequest(r)); err != nil {
		s.refreshTokenError(w, r, "logout", err)
		return
	}
	s.cookies.clearRefreshToken(w)
	writeMessage(w, http.StatusOK, "Logged out successfully")
}

func (s *HTTPServer) refreshTokenError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, common.ErrMissingToken):
		writeMessage(w, http.StatusBadRequest, "Refresh token is required")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrRefreshTokenExpired):
		writeMessage(w, http.StatusForbidden, "Invalid refresh token")
	default:
		s.serverError(w, r, op, err)
	}
}

func (s *HTTPServer) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// The token goes back in the body because there is no mail delivery.
	token, err := s.sessions.ForgotPassword(r.Context(), req.Email)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, resetTokenResponse{ResetToken: token})
	case errors.Is(err, common.ErrorValidation):
		writeMessage(w, http.StatusBadRequest, "Please provide an email")
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, "User not found with this email")
	default:
		s.serverError(w, r, "password reset request", err)
	}
}

func (s *HTTPServer) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := s.sessions.ResetPassword(r.Context(), req.ResetToken, req.NewPassword)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, "Password reset successfully")
	case errors.Is(err, common.ErrorValidation):
		writeMessage(w, http.StatusBadRequest, "Please provide reset token and new password")
	case errors.Is(err, common.ErrResetTokenInvalid):
		writeMessage(w, http.StatusBadRequest, "Invalid or expired reset token")
	default:
		s.serverError(w, r, "password reset", err)
	}
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, user)
}

// serverError logs err and answers with a generic 500 that names only the operation.
func (s *HTTPServer) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	s.logger.Error(r.Context(), "request failed", "op", op, "error", err)
	writeMessage(w, http.StatusInternalServerError, "Server error during "+op)
}
