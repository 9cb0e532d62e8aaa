// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. RefreshToken and ResetToken are empty when
// no session or reset is pending; their expiry fields are then zero.
type User struct {
	ID                    string
	UserName              string
	Email                 string
	PasswordHash          string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	ResetToken            string
	ResetTokenExpiresAt   time.Time
	CreatedAt             time.Time
}

// PublicUser is the part of a User that leaves the server.
type PublicUser struct {
	ID       string `json:"id"`
	UserName string `json:"username"`
	Email    string `json:"email"`
}

// Public strips credentials and tokens.
func (u *User) Public() *PublicUser {
	return &PublicUser{ID: u.ID, UserName: u.UserName, Email: u.Email}
}
