package models

import "time"

// Session ties an issued access/refresh token pair to a user. Sessions
// let a logout invalidate tokens before their JWT expiry.
type Session struct {
	Token        string    `json:"-"`
	RefreshToken string    `json:"-"`
	UserID       int64     `json:"user_id"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
