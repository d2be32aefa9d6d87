package domain

import "time"

// User is a registered account in the remote store.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Bio          string    `json:"bio"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DefaultBio is the bio assigned at sign-up.
func DefaultBio(username string) string {
	return "Hi I'm " + username + "!"
}
