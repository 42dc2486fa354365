package domain

import "time"

type UserID string

// User is the stored account record. PasswordHash never leaves the
// account store; use Profile for anything sent over the wire.
type User struct {
	ID           UserID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Profile is the password-free view of a user and the shape of the
// client session.
type Profile struct {
	ID        UserID    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}
