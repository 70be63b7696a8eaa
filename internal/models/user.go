package models

import "time"

// Identity is the opaque authenticated-user tuple the auth layer yields.
// The engine only ever consumes it; it never authenticates.
type Identity struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// IsZero reports whether no user is signed in.
func (i Identity) IsZero() bool { return i.UID == "" }

type UserProfile struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoURL"`
	Bio         string    `json:"bio"`
	JoinDate    time.Time `json:"joinDate"`
	Followers   []string  `json:"followers"` // uids, set semantics
	Following   []string  `json:"following"` // uids, set semantics

	// Credential hash, only set on profiles registered with email/password.
	PasswordHash string `json:"passwordHash,omitempty"`
}

type RegisterRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
