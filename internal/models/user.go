package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account supplied by the identity provider.
// Users populate group members, payers and approvals; the ledger never
// validates credentials itself.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `json:"id"`

	// Email is the user's email address (unique).
	// Used for login and as the PayPal payment identity.
	Email string `json:"email"`

	// DisplayName is the name shown to other group members.
	DisplayName string `json:"displayName"`

	// WalletAddress is the optional blockchain address for PYUSD settlements.
	WalletAddress string `json:"walletAddress,omitempty"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"-"`

	// CreatedAt is when the user account was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the user account was last modified.
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AsMember converts the user into a group member joining at the given time.
func (u *User) AsMember(joinedAt time.Time) Member {
	return Member{
		UserID:        u.ID,
		Email:         u.Email,
		Name:          u.DisplayName,
		WalletAddress: u.WalletAddress,
		JoinedAt:      joinedAt,
	}
}
