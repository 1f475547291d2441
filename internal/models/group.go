package models

import "time"

// Group represents a set of people who share expenses.
// A Group exclusively owns its Members and Expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Ski Trip", "Roommates").
	Name string `json:"name"`

	// Description is optional free text.
	Description string `json:"description,omitempty"`

	// Members is the list of members in join order.
	// Members are append-only and never deleted.
	Members []Member `json:"members"`

	// Expenses is the list of expenses logged in this group.
	Expenses []Expense `json:"expenses"`

	// CreatedAt is when the group was created.
	CreatedAt time.Time `json:"createdAt"`

	// CreatedBy is the user ID of the group creator.
	CreatedBy string `json:"createdBy"`
}

// Member represents one user's identity inside a group.
// Members are immutable once created.
type Member struct {
	// UserID is the member's user ID, unique within the group.
	UserID string `json:"userId"`

	// Email is the member's email address.
	// The PayPal rail uses it as the payment identity.
	Email string `json:"email"`

	// Name is the optional display name.
	Name string `json:"name,omitempty"`

	// WalletAddress is the optional blockchain address used by the PYUSD rail.
	WalletAddress string `json:"walletAddress,omitempty"`

	// JoinedAt is when the member joined the group.
	JoinedAt time.Time `json:"joinedAt"`
}

// DisplayName returns the member's name, falling back to the email.
func (m Member) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Email
}

// Member looks up a member by user ID.
func (g *Group) Member(userID string) (*Member, bool) {
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			return &g.Members[i], true
		}
	}
	return nil, false
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	_, ok := g.Member(userID)
	return ok
}

// MemberIDs returns member user IDs in join order.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

// Expense looks up an expense by ID.
// The returned pointer aliases the group's slice so callers can mutate in place.
func (g *Group) Expense(expenseID string) (*Expense, bool) {
	for i := range g.Expenses {
		if g.Expenses[i].ID == expenseID {
			return &g.Expenses[i], true
		}
	}
	return nil, false
}
