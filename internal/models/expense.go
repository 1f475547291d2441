package models

import (
	"slices"
	"time"
)

// Expense represents a shared cost logged in a group.
//
// An expense starts pending and becomes authorized once enough members approve it.
// Only authorized expenses count toward balances.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string `json:"id"`

	// GroupID is the group that owns this expense.
	GroupID string `json:"groupId"`

	// Description is what the expense was for (e.g., "Hotel booking").
	Description string `json:"description"`

	// Amount is the positive, currency-less amount paid.
	Amount float64 `json:"amount"`

	// PaidBy is the user ID of the member who paid.
	PaidBy string `json:"paidBy"`

	// Participants are the user IDs splitting this expense evenly.
	Participants []string `json:"participants"`

	// Approvals are the user IDs who approved this expense, in approval order.
	// The payer approves implicitly at creation.
	Approvals []string `json:"approvals"`

	// IsAuthorized is derived from the approval count and the group size.
	IsAuthorized bool `json:"isAuthorized"`

	// CreatedAt is when the expense was logged.
	CreatedAt time.Time `json:"createdAt"`
}

// HasApproval reports whether userID already approved the expense.
func (e *Expense) HasApproval(userID string) bool {
	return slices.Contains(e.Approvals, userID)
}

// IsParticipant reports whether userID shares the expense.
func (e *Expense) IsParticipant(userID string) bool {
	return slices.Contains(e.Participants, userID)
}

// ExpenseStatus is the approval state of an expense.
type ExpenseStatus string

const (
	ExpenseStatusPending    ExpenseStatus = "pending"
	ExpenseStatusAuthorized ExpenseStatus = "authorized"
)

// Status returns the approval state of the expense.
func (e *Expense) Status() ExpenseStatus {
	if e.IsAuthorized {
		return ExpenseStatusAuthorized
	}
	return ExpenseStatusPending
}
