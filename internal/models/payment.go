package models

import "time"

// Rail is the external payment mechanism used to execute a settlement.
type Rail string

const (
	// RailPYUSD transfers PayPal USD stablecoin tokens on chain.
	RailPYUSD Rail = "pyusd"
	// RailPayPal creates a PayPal checkout order.
	RailPayPal Rail = "paypal"
)

// PaymentStatus is the execution status reported by a rail.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment records one attempt to execute a settlement on a payment rail.
//
// Payments are history only: they never change balances, and a settlement
// is not considered settled because a payment exists.
type Payment struct {
	// ID is the unique identifier for the payment record (UUID format).
	ID string `json:"id"`

	// GroupID is the group the settled debt belongs to.
	GroupID string `json:"groupId"`

	// FromUserID is the debtor who paid.
	FromUserID string `json:"fromUserId"`

	// ToUserID is the creditor who was paid.
	ToUserID string `json:"toUserId"`

	// Amount is the transferred amount.
	Amount float64 `json:"amount"`

	// Rail is the payment mechanism that was used.
	Rail Rail `json:"rail"`

	// TransactionID is the rail's transaction reference (tx hash or order ID).
	// Empty when the attempt failed before the rail accepted it.
	TransactionID string `json:"transactionId,omitempty"`

	// Status is the rail status at the time of recording.
	Status PaymentStatus `json:"status"`

	// Fees is the estimated fee charged by the rail.
	Fees float64 `json:"fees,omitempty"`

	// Description is the note sent with the transfer.
	Description string `json:"description"`

	// Error is the user-facing failure message, if any.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the payment was recorded.
	CreatedAt time.Time `json:"createdAt"`

	// CreatedBy is the user ID who initiated the payment.
	CreatedBy string `json:"createdBy"`
}
