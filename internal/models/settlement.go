package models

// Settlement is a single directed transfer instruction produced by netting:
// the debtor FromUserID owes the creditor ToUserID the given Amount.
//
// Settlements are recomputed on demand from the current expense state and have
// no persisted identity. A Payment records what happened when one was executed.
type Settlement struct {
	// FromUserID is the debtor.
	FromUserID string `json:"fromUserId"`

	// ToUserID is the creditor.
	ToUserID string `json:"toUserId"`

	// Amount is the positive amount to transfer.
	Amount float64 `json:"amount"`
}

