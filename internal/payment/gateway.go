// Package payment executes planned settlements on external payment rails.
//
// A Gateway adapts one rail (PayPal checkout orders, PYUSD token transfers).
// The Orchestrator resolves identities, picks a rail, guards each settlement
// key against concurrent execution and turns whatever the gateway returned
// into an Outcome. Gateway failures are outcomes, never Go errors.
package payment

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mmynk/payhive/internal/models"
)

// Identity is a group member resolved to the handles payment rails understand.
type Identity struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	Name          string `json:"name,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

// IdentityFromMember builds the payment identity of a group member.
func IdentityFromMember(m models.Member) Identity {
	return Identity{
		UserID:        m.UserID,
		Email:         m.Email,
		Name:          m.DisplayName(),
		WalletAddress: m.WalletAddress,
	}
}

// TransferRequest asks a rail to move Amount from one identity to another.
type TransferRequest struct {
	From        Identity
	To          Identity
	Amount      decimal.Decimal
	Description string
	GroupID     string

	// RequestID stays the same across retries of one settlement attempt so
	// the rail can drop duplicates.
	RequestID string
}

// Gateway is one external payment rail.
//
// Transfer is not assumed to be idempotent. Implementations return a
// *GatewayError or any error that Classify understands.
type Gateway interface {
	Rail() models.Rail
	// Supports reports whether both identities carry what the rail needs.
	Supports(from, to Identity) bool
	// Healthy returns nil when the rail can accept transfers.
	Healthy(ctx context.Context) error
	Transfer(ctx context.Context, req TransferRequest) (RailResult, error)
	Status(ctx context.Context, transactionID string) (models.PaymentStatus, error)
	EstimateFee(amount decimal.Decimal) decimal.Decimal
}

// RailResult is the rail-specific result of a transfer: PYUSDResult or PayPalResult.
type RailResult interface {
	rail() models.Rail
	unify(req TransferRequest) PaymentResult
}

// PYUSDResult is returned by the token rail.
type PYUSDResult struct {
	TxHash string
	// GasFee is the network fee paid by the sender.
	GasFee decimal.Decimal
	// Confirmed is true when the transfer was mined before returning.
	Confirmed bool
}

func (PYUSDResult) rail() models.Rail { return models.RailPYUSD }

func (r PYUSDResult) unify(req TransferRequest) PaymentResult {
	status := models.PaymentStatusPending
	if r.Confirmed {
		status = models.PaymentStatusCompleted
	}
	return PaymentResult{
		Success:       true,
		TransactionID: r.TxHash,
		Rail:          models.RailPYUSD,
		Amount:        req.Amount,
		From:          req.From,
		To:            req.To,
		Status:        status,
		Fees:          r.GasFee,
	}
}

// PayPalResult is returned by the PayPal rail.
type PayPalResult struct {
	OrderID string
	// OrderStatus is PayPal's raw order status, e.g. CREATED or COMPLETED.
	OrderStatus string
	// ApproveURL is where the payer approves the order, when PayPal provides one.
	ApproveURL string
	Fee        decimal.Decimal
}

func (PayPalResult) rail() models.Rail { return models.RailPayPal }

func (r PayPalResult) unify(req TransferRequest) PaymentResult {
	return PaymentResult{
		Success:       true,
		TransactionID: r.OrderID,
		Rail:          models.RailPayPal,
		Amount:        req.Amount,
		From:          req.From,
		To:            req.To,
		Status:        paypalStatus(r.OrderStatus),
		Fees:          r.Fee,
		ApproveURL:    r.ApproveURL,
	}
}

// PaymentResult is the rail-independent result of one settlement attempt.
type PaymentResult struct {
	Success       bool                 `json:"success"`
	TransactionID string               `json:"transactionId,omitempty"`
	Rail          models.Rail          `json:"rail,omitempty"`
	Amount        decimal.Decimal      `json:"amount"`
	From          Identity             `json:"from"`
	To            Identity             `json:"to"`
	Status        models.PaymentStatus `json:"status"`
	Fees          decimal.Decimal      `json:"fees"`
	ApproveURL    string               `json:"approveUrl,omitempty"`
	Error         string               `json:"error,omitempty"`
}
