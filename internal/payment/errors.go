package payment

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Kind classifies gateway failures.
type Kind string

const (
	KindInsufficientBalance Kind = "insufficient_balance"
	KindNetwork             Kind = "network_error"
	KindInvalidAddress      Kind = "invalid_address"
	KindTransactionFailed   Kind = "transaction_failed"
	KindProcessor           Kind = "processor_error"
	KindWallet              Kind = "wallet_error"
	KindUserRejected        Kind = "user_rejected"
	KindUnavailable         Kind = "unavailable"
	KindUnknown             Kind = "unknown_error"
)

// ErrSettlementInFlight is returned when the same debtor to creditor
// settlement is already being executed.
var ErrSettlementInFlight = errors.New("settlement already in flight")

// GatewayError is a classified payment rail failure.
type GatewayError struct {
	Kind            Kind
	Message         string
	Details         string
	SuggestedAction string
	Err             error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the retry policy allows another attempt.
func (e *GatewayError) Retryable() bool {
	return RetryStrategyFor(e.Kind).MaxRetries > 0
}

// UserMessage formats the error for display with its suggested action.
func (e *GatewayError) UserMessage() string {
	action := e.SuggestedAction
	if action == "" {
		action = "Please try again."
	}
	return e.Message + "\n\n" + action
}

type template struct {
	message string
	action  string
}

var templates = map[Kind]template{
	KindInsufficientBalance: {"Insufficient balance", "Add more funds to your account or try another payment method"},
	KindNetwork:             {"Network error", "Check your internet connection and try again"},
	KindInvalidAddress:      {"Invalid wallet address", "Ask the recipient to update their wallet address"},
	KindTransactionFailed:   {"Transaction failed", "Try again later or check the token contract state"},
	KindProcessor:           {"PayPal payment failed", "Try again or use PYUSD payment instead"},
	KindWallet:              {"Wallet connection error", "Please ensure your wallet is connected and try again"},
	KindUserRejected:        {"Transaction cancelled", "Please approve the transaction to continue"},
	KindUnavailable:         {"Payment rail unavailable", "Try again in a few minutes or choose another payment method"},
	KindUnknown:             {"Payment failed", "Please try again or contact support"},
}

// NewGatewayError builds a GatewayError with the standard message and suggested action for kind.
func NewGatewayError(kind Kind, details string, err error) *GatewayError {
	t, ok := templates[kind]
	if !ok {
		kind = KindUnknown
		t = templates[KindUnknown]
	}
	if details == "" && err != nil {
		details = err.Error()
	}
	return &GatewayError{
		Kind:            kind,
		Message:         t.message,
		Details:         details,
		SuggestedAction: t.action,
		Err:             err,
	}
}

// Classify turns any error returned by a gateway into a *GatewayError.
// Errors that are already classified are returned unchanged.
func Classify(err error) *GatewayError {
	if err == nil {
		return nil
	}

	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr
	}

	switch {
	case errors.Is(err, context.Canceled):
		return NewGatewayError(KindUserRejected, "the payment was cancelled before it completed", err)
	case errors.Is(err, context.DeadlineExceeded):
		return NewGatewayError(KindNetwork, "the payment rail did not answer in time", err)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return NewGatewayError(KindUnavailable, "", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return NewGatewayError(KindNetwork, "", err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "wallet"):
		return NewGatewayError(KindWallet, "", err)
	case strings.Contains(msg, "insufficient"):
		return NewGatewayError(KindInsufficientBalance, "", err)
	case strings.Contains(msg, "network"), strings.Contains(msg, "connection"):
		return NewGatewayError(KindNetwork, "", err)
	case strings.Contains(msg, "transaction"), strings.Contains(msg, "reverted"):
		return NewGatewayError(KindTransactionFailed, "", err)
	}

	return NewGatewayError(KindUnknown, "", err)
}

// RetryStrategy describes how often a failed transfer may be retried.
// Retry n (1-based) waits Exponential(Backoff, n-1).
type RetryStrategy struct {
	MaxRetries int
	Backoff    time.Duration
}

// RetryStrategyFor returns the retry policy for a failure kind.
func RetryStrategyFor(kind Kind) RetryStrategy {
	switch kind {
	case KindNetwork:
		return RetryStrategy{MaxRetries: 3, Backoff: 2 * time.Second}
	case KindTransactionFailed:
		return RetryStrategy{MaxRetries: 2, Backoff: 5 * time.Second}
	case KindProcessor:
		return RetryStrategy{MaxRetries: 2, Backoff: 3 * time.Second}
	case KindUserRejected, KindInsufficientBalance, KindInvalidAddress, KindUnavailable:
		return RetryStrategy{}
	default:
		return RetryStrategy{MaxRetries: 1, Backoff: time.Second}
	}
}
