package service

import (
	"errors"

	"connectrpc.com/connect"
	"github.com/mmynk/payhive/internal/auth"
	"github.com/mmynk/payhive/internal/ledger"
	"github.com/mmynk/payhive/internal/payment"
)

var (
	// ErrNotGroupMember is returned when the caller is not a member of the group it addresses.
	ErrNotGroupMember = errors.New("caller is not a member of this group")

	// ErrNotParticipant is returned when participant-only approvals are enabled
	// and the caller does not share the expense.
	ErrNotParticipant = errors.New("only expense participants may approve")

	// ErrNoPlannedTransfer is returned by SettleUp when the current plan has
	// no transfer from the caller to the requested recipient.
	ErrNoPlannedTransfer = errors.New("no planned transfer to this member")
)

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, auth.ErrUnknownUser):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, payment.ErrRailNotConfigured):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, payment.ErrSettlementInFlight):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, ErrNotGroupMember),
		errors.Is(err, ErrNotParticipant),
		errors.Is(err, ErrNoPlannedTransfer):
		return connect.NewError(connect.CodePermissionDenied, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
