package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/payhive/internal/ledger"
	"github.com/mmynk/payhive/internal/models"
	"github.com/mmynk/payhive/internal/payment"
	"github.com/mmynk/payhive/pkg/api"
)

// PaymentHistory lists recorded payments. storage.Store satisfies it.
type PaymentHistory interface {
	ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error)
}

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	ledger       *ledger.Ledger
	orchestrator *payment.Orchestrator
	payments     PaymentHistory
}

var _ api.SettlementServiceHandler = (*SettlementService)(nil)

// NewSettlementService creates a SettlementService.
func NewSettlementService(l *ledger.Ledger, orchestrator *payment.Orchestrator, payments PaymentHistory) *SettlementService {
	return &SettlementService{
		ledger:       l,
		orchestrator: orchestrator,
		payments:     payments,
	}
}

// GetBalances returns every member's net balance over authorized expenses.
func (s *SettlementService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	slog.Info("GetBalances request received", "group_id", req.Msg.GroupID)

	group, _, err := memberGroup(ctx, s.ledger, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	balances, err := ledger.GroupBalances(group)
	if err != nil {
		slog.Error("GetBalances failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetBalancesResponse{Balances: toAPIBalances(group, balances)}), nil
}

// PlanSettlements returns the transfers that clear every balance.
func (s *SettlementService) PlanSettlements(ctx context.Context, req *connect.Request[api.PlanSettlementsRequest]) (*connect.Response[api.PlanSettlementsResponse], error) {
	slog.Info("PlanSettlements request received", "group_id", req.Msg.GroupID)

	if _, _, err := memberGroup(ctx, s.ledger, req.Msg.GroupID); err != nil {
		return nil, toConnectError(err)
	}

	settlements, err := s.ledger.Settlements(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("PlanSettlements failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("PlanSettlements successful", "group_id", req.Msg.GroupID, "transfers", len(settlements))
	return connect.NewResponse(&api.PlanSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}

// ListRails reports the configured payment rails and their health.
func (s *SettlementService) ListRails(ctx context.Context, req *connect.Request[api.ListRailsRequest]) (*connect.Response[api.ListRailsResponse], error) {
	slog.Info("ListRails request received")

	if _, err := callerID(ctx); err != nil {
		return nil, toConnectError(err)
	}

	statuses := s.orchestrator.AvailableRails(ctx)
	rails := make([]*api.Rail, len(statuses))
	for i, st := range statuses {
		rails[i] = &api.Rail{
			Rail:         string(st.Rail),
			Healthy:      st.Healthy,
			BreakerState: st.BreakerState,
			Error:        st.Error,
		}
	}
	return connect.NewResponse(&api.ListRailsResponse{Rails: rails}), nil
}

// EstimateFee returns the fee a rail would charge for amount.
func (s *SettlementService) EstimateFee(ctx context.Context, req *connect.Request[api.EstimateFeeRequest]) (*connect.Response[api.EstimateFeeResponse], error) {
	slog.Info("EstimateFee request received", "rail", req.Msg.Rail, "amount", req.Msg.Amount)

	if _, err := callerID(ctx); err != nil {
		return nil, toConnectError(err)
	}
	if req.Msg.Amount <= 0 {
		return nil, toConnectError(fmt.Errorf("%w: amount must be positive, got %v", ledger.ErrValidation, req.Msg.Amount))
	}

	amount := decimal.NewFromFloat(req.Msg.Amount).Round(2)
	fee, err := s.orchestrator.EstimateFee(models.Rail(req.Msg.Rail), amount)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.EstimateFeeResponse{
		Rail:  req.Msg.Rail,
		Fee:   fee.InexactFloat64(),
		Total: amount.Add(fee).InexactFloat64(),
	}), nil
}

// SettleUp pays the caller's planned transfer to req.ToUserID. Only the
// debtor of a transfer in the current plan may settle it.
func (s *SettlementService) SettleUp(ctx context.Context, req *connect.Request[api.SettleUpRequest]) (*connect.Response[api.SettleUpResponse], error) {
	slog.Info("SettleUp request received",
		"group_id", req.Msg.GroupID,
		"to", req.Msg.ToUserID,
		"preferred_rail", req.Msg.PreferredRail,
	)

	group, userID, err := memberGroup(ctx, s.ledger, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	plan, err := ledger.PlanGroup(group)
	if err != nil {
		return nil, toConnectError(err)
	}
	transfer, ok := findTransfer(plan, userID, req.Msg.ToUserID)
	if !ok {
		return nil, toConnectError(fmt.Errorf("%w: %s -> %s", ErrNoPlannedTransfer, userID, req.Msg.ToUserID))
	}

	outcome, err := s.orchestrator.Settle(ctx, group, transfer, payment.SettleOptions{
		PreferredRail: models.Rail(req.Msg.PreferredRail),
		Description:   req.Msg.Description,
		InitiatedBy:   userID,
	})
	if err != nil {
		slog.Error("SettleUp failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(toSettleUpResponse(outcome)), nil
}

// ListPayments returns the group's payment history, newest first.
func (s *SettlementService) ListPayments(ctx context.Context, req *connect.Request[api.ListPaymentsRequest]) (*connect.Response[api.ListPaymentsResponse], error) {
	slog.Info("ListPayments request received", "group_id", req.Msg.GroupID)

	group, _, err := memberGroup(ctx, s.ledger, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	payments, err := s.payments.ListPaymentsByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListPayments failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Payment, len(payments))
	for i, p := range payments {
		out[i] = toAPIPayment(p)
	}
	return connect.NewResponse(&api.ListPaymentsResponse{Payments: out}), nil
}

func findTransfer(plan []models.Settlement, from, to string) (models.Settlement, bool) {
	for _, s := range plan {
		if s.FromUserID == from && s.ToUserID == to {
			return s, true
		}
	}
	return models.Settlement{}, false
}

func toSettleUpResponse(o *payment.Outcome) *api.SettleUpResponse {
	resp := &api.SettleUpResponse{
		Success:         o.Succeeded(),
		PaymentID:       o.PaymentID,
		TransactionID:   o.Result.TransactionID,
		Rail:            string(o.Result.Rail),
		Status:          string(o.Result.Status),
		Amount:          o.Result.Amount.InexactFloat64(),
		Fees:            o.Result.Fees.InexactFloat64(),
		ApproveURL:      o.Result.ApproveURL,
		Message:         o.Message,
		SuggestedAction: o.SuggestedAction,
		Attempts:        o.Attempts,
	}
	if o.Error != nil {
		resp.ErrorKind = string(o.Error.Kind)
	}
	return resp
}
