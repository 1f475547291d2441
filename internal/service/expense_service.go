package service

import (
	"context"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/mmynk/payhive/internal/ledger"
	"github.com/mmynk/payhive/internal/models"
	"github.com/mmynk/payhive/pkg/api"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	ledger *ledger.Ledger
	// participantsOnly restricts approvals to the members sharing the expense.
	participantsOnly bool
}

var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseOption configures an ExpenseService.
type ExpenseOption func(*ExpenseService)

// WithParticipantOnlyApprovals rejects approvals from members outside the expense.
func WithParticipantOnlyApprovals(enabled bool) ExpenseOption {
	return func(s *ExpenseService) { s.participantsOnly = enabled }
}

// NewExpenseService creates an ExpenseService over l.
func NewExpenseService(l *ledger.Ledger, opts ...ExpenseOption) *ExpenseService {
	s := &ExpenseService{ledger: l}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddExpense records an expense. The payer defaults to the caller and the
// participants default to every member.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"participants_count", len(req.Msg.Participants),
	)

	group, userID, err := memberGroup(ctx, s.ledger, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	paidBy := req.Msg.PaidBy
	if paidBy == "" {
		paidBy = userID
	}
	participants := req.Msg.Participants
	if len(participants) == 0 {
		participants = group.MemberIDs()
	}

	expense, err := s.ledger.AddExpense(ctx, group.ID, ledger.NewExpense{
		Description:  req.Msg.Description,
		Amount:       req.Msg.Amount,
		PaidBy:       paidBy,
		Participants: participants,
	})
	if err != nil {
		slog.Error("AddExpense failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.AddExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ApproveExpense records the caller's approval.
func (s *ExpenseService) ApproveExpense(ctx context.Context, req *connect.Request[api.ApproveExpenseRequest]) (*connect.Response[api.ApproveExpenseResponse], error) {
	slog.Info("ApproveExpense request received",
		"group_id", req.Msg.GroupID,
		"expense_id", req.Msg.ExpenseID,
	)

	group, userID, err := memberGroup(ctx, s.ledger, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	existing, ok := group.Expense(req.Msg.ExpenseID)
	if !ok {
		return nil, toConnectError(fmt.Errorf("expense %s: %w", req.Msg.ExpenseID, ledger.ErrNotFound))
	}
	if s.participantsOnly && !existing.IsParticipant(userID) {
		return nil, toConnectError(fmt.Errorf("%w: expense %s", ErrNotParticipant, existing.ID))
	}

	expense, result, err := s.ledger.RecordApproval(ctx, group.ID, existing.ID, userID)
	if err != nil {
		slog.Error("ApproveExpense failed", "group_id", group.ID, "expense_id", existing.ID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ApproveExpenseResponse{
		Expense:         toAPIExpense(expense),
		AlreadyApproved: result == ledger.ApprovalDuplicate,
	}), nil
}

// RecomputeAuthorization re-evaluates an expense against the current member count.
func (s *ExpenseService) RecomputeAuthorization(ctx context.Context, req *connect.Request[api.RecomputeAuthorizationRequest]) (*connect.Response[api.RecomputeAuthorizationResponse], error) {
	slog.Info("RecomputeAuthorization request received",
		"group_id", req.Msg.GroupID,
		"expense_id", req.Msg.ExpenseID,
	)

	if _, _, err := memberGroup(ctx, s.ledger, req.Msg.GroupID); err != nil {
		return nil, toConnectError(err)
	}

	expense, err := s.ledger.RecomputeAuthorization(ctx, req.Msg.GroupID, req.Msg.ExpenseID)
	if err != nil {
		slog.Error("RecomputeAuthorization failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RecomputeAuthorizationResponse{Expense: toAPIExpense(expense)}), nil
}

// ListExpenses lists a group's expenses in creation order, optionally filtered by status.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID, "status", req.Msg.Status)

	status := models.ExpenseStatus(req.Msg.Status)
	switch status {
	case "", models.ExpenseStatusPending, models.ExpenseStatusAuthorized:
	default:
		return nil, toConnectError(fmt.Errorf("%w: unknown expense status %q", ledger.ErrValidation, req.Msg.Status))
	}

	group, _, err := memberGroup(ctx, s.ledger, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}

	expenses := make([]*api.Expense, 0, len(group.Expenses))
	for i := range group.Expenses {
		if status != "" && group.Expenses[i].Status() != status {
			continue
		}
		expenses = append(expenses, toAPIExpense(&group.Expenses[i]))
	}

	slog.Info("ListExpenses successful", "group_id", group.ID, "count", len(expenses))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: expenses}), nil
}
