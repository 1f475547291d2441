package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/payhive/internal/payment"
	"github.com/mmynk/payhive/pkg/api"
)

// setupDebt leaves bob owing alice 50 in a two-member group.
func setupDebt(t *testing.T, env *testEnv) (testUser, testUser, *api.Group) {
	t.Helper()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	group := env.createGroup(t, alice, bob)

	resp, err := env.expenses.AddExpense(context.Background(), authed(alice, &api.AddExpenseRequest{
		GroupID:     group.ID,
		Description: "Groceries",
		Amount:      100,
	}))
	require.NoError(t, err)
	require.True(t, resp.Msg.Expense.IsAuthorized, "two-member groups authorize on the payer's approval")
	return alice, bob, group
}

func TestGetBalancesAndPlan(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice, bob, group := setupDebt(t, env)

	balances, err := env.settlements.GetBalances(ctx, authed(bob, &api.GetBalancesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	require.Len(t, balances.Msg.Balances, 2)
	assert.Equal(t, alice.ID, balances.Msg.Balances[0].UserID)
	assert.Equal(t, "Alice", balances.Msg.Balances[0].Name)
	assert.InDelta(t, 50.0, balances.Msg.Balances[0].NetBalance, 0.001)
	assert.InDelta(t, 100.0, balances.Msg.Balances[0].TotalPaid, 0.001)
	assert.InDelta(t, -50.0, balances.Msg.Balances[1].NetBalance, 0.001)
	assert.InDelta(t, 50.0, balances.Msg.Balances[1].TotalOwed, 0.001)

	plan, err := env.settlements.PlanSettlements(ctx, authed(alice, &api.PlanSettlementsRequest{GroupID: group.ID}))
	require.NoError(t, err)
	require.Len(t, plan.Msg.Settlements, 1)
	assert.Equal(t, bob.ID, plan.Msg.Settlements[0].FromUserID)
	assert.Equal(t, alice.ID, plan.Msg.Settlements[0].ToUserID)
	assert.InDelta(t, 50.0, plan.Msg.Settlements[0].Amount, 0.001)
}

func TestPendingExpensesDoNotCreateDebt(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")
	group := env.createGroup(t, alice, bob, carol)

	_, err := env.expenses.AddExpense(ctx, authed(alice, &api.AddExpenseRequest{
		GroupID: group.ID, Description: "Tickets", Amount: 90,
	}))
	require.NoError(t, err)

	plan, err := env.settlements.PlanSettlements(ctx, authed(alice, &api.PlanSettlementsRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Empty(t, plan.Msg.Settlements)

	_, err = env.settlements.SettleUp(ctx, authed(bob, &api.SettleUpRequest{GroupID: group.ID, ToUserID: alice.ID}))
	requireCode(t, err, connect.CodePermissionDenied)
}

func TestSettleUp(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice, bob, group := setupDebt(t, env)

	resp, err := env.settlements.SettleUp(ctx, authed(bob, &api.SettleUpRequest{
		GroupID:  group.ID,
		ToUserID: alice.ID,
	}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Success)
	assert.Equal(t, "paypal", resp.Msg.Rail)
	assert.Equal(t, "completed", resp.Msg.Status)
	assert.Equal(t, "ORDER-1", resp.Msg.TransactionID)
	assert.InDelta(t, 50.0, resp.Msg.Amount, 0.001)
	assert.InDelta(t, 1.75, resp.Msg.Fees, 0.001)
	assert.Equal(t, 1, resp.Msg.Attempts)
	assert.NotEmpty(t, resp.Msg.PaymentID)
	assert.Empty(t, resp.Msg.ErrorKind)

	calls := env.gateway.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "bob@example.com", calls[0].From.Email)
	assert.Equal(t, "alice@example.com", calls[0].To.Email)
	assert.Equal(t, group.ID, calls[0].GroupID)

	payments, err := env.settlements.ListPayments(ctx, authed(alice, &api.ListPaymentsRequest{GroupID: group.ID}))
	require.NoError(t, err)
	require.Len(t, payments.Msg.Payments, 1)
	p := payments.Msg.Payments[0]
	assert.Equal(t, resp.Msg.PaymentID, p.ID)
	assert.Equal(t, bob.ID, p.FromUserID)
	assert.Equal(t, alice.ID, p.ToUserID)
	assert.Equal(t, bob.ID, p.CreatedBy)
	assert.Equal(t, "completed", p.Status)
}

func TestSettleUpPolicy(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice, bob, group := setupDebt(t, env)
	mallory := env.register(t, "mallory@example.com", "Mallory")

	// Only the debtor may pay, and only a planned transfer.
	_, err := env.settlements.SettleUp(ctx, authed(alice, &api.SettleUpRequest{GroupID: group.ID, ToUserID: bob.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.settlements.SettleUp(ctx, authed(mallory, &api.SettleUpRequest{GroupID: group.ID, ToUserID: alice.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.settlements.SettleUp(ctx, authed(bob, &api.SettleUpRequest{GroupID: "missing", ToUserID: alice.ID}))
	requireCode(t, err, connect.CodeNotFound)

	assert.Empty(t, env.gateway.calls())
}

func TestSettleUpReportsRailFailure(t *testing.T) {
	tests := []struct {
		name         string
		kind         payment.Kind
		wantAttempts int
	}{
		{"terminal", payment.KindInsufficientBalance, 1},
		{"retried", payment.KindNetwork, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestServer(t)
			ctx := context.Background()
			alice, bob, group := setupDebt(t, env)
			env.gateway.failWith(payment.NewGatewayError(tt.kind, "", nil))

			resp, err := env.settlements.SettleUp(ctx, authed(bob, &api.SettleUpRequest{
				GroupID:  group.ID,
				ToUserID: alice.ID,
			}))
			require.NoError(t, err)
			assert.False(t, resp.Msg.Success)
			assert.Equal(t, "failed", resp.Msg.Status)
			assert.Equal(t, string(tt.kind), resp.Msg.ErrorKind)
			assert.NotEmpty(t, resp.Msg.Message)
			assert.NotEmpty(t, resp.Msg.SuggestedAction)
			assert.Equal(t, tt.wantAttempts, resp.Msg.Attempts)
			assert.Len(t, env.gateway.calls(), tt.wantAttempts)

			payments, err := env.settlements.ListPayments(ctx, authed(bob, &api.ListPaymentsRequest{GroupID: group.ID}))
			require.NoError(t, err)
			require.Len(t, payments.Msg.Payments, 1)
			assert.Equal(t, "failed", payments.Msg.Payments[0].Status)
		})
	}
}

func TestRailsAndFees(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")

	rails, err := env.settlements.ListRails(ctx, authed(alice, &api.ListRailsRequest{}))
	require.NoError(t, err)
	require.Len(t, rails.Msg.Rails, 1)
	assert.Equal(t, "paypal", rails.Msg.Rails[0].Rail)
	assert.True(t, rails.Msg.Rails[0].Healthy)
	assert.Equal(t, "closed", rails.Msg.Rails[0].BreakerState)

	fee, err := env.settlements.EstimateFee(ctx, authed(alice, &api.EstimateFeeRequest{Rail: "paypal", Amount: 50}))
	require.NoError(t, err)
	assert.InDelta(t, 1.75, fee.Msg.Fee, 0.001)
	assert.InDelta(t, 51.75, fee.Msg.Total, 0.001)

	_, err = env.settlements.EstimateFee(ctx, authed(alice, &api.EstimateFeeRequest{Rail: "venmo", Amount: 50}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.settlements.EstimateFee(ctx, authed(alice, &api.EstimateFeeRequest{Rail: "paypal", Amount: -1}))
	requireCode(t, err, connect.CodeInvalidArgument)
}
