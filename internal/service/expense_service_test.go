package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/payhive/pkg/api"
)

func TestExpenseApprovalFlow(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")
	dave := env.register(t, "dave@example.com", "Dave")
	group := env.createGroup(t, alice, bob, carol, dave)

	added, err := env.expenses.AddExpense(ctx, authed(alice, &api.AddExpenseRequest{
		GroupID:     group.ID,
		Description: "Dinner",
		Amount:      120,
	}))
	require.NoError(t, err)
	expense := added.Msg.Expense
	assert.Equal(t, alice.ID, expense.PaidBy)
	assert.Len(t, expense.Participants, 4)
	assert.Equal(t, []string{alice.ID}, expense.Approvals)
	assert.False(t, expense.IsAuthorized)
	assert.Equal(t, "pending", expense.Status)

	approved, err := env.expenses.ApproveExpense(ctx, authed(bob, &api.ApproveExpenseRequest{
		GroupID:   group.ID,
		ExpenseID: expense.ID,
	}))
	require.NoError(t, err)
	assert.False(t, approved.Msg.AlreadyApproved)
	assert.True(t, approved.Msg.Expense.IsAuthorized)
	assert.Equal(t, "authorized", approved.Msg.Expense.Status)

	again, err := env.expenses.ApproveExpense(ctx, authed(bob, &api.ApproveExpenseRequest{
		GroupID:   group.ID,
		ExpenseID: expense.ID,
	}))
	require.NoError(t, err)
	assert.True(t, again.Msg.AlreadyApproved)
	assert.Equal(t, []string{alice.ID, bob.ID}, again.Msg.Expense.Approvals)
}

func TestApproveExpense_ConcurrentDuplicates(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")
	dave := env.register(t, "dave@example.com", "Dave")
	group := env.createGroup(t, alice, bob, carol, dave)

	added, err := env.expenses.AddExpense(ctx, authed(alice, &api.AddExpenseRequest{
		GroupID: group.ID, Description: "Cabin", Amount: 400,
	}))
	require.NoError(t, err)

	// Each approver races against itself; exactly one call per member adds.
	var fresh atomic.Int32
	var wg sync.WaitGroup
	for _, u := range []testUser{bob, carol, dave} {
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				resp, err := env.expenses.ApproveExpense(ctx, authed(u, &api.ApproveExpenseRequest{
					GroupID: group.ID, ExpenseID: added.Msg.Expense.ID,
				}))
				if !assert.NoError(t, err) {
					return
				}
				if !resp.Msg.AlreadyApproved {
					fresh.Add(1)
				}
			}()
		}
	}
	wg.Wait()

	assert.Equal(t, int32(3), fresh.Load())
}

func TestListExpensesFiltersByStatus(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")
	group := env.createGroup(t, alice, bob, carol)

	first, err := env.expenses.AddExpense(ctx, authed(alice, &api.AddExpenseRequest{
		GroupID: group.ID, Description: "Hotel", Amount: 300,
	}))
	require.NoError(t, err)
	_, err = env.expenses.AddExpense(ctx, authed(bob, &api.AddExpenseRequest{
		GroupID: group.ID, Description: "Fuel", Amount: 60,
	}))
	require.NoError(t, err)
	_, err = env.expenses.ApproveExpense(ctx, authed(carol, &api.ApproveExpenseRequest{
		GroupID: group.ID, ExpenseID: first.Msg.Expense.ID,
	}))
	require.NoError(t, err)

	tests := []struct {
		status string
		want   []string
	}{
		{"", []string{"Hotel", "Fuel"}},
		{"authorized", []string{"Hotel"}},
		{"pending", []string{"Fuel"}},
	}
	for _, tt := range tests {
		t.Run("status="+tt.status, func(t *testing.T) {
			resp, err := env.expenses.ListExpenses(ctx, authed(alice, &api.ListExpensesRequest{
				GroupID: group.ID,
				Status:  tt.status,
			}))
			require.NoError(t, err)
			var got []string
			for _, e := range resp.Msg.Expenses {
				got = append(got, e.Description)
			}
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = env.expenses.ListExpenses(ctx, authed(alice, &api.ListExpensesRequest{GroupID: group.ID, Status: "settled"}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestAddExpenseErrors(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	mallory := env.register(t, "mallory@example.com", "Mallory")
	group := env.createGroup(t, alice, bob)

	tests := []struct {
		name string
		user testUser
		req  *api.AddExpenseRequest
		code connect.Code
	}{
		{"zero amount", alice, &api.AddExpenseRequest{GroupID: group.ID, Description: "x", Amount: 0}, connect.CodeInvalidArgument},
		{"missing description", alice, &api.AddExpenseRequest{GroupID: group.ID, Amount: 10}, connect.CodeInvalidArgument},
		{"payer outside group", alice, &api.AddExpenseRequest{GroupID: group.ID, Description: "x", Amount: 10, PaidBy: mallory.ID}, connect.CodeInvalidArgument},
		{"participant outside group", alice, &api.AddExpenseRequest{GroupID: group.ID, Description: "x", Amount: 10, Participants: []string{alice.ID, mallory.ID}}, connect.CodeInvalidArgument},
		{"caller outside group", mallory, &api.AddExpenseRequest{GroupID: group.ID, Description: "x", Amount: 10}, connect.CodePermissionDenied},
		{"unknown group", alice, &api.AddExpenseRequest{GroupID: "missing", Description: "x", Amount: 10}, connect.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.expenses.AddExpense(ctx, authed(tt.user, tt.req))
			requireCode(t, err, tt.code)
		})
	}
}

func TestApproveExpenseErrors(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	mallory := env.register(t, "mallory@example.com", "Mallory")
	group := env.createGroup(t, alice, bob)

	added, err := env.expenses.AddExpense(ctx, authed(alice, &api.AddExpenseRequest{
		GroupID: group.ID, Description: "Taxi", Amount: 30,
	}))
	require.NoError(t, err)

	_, err = env.expenses.ApproveExpense(ctx, authed(alice, &api.ApproveExpenseRequest{GroupID: group.ID, ExpenseID: "missing"}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = env.expenses.ApproveExpense(ctx, authed(mallory, &api.ApproveExpenseRequest{GroupID: group.ID, ExpenseID: added.Msg.Expense.ID}))
	requireCode(t, err, connect.CodePermissionDenied)
}

func TestParticipantOnlyApprovals(t *testing.T) {
	ctx := context.Background()
	for _, participantsOnly := range []bool{false, true} {
		env := setupTestServer(t, WithParticipantOnlyApprovals(participantsOnly))
		alice := env.register(t, "alice@example.com", "Alice")
		bob := env.register(t, "bob@example.com", "Bob")
		carol := env.register(t, "carol@example.com", "Carol")
		group := env.createGroup(t, alice, bob, carol)

		added, err := env.expenses.AddExpense(ctx, authed(alice, &api.AddExpenseRequest{
			GroupID:      group.ID,
			Description:  "Coffee",
			Amount:       8,
			Participants: []string{alice.ID, bob.ID},
		}))
		require.NoError(t, err)

		_, err = env.expenses.ApproveExpense(ctx, authed(carol, &api.ApproveExpenseRequest{
			GroupID:   group.ID,
			ExpenseID: added.Msg.Expense.ID,
		}))
		if participantsOnly {
			requireCode(t, err, connect.CodePermissionDenied)
		} else {
			require.NoError(t, err)
		}
	}
}

func TestRecomputeAuthorizationAfterMemberJoins(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")
	env.register(t, "dave@example.com", "Dave")
	env.register(t, "erin@example.com", "Erin")
	group := env.createGroup(t, alice, bob, carol)

	added, err := env.expenses.AddExpense(ctx, authed(alice, &api.AddExpenseRequest{
		GroupID: group.ID, Description: "Cabin", Amount: 900,
	}))
	require.NoError(t, err)
	require.False(t, added.Msg.Expense.IsAuthorized)

	for _, email := range []string{"dave@example.com", "erin@example.com"} {
		_, err := env.groups.AddMember(ctx, authed(alice, &api.AddMemberRequest{GroupID: group.ID, Email: email}))
		require.NoError(t, err)
	}

	_, err = env.expenses.ApproveExpense(ctx, authed(bob, &api.ApproveExpenseRequest{
		GroupID: group.ID, ExpenseID: added.Msg.Expense.ID,
	}))
	require.NoError(t, err)

	// Five members need three approvals.
	resp, err := env.expenses.RecomputeAuthorization(ctx, authed(carol, &api.RecomputeAuthorizationRequest{
		GroupID: group.ID, ExpenseID: added.Msg.Expense.ID,
	}))
	require.NoError(t, err)
	assert.False(t, resp.Msg.Expense.IsAuthorized)

	_, err = env.expenses.ApproveExpense(ctx, authed(carol, &api.ApproveExpenseRequest{
		GroupID: group.ID, ExpenseID: added.Msg.Expense.ID,
	}))
	require.NoError(t, err)
	resp, err = env.expenses.RecomputeAuthorization(ctx, authed(carol, &api.RecomputeAuthorizationRequest{
		GroupID: group.ID, ExpenseID: added.Msg.Expense.ID,
	}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Expense.IsAuthorized)
}
