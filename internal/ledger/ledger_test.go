package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/payhive/internal/calculator"
	"github.com/mmynk/payhive/internal/models"
	"github.com/mmynk/payhive/internal/storage"
	"github.com/mmynk/payhive/internal/storage/memory"
)

type countingObserver struct {
	mu         sync.Mutex
	approvals  map[ApprovalResult]int
	authorized int
	plans      []int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{approvals: make(map[ApprovalResult]int)}
}

func (o *countingObserver) ApprovalRecorded(result ApprovalResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.approvals[result]++
}

func (o *countingObserver) ExpenseAuthorized() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.authorized++
}

func (o *countingObserver) PlanComputed(transfers int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.plans = append(o.plans, transfers)
}

func setupLedger(t *testing.T, opts ...Option) *Ledger {
	t.Helper()
	store := memory.New()
	t.Cleanup(func() { store.Close() })
	return New(store, opts...)
}

func members(ids ...string) []models.Member {
	out := make([]models.Member, len(ids))
	for i, id := range ids {
		out[i] = models.Member{UserID: id, Email: id + "@example.com"}
	}
	return out
}

func createGroup(t *testing.T, l *Ledger, ids ...string) *models.Group {
	t.Helper()
	group, err := l.CreateGroup(context.Background(), NewGroup{
		Name:      "Test Group",
		CreatedBy: ids[0],
		Members:   members(ids...),
	})
	require.NoError(t, err)
	return group
}

func netBalances(t *testing.T, l *Ledger, groupID string) map[string]float64 {
	t.Helper()
	balances, err := l.Balances(context.Background(), groupID)
	require.NoError(t, err)
	return calculator.BalanceMap(balances)
}

func TestCreateGroup(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 8, 10, 12, 0, 0, 0, time.UTC)
	l := setupLedger(t, WithClock(func() time.Time { return now }))

	group, err := l.CreateGroup(ctx, NewGroup{
		Name:        "  Roommates  ",
		Description: "Apartment 4B",
		CreatedBy:   "alice",
		Members:     members("alice", "bob"),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "Roommates", group.Name)
	assert.Equal(t, []string{"alice", "bob"}, group.MemberIDs())
	assert.Equal(t, now, group.Members[0].JoinedAt)
	assert.Equal(t, now, group.CreatedAt)

	stored, err := l.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, group.MemberIDs(), stored.MemberIDs())
}

func TestCreateGroup_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input NewGroup
	}{
		{name: "empty name", input: NewGroup{Name: " ", Members: members("a")}},
		{name: "no members", input: NewGroup{Name: "g"}},
		{name: "duplicate member", input: NewGroup{Name: "g", Members: members("a", "a")}},
		{name: "blank member id", input: NewGroup{Name: "g", Members: members("a", " ")}},
		{name: "creator not a member", input: NewGroup{Name: "g", CreatedBy: "z", Members: members("a")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := setupLedger(t)
			_, err := l.CreateGroup(context.Background(), tt.input)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAddMember(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)
	group := createGroup(t, l, "a", "b")

	updated, err := l.AddMember(ctx, group.ID, models.Member{UserID: "c", Email: "c@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, updated.MemberIDs())

	_, err = l.AddMember(ctx, group.ID, models.Member{UserID: "b"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = l.AddMember(ctx, "missing", models.Member{UserID: "d"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddExpense_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   NewExpense
		wantErr error
	}{
		{name: "zero amount", input: NewExpense{Description: "x", Amount: 0, PaidBy: "a", Participants: []string{"a"}}, wantErr: ErrValidation},
		{name: "negative amount", input: NewExpense{Description: "x", Amount: -5, PaidBy: "a", Participants: []string{"a"}}, wantErr: ErrValidation},
		{name: "empty description", input: NewExpense{Description: "", Amount: 5, PaidBy: "a", Participants: []string{"a"}}, wantErr: ErrValidation},
		{name: "no participants", input: NewExpense{Description: "x", Amount: 5, PaidBy: "a"}, wantErr: ErrValidation},
		{name: "duplicate participant", input: NewExpense{Description: "x", Amount: 5, PaidBy: "a", Participants: []string{"a", "a"}}, wantErr: ErrValidation},
		{name: "unknown payer", input: NewExpense{Description: "x", Amount: 5, PaidBy: "z", Participants: []string{"a"}}, wantErr: ErrInvalidMember},
		{name: "unknown participant", input: NewExpense{Description: "x", Amount: 5, PaidBy: "a", Participants: []string{"a", "z"}}, wantErr: ErrInvalidMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := setupLedger(t)
			group := createGroup(t, l, "a", "b")

			_, err := l.AddExpense(context.Background(), group.ID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)

			stored, err := l.GetGroup(context.Background(), group.ID)
			require.NoError(t, err)
			assert.Empty(t, stored.Expenses, "rejected expense must not be stored")
		})
	}
}

func TestAddExpense_MissingGroup(t *testing.T) {
	l := setupLedger(t)
	_, err := l.AddExpense(context.Background(), "missing", NewExpense{Description: "x", Amount: 1, PaidBy: "a", Participants: []string{"a"}})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddExpense_SubCentShares(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)
	group := createGroup(t, l, "a", "b", "c", "d")

	_, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "gum", Amount: 0.027, PaidBy: "a", Participants: []string{"b", "c", "d"},
	})
	assert.ErrorIs(t, err, ErrValidation)

	// A share of exactly one cent is accepted.
	expense, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "mints", Amount: 0.03, PaidBy: "a", Participants: []string{"b", "c", "d"},
	})
	require.NoError(t, err)
	_, _, err = l.RecordApproval(ctx, group.ID, expense.ID, "b")
	require.NoError(t, err)

	var sum float64
	for _, b := range netBalances(t, l, group.ID) {
		sum += b
	}
	assert.InDelta(t, 0, sum, 0.01)
}

func TestAddExpense_PayerSelfApproves(t *testing.T) {
	l := setupLedger(t, WithIDGenerator(func() string { return "exp-1" }))
	group := createGroup(t, l, "a", "b", "c")

	expense, err := l.AddExpense(context.Background(), group.ID, NewExpense{
		Description: "Groceries", Amount: 30, PaidBy: "b", Participants: []string{"a", "b", "c"},
	})
	require.NoError(t, err)

	assert.Equal(t, "exp-1", expense.ID)
	assert.Equal(t, group.ID, expense.GroupID)
	assert.Equal(t, []string{"b"}, expense.Approvals)
	assert.False(t, expense.IsAuthorized, "1 of 3 approvals is below quorum of 2")
}

// Group {A,B}, A pays 100 for both, both approve: B owes A 50.
func TestScenario_TwoMembers(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)
	group := createGroup(t, l, "A", "B")

	expense, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "Dinner", Amount: 100, PaidBy: "A", Participants: []string{"A", "B"},
	})
	require.NoError(t, err)
	assert.True(t, expense.IsAuthorized, "quorum of a two-member group is one")

	expense, _, err = l.RecordApproval(ctx, group.ID, expense.ID, "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, expense.Approvals)

	balances := netBalances(t, l, group.ID)
	assert.InDelta(t, 50, balances["A"], 0.01)
	assert.InDelta(t, -50, balances["B"], 0.01)

	settlements, err := l.Settlements(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, settlements, 1)
	assert.Equal(t, "B", settlements[0].FromUserID)
	assert.Equal(t, "A", settlements[0].ToUserID)
	assert.InDelta(t, 50, settlements[0].Amount, 0.01)
}

// Group {A,B,C}: A pays 120 for all, B pays 60 for B and C.
func TestScenario_ThreeMembersGreedy(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)
	group := createGroup(t, l, "A", "B", "C")

	first, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "Cabin", Amount: 120, PaidBy: "A", Participants: []string{"A", "B", "C"},
	})
	require.NoError(t, err)
	_, _, err = l.RecordApproval(ctx, group.ID, first.ID, "B")
	require.NoError(t, err)

	second, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "Fuel", Amount: 60, PaidBy: "B", Participants: []string{"B", "C"},
	})
	require.NoError(t, err)
	_, _, err = l.RecordApproval(ctx, group.ID, second.ID, "C")
	require.NoError(t, err)

	balances := netBalances(t, l, group.ID)
	assert.InDelta(t, 80, balances["A"], 0.01)
	assert.InDelta(t, -10, balances["B"], 0.01)
	assert.InDelta(t, -70, balances["C"], 0.01)

	settlements, err := l.Settlements(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, settlements, 2)
	assert.Equal(t, models.Settlement{FromUserID: "C", ToUserID: "A", Amount: settlements[0].Amount}, settlements[0])
	assert.InDelta(t, 70, settlements[0].Amount, 0.01)
	assert.Equal(t, "B", settlements[1].FromUserID)
	assert.Equal(t, "A", settlements[1].ToUserID)
	assert.InDelta(t, 10, settlements[1].Amount, 0.01)
}

// Four members need two approvals.
func TestScenario_QuorumOfFour(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)
	group := createGroup(t, l, "m1", "m2", "m3", "m4")

	expense, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "Rental", Amount: 400, PaidBy: "m1", Participants: []string{"m1", "m2", "m3", "m4"},
	})
	require.NoError(t, err)
	assert.False(t, expense.IsAuthorized)

	settlements, err := l.Settlements(ctx, group.ID)
	require.NoError(t, err)
	assert.Empty(t, settlements, "pending expenses produce no settlements")

	expense, _, err = l.RecordApproval(ctx, group.ID, expense.ID, "m2")
	require.NoError(t, err)
	assert.True(t, expense.IsAuthorized)

	settlements, err = l.Settlements(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, settlements, 3)
}

func TestRecordApproval_Idempotent(t *testing.T) {
	ctx := context.Background()
	obs := newCountingObserver()
	l := setupLedger(t, WithObserver(obs))
	group := createGroup(t, l, "a", "b", "c", "d", "e")

	expense, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "Boat", Amount: 250, PaidBy: "a", Participants: []string{"a", "b", "c", "d", "e"},
	})
	require.NoError(t, err)

	once, result, err := l.RecordApproval(ctx, group.ID, expense.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, ApprovalAdded, result)
	twice, result, err := l.RecordApproval(ctx, group.ID, expense.ID, "b")
	require.NoError(t, err)
	assert.Equal(t, ApprovalDuplicate, result)

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"a", "b"}, twice.Approvals)
	assert.False(t, twice.IsAuthorized, "2 of 5 is below quorum of 3")

	// Re-approving the payer is also a no-op.
	again, result, err := l.RecordApproval(ctx, group.ID, expense.ID, "a")
	require.NoError(t, err)
	assert.Equal(t, ApprovalDuplicate, result)
	assert.Len(t, again.Approvals, 2)

	assert.Equal(t, 1, obs.approvals[ApprovalAdded])
	assert.Equal(t, 2, obs.approvals[ApprovalDuplicate])
	assert.Zero(t, obs.authorized)
}

func TestRecordApproval_NonParticipantMayApprove(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)
	group := createGroup(t, l, "a", "b", "c")

	expense, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "Taxi", Amount: 20, PaidBy: "a", Participants: []string{"a", "b"},
	})
	require.NoError(t, err)

	expense, _, err = l.RecordApproval(ctx, group.ID, expense.ID, "c")
	require.NoError(t, err)
	assert.True(t, expense.IsAuthorized)
}

func TestRecordApproval_Errors(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)
	group := createGroup(t, l, "a", "b", "c")
	expense, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "Taxi", Amount: 20, PaidBy: "a", Participants: []string{"a", "b"},
	})
	require.NoError(t, err)

	_, _, err = l.RecordApproval(ctx, "missing", expense.ID, "a")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, _, err = l.RecordApproval(ctx, group.ID, "missing", "a")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = l.RecordApproval(ctx, group.ID, expense.ID, "stranger")
	assert.ErrorIs(t, err, ErrInvalidMember)
	assert.ErrorIs(t, err, ErrValidation)

	stored, err := l.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, stored.Expenses[0].Approvals)
}

func TestRecomputeAuthorization(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)
	group := createGroup(t, l, "a", "b", "c", "d")

	authorizedExpense, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "Lift", Amount: 80, PaidBy: "a", Participants: []string{"a", "b"},
	})
	require.NoError(t, err)
	_, _, err = l.RecordApproval(ctx, group.ID, authorizedExpense.ID, "b")
	require.NoError(t, err)

	pending, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "Snacks", Amount: 12, PaidBy: "c", Participants: []string{"c", "d"},
	})
	require.NoError(t, err)
	_, _, err = l.RecordApproval(ctx, group.ID, pending.ID, "d")
	require.NoError(t, err)

	// Grow the group from 4 to 6 members: quorum becomes 3.
	_, err = l.AddMember(ctx, group.ID, models.Member{UserID: "e"})
	require.NoError(t, err)
	_, err = l.AddMember(ctx, group.ID, models.Member{UserID: "f"})
	require.NoError(t, err)

	got, err := l.RecomputeAuthorization(ctx, group.ID, authorizedExpense.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAuthorized, "authorized expenses stay authorized")

	got, err = l.RecomputeAuthorization(ctx, group.ID, pending.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAuthorized, "was already authorized at 2 of 4")

	again, err := l.RecomputeAuthorization(ctx, group.ID, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	_, err = l.RecomputeAuthorization(ctx, group.ID, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecomputeAuthorization_AfterGrowthKeepsPendingPending(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)
	group := createGroup(t, l, "a", "b", "c")

	expense, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "Gas", Amount: 45, PaidBy: "a", Participants: []string{"a", "b", "c"},
	})
	require.NoError(t, err)

	for _, id := range []string{"d", "e"} {
		_, err = l.AddMember(ctx, group.ID, models.Member{UserID: id})
		require.NoError(t, err)
	}

	// Two approvals out of five is below quorum of three.
	got, _, err := l.RecordApproval(ctx, group.ID, expense.ID, "b")
	require.NoError(t, err)
	assert.False(t, got.IsAuthorized)

	got, _, err = l.RecordApproval(ctx, group.ID, expense.ID, "e")
	require.NoError(t, err)
	assert.True(t, got.IsAuthorized)
}

func TestQuorumReachedExactly(t *testing.T) {
	ctx := context.Background()

	for n := 1; n <= 8; n++ {
		t.Run(fmt.Sprintf("members=%d", n), func(t *testing.T) {
			ids := make([]string, n)
			for i := range ids {
				ids[i] = fmt.Sprintf("m%d", i)
			}
			l := setupLedger(t)
			group := createGroup(t, l, ids...)
			required := calculator.RequiredApprovals(n)

			expense, err := l.AddExpense(ctx, group.ID, NewExpense{
				Description: "Shared", Amount: 10, PaidBy: ids[0], Participants: ids,
			})
			require.NoError(t, err)

			for i := 1; i < n; i++ {
				assert.Equal(t, len(expense.Approvals) >= required, expense.IsAuthorized,
					"approvals=%d required=%d", len(expense.Approvals), required)
				expense, _, err = l.RecordApproval(ctx, group.ID, expense.ID, ids[i])
				require.NoError(t, err)
			}
			assert.True(t, expense.IsAuthorized)
		})
	}
}

func TestConcurrentApprovalsAreSerialized(t *testing.T) {
	ctx := context.Background()
	obs := newCountingObserver()
	l := setupLedger(t, WithObserver(obs))

	ids := make([]string, 20)
	for i := range ids {
		ids[i] = fmt.Sprintf("m%02d", i)
	}
	group := createGroup(t, l, ids...)

	expense, err := l.AddExpense(ctx, group.ID, NewExpense{
		Description: "Festival", Amount: 2000, PaidBy: ids[0], Participants: ids,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, id := range ids {
		for range 2 {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				_, _, err := l.RecordApproval(ctx, group.ID, expense.ID, id)
				assert.NoError(t, err)
			}(id)
		}
	}
	wg.Wait()

	stored, err := l.GetGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids, stored.Expenses[0].Approvals)
	assert.True(t, stored.Expenses[0].IsAuthorized)
	assert.Equal(t, 1, obs.authorized, "authorization transition is reported once")
	assert.Equal(t, 19, obs.approvals[ApprovalAdded])
}

func TestSettlements_ReportsPlanSize(t *testing.T) {
	ctx := context.Background()
	obs := newCountingObserver()
	l := setupLedger(t, WithObserver(obs))
	group := createGroup(t, l, "a", "b")

	_, err := l.Settlements(ctx, group.ID)
	require.NoError(t, err)

	_, err = l.AddExpense(ctx, group.ID, NewExpense{Description: "x", Amount: 10, PaidBy: "a", Participants: []string{"a", "b"}})
	require.NoError(t, err)
	_, err = l.Settlements(ctx, group.ID)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, obs.plans)
	assert.Equal(t, 1, obs.authorized)

	_, err = l.Settlements(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBalances_Conservation(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)
	group := createGroup(t, l, "a", "b", "c")

	inputs := []NewExpense{
		{Description: "one", Amount: 100, PaidBy: "a", Participants: []string{"a", "b", "c"}},
		{Description: "two", Amount: 33.33, PaidBy: "b", Participants: []string{"a", "c"}},
		{Description: "three", Amount: 7.01, PaidBy: "c", Participants: []string{"b"}},
	}
	for _, in := range inputs {
		expense, err := l.AddExpense(ctx, group.ID, in)
		require.NoError(t, err)
		for _, id := range group.MemberIDs() {
			_, _, err := l.RecordApproval(ctx, group.ID, expense.ID, id)
			require.NoError(t, err)
		}
	}

	var sum float64
	for _, b := range netBalances(t, l, group.ID) {
		sum += b
	}
	assert.InDelta(t, 0, sum, 0.01)
}
