// Package ledger owns group aggregates and exposes the settlement engine:
// membership, expense logging, quorum approvals, balances and settlement plans.
//
// Every mutation loads the group from the store, changes it and saves it back
// while holding that group's lock, so writes to one group are serialized and
// different groups never contend.
package ledger

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/payhive/internal/calculator"
	"github.com/mmynk/payhive/internal/models"
	"github.com/mmynk/payhive/internal/storage"
)

// Observer receives ledger events. internal/metrics provides the Prometheus implementation.
type Observer interface {
	ApprovalRecorded(result ApprovalResult)
	ExpenseAuthorized()
	PlanComputed(transfers int)
}

type nopObserver struct{}

func (nopObserver) ApprovalRecorded(ApprovalResult) {}
func (nopObserver) ExpenseAuthorized()              {}
func (nopObserver) PlanComputed(int)                {}

// Ledger is the repository and service object for group aggregates.
type Ledger struct {
	store    storage.Store
	observer Observer
	now      func() time.Time
	newID    func() string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithObserver reports ledger events to o.
func WithObserver(o Observer) Option {
	return func(l *Ledger) {
		if o != nil {
			l.observer = o
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithIDGenerator overrides how expense IDs are generated.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// New creates a Ledger backed by store.
func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		observer: nopObserver{},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.New().String() },
		locks:    make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// lock serializes writers of one group. The returned func releases it.
func (l *Ledger) lock(groupID string) func() {
	l.mu.Lock()
	m, ok := l.locks[groupID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[groupID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// NewGroup holds the input for CreateGroup.
type NewGroup struct {
	Name        string
	Description string
	// CreatedBy must be one of Members when set.
	CreatedBy string
	// Members in join order. At least one is required.
	Members []models.Member
}

// CreateGroup validates and persists a new group.
// Members without a JoinedAt timestamp join now.
func (l *Ledger) CreateGroup(ctx context.Context, in NewGroup) (*models.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationErrorf("group name is required")
	}
	if len(in.Members) == 0 {
		return nil, validationErrorf("group needs at least one member")
	}

	now := l.now()
	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   in.CreatedBy,
		Members:     make([]models.Member, 0, len(in.Members)),
		Expenses:    []models.Expense{},
		CreatedAt:   now,
	}
	for _, m := range in.Members {
		if err := addMember(group, m, now); err != nil {
			return nil, err
		}
	}
	if in.CreatedBy != "" && !group.HasMember(in.CreatedBy) {
		return nil, validationErrorf("creator %s must be a group member", in.CreatedBy)
	}

	if err := l.store.CreateGroup(ctx, group); err != nil {
		return nil, storeError("create group", err)
	}

	slog.Info("Group created", "group_id", group.ID, "members_count", len(group.Members))
	return group, nil
}

func addMember(group *models.Group, m models.Member, now time.Time) error {
	m.UserID = strings.TrimSpace(m.UserID)
	if m.UserID == "" {
		return validationErrorf("member user ID is required")
	}
	if group.HasMember(m.UserID) {
		return validationErrorf("%s is already a member", m.UserID)
	}
	if m.JoinedAt.IsZero() {
		m.JoinedAt = now
	}
	group.Members = append(group.Members, m)
	return nil
}

// GetGroup loads a group aggregate.
func (l *Ledger) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError("get group", err)
	}
	return group, nil
}

// ListGroups returns every group, oldest first.
func (l *Ledger) ListGroups(ctx context.Context) ([]*models.Group, error) {
	groups, err := l.store.ListGroups(ctx)
	if err != nil {
		return nil, storeError("list groups", err)
	}
	return groups, nil
}

// update runs fn on the freshly loaded group under the group lock and saves
// the result when fn succeeds.
func (l *Ledger) update(ctx context.Context, groupID string, fn func(*models.Group) error) (*models.Group, error) {
	unlock := l.lock(groupID)
	defer unlock()

	group, err := l.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, storeError("get group", err)
	}
	if err := fn(group); err != nil {
		return nil, err
	}
	if err := l.store.SaveGroup(ctx, group); err != nil {
		return nil, storeError("save group", err)
	}
	return group, nil
}

// AddMember appends a member to the group. Members are never removed.
//
// Pending expenses are not re-evaluated; callers that want the new member
// count applied use RecomputeAuthorization.
func (l *Ledger) AddMember(ctx context.Context, groupID string, member models.Member) (*models.Group, error) {
	group, err := l.update(ctx, groupID, func(g *models.Group) error {
		return addMember(g, member, l.now())
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Member added", "group_id", groupID, "user_id", member.UserID, "members_count", len(group.Members))
	return group, nil
}

// NewExpense holds the input for AddExpense.
type NewExpense struct {
	Description  string
	Amount       float64
	PaidBy       string
	Participants []string
}

func (in NewExpense) validate(group *models.Group) error {
	if strings.TrimSpace(in.Description) == "" {
		return validationErrorf("description is required")
	}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		return validationErrorf("amount must be positive, got %v", in.Amount)
	}
	if !group.HasMember(in.PaidBy) {
		return invalidMember(group.ID, in.PaidBy)
	}
	if len(in.Participants) == 0 {
		return validationErrorf("expense needs at least one participant")
	}
	seen := make(map[string]bool, len(in.Participants))
	for _, p := range in.Participants {
		if seen[p] {
			return validationErrorf("participant %s listed twice", p)
		}
		seen[p] = true
		if !group.HasMember(p) {
			return invalidMember(group.ID, p)
		}
	}
	// Shares below a cent cannot be settled.
	if share := in.Amount / float64(len(in.Participants)); share < calculator.Epsilon-1e-9 {
		return validationErrorf("share of %v per participant is below %v", share, calculator.Epsilon)
	}
	return nil
}

// AddExpense logs a new expense. The payer approves it implicitly, so in a
// group of one or two members the expense is authorized immediately.
func (l *Ledger) AddExpense(ctx context.Context, groupID string, in NewExpense) (*models.Expense, error) {
	var expense models.Expense
	var authorized bool

	_, err := l.update(ctx, groupID, func(g *models.Group) error {
		if err := in.validate(g); err != nil {
			return err
		}

		expense = models.Expense{
			ID:           l.newID(),
			GroupID:      g.ID,
			Description:  strings.TrimSpace(in.Description),
			Amount:       in.Amount,
			PaidBy:       in.PaidBy,
			Participants: append([]string(nil), in.Participants...),
			Approvals:    []string{in.PaidBy},
			CreatedAt:    l.now(),
		}
		authorized = recompute(&expense, len(g.Members))
		g.Expenses = append(g.Expenses, expense)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if authorized {
		l.observer.ExpenseAuthorized()
	}
	slog.Info("Expense added",
		"group_id", groupID,
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"status", expense.Status(),
	)
	return &expense, nil
}

// RecordApproval adds memberID's approval to an expense and recomputes its
// authorization. Any group member may approve, not only participants.
// Approving twice is a no-op reported as ApprovalDuplicate.
func (l *Ledger) RecordApproval(ctx context.Context, groupID, expenseID, memberID string) (*models.Expense, ApprovalResult, error) {
	var expense models.Expense
	var result ApprovalResult
	var authorized bool

	_, err := l.update(ctx, groupID, func(g *models.Group) error {
		e, ok := g.Expense(expenseID)
		if !ok {
			return expenseNotFound(groupID, expenseID)
		}

		var err error
		result, authorized, err = approve(g, e, memberID)
		if err != nil {
			return err
		}
		expense = *e
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	l.observer.ApprovalRecorded(result)
	if authorized {
		l.observer.ExpenseAuthorized()
	}
	slog.Info("Approval recorded",
		"group_id", groupID,
		"expense_id", expenseID,
		"member_id", memberID,
		"result", result,
		"approvals", len(expense.Approvals),
		"status", expense.Status(),
	)
	return &expense, result, nil
}

// RecomputeAuthorization re-derives an expense's authorization from its
// approvals and the current member count. It is idempotent.
func (l *Ledger) RecomputeAuthorization(ctx context.Context, groupID, expenseID string) (*models.Expense, error) {
	var expense models.Expense
	var authorized bool

	_, err := l.update(ctx, groupID, func(g *models.Group) error {
		e, ok := g.Expense(expenseID)
		if !ok {
			return expenseNotFound(groupID, expenseID)
		}
		authorized = recompute(e, len(g.Members))
		expense = *e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if authorized {
		l.observer.ExpenseAuthorized()
	}
	return &expense, nil
}

// Balances returns each member's net balance over authorized expenses, in join order.
func (l *Ledger) Balances(ctx context.Context, groupID string) ([]calculator.MemberBalance, error) {
	group, err := l.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return GroupBalances(group)
}

// Settlements recomputes the settlement plan for a group.
// An empty plan means everyone is settled up.
func (l *Ledger) Settlements(ctx context.Context, groupID string) ([]models.Settlement, error) {
	group, err := l.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	settlements, err := PlanGroup(group)
	if err != nil {
		return nil, err
	}

	l.observer.PlanComputed(len(settlements))
	return settlements, nil
}
