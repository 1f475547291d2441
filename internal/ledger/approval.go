package ledger

import (
	"github.com/mmynk/payhive/internal/calculator"
	"github.com/mmynk/payhive/internal/models"
)

// ApprovalResult describes what one approval did to an expense.
type ApprovalResult string

const (
	// ApprovalAdded means the member's approval was appended.
	ApprovalAdded ApprovalResult = "added"
	// ApprovalDuplicate means the member had already approved; nothing changed.
	ApprovalDuplicate ApprovalResult = "duplicate"
)

// approve appends memberID to the expense approvals unless already present,
// then recomputes authorization against the group's member count.
// It reports whether the approval was new and whether this call moved the
// expense from pending to authorized.
func approve(group *models.Group, expense *models.Expense, memberID string) (ApprovalResult, bool, error) {
	if !group.HasMember(memberID) {
		return "", false, invalidMember(group.ID, memberID)
	}

	result := ApprovalDuplicate
	if !expense.HasApproval(memberID) {
		expense.Approvals = append(expense.Approvals, memberID)
		result = ApprovalAdded
	}

	return result, recompute(expense, len(group.Members)), nil
}

// recompute derives IsAuthorized from the approval count.
// Authorized is terminal: an authorized expense is never reverted, even if
// the group has grown since. Returns true only on the pending to authorized
// transition.
func recompute(expense *models.Expense, memberCount int) bool {
	if expense.IsAuthorized {
		return false
	}
	expense.IsAuthorized = calculator.IsAuthorized(len(expense.Approvals), memberCount)
	return expense.IsAuthorized
}

// GroupBalances computes net balances for a group aggregate in join order.
func GroupBalances(group *models.Group) ([]calculator.MemberBalance, error) {
	expenses := make([]calculator.ExpenseForBalance, len(group.Expenses))
	for i, e := range group.Expenses {
		expenses[i] = calculator.ExpenseForBalance{
			Amount:       e.Amount,
			PaidBy:       e.PaidBy,
			Participants: e.Participants,
			Authorized:   e.IsAuthorized,
		}
	}
	return calculator.CalculateBalances(group.MemberIDs(), expenses)
}

// PlanGroup computes the settlement plan for a group aggregate.
func PlanGroup(group *models.Group) ([]models.Settlement, error) {
	balances, err := GroupBalances(group)
	if err != nil {
		return nil, err
	}

	edges := calculator.PlanSettlements(balances)
	settlements := make([]models.Settlement, len(edges))
	for i, e := range edges {
		settlements[i] = models.Settlement{
			FromUserID: e.From,
			ToUserID:   e.To,
			Amount:     e.Amount,
		}
	}
	return settlements, nil
}
