package calculator

import "fmt"

// ExpenseForBalance represents an expense with the minimal information needed for balance calculations.
type ExpenseForBalance struct {
	Amount       float64
	PaidBy       string
	Participants []string
	Authorized   bool
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	MemberID   string
	NetBalance float64 // Positive = owed money, Negative = owes money
	TotalPaid  float64 // Total amount paid across authorized expenses
	TotalOwed  float64 // Total share owed across authorized expenses
}

// CalculateBalances folds a group's authorized expenses into per-member net balances.
//
// Algorithm:
//   - Every member in memberIDs starts at zero, in the given (join) order
//   - For each authorized expense: payer gets +amount, each participant gets -amount/len(participants)
//   - A payer who is also a participant receives both the credit and the debit of their share
//   - Net balances within Epsilon of zero are reported as zero, unless the
//     amounts dropped that way add up to Epsilon or more
//
// Pending expenses contribute nothing. The sum of all net balances is zero
// within Epsilon.
func CalculateBalances(memberIDs []string, expenses []ExpenseForBalance) ([]MemberBalance, error) {
	balances := make([]MemberBalance, 0, len(memberIDs))
	index := make(map[string]int, len(memberIDs))

	lookup := func(id string) *MemberBalance {
		if i, ok := index[id]; ok {
			return &balances[i]
		}
		// Ids outside the member list still get a balance so money is conserved.
		index[id] = len(balances)
		balances = append(balances, MemberBalance{MemberID: id})
		return &balances[len(balances)-1]
	}

	for _, id := range memberIDs {
		lookup(id)
	}

	for i, expense := range expenses {
		if !expense.Authorized {
			continue
		}

		shares, err := SplitEvenly(expense.Amount, expense.Participants)
		if err != nil {
			return nil, fmt.Errorf("failed to split expense %d: %w", i, err)
		}

		lookup(expense.PaidBy).TotalPaid += expense.Amount

		// Iterate participants rather than the map to keep a stable order.
		seen := make(map[string]bool, len(shares))
		for _, participant := range expense.Participants {
			if seen[participant] {
				continue
			}
			seen[participant] = true
			lookup(participant).TotalOwed += shares[participant]
		}
	}

	dust := 0.0
	for i := range balances {
		net := balances[i].TotalPaid - balances[i].TotalOwed
		balances[i].NetBalance = net
		if IsZero(net) {
			dust += net
		}
	}

	// Several sub-cent debts can add up to a real amount owed to someone.
	if IsZero(dust) {
		for i := range balances {
			if IsZero(balances[i].NetBalance) {
				balances[i].NetBalance = 0
			}
		}
	}

	return balances, nil
}

// BalanceMap converts ordered balances into a lookup by member ID.
func BalanceMap(balances []MemberBalance) map[string]float64 {
	m := make(map[string]float64, len(balances))
	for _, b := range balances {
		m[b.MemberID] = b.NetBalance
	}
	return m
}
