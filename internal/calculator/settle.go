package calculator

import "sort"

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount float64
}

type party struct {
	id      string
	balance float64 // always positive: amount owed to a creditor or by a debtor
}

// PlanSettlements converts net balances into directed transfers that drive
// every balance to zero.
//
// Greedy algorithm: match the largest creditor with the largest debtor, settle
// the smaller of the two amounts, and advance past whoever reaches zero.
// Creditors are sorted descending and debtors by most negative first; ties keep
// the order of the input slice. The result is deterministic and O(n log n) but
// not always the minimum number of transfers possible.
//
// Balances within Epsilon of zero are ignored. An empty result means the group
// is fully settled.
func PlanSettlements(balances []MemberBalance) []DebtEdge {
	var creditors, debtors []party
	for _, b := range balances {
		if b.NetBalance > Epsilon {
			creditors = append(creditors, party{id: b.MemberID, balance: b.NetBalance})
		} else if b.NetBalance < -Epsilon {
			debtors = append(debtors, party{id: b.MemberID, balance: -b.NetBalance})
		}
	}

	sort.SliceStable(creditors, func(i, j int) bool { return creditors[i].balance > creditors[j].balance })
	sort.SliceStable(debtors, func(i, j int) bool { return debtors[i].balance > debtors[j].balance })

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := debtor.balance
		if creditor.balance < amount {
			amount = creditor.balance
		}

		if amount > Epsilon {
			edges = append(edges, DebtEdge{
				From:   debtor.id,
				To:     creditor.id,
				Amount: amount,
			})
		}

		debtor.balance -= amount
		creditor.balance -= amount

		// Move to next debtor/creditor if fully settled
		if debtor.balance < Epsilon {
			i++
		}
		if creditor.balance < Epsilon {
			j++
		}
	}

	return edges
}
