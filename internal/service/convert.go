package service

import (
	"github.com/mmynk/payhive/internal/calculator"
	"github.com/mmynk/payhive/internal/models"
	"github.com/mmynk/payhive/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:            u.ID,
		Email:         u.Email,
		DisplayName:   u.DisplayName,
		WalletAddress: u.WalletAddress,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	members := make([]*api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = &api.Member{
			UserID:        m.UserID,
			Email:         m.Email,
			Name:          m.DisplayName(),
			WalletAddress: m.WalletAddress,
			JoinedAt:      m.JoinedAt,
		}
	}

	expenses := make([]*api.Expense, len(g.Expenses))
	for i := range g.Expenses {
		expenses[i] = toAPIExpense(&g.Expenses[i])
	}

	return &api.Group{
		ID:                g.ID,
		Name:              g.Name,
		Description:       g.Description,
		CreatedBy:         g.CreatedBy,
		CreatedAt:         g.CreatedAt,
		Members:           members,
		Expenses:          expenses,
		RequiredApprovals: calculator.RequiredApprovals(len(g.Members)),
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	return &api.Expense{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Description:  e.Description,
		Amount:       e.Amount,
		PaidBy:       e.PaidBy,
		Participants: append([]string{}, e.Participants...),
		Approvals:    append([]string{}, e.Approvals...),
		IsAuthorized: e.IsAuthorized,
		Status:       string(e.Status()),
		CreatedAt:    e.CreatedAt,
	}
}

func toAPIBalances(g *models.Group, balances []calculator.MemberBalance) []*api.Balance {
	out := make([]*api.Balance, len(balances))
	for i, b := range balances {
		name := b.MemberID
		if m, ok := g.Member(b.MemberID); ok {
			name = m.DisplayName()
		}
		out[i] = &api.Balance{
			UserID:     b.MemberID,
			Name:       name,
			NetBalance: b.NetBalance,
			TotalPaid:  b.TotalPaid,
			TotalOwed:  b.TotalOwed,
		}
	}
	return out
}

func toAPISettlements(settlements []models.Settlement) []*api.Settlement {
	out := make([]*api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = &api.Settlement{
			FromUserID: s.FromUserID,
			ToUserID:   s.ToUserID,
			Amount:     s.Amount,
		}
	}
	return out
}

func toAPIPayment(p *models.Payment) *api.Payment {
	return &api.Payment{
		ID:            p.ID,
		GroupID:       p.GroupID,
		FromUserID:    p.FromUserID,
		ToUserID:      p.ToUserID,
		Amount:        p.Amount,
		Rail:          string(p.Rail),
		TransactionID: p.TransactionID,
		Status:        string(p.Status),
		Fees:          p.Fees,
		Description:   p.Description,
		Error:         p.Error,
		CreatedAt:     p.CreatedAt,
		CreatedBy:     p.CreatedBy,
	}
}
