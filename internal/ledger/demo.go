package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmynk/payhive/internal/models"
)

// SeedDemo creates the "Ski Trip to Colorado" sample group with user as the
// first member and three demo friends. Two expenses reach quorum and the
// group dinner stays pending.
func (l *Ledger) SeedDemo(ctx context.Context, user models.Member) (*models.Group, error) {
	if user.Name == "" {
		user.Name, _, _ = strings.Cut(user.Email, "@")
	}
	user.JoinedAt = time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC)

	group, err := l.CreateGroup(ctx, NewGroup{
		Name:        "Ski Trip to Colorado",
		Description: "Weekend getaway to the mountains",
		CreatedBy:   user.UserID,
		Members: []models.Member{
			user,
			{UserID: "demo_charlie", Email: "charlie@example.com", Name: "Charlie Wilson", JoinedAt: time.Date(2024, 8, 10, 0, 0, 0, 0, time.UTC)},
			{UserID: "demo_diana", Email: "diana@example.com", Name: "Diana Martinez", JoinedAt: time.Date(2024, 8, 11, 0, 0, 0, 0, time.UTC)},
			{UserID: "demo_evan", Email: "evan@example.com", Name: "Evan Thompson", JoinedAt: time.Date(2024, 8, 11, 0, 0, 0, 0, time.UTC)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed demo group: %w", err)
	}

	everyone := group.MemberIDs()
	seed := []struct {
		expense   NewExpense
		approvers []string
	}{
		{
			expense:   NewExpense{Description: "Hotel booking", Amount: 480, PaidBy: user.UserID, Participants: everyone},
			approvers: []string{"demo_charlie", "demo_diana"},
		},
		{
			expense:   NewExpense{Description: "Ski lift tickets", Amount: 240, PaidBy: "demo_charlie", Participants: everyone},
			approvers: []string{user.UserID},
		},
		{
			expense: NewExpense{Description: "Group dinner", Amount: 160, PaidBy: "demo_diana", Participants: everyone},
		},
	}

	for _, s := range seed {
		expense, err := l.AddExpense(ctx, group.ID, s.expense)
		if err != nil {
			return nil, fmt.Errorf("failed to seed demo expense %q: %w", s.expense.Description, err)
		}
		for _, approver := range s.approvers {
			if _, _, err := l.RecordApproval(ctx, group.ID, expense.ID, approver); err != nil {
				return nil, fmt.Errorf("failed to seed demo approval: %w", err)
			}
		}
	}

	return l.GetGroup(ctx, group.ID)
}
