package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/payhive/internal/models"
)

func TestSeedDemo(t *testing.T) {
	ctx := context.Background()
	l := setupLedger(t)

	group, err := l.SeedDemo(ctx, models.Member{UserID: "me", Email: "sam@example.com"})
	require.NoError(t, err)

	assert.Equal(t, "Ski Trip to Colorado", group.Name)
	assert.Equal(t, []string{"me", "demo_charlie", "demo_diana", "demo_evan"}, group.MemberIDs())
	assert.Equal(t, "sam", group.Members[0].Name)
	require.Len(t, group.Expenses, 3)

	statuses := make(map[string]models.ExpenseStatus)
	for _, e := range group.Expenses {
		statuses[e.Description] = e.Status()
	}
	assert.Equal(t, map[string]models.ExpenseStatus{
		"Hotel booking":    models.ExpenseStatusAuthorized,
		"Ski lift tickets": models.ExpenseStatusAuthorized,
		"Group dinner":     models.ExpenseStatusPending,
	}, statuses)
	assert.Len(t, group.Expenses[0].Approvals, 3)

	balances := netBalances(t, l, group.ID)
	assert.InDelta(t, 300, balances["me"], 0.01)
	assert.InDelta(t, 60, balances["demo_charlie"], 0.01)
	assert.InDelta(t, -180, balances["demo_diana"], 0.01)
	assert.InDelta(t, -180, balances["demo_evan"], 0.01)

	settlements, err := l.Settlements(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, settlements, 3)
	assert.Equal(t, "demo_diana", settlements[0].FromUserID)
	assert.Equal(t, "me", settlements[0].ToUserID)
	assert.InDelta(t, 180, settlements[0].Amount, 0.01)
	assert.Equal(t, "demo_evan", settlements[1].FromUserID)
	assert.Equal(t, "me", settlements[1].ToUserID)
	assert.InDelta(t, 120, settlements[1].Amount, 0.01)
	assert.Equal(t, "demo_evan", settlements[2].FromUserID)
	assert.Equal(t, "demo_charlie", settlements[2].ToUserID)
	assert.InDelta(t, 60, settlements[2].Amount, 0.01)
}
