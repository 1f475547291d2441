// Package storagetest holds behaviour tests shared by every storage.Store backend.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/payhive/internal/models"
	"github.com/mmynk/payhive/internal/storage"
)

// RunStoreTests exercises a storage.Store implementation.
// newStore must return an empty store; it is called once per subtest.
func RunStoreTests(t *testing.T, newStore func(t *testing.T) storage.Store) {
	ctx := context.Background()
	joined := time.Date(2024, 8, 10, 9, 0, 0, 0, time.UTC)

	sampleGroup := func() *models.Group {
		return &models.Group{
			Name:        "Ski Trip",
			Description: "Weekend getaway",
			CreatedBy:   "alice",
			Members: []models.Member{
				{UserID: "alice", Email: "alice@example.com", Name: "Alice", JoinedAt: joined},
				{UserID: "bob", Email: "bob@example.com", WalletAddress: "0x00000000000000000000000000000000000000b0", JoinedAt: joined},
			},
			Expenses: []models.Expense{},
		}
	}

	t.Run("CreateGroup generates ID and CreatedAt", func(t *testing.T) {
		store := newStore(t)
		group := sampleGroup()

		require.NoError(t, store.CreateGroup(ctx, group))
		assert.NotEmpty(t, group.ID)
		assert.False(t, group.CreatedAt.IsZero())
	})

	t.Run("GetGroup round-trips the aggregate", func(t *testing.T) {
		store := newStore(t)
		group := sampleGroup()
		group.Expenses = append(group.Expenses, models.Expense{
			ID:           "exp-1",
			Description:  "Hotel",
			Amount:       480,
			PaidBy:       "alice",
			Participants: []string{"alice", "bob"},
			Approvals:    []string{"alice"},
			IsAuthorized: true,
			CreatedAt:    joined.Add(time.Hour),
		})
		require.NoError(t, store.CreateGroup(ctx, group))

		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)

		assert.Equal(t, group.Name, got.Name)
		assert.Equal(t, group.Description, got.Description)
		assert.Equal(t, group.Members, got.Members)
		require.Len(t, got.Expenses, 1)
		assert.Equal(t, group.Expenses[0], got.Expenses[0])
		assert.True(t, got.CreatedAt.Equal(group.CreatedAt))
	})

	t.Run("GetGroup returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)

		_, err := store.GetGroup(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("GetGroup returns independent copies", func(t *testing.T) {
		store := newStore(t)
		group := sampleGroup()
		require.NoError(t, store.CreateGroup(ctx, group))

		first, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		first.Members[0].Name = "Mutated"

		second, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice", second.Members[0].Name)
	})

	t.Run("SaveGroup replaces the aggregate", func(t *testing.T) {
		store := newStore(t)
		group := sampleGroup()
		require.NoError(t, store.CreateGroup(ctx, group))

		group.Expenses = append(group.Expenses, models.Expense{
			ID: "exp-2", Description: "Dinner", Amount: 60, PaidBy: "bob",
			Participants: []string{"alice", "bob"}, Approvals: []string{"bob", "alice"},
		})
		require.NoError(t, store.SaveGroup(ctx, group))

		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, got.Expenses, 1)
		assert.Equal(t, []string{"bob", "alice"}, got.Expenses[0].Approvals)
	})

	t.Run("SaveGroup on missing group returns ErrNotFound", func(t *testing.T) {
		store := newStore(t)

		err := store.SaveGroup(ctx, &models.Group{ID: "missing", Name: "x"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("ListGroups returns groups oldest first", func(t *testing.T) {
		store := newStore(t)
		first := sampleGroup()
		first.Name = "First"
		first.CreatedAt = joined
		second := sampleGroup()
		second.Name = "Second"
		second.CreatedAt = joined.Add(time.Minute)

		require.NoError(t, store.CreateGroup(ctx, first))
		require.NoError(t, store.CreateGroup(ctx, second))

		groups, err := store.ListGroups(ctx)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, "First", groups[0].Name)
		assert.Equal(t, "Second", groups[1].Name)
	})

	t.Run("payments are listed newest first", func(t *testing.T) {
		store := newStore(t)
		group := sampleGroup()
		require.NoError(t, store.CreateGroup(ctx, group))

		older := &models.Payment{
			GroupID: group.ID, FromUserID: "bob", ToUserID: "alice", Amount: 20,
			Rail: models.RailPayPal, TransactionID: "ORDER-1", Status: models.PaymentStatusPending,
			Fees: 0.88, Description: "settle", CreatedAt: joined, CreatedBy: "bob",
		}
		newer := &models.Payment{
			GroupID: group.ID, FromUserID: "bob", ToUserID: "alice", Amount: 20,
			Rail: models.RailPYUSD, Status: models.PaymentStatusFailed,
			Description: "settle", Error: "Insufficient balance", CreatedAt: joined.Add(time.Hour), CreatedBy: "bob",
		}
		require.NoError(t, store.CreatePayment(ctx, older))
		require.NoError(t, store.CreatePayment(ctx, newer))
		assert.NotEmpty(t, older.ID)

		payments, err := store.ListPaymentsByGroup(ctx, group.ID)
		require.NoError(t, err)
		require.Len(t, payments, 2)

		assert.Equal(t, newer.ID, payments[0].ID)
		assert.Equal(t, models.RailPYUSD, payments[0].Rail)
		assert.Equal(t, "Insufficient balance", payments[0].Error)
		assert.Empty(t, payments[0].TransactionID)

		assert.Equal(t, "ORDER-1", payments[1].TransactionID)
		assert.Equal(t, models.PaymentStatusPending, payments[1].Status)
		assert.InDelta(t, 0.88, payments[1].Fees, 1e-9)
	})

	t.Run("ListPaymentsByGroup on empty group", func(t *testing.T) {
		store := newStore(t)

		payments, err := store.ListPaymentsByGroup(ctx, "no-payments")
		require.NoError(t, err)
		assert.Empty(t, payments)
	})
}

// RunUserStoreTests exercises a storage.UserStore implementation.
func RunUserStoreTests(t *testing.T, newStore func(t *testing.T) storage.UserStore) {
	ctx := context.Background()

	t.Run("create and fetch user", func(t *testing.T) {
		store := newStore(t)
		user := models.NewUser("carol@example.com", "Carol", "hash")
		user.WalletAddress = "0x00000000000000000000000000000000000000c0"
		require.NoError(t, store.CreateUser(ctx, user))

		byEmail, err := store.GetUserByEmail(ctx, "carol@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, user.ID, byEmail.ID)
		assert.Equal(t, user.WalletAddress, byEmail.WalletAddress)
		assert.Equal(t, "hash", byEmail.PasswordHash)

		byID, err := store.GetUserByID(ctx, user.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "Carol", byID.DisplayName)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.CreateUser(ctx, models.NewUser("dup@example.com", "One", "hash")))

		err := store.CreateUser(ctx, models.NewUser("dup@example.com", "Two", "hash"))
		assert.Error(t, err)
	})

	t.Run("missing user returns nil", func(t *testing.T) {
		store := newStore(t)

		user, err := store.GetUserByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, user)

		user, err = store.GetUserByID(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, user)
	})
}
