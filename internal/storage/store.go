// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/payhive/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for group and payment storage operations.
// Groups are stored as whole aggregates (members and expenses included),
// so backends only need to persist opaque documents.
type Store interface {
	// CreateGroup persists a new group.
	// The group.ID and group.CreatedAt fields will be populated if empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group aggregate by its ID.
	// Returns an error wrapping ErrNotFound if the group does not exist.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves all groups, oldest first.
	ListGroups(ctx context.Context) ([]*models.Group, error)

	// SaveGroup replaces a stored group aggregate.
	// Returns an error wrapping ErrNotFound if the group does not exist.
	SaveGroup(ctx context.Context, group *models.Group) error

	// CreatePayment records a payment attempt.
	CreatePayment(ctx context.Context, payment *models.Payment) error

	// ListPaymentsByGroup retrieves payment history for a group, newest first.
	ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error)

	// Close releases any resources held by the store.
	Close() error
}

// UserStore defines user persistence used by the identity provider.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
