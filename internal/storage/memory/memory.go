// Package memory provides an in-process implementation of storage.Store.
//
// Groups are kept as encoded JSON documents, the same representation the
// SQLite backend persists, so callers never share mutable state with the store.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/payhive/internal/models"
	"github.com/mmynk/payhive/internal/storage"
)

var (
	_ storage.Store     = (*Store)(nil)
	_ storage.UserStore = (*Store)(nil)
)

// Store is a thread-safe in-memory store.
type Store struct {
	mu         sync.RWMutex
	groups     map[string][]byte
	groupOrder []string
	payments   map[string][]*models.Payment // groupID -> payments
	users      map[string]*models.User
	emailIndex map[string]string // email -> userID
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		groups:     make(map[string][]byte),
		payments:   make(map[string][]*models.Payment),
		users:      make(map[string]*models.User),
		emailIndex: make(map[string]string),
	}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// CreateGroup stores a new group aggregate.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("failed to encode group: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.groups[group.ID]; exists {
		return fmt.Errorf("group already exists: %s", group.ID)
	}
	s.groups[group.ID] = data
	s.groupOrder = append(s.groupOrder, group.ID)
	return nil
}

// GetGroup decodes a fresh copy of the stored group.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	data, ok := s.groups[groupID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	return decodeGroup(data)
}

// ListGroups returns all groups in creation order.
func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*models.Group, 0, len(s.groupOrder))
	for _, id := range s.groupOrder {
		group, err := decodeGroup(s.groups[id])
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// SaveGroup replaces the stored aggregate.
func (s *Store) SaveGroup(ctx context.Context, group *models.Group) error {
	data, err := json.Marshal(group)
	if err != nil {
		return fmt.Errorf("failed to encode group: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[group.ID]; !ok {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrNotFound)
	}
	s.groups[group.ID] = data
	return nil
}

// CreatePayment appends a payment record.
func (s *Store) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := *payment
	s.payments[payment.GroupID] = append(s.payments[payment.GroupID], &p)
	return nil
}

// ListPaymentsByGroup returns copies of the group's payments, newest first.
func (s *Store) ListPaymentsByGroup(ctx context.Context, groupID string) ([]*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.payments[groupID]
	payments := make([]*models.Payment, len(stored))
	for i, p := range stored {
		cp := *p
		payments[i] = &cp
	}
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments, nil
}

// CreateUser stores a user; emails are unique.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emailIndex[user.Email]; exists {
		return fmt.Errorf("failed to create user: email %s already registered", user.Email)
	}
	u := *user
	s.users[user.ID] = &u
	s.emailIndex[user.Email] = user.ID
	return nil
}

// GetUserByEmail returns nil, nil when the user does not exist.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[email]
	if !ok {
		return nil, nil
	}
	u := *s.users[id]
	return &u, nil
}

// GetUserByID returns nil, nil when the user does not exist.
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	u := *user
	return &u, nil
}

func decodeGroup(data []byte) (*models.Group, error) {
	group := &models.Group{}
	if err := json.Unmarshal(data, group); err != nil {
		return nil, fmt.Errorf("failed to decode group: %w", err)
	}
	return group, nil
}
