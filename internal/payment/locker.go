package payment

import (
	"context"
	"sync"
)

// Locker guards a settlement key so only one execution runs at a time.
type Locker interface {
	// TryLock acquires key without waiting. ok is false when another
	// holder has it. The returned unlock releases the key.
	TryLock(ctx context.Context, key string) (unlock func(context.Context) error, ok bool, err error)
}

// LocalLocker is an in-process Locker for single-instance deployments.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker creates an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) TryLock(ctx context.Context, key string) (func(context.Context) error, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, false, nil
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
		return nil
	}, true, nil
}

// SettlementKey identifies one debtor to creditor settlement within a group.
func SettlementKey(groupID, fromUserID, toUserID string) string {
	return "group:" + groupID + ":settle:" + fromUserID + ":" + toUserID
}
