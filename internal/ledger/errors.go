package ledger

import (
	"errors"
	"fmt"

	"github.com/mmynk/payhive/internal/storage"
)

var (
	// ErrValidation is wrapped by every rejection of invalid caller input.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidMember is returned when a user ID does not belong to the group.
	ErrInvalidMember = fmt.Errorf("%w: invalid member", ErrValidation)

	// ErrNotFound is returned when a group or expense does not exist.
	ErrNotFound = errors.New("not found")
)

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func invalidMember(groupID, userID string) error {
	return fmt.Errorf("%w: %s is not a member of group %s", ErrInvalidMember, userID, groupID)
}

func expenseNotFound(groupID, expenseID string) error {
	return fmt.Errorf("expense %s in group %s: %w", expenseID, groupID, ErrNotFound)
}

// storeError translates storage.ErrNotFound into ErrNotFound.
func storeError(op string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%s: %w: %w", op, ErrNotFound, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
