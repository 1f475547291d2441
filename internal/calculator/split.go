package calculator

import (
	"errors"
	"fmt"
	"math"
)

// Epsilon is the smallest amount treated as money. Magnitudes below it are
// considered zero to absorb floating point noise.
const Epsilon = 0.01

var (
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
	ErrNoParticipants    = errors.New("must have at least one participant")
)

// SplitEvenly computes each participant's share of amount.
// Every participant owes amount / len(participants); there are no weighted splits.
func SplitEvenly(amount float64, participants []string) (map[string]float64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrNonPositiveAmount, amount)
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}

	share := amount / float64(len(participants))
	shares := make(map[string]float64, len(participants))
	for _, p := range participants {
		shares[p] += share
	}
	return shares, nil
}

// IsZero reports whether amount is within Epsilon of zero.
func IsZero(amount float64) bool {
	return math.Abs(amount) < Epsilon
}
