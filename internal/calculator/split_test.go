package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestSplitEvenly(t *testing.T) {
	tests := []struct {
		name         string
		amount       float64
		participants []string
		wantErr      error
		wantShare    float64
	}{
		{
			name:         "two people split evenly",
			amount:       100.0,
			participants: []string{"Alice", "Bob"},
			wantShare:    50.0,
		},
		{
			name:         "three people split with repeating decimal",
			amount:       100.0,
			participants: []string{"Alice", "Bob", "Charlie"},
			wantShare:    33.333,
		},
		{
			name:         "single participant owes everything",
			amount:       42.5,
			participants: []string{"Alice"},
			wantShare:    42.5,
		},
		{
			name:         "zero amount should error",
			amount:       0,
			participants: []string{"Alice"},
			wantErr:      ErrNonPositiveAmount,
		},
		{
			name:         "negative amount should error",
			amount:       -10,
			participants: []string{"Alice"},
			wantErr:      ErrNonPositiveAmount,
		},
		{
			name:         "NaN amount should error",
			amount:       math.NaN(),
			participants: []string{"Alice"},
			wantErr:      ErrNonPositiveAmount,
		},
		{
			name:         "no participants should error",
			amount:       10,
			participants: []string{},
			wantErr:      ErrNoParticipants,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := SplitEvenly(tt.amount, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("SplitEvenly() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SplitEvenly() unexpected error: %v", err)
			}

			total := 0.0
			for _, p := range tt.participants {
				if math.Abs(shares[p]-tt.wantShare) > 0.01 {
					t.Errorf("%s share = %v, want %v", p, shares[p], tt.wantShare)
				}
				total += shares[p]
			}
			if math.Abs(total-tt.amount) > 1e-9 {
				t.Errorf("shares sum to %v, want %v", total, tt.amount)
			}
		})
	}
}

func TestRequiredApprovals(t *testing.T) {
	tests := []struct {
		members int
		want    int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{6, 3},
		{7, 4},
	}

	for _, tt := range tests {
		if got := RequiredApprovals(tt.members); got != tt.want {
			t.Errorf("RequiredApprovals(%d) = %d, want %d", tt.members, got, tt.want)
		}
	}
}

func TestIsAuthorized_QuorumThreshold(t *testing.T) {
	// For every group size, authorization flips exactly when the approval
	// count first reaches ceil(n/2) and never earlier.
	for n := 1; n <= 12; n++ {
		required := int(math.Ceil(float64(n) / 2))
		for approvals := 0; approvals <= n; approvals++ {
			got := IsAuthorized(approvals, n)
			want := approvals >= required
			if got != want {
				t.Errorf("IsAuthorized(%d, %d) = %v, want %v", approvals, n, got, want)
			}
		}
	}
}

func TestIsZero(t *testing.T) {
	if !IsZero(0.009) || !IsZero(-0.009) {
		t.Error("amounts below epsilon should be zero")
	}
	if IsZero(0.01) || IsZero(-0.5) {
		t.Error("amounts at or above epsilon should not be zero")
	}
}
