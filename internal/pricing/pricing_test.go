package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinimumIncrement(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		currentHigh int64
		want        int64
	}{
		{name: "fixture_high_3100", currentHigh: 3100, want: 310},
		{name: "rounds_half_up", currentHigh: 3105, want: 311}, // 310.5 -> 311
		{name: "rounds_down_below_half", currentHigh: 3104, want: 310},
		{name: "small_high", currentHigh: 9, want: 1}, // 0.9 -> 1
		{name: "zero_high", currentHigh: 0, want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, MinimumIncrement(tc.currentHigh))
		})
	}
}

func TestSuggestedBid(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(3565), SuggestedBid(3100)) // 3100 * 1.15
	require.Equal(t, int64(115), SuggestedBid(100))
	require.Equal(t, int64(116), SuggestedBid(101)) // 116.15 -> 116
}

func TestReasonableCeiling(t *testing.T) {
	t.Parallel()

	require.Equal(t, int64(6200), ReasonableCeiling(3100))
}

func TestIsLargeJump(t *testing.T) {
	t.Parallel()

	require.False(t, IsLargeJump(4650, 3100)) // exactly 1.5x is not a jump
	require.True(t, IsLargeJump(4651, 3100))
	require.False(t, IsLargeJump(3410, 3100))
}

func TestCompensationSplit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		winningAmount    int64
		wantCompensation int64
		wantPlatform     int64
	}{
		{name: "fixture_3100", winningAmount: 3100, wantCompensation: 775, wantPlatform: 2325},
		{name: "rounds_half_up", winningAmount: 3102, wantCompensation: 776, wantPlatform: 2326}, // 775.5 -> 776
		{name: "small", winningAmount: 1, wantCompensation: 0, wantPlatform: 1},                  // 0.25 -> 0
		{name: "two", winningAmount: 2, wantCompensation: 1, wantPlatform: 1},                    // 0.5 -> 1
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			comp := Compensation(tc.winningAmount)
			share := PlatformShare(tc.winningAmount)
			require.Equal(t, tc.wantCompensation, comp)
			require.Equal(t, tc.wantPlatform, share)
			require.Equal(t, tc.winningAmount, comp+share, "split must sum to the winning amount")
		})
	}
}
