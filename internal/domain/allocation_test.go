package domain

import "testing"

func TestFundPoolShareRoundsHalfUp(t *testing.T) {
	cases := []struct{ amount, want uint64 }{
		{0, 0},
		{49, 0},
		{50, 1},
		{100, 1},
		{149, 1},
		{150, 2},
		{1000, 10},
		{1110, 11},
		{10000, 100},
	}
	for _, tc := range cases {
		if got := FundPoolShare(tc.amount); got != tc.want { t.Fatalf("FundPoolShare(%d) = %d, want %d", tc.amount, got, tc.want) }
	}
}

func TestSplitForReleaseConservesTotal(t *testing.T) {
	for _, total := range []uint64{1, 49, 50, 99, 100, 1110, 10000, 123456789} {
		pool, remainder := SplitForRelease(total)
		if pool+remainder != total { t.Fatalf("split of %d leaks value: pool=%d remainder=%d", total, pool, remainder) }
	}
}
