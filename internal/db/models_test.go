package db

import "testing"

func TestPairKey(t *testing.T) {
	cases := []struct {
		a, b, lo, hi uint64
	}{
		{1, 2, 1, 2},
		{2, 1, 1, 2},
		{7, 7, 7, 7},
	}
	for _, tc := range cases {
		lo, hi := PairKey(tc.a, tc.b)
		if lo != tc.lo || hi != tc.hi {
			t.Errorf("PairKey(%d, %d) = (%d, %d), want (%d, %d)",
				tc.a, tc.b, lo, hi, tc.lo, tc.hi)
		}
	}
}
