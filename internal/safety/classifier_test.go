package safety

import (
	"testing"

	"solana-pool-radar/internal/domain"
)

const (
	mintA = "mintA"
	mintB = "mintB"
)

func verified(mints ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(mints))
	for _, m := range mints {
		set[m] = struct{}{}
	}
	return set
}

func TestClassify_Precedence(t *testing.T) {
	c := NewClassifier(10000)

	cases := []struct {
		name string
		in   Input
		want domain.Safety
	}{
		{
			name: "blacklist wins over api verification",
			in:   Input{MintX: mintA, MintY: mintB, TVL: 1e6, VerifiedMints: verified(mintA, mintB), APIVerified: true, Blacklisted: true},
			want: domain.SafetyDanger,
		},
		{
			name: "api verified wins over tvl floor",
			in:   Input{MintX: mintA, MintY: mintB, TVL: 5, VerifiedMints: verified(), APIVerified: true},
			want: domain.SafetySafe,
		},
		{
			name: "both mints verified is safe",
			in:   Input{MintX: mintA, MintY: mintB, TVL: 50, VerifiedMints: verified(mintA, mintB)},
			want: domain.SafetySafe,
		},
		{
			name: "unverified below floor is danger",
			in:   Input{MintX: mintA, MintY: mintB, TVL: 5, VerifiedMints: verified()},
			want: domain.SafetyDanger,
		},
		{
			name: "unverified above floor is warning",
			in:   Input{MintX: mintA, MintY: mintB, TVL: 50000, VerifiedMints: verified()},
			want: domain.SafetyWarning,
		},
		{
			name: "one verified mint below floor is warning",
			in:   Input{MintX: mintA, MintY: mintB, TVL: 5, VerifiedMints: verified(mintA)},
			want: domain.SafetyWarning,
		},
		{
			name: "one verified mint above floor is warning",
			in:   Input{MintX: mintA, MintY: mintB, TVL: 1e6, VerifiedMints: verified(mintB)},
			want: domain.SafetyWarning,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.Classify(tc.in)
			if got != tc.want {
				t.Errorf("Classify() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestClassify_Pure(t *testing.T) {
	c := NewClassifier(10000)
	in := Input{MintX: mintA, MintY: mintB, TVL: 42, VerifiedMints: verified(mintA)}

	first := c.Classify(in)
	for i := 0; i < 100; i++ {
		if got := c.Classify(in); got != first {
			t.Fatalf("classification not stable: %s vs %s", got, first)
		}
	}
}
