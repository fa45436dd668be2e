// Package scoring derives a bounded quality score per pool from its
// market metrics and safety label. Scoring is deterministic: identical
// inputs always produce identical output.
package scoring

import (
	"math"

	"solana-pool-radar/internal/domain"
)

// Score bounds and base.
const (
	baseScore = 50
	MinScore  = 10
	MaxScore  = 99
)

// Input carries the signals the engine combines. Optional upstream
// fields arrive zero-valued, already defaulted at the normalize
// boundary.
type Input struct {
	TVL       float64
	Volume24h float64
	Apr       float64
	Safety    domain.Safety

	HasFarm                bool
	FarmActive             bool
	PermanentLockLiquidity float64
	APIVerified            bool
}

// Compute combines the inputs into a score clamped to [MinScore, MaxScore].
// Each tier group is mutually exclusive: only the highest applicable
// tier contributes.
func Compute(in Input) int {
	score := float64(baseScore)

	// TVL tiers
	switch {
	case in.TVL >= 500000:
		score += 20
	case in.TVL >= 100000:
		score += 15
	case in.TVL >= 10000:
		score += 10
	}

	// Volume tiers
	switch {
	case in.Volume24h >= 100000:
		score += 15
	case in.Volume24h >= 10000:
		score += 10
	case in.Volume24h >= 1000:
		score += 5
	}

	// APR tiers
	switch {
	case in.Apr > 100:
		score += 10
	case in.Apr > 50:
		score += 7
	case in.Apr > 20:
		score += 4
	}

	// Safety adjustment: warning is neutral.
	switch in.Safety {
	case domain.SafetySafe:
		score += 5
	case domain.SafetyDanger:
		score -= 15
	}

	if in.HasFarm {
		score += 3
	}
	if in.FarmActive {
		score += 5
	}
	if in.PermanentLockLiquidity > 0 {
		score += 3
	}
	if in.APIVerified {
		score += 3
	}

	rounded := int(math.Round(score))
	if rounded < MinScore {
		return MinScore
	}
	if rounded > MaxScore {
		return MaxScore
	}
	return rounded
}
