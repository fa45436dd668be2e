// Package opportunity filters and ranks scored pools into a capped,
// ordered list with a generated rationale per entry.
package opportunity

import (
	"fmt"
	"sort"

	"solana-pool-radar/internal/domain"
)

// Eligibility and classification thresholds. Kept as named constants;
// the list cap is a config knob.
const (
	hotSpikeMinTVL      = 5000
	feeActivityRatio    = 0.001
	volumeRatioMin      = 0.3
	volumeRatioHigh     = 0.5
	aprEligibilityMin   = 30
	aprHighlight        = 50
	aprEligibilityScore = 65
	highScoreMin        = 80
	farmMinTVL          = 10000
	feeTVLRatioMin      = 0.01
)

// Detector ranks pools into opportunities.
type Detector struct {
	maxOpportunities int
}

// NewDetector creates a detector capping its output at max entries.
func NewDetector(max int) *Detector {
	return &Detector{maxOpportunities: max}
}

// Detect filters the pool set down to qualifying entries, caps the
// result preserving input order, classifies each survivor into exactly
// one reason, and stable-sorts by type priority (hot < active <
// standard). Pools of equal type keep their pre-sort order.
func (d *Detector) Detect(pools []domain.Pool) []domain.Opportunity {
	var qualifying []domain.Pool
	for _, p := range pools {
		if qualifies(&p) {
			qualifying = append(qualifying, p)
			// Cap applied before classification and sorting.
			if len(qualifying) == d.maxOpportunities {
				break
			}
		}
	}

	opps := make([]domain.Opportunity, 0, len(qualifying))
	for _, p := range qualifying {
		reason, typ := classify(&p)
		opps = append(opps, domain.Opportunity{Pool: p, Reason: reason, Type: typ})
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].Type.Priority() < opps[j].Type.Priority()
	})
	return opps
}

// qualifies reports whether any eligibility predicate holds. Every
// predicate requires safety=safe, so non-safe pools never surface.
func qualifies(p *domain.Pool) bool {
	if p.Safety != domain.SafetySafe {
		return false
	}

	switch {
	case p.HotFeeSpike && p.TVL > hotSpikeMinTVL:
		return true
	case p.Fees1h > 0 && p.TVL > 0 && p.Fees1h/p.TVL > feeActivityRatio:
		return true
	case p.VolumeTVLRatio() > volumeRatioMin && p.TVL > 20000:
		return true
	case p.AprValue() > aprEligibilityMin && p.Score >= aprEligibilityScore:
		return true
	case p.Score >= highScoreMin:
		return true
	case p.FarmActive && p.TVL > farmMinTVL:
		return true
	case p.FeeTVLRatio > feeTVLRatioMin:
		return true
	}
	return false
}

// classify picks exactly one explanation per pool, first match wins.
// Branch order is a product decision and must not be reordered.
func classify(p *domain.Pool) (string, domain.OpportunityType) {
	switch {
	case p.HotFeeSpike:
		return fmt.Sprintf("Fee spike: %s is earning fees well above its hourly baseline", p.Name),
			domain.OpportunityHot

	case p.Fees1h > 0 && p.TVL > 0 && p.Fees1h/p.TVL > feeActivityRatio:
		return fmt.Sprintf("Active fees: %.3f%% of TVL earned in the last hour", p.Fees1h/p.TVL*100),
			domain.OpportunityActive

	case p.FarmActive:
		return "Farm rewards active on top of swap fees", domain.OpportunityStandard

	case p.VolumeTVLRatio() > volumeRatioHigh:
		return fmt.Sprintf("High turnover: 24h volume is %.1fx TVL", p.VolumeTVLRatio()),
			domain.OpportunityStandard

	case p.AprValue() > aprHighlight:
		return fmt.Sprintf("High APR: %.1f%%", p.AprValue()), domain.OpportunityStandard

	case p.FeeTVLRatio > feeTVLRatioMin:
		return fmt.Sprintf("Efficient fees: %.2f%% fee/TVL ratio", p.FeeTVLRatio*100),
			domain.OpportunityStandard

	default:
		return fmt.Sprintf("Top scorer: quality score %d", p.Score), domain.OpportunityStandard
	}
}
