// Package normalize converts raw upstream pool records into domain
// pools. All optional-field defaulting happens here, at the boundary,
// so downstream stages never branch on field presence. A malformed
// record is dropped and counted; it never aborts the pass.
package normalize

import (
	"math"

	"solana-pool-radar/internal/domain"
	"solana-pool-radar/internal/safety"
	"solana-pool-radar/internal/scoring"
	"solana-pool-radar/internal/solmint"
)

// RawPool is the upstream JSON shape. Pointer fields are optional in
// the source payload and default to zero values during normalization.
type RawPool struct {
	ID       string `json:"id"`
	Address  string `json:"address"`
	Name     string `json:"name"`
	Protocol string `json:"protocol"`

	MintX string `json:"mint_x"`
	MintY string `json:"mint_y"`

	TVL       *float64 `json:"tvl"`
	Volume24h *float64 `json:"volume_24h"`
	Apr       *string  `json:"apr"`
	Fees24h   *float64 `json:"fees_24h"`

	Fees1h      *float64 `json:"fees_1h"`
	FeeTVLRatio *float64 `json:"fee_tvl_ratio"`
	HotFeeSpike *bool    `json:"hot_fee_spike"`

	HasFarm                *bool    `json:"has_farm"`
	FarmActive             *bool    `json:"farm_active"`
	PermanentLockLiquidity *float64 `json:"permanent_lock_liquidity"`

	APIVerified *bool `json:"api_verified"`
	Blacklisted *bool `json:"is_blacklisted"`
}

// Result carries the normalized pool set and how many records were
// dropped as malformed.
type Result struct {
	Pools   []domain.Pool
	Dropped int
}

// Normalizer stamps safety and score onto normalized pools.
type Normalizer struct {
	classifier *safety.Classifier
}

// New creates a normalizer using the given safety classifier.
func New(classifier *safety.Classifier) *Normalizer {
	return &Normalizer{classifier: classifier}
}

// Run normalizes, classifies and scores a raw snapshot against the
// current verified-mint set.
func (n *Normalizer) Run(raw []RawPool, verifiedMints map[string]struct{}) Result {
	res := Result{Pools: make([]domain.Pool, 0, len(raw))}
	for i := range raw {
		p, ok := toDomain(&raw[i])
		if !ok {
			res.Dropped++
			continue
		}

		p.Safety = n.classifier.Classify(safety.Input{
			MintX:         p.MintX,
			MintY:         p.MintY,
			TVL:           p.TVL,
			VerifiedMints: verifiedMints,
			APIVerified:   p.APIVerified,
			Blacklisted:   p.Blacklisted,
		})
		p.Score = scoring.Compute(scoring.Input{
			TVL:                    p.TVL,
			Volume24h:              p.Volume24h,
			Apr:                    p.AprValue(),
			Safety:                 p.Safety,
			HasFarm:                p.HasFarm,
			FarmActive:             p.FarmActive,
			PermanentLockLiquidity: p.PermanentLockLiquidity,
			APIVerified:            p.APIVerified,
		})
		res.Pools = append(res.Pools, p)
	}
	return res
}

// toDomain applies defaults and rejects records the pipeline cannot
// evaluate: missing identity, invalid mints or pool address,
// non-finite metrics.
func toDomain(r *RawPool) (domain.Pool, bool) {
	if r.ID == "" || r.Address == "" {
		return domain.Pool{}, false
	}
	if !solmint.IsValid(r.MintX) || !solmint.IsValid(r.MintY) {
		return domain.Pool{}, false
	}
	// Pool accounts are program-derived and sit off the ed25519 curve;
	// an on-curve address is a wallet key, not a pool.
	if !solmint.IsValid(r.Address) || solmint.IsOnCurve(r.Address) {
		return domain.Pool{}, false
	}

	p := domain.Pool{
		ID:                     r.ID,
		Address:                r.Address,
		Name:                   r.Name,
		Protocol:               r.Protocol,
		MintX:                  r.MintX,
		MintY:                  r.MintY,
		TVL:                    numOrZero(r.TVL),
		Volume24h:              numOrZero(r.Volume24h),
		Apr:                    strOrZero(r.Apr),
		Fees24h:                numOrZero(r.Fees24h),
		Fees1h:                 numOrZero(r.Fees1h),
		FeeTVLRatio:            numOrZero(r.FeeTVLRatio),
		HotFeeSpike:            boolOrFalse(r.HotFeeSpike),
		HasFarm:                boolOrFalse(r.HasFarm),
		FarmActive:             boolOrFalse(r.FarmActive),
		PermanentLockLiquidity: numOrZero(r.PermanentLockLiquidity),
		APIVerified:            boolOrFalse(r.APIVerified),
		Blacklisted:            boolOrFalse(r.Blacklisted),
	}

	if p.TVL < 0 || p.Volume24h < 0 {
		return domain.Pool{}, false
	}
	return p, true
}

// numOrZero defaults absent or non-finite numbers to 0.
func numOrZero(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}

func strOrZero(v *string) string {
	if v == nil {
		return "0"
	}
	return *v
}

func boolOrFalse(v *bool) bool {
	return v != nil && *v
}
