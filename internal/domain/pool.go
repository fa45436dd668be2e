package domain

import (
	"math"
	"strconv"
)

// Safety labels the risk classification of a pool.
type Safety string

const (
	SafetySafe    Safety = "safe"
	SafetyWarning Safety = "warning"
	SafetyDanger  Safety = "danger"
)

// Pool is an immutable-per-refresh snapshot of a liquidity pool.
// Optional upstream fields are concrete zero-valued fields here;
// defaults are applied once at the normalize boundary.
type Pool struct {
	ID       string // pool identifier (upstream id)
	Address  string // on-chain pool address
	Name     string // display name, e.g. "SOL-USDC"
	Protocol string // protocol tag, e.g. "dlmm"

	MintX string // token X mint address
	MintY string // token Y mint address

	TVL       float64 // total value locked, USD
	Volume24h float64 // 24h trade volume, USD
	Apr       string  // APR as reported upstream, numeric-as-text
	Fees24h   float64 // 24h fees, USD

	// Windowed fee metrics, zero when the source did not report them.
	Fees1h      float64
	FeeTVLRatio float64

	HotFeeSpike bool // upstream hot flag: fee spike in the last hour

	HasFarm                bool
	FarmActive             bool
	PermanentLockLiquidity float64

	APIVerified bool
	Blacklisted bool

	// Derived by the refresh pipeline.
	Safety Safety
	Score  int
}

// AprValue parses the textual APR field. Malformed or missing text
// yields 0 rather than an error.
func (p *Pool) AprValue() float64 {
	v, err := strconv.ParseFloat(p.Apr, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// VolumeTVLRatio returns 24h volume over TVL, 0 when TVL is 0.
func (p *Pool) VolumeTVLRatio() float64 {
	if p.TVL <= 0 {
		return 0
	}
	return p.Volume24h / p.TVL
}
