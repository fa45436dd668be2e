// Package safety classifies pools by token-verification and liquidity
// signals. Classification is a pure function with a strict precedence:
// blacklist > verification > TVL floor.
package safety

import "solana-pool-radar/internal/domain"

// Input carries everything classification needs. VerifiedMints is the
// externally maintained set of verified mint addresses.
type Input struct {
	MintX         string
	MintY         string
	TVL           float64
	VerifiedMints map[string]struct{}
	APIVerified   bool
	Blacklisted   bool
}

// Classifier applies the safety rules. The TVL floor below which an
// unverified pool is danger comes from configuration.
type Classifier struct {
	minUnverifiedTVL float64
}

// NewClassifier creates a classifier with the given unverified-TVL floor.
func NewClassifier(minUnverifiedTVL float64) *Classifier {
	return &Classifier{minUnverifiedTVL: minUnverifiedTVL}
}

// Classify labels a pool. Precedence, highest first:
//  1. blacklisted → danger
//  2. api-verified OR both mints verified → safe
//  3. neither mint verified AND tvl below the floor → danger
//  4. otherwise → warning
func (c *Classifier) Classify(in Input) domain.Safety {
	if in.Blacklisted {
		return domain.SafetyDanger
	}

	_, xVerified := in.VerifiedMints[in.MintX]
	_, yVerified := in.VerifiedMints[in.MintY]

	if in.APIVerified || (xVerified && yVerified) {
		return domain.SafetySafe
	}

	if !xVerified && !yVerified && in.TVL < c.minUnverifiedTVL {
		return domain.SafetyDanger
	}

	return domain.SafetyWarning
}
