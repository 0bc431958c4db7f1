// Package options selects and scores candidate option contracts for
// matched symbols.
package options

import (
	"math"
	"sort"
	"time"

	"orion-screener/internal/models"
	"orion-screener/internal/strategy"
)

// DefaultStrikeTolerance bounds ATM strikes to ±5% of the underlying.
const DefaultStrikeTolerance = 0.05

// daysPerYear annualizes premium yields.
const daysPerYear = 365.0

// FindATMPuts returns the puts whose strike lies within
// [underlying*(1-tolerance), underlying*(1+tolerance)], ordered by
// ascending distance from the underlying price. The sort is stable, so
// equidistant strikes keep their original chain order.
func FindATMPuts(chain *models.OptionChain, tolerance float64) []models.OptionContract {
	if tolerance <= 0 {
		tolerance = DefaultStrikeTolerance
	}

	lower := chain.UnderlyingPrice * (1 - tolerance)
	upper := chain.UnderlyingPrice * (1 + tolerance)

	atm := make([]models.OptionContract, 0, len(chain.Puts))
	for _, put := range chain.Puts {
		if put.Strike >= lower && put.Strike <= upper {
			atm = append(atm, put)
		}
	}

	sort.SliceStable(atm, func(i, j int) bool {
		di := math.Abs(atm[i].Strike - chain.UnderlyingPrice)
		dj := math.Abs(atm[j].Strike - chain.UnderlyingPrice)
		return di < dj
	})

	return atm
}

// PremiumYield computes the annualized premium yield of a contract at
// its bid/ask midpoint: (mid/stockPrice) * (365/daysToExpiry). Expired
// or same-day contracts yield 0.
func PremiumYield(contract models.OptionContract, stockPrice float64, asOf time.Time) float64 {
	if stockPrice <= 0 {
		return 0
	}

	days := contract.Expiry.Sub(asOf).Hours() / 24
	if days <= 0 {
		return 0
	}

	return (contract.Mid() / stockPrice) * (daysPerYear / days)
}

// FilterByLiquidity keeps contracts meeting both the volume and the open
// interest thresholds.
func FilterByLiquidity(contracts []models.OptionContract, minVolume, minOpenInterest int64) []models.OptionContract {
	liquid := make([]models.OptionContract, 0, len(contracts))
	for _, c := range contracts {
		if c.Volume >= minVolume && c.OpenInterest >= minOpenInterest {
			liquid = append(liquid, c)
		}
	}
	return liquid
}

// FindBestOpportunity picks the liquid ATM put with the highest
// annualized yield at or above the strategy's minimum. Ties keep the
// first contract in moneyness order, so nearest-ATM wins. Returns nil
// when no contract clears the yield bar.
func FindBestOpportunity(chain *models.OptionChain, criteria strategy.OptionCriteria, asOf time.Time) *models.OptionOpportunity {
	atm := FindATMPuts(chain, criteria.StrikeTolerance)
	liquid := FilterByLiquidity(atm, criteria.MinVolume, criteria.MinOpenInterest)

	var best *models.OptionOpportunity
	for _, contract := range liquid {
		yield := PremiumYield(contract, chain.UnderlyingPrice, asOf)
		if yield < criteria.MinYield {
			continue
		}
		if best == nil || yield > best.Yield {
			c := contract
			best = &models.OptionOpportunity{Contract: c, Yield: yield}
		}
	}

	return best
}
