// Package rates computes machine throughput, machine counts, extractor output
// and transport tiers.
//
// Every function is total: degenerate inputs (missing recipe, zero cycle time,
// non-positive window) produce documented fallback values instead of errors, so
// results can flow straight into a diagram without guarding against NaN or
// division by zero.
package rates

import (
	"math"

	"github.com/matzehuels/prodgraph/pkg/catalog"
)

// MinerTier is an extractor building tier.
type MinerTier string

const (
	MinerMk1 MinerTier = "Mk.1"
	MinerMk2 MinerTier = "Mk.2"
	MinerMk3 MinerTier = "Mk.3"
)

// Purity is the quality of a resource node.
type Purity string

const (
	PurityImpure Purity = "impure"
	PurityNormal Purity = "normal"
	PurityPure   Purity = "pure"
)

// MinerTiers lists the miner tiers in ascending order.
var MinerTiers = []MinerTier{MinerMk1, MinerMk2, MinerMk3}

// Purities lists the purities in ascending order.
var Purities = []Purity{PurityImpure, PurityNormal, PurityPure}

var baseRate = map[MinerTier]float64{
	MinerMk1: 60,
	MinerMk2: 120,
	MinerMk3: 240,
}

var purityMultiplier = map[Purity]float64{
	PurityImpure: 0.5,
	PurityNormal: 1,
	PurityPure:   2,
}

// ValidTier reports whether t is a known miner tier.
func ValidTier(t MinerTier) bool {
	_, ok := baseRate[t]
	return ok
}

// ValidPurity reports whether p is a known purity.
func ValidPurity(p Purity) bool {
	_, ok := purityMultiplier[p]
	return ok
}

// ExtractorOutput returns items per minute produced by one extractor.
// Unknown tiers or purities yield 0.
func ExtractorOutput(tier MinerTier, purity Purity) float64 {
	return baseRate[tier] * purityMultiplier[purity]
}

// MachineThroughput returns the output of one machine running r, per minute.
// It returns 0 if r is nil or has no positive cycle time.
func MachineThroughput(r *catalog.Recipe) float64 {
	if r == nil || r.CycleTime <= 0 {
		return 0
	}
	return r.OutputAmount / r.CycleTime * 60
}

// Machines is a machine count, both exact and rounded up.
type Machines struct {
	Rounded int     `json:"rounded"`
	Exact   float64 `json:"exact"`
}

// fallback is returned whenever a count cannot be derived.
var fallback = Machines{Rounded: 1, Exact: 1}

// MachinesNeeded returns how many machines running r are needed to produce
// amount within windowMinutes. Rounded is ceil(Exact) and never less than 1.
// If r is nil, has no throughput, or the window is not positive, the result is
// the fallback {1, 1}.
func MachinesNeeded(amount, windowMinutes float64, r *catalog.Recipe) Machines {
	if windowMinutes <= 0 {
		return fallback
	}
	return forRate(amount/windowMinutes, MachineThroughput(r))
}

// MachinesForRate returns how many machines running r sustain rate items per minute.
func MachinesForRate(rate float64, r *catalog.Recipe) Machines {
	return MachinesNeeded(rate, 1, r)
}

// MinersNeeded returns how many extractors of the given tier and purity sustain
// rate items per minute.
func MinersNeeded(rate float64, tier MinerTier, purity Purity) Machines {
	return forRate(rate, ExtractorOutput(tier, purity))
}

func forRate(rate, perMachine float64) Machines {
	if perMachine <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fallback
	}
	exact := rate / perMachine
	return Machines{Rounded: max(CeilCount(exact), 1), Exact: exact}
}

// CeilCount returns ceil(x) as an int, saturating at math.MinInt and
// math.MaxInt. NaN yields 0.
func CeilCount(x float64) int {
	c := math.Ceil(x)
	switch {
	case math.IsNaN(c):
		return 0
	case c >= math.MaxInt:
		return math.MaxInt
	case c <= math.MinInt:
		return math.MinInt
	}
	return int(c)
}

// MiningMinutes returns how long one extractor needs to mine amount items.
// It returns 0 for unknown tiers or purities.
func MiningMinutes(amount float64, tier MinerTier, purity Purity) float64 {
	out := ExtractorOutput(tier, purity)
	if out <= 0 {
		return 0
	}
	return amount / out
}
