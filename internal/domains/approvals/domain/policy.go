package domain

import "github.com/shopspring/decimal"

// ThresholdPolicy decides whether a submitted selection total deviates far
// enough from the historical baseline to need a price approval.
type ThresholdPolicy struct {
	// Ratio is the maximum tolerated deviation, e.g. 0.15 for 15 percent.
	Ratio decimal.Decimal
}

// Deviation is the outcome of a threshold evaluation. Identical inputs
// always produce identical deviations.
type Deviation struct {
	Ratio         decimal.Decimal
	OverThreshold bool
}

// Evaluate computes (submitted - baseline) / baseline against the policy
// ratio. The comparison is signed: only an increase past the threshold
// triggers approval, a cheaper-than-history total never does. A zero or
// negative baseline means no history exists and the selection passes.
func (p ThresholdPolicy) Evaluate(submitted, baseline decimal.Decimal) Deviation {
	if baseline.LessThanOrEqual(decimal.Zero) {
		return Deviation{Ratio: decimal.Zero}
	}
	ratio := submitted.Sub(baseline).Div(baseline)
	return Deviation{
		Ratio:         ratio,
		OverThreshold: ratio.GreaterThan(p.Ratio),
	}
}
