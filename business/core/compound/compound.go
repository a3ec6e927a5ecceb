// Package compound implements the compounding-with-fees financial model and
// derives the ideal wait time between reward collections.
package compound

import (
	"fmt"
	"math"

	"github.com/compoundlabs/compounder/foundation/numeric"
	"github.com/compoundlabs/compounder/foundation/validate"
)

// Search parameters for locating the optimal collection frequency. The bracket
// spans one collection per year up to one per ~31 milliseconds.
const (
	bracketLower = 1.0
	bracketUpper = 1_000_000_000.0
	maxIters     = 64
	delta        = 0.0001
	epsilon      = 0.0000001
)

// Coefs is the immutable coefficient set consumed by the compounding formula.
type Coefs struct {
	Years            float64 `json:"years" validate:"gt=0"`
	Rate             float64 `json:"rate" validate:"gt=-1"`
	AvgFees          float64 `json:"avg_fees" validate:"gte=0"`
	InitialPrincipal float64 `json:"initial_principal" validate:"gte=0"`
}

// NewCoefs constructs a validated coefficient set.
func NewCoefs(years float64, rate float64, avgFees float64, initialPrincipal float64) (Coefs, error) {
	coefs := Coefs{
		Years:            years,
		Rate:             rate,
		AvgFees:          avgFees,
		InitialPrincipal: initialPrincipal,
	}

	if err := validate.Check(coefs); err != nil {
		return Coefs{}, fmt.Errorf("validating coefficients: %w", err)
	}

	return coefs, nil
}

// projectedValue models the account balance as a function of the collection
// rate per year, taking compounding and the fixed fee per collection into
// account. It is the closed form of the recurrence
//
//	C(0) = A
//	C(n) = C(n-1)*(1 + r/t)^t - f*t
//
// where A is the principal, r the annual rate, t the collections per year and
// f the average fee per collection. A near-zero rate drives g to 1 and the fee
// term to a division by zero; the non-finite result propagates to the search,
// which then fails to converge.
func projectedValue(collectionsPerYear float64, coefs Coefs) float64 {
	g := math.Pow(coefs.Rate/collectionsPerYear+1, collectionsPerYear)
	growth := math.Pow(g, coefs.Years)

	return coefs.InitialPrincipal*growth - ((collectionsPerYear * coefs.AvgFees) * (growth - 1) / (g - 1))
}

// Model binds the compounding formula to one coefficient set. A model is built
// fresh from the latest observed balance each decision cycle and carries no
// state across cycles.
type Model struct {
	fn numeric.Analytic[Coefs]
}

// NewModel constructs a model for the specified coefficients.
func NewModel(coefs Coefs) Model {
	return Model{
		fn: numeric.NewAnalytic(projectedValue, coefs),
	}
}

// Eval implements the numeric.Evaluator interface, projecting the balance at
// the specified number of collections per year.
func (m Model) Eval(x float64) float64 {
	return m.fn.Eval(x)
}

// IdealRewardWait returns the number of seconds to wait between reward
// collections so the projected balance is locally extremized. The false return
// means no sign change of the derivative exists in the search bracket and the
// caller decides the fallback.
func (m Model) IdealRewardWait() (float64, bool) {
	bracket := numeric.Bracket{Lower: bracketLower, Upper: bracketUpper}

	optimal, found := numeric.SearchExtremaBisection(m, bracket, maxIters, delta, epsilon)
	if !found {
		return 0, false
	}

	return (365.0 / optimal) * 24 * 3600, true
}
