package numeric

// Formula is a pure closed-form mapping from an independent variable and a
// coefficient set to a real value.
type Formula[C any] func(x float64, coefs C) float64

// Analytic binds one formula to one immutable coefficient set so the pair can
// be evaluated, differentiated and searched as a single unit. The type
// parameter fixes the pairing at construction: a formula can only ever be
// handed the coefficient shape it was written for.
type Analytic[C any] struct {
	formula Formula[C]
	coefs   C
}

// NewAnalytic constructs the formula/coefficient pairing.
func NewAnalytic[C any](formula Formula[C], coefs C) Analytic[C] {
	return Analytic[C]{
		formula: formula,
		coefs:   coefs,
	}
}

// Eval evaluates the formula at x with the bound coefficients.
func (a Analytic[C]) Eval(x float64) float64 {
	return a.formula(x, a.coefs)
}
