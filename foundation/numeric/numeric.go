// Package numeric provides finite-difference differentiation and local
// extremum searches over any function that can be evaluated pointwise.
package numeric

import "math"

// Evaluator is the capability every searchable function implements. Eval must
// accept any finite x; it may return NaN or ±Inf at a singularity, which the
// derived operations treat as ordinary values rather than errors.
type Evaluator interface {
	Eval(x float64) float64
}

// FirstDerivative estimates f'(x) with a central difference. The caller picks
// delta; a smaller step trades numerical noise against truncation error. A
// zero delta divides by zero and yields a non-finite result.
func FirstDerivative(f Evaluator, x float64, delta float64) float64 {
	return (f.Eval(x+delta) - f.Eval(x-delta)) / (2 * delta)
}

// SecondDerivative estimates f”(x) with a central second difference. The
// delta contract matches FirstDerivative.
func SecondDerivative(f Evaluator, x float64, delta float64) float64 {
	return (f.Eval(x+delta) - 2*f.Eval(x) + f.Eval(x-delta)) / (delta * delta)
}

// SearchExtremaNewton looks for a local extremum of f near x0 by running
// Newton's method on the first derivative. After each update the search
// succeeds when |f'(x)| drops below epsilon. If the iteration budget runs out
// first, the search reports not found. A vanishing second derivative is not
// special-cased: the division produces a non-finite x which then fails the
// convergence test on every remaining pass.
func SearchExtremaNewton(f Evaluator, x0 float64, maxIters int, delta float64, epsilon float64) (float64, bool) {
	for i := 0; i < maxIters; i++ {
		x0 = x0 - FirstDerivative(f, x0, delta)/SecondDerivative(f, x0, delta)
		if math.Abs(FirstDerivative(f, x0, delta)) < epsilon {
			return x0, true
		}
	}

	return 0, false
}

// Bracket is an interval believed to contain exactly one sign change of the
// first derivative.
type Bracket struct {
	Lower float64
	Upper float64
}

// SearchExtremaBisection looks for a local extremum of f inside the bracket by
// bisecting on the sign of the first derivative. When the derivative carries
// the same sign at both endpoints the bracket holds no sign change under this
// sampling and the search reports not found immediately. A midpoint whose
// derivative magnitude falls below epsilon is returned as the extremum. If the
// sampled signs are mutually inconsistent the search also reports not found.
// Exhausting the iteration budget returns the final bracket's midpoint as a
// best-effort result; this exhaustion path never fails, unlike Newton's.
func SearchExtremaBisection(f Evaluator, bracket Bracket, maxIters int, delta float64, epsilon float64) (float64, bool) {
	for i := 0; i < maxIters; i++ {
		l, u := bracket.Lower, bracket.Upper
		mid := l + (u-l)*0.5

		fl := FirstDerivative(f, l, delta)
		fm := FirstDerivative(f, mid, delta)
		fu := FirstDerivative(f, u, delta)

		flPos := fl > 0
		fmPos := fm > 0
		fuPos := fu > 0

		switch {
		case flPos == fuPos:
			return 0, false

		case math.Abs(fm) < epsilon:
			return mid, true

		case fmPos != fuPos:
			bracket = Bracket{Lower: mid, Upper: u}

		case flPos != fmPos:
			bracket = Bracket{Lower: l, Upper: mid}

		default:
			return 0, false
		}
	}

	return bracket.Lower + (bracket.Upper-bracket.Lower)*0.5, true
}
