package compound_test

import (
	"math"
	"testing"

	"github.com/compoundlabs/compounder/business/core/compound"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const secondsPerYear = 365.0 * 24 * 3600

func TestZeroFeeReduction(t *testing.T) {
	t.Log("Given the need to validate the projection against simple compound interest.")
	{
		coefs, err := compound.NewCoefs(2.0, 0.05, 0, 1000)
		if err != nil {
			t.Fatalf("\t%s\tTest 0:\tShould be able to construct coefficients: %v", failed, err)
		}
		t.Logf("\t%s\tTest 0:\tShould be able to construct coefficients.", success)

		model := compound.NewModel(coefs)

		for testID, n := range []float64{1, 4, 12, 365, 8760} {
			t.Logf("\tTest %d:\tWhen projecting with zero fees at %v collections per year.", testID, n)
			{
				got := model.Eval(n)
				exp := coefs.InitialPrincipal * math.Pow(1+coefs.Rate/n, n*coefs.Years)

				if math.Abs(got-exp) > 1e-9*exp {
					t.Logf("\t%s\tTest %d:\tgot: %v", failed, testID, got)
					t.Logf("\t%s\tTest %d:\texp: %v", failed, testID, exp)
					t.Fatalf("\t%s\tTest %d:\tShould reduce to simple compound interest.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould reduce to simple compound interest.", success, testID)
			}
		}
	}
}

func TestIdealRewardWait(t *testing.T) {
	t.Log("Given the need to compute the ideal reward wait time.")
	{
		t.Logf("\tTest 0:\tWhen using the operator scenario coefficients.")
		{
			coefs, err := compound.NewCoefs(1.0, 0.069, 0.001, 100.0)
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to construct coefficients: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould be able to construct coefficients.", success)

			model := compound.NewModel(coefs)

			seconds, found := model.IdealRewardWait()
			switch {
			case found:
				if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds <= 0 || seconds >= secondsPerYear {
					t.Fatalf("\t%s\tTest 0:\tShould recommend a finite positive wait under one year: got %v", failed, seconds)
				}
				t.Logf("\t%s\tTest 0:\tShould recommend a finite positive wait under one year: got %v", success, seconds)

			default:
				t.Logf("\t%s\tTest 0:\tShould otherwise report not found without faulting.", success)
			}
		}

		t.Logf("\tTest 1:\tWhen calling twice with identical coefficients.")
		{
			coefs, err := compound.NewCoefs(1.0, 0.069, 0.001, 100.0)
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to construct coefficients: %v", failed, err)
			}

			model := compound.NewModel(coefs)

			s1, f1 := model.IdealRewardWait()
			s2, f2 := model.IdealRewardWait()

			if f1 != f2 || s1 != s2 {
				t.Fatalf("\t%s\tTest 1:\tShould produce bit-identical results: %v/%v vs %v/%v", failed, s1, f1, s2, f2)
			}
			t.Logf("\t%s\tTest 1:\tShould produce bit-identical results.", success)
		}

		t.Logf("\tTest 2:\tWhen the starting principal is zero.")
		{
			coefs, err := compound.NewCoefs(1.0, 0.069, 0.001, 0)
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to construct coefficients: %v", failed, err)
			}

			model := compound.NewModel(coefs)

			// Either outcome is acceptable. The search must simply not fault.
			seconds, found := model.IdealRewardWait()
			t.Logf("\t%s\tTest 2:\tShould survive a zero principal: found %v, seconds %v", success, found, seconds)
		}
	}
}

func TestNewCoefs(t *testing.T) {
	t.Log("Given the need to reject malformed coefficient sets.")
	{
		type table struct {
			name             string
			years            float64
			rate             float64
			avgFees          float64
			initialPrincipal float64
			valid            bool
		}

		tt := []table{
			{name: "operator defaults", years: 1.0, rate: 0.069, avgFees: 0.001, initialPrincipal: 100, valid: true},
			{name: "zero years", years: 0, rate: 0.069, avgFees: 0.001, initialPrincipal: 100, valid: false},
			{name: "negative fees", years: 1.0, rate: 0.069, avgFees: -0.001, initialPrincipal: 100, valid: false},
			{name: "negative principal", years: 1.0, rate: 0.069, avgFees: 0.001, initialPrincipal: -1, valid: false},
			{name: "rate at total loss", years: 1.0, rate: -1, avgFees: 0.001, initialPrincipal: 100, valid: false},
		}

		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen constructing %s.", testID, tst.name)
			{
				_, err := compound.NewCoefs(tst.years, tst.rate, tst.avgFees, tst.initialPrincipal)

				if tst.valid && err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould accept the coefficients: %v", failed, testID, err)
				}
				if !tst.valid && err == nil {
					t.Fatalf("\t%s\tTest %d:\tShould reject the coefficients.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould get the expected validation outcome.", success, testID)
			}
		}
	}
}
