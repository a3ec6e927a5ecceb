package agent_test

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"testing"
	"time"

	"github.com/compoundlabs/compounder/business/core/agent"
	"github.com/compoundlabs/compounder/business/data/history"
	"github.com/compoundlabs/compounder/foundation/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// fakeLedger implements the ledger.Client interface against canned values.
type fakeLedger struct {
	balance    float64
	balanceErr error
	confirmErr error
	notes      []string
}

func (f *fakeLedger) Balance(ctx context.Context, account common.Address) (float64, error) {
	return f.balance, f.balanceErr
}

func (f *fakeLedger) SubmitSelfPayment(ctx context.Context, key *ecdsa.PrivateKey, note string) (ledger.TxID, error) {
	f.notes = append(f.notes, note)
	return ledger.TxID("0xfeed"), nil
}

func (f *fakeLedger) ConfirmTransaction(ctx context.Context, id ledger.TxID) error {
	return f.confirmErr
}

func (f *fakeLedger) Status(ctx context.Context) (ledger.Status, error) {
	return ledger.Status{}, nil
}

func newAgent(t *testing.T, lgr ledger.Client, rate float64) *agent.Agent {
	t.Helper()

	pk, err := crypto.HexToECDSA("fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959")
	if err != nil {
		t.Fatalf("\t%s\tShould be able to parse the private key: %v", failed, err)
	}

	a, err := agent.New(agent.Config{
		Ledger:     lgr,
		Store:      history.NewMemory(),
		PrivateKey: pk,
		Years:      1.0,
		Rate:       rate,
		AvgFees:    0.001,
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the agent: %v", failed, err)
	}

	return a
}

func TestRunCycle(t *testing.T) {
	t.Log("Given the need to run a full decision cycle.")
	{
		t.Logf("\tTest 0:\tWhen the ledger confirms the payment.")
		{
			lgr := fakeLedger{balance: 100}
			a := newAgent(t, &lgr, 0.069)

			rec, err := a.RunCycle(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould complete the cycle: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould complete the cycle.", success)

			if !rec.Confirmed {
				t.Fatalf("\t%s\tTest 0:\tShould record the payment as confirmed.", failed)
			}
			t.Logf("\t%s\tTest 0:\tShould record the payment as confirmed.", success)

			if rec.Balance != 100 {
				t.Fatalf("\t%s\tTest 0:\tShould record the observed balance: got %v", failed, rec.Balance)
			}
			t.Logf("\t%s\tTest 0:\tShould record the observed balance.", success)

			if rec.WaitSeconds <= 0 {
				t.Fatalf("\t%s\tTest 0:\tShould recommend a positive wait: got %v", failed, rec.WaitSeconds)
			}
			t.Logf("\t%s\tTest 0:\tShould recommend a positive wait: %v seconds", success, rec.WaitSeconds)

			last, err := a.LastCycle(context.Background())
			if err != nil || last.ID != rec.ID {
				t.Fatalf("\t%s\tTest 0:\tShould persist the cycle record: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould persist the cycle record.", success)

			if len(lgr.notes) != 1 || lgr.notes[0] != "automated compounding payment count:0" {
				t.Fatalf("\t%s\tTest 0:\tShould attach the payment note: got %v", failed, lgr.notes)
			}
			t.Logf("\t%s\tTest 0:\tShould attach the payment note.", success)
		}

		t.Logf("\tTest 1:\tWhen the model finds no extremum in the bracket.")
		{
			// A zero rate collapses the fee term to a division by zero so the
			// bisection reports not found and the default wait applies.
			lgr := fakeLedger{balance: 100}
			a := newAgent(t, &lgr, 0)

			rec, err := a.RunCycle(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould complete the cycle: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould complete the cycle.", success)

			if !rec.Defaulted {
				t.Fatalf("\t%s\tTest 1:\tShould flag the wait as the default fallback.", failed)
			}
			t.Logf("\t%s\tTest 1:\tShould flag the wait as the default fallback.", success)

			if rec.WaitSeconds != 86400 {
				t.Fatalf("\t%s\tTest 1:\tShould fall back to one day: got %v", failed, rec.WaitSeconds)
			}
			t.Logf("\t%s\tTest 1:\tShould fall back to one day.", success)
		}

		t.Logf("\tTest 2:\tWhen confirmation fails.")
		{
			lgr := fakeLedger{balance: 100, confirmErr: errors.New("timeout exceeded")}
			a := newAgent(t, &lgr, 0.069)

			rec, err := a.RunCycle(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould still complete the cycle: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould still complete the cycle.", success)

			if rec.Confirmed {
				t.Fatalf("\t%s\tTest 2:\tShould record the payment as unconfirmed.", failed)
			}
			t.Logf("\t%s\tTest 2:\tShould record the payment as unconfirmed.", success)
		}

		t.Logf("\tTest 3:\tWhen the balance query fails.")
		{
			lgr := fakeLedger{balanceErr: errors.New("node unreachable")}
			a := newAgent(t, &lgr, 0.069)

			if _, err := a.RunCycle(context.Background()); err == nil {
				t.Fatalf("\t%s\tTest 3:\tShould fail the cycle.", failed)
			}
			t.Logf("\t%s\tTest 3:\tShould fail the cycle.", success)
		}
	}
}

func TestRunShutdown(t *testing.T) {
	t.Log("Given the need to start and stop the compounding loop.")
	{
		t.Logf("\tTest 0:\tWhen shutting down right after start.")
		{
			lgr := fakeLedger{balance: 100}
			a := newAgent(t, &lgr, 0.069)

			a.Run()

			done := make(chan struct{})
			go func() {
				a.Shutdown()
				close(done)
			}()

			select {
			case <-done:
				t.Logf("\t%s\tTest 0:\tShould shut down cleanly.", success)

			case <-time.After(5 * time.Second):
				t.Fatalf("\t%s\tTest 0:\tShould shut down cleanly before the deadline.", failed)
			}
		}
	}
}
