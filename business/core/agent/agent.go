// Package agent implements the auto-compounding decision cycle: observe the
// account balance, model the ideal reward wait time, submit a zero-value self
// payment and sleep until the next collection.
package agent

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/compoundlabs/compounder/business/core/compound"
	"github.com/compoundlabs/compounder/business/data/history"
	"github.com/compoundlabs/compounder/foundation/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// EventHandler defines a function that is called when events occur during the
// processing of decision cycles.
type EventHandler func(v string, args ...any)

// Config represents the configuration required to construct the agent.
type Config struct {
	Ledger         ledger.Client
	Store          history.Store
	PrivateKey     *ecdsa.PrivateKey
	Years          float64
	Rate           float64
	AvgFees        float64
	DefaultWait    time.Duration
	ConfirmTimeout time.Duration
	RetryWait      time.Duration
	EvHandler      EventHandler
}

// Agent manages the compounding workflow against the configured ledger.
type Agent struct {
	ledger         ledger.Client
	store          history.Store
	privateKey     *ecdsa.PrivateKey
	account        common.Address
	years          float64
	rate           float64
	avgFees        float64
	defaultWait    time.Duration
	confirmTimeout time.Duration
	retryWait      time.Duration
	evHandler      EventHandler

	cycleCount int
	nextWake   time.Time
	mu         sync.RWMutex

	wg   sync.WaitGroup
	shut chan struct{}
}

// New constructs an agent ready to run decision cycles.
func New(cfg Config) (*Agent, error) {
	if cfg.Ledger == nil {
		return nil, errors.New("ledger client is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("history store is required")
	}
	if cfg.PrivateKey == nil {
		return nil, errors.New("private key is required")
	}

	// Validate the operator coefficients up front with a zero principal so a
	// bad configuration fails at startup, not mid-cycle.
	if _, err := compound.NewCoefs(cfg.Years, cfg.Rate, cfg.AvgFees, 0); err != nil {
		return nil, err
	}

	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.DefaultWait == 0 {
		cfg.DefaultWait = 24 * time.Hour
	}
	if cfg.ConfirmTimeout == 0 {
		cfg.ConfirmTimeout = time.Minute
	}
	if cfg.RetryWait == 0 {
		cfg.RetryWait = time.Minute
	}

	a := Agent{
		ledger:         cfg.Ledger,
		store:          cfg.Store,
		privateKey:     cfg.PrivateKey,
		account:        crypto.PubkeyToAddress(cfg.PrivateKey.PublicKey),
		years:          cfg.Years,
		rate:           cfg.Rate,
		avgFees:        cfg.AvgFees,
		defaultWait:    cfg.DefaultWait,
		confirmTimeout: cfg.ConfirmTimeout,
		retryWait:      cfg.RetryWait,
		evHandler:      ev,
		shut:           make(chan struct{}),
	}

	return &a, nil
}

// Account returns the account the agent compounds for.
func (a *Agent) Account() common.Address {
	return a.account
}

// Run starts the compounding loop in its own goroutine.
func (a *Agent) Run() {
	a.wg.Add(1)

	hasStarted := make(chan bool)

	go func() {
		defer a.wg.Done()
		hasStarted <- true
		a.compoundingOperations()
	}()

	<-hasStarted
}

// Shutdown terminates the compounding loop and waits for the in-flight cycle
// to complete.
func (a *Agent) Shutdown() {
	a.evHandler("agent: shutdown: started")
	defer a.evHandler("agent: shutdown: completed")

	close(a.shut)
	a.wg.Wait()
}

// NextWake reports when the next decision cycle is scheduled. The zero time
// means no cycle has completed yet.
func (a *Agent) NextWake() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.nextWake
}

// LastCycle returns the most recent recorded cycle.
func (a *Agent) LastCycle(ctx context.Context) (history.Record, error) {
	return a.store.Last(ctx)
}

// Cycles returns all recorded cycles, newest first.
func (a *Agent) Cycles(ctx context.Context) ([]history.Record, error) {
	return a.store.List(ctx)
}

// Plan computes the recommended wait for a hypothetical principal using the
// operator coefficients. The false return means the model found no extremum
// in its search bracket.
func (a *Agent) Plan(principal float64) (float64, bool, error) {
	coefs, err := compound.NewCoefs(a.years, a.rate, a.avgFees, principal)
	if err != nil {
		return 0, false, err
	}

	seconds, found := compound.NewModel(coefs).IdealRewardWait()
	return seconds, found, nil
}

// =============================================================================

// compoundingOperations runs decision cycles until shutdown, sleeping the
// recommended wait after a confirmed payment and the retry wait after a
// failed one.
func (a *Agent) compoundingOperations() {
	a.evHandler("agent: compoundingOperations: G started")
	defer a.evHandler("agent: compoundingOperations: G completed")

	ctx := context.Background()

	for {
		rec, err := a.RunCycle(ctx)

		wait := a.retryWait
		switch {
		case err != nil:
			a.evHandler("agent: compoundingOperations: cycle failed: %s", err)

		case !rec.Confirmed:
			a.evHandler("agent: compoundingOperations: payment unconfirmed: retrying in %v", wait)

		default:
			wait = time.Duration(rec.WaitSeconds * float64(time.Second))
			a.evHandler("agent: compoundingOperations: sleeping %.0f seconds or %.2f days", rec.WaitSeconds, rec.WaitSeconds/(24*3600))
		}

		a.mu.Lock()
		a.nextWake = time.Now().Add(wait)
		a.mu.Unlock()

		timer := time.NewTimer(wait)

		select {
		case <-timer.C:

		case <-a.shut:
			timer.Stop()
			a.evHandler("agent: compoundingOperations: received shut signal")
			return
		}
	}
}

// RunCycle executes one decision cycle: query the balance, derive the wait
// time from a fresh model, submit the self payment and record the outcome.
func (a *Agent) RunCycle(ctx context.Context) (history.Record, error) {
	a.evHandler("agent: runCycle: started")
	defer a.evHandler("agent: runCycle: completed")

	balance, err := a.ledger.Balance(ctx, a.account)
	if err != nil {
		return history.Record{}, fmt.Errorf("querying balance: %w", err)
	}
	a.evHandler("agent: runCycle: balance[%v]", balance)

	coefs, err := compound.NewCoefs(a.years, a.rate, a.avgFees, balance)
	if err != nil {
		return history.Record{}, fmt.Errorf("constructing coefficients: %w", err)
	}

	// The model is rebuilt from the latest balance every cycle and carries no
	// state across cycles.
	model := compound.NewModel(coefs)

	seconds, found := model.IdealRewardWait()
	if !found {
		seconds = a.defaultWait.Seconds()
		a.evHandler("agent: runCycle: no extremum in bracket: defaulting to %.0f seconds", seconds)
	}

	note := fmt.Sprintf("automated compounding payment count:%d", a.cycleCount)

	txID, err := a.ledger.SubmitSelfPayment(ctx, a.privateKey, note)
	if err != nil {
		return history.Record{}, fmt.Errorf("submitting payment: %w", err)
	}
	a.evHandler("agent: runCycle: submitted transaction[%s]", txID)

	confirmCtx, cancel := context.WithTimeout(ctx, a.confirmTimeout)
	defer cancel()

	confirmed := true
	if err := a.ledger.ConfirmTransaction(confirmCtx, txID); err != nil {
		confirmed = false
		a.evHandler("agent: runCycle: confirmation failed: %s", err)
	}

	if confirmed {
		a.cycleCount++
	}

	rec := history.Record{
		ID:          uuid.New(),
		CreatedAt:   time.Now().UTC(),
		Balance:     balance,
		WaitSeconds: seconds,
		Defaulted:   !found,
		TxID:        txID,
		Confirmed:   confirmed,
	}

	if err := a.store.Save(ctx, rec); err != nil {
		return history.Record{}, fmt.Errorf("saving cycle record: %w", err)
	}

	return rec, nil
}
