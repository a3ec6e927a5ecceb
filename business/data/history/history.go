// Package history maintains the per-cycle audit trail of agent decisions.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/compoundlabs/compounder/foundation/ledger"
	"github.com/google/uuid"
)

// Record captures one completed decision cycle.
type Record struct {
	ID          uuid.UUID   `json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	Balance     float64     `json:"balance"`
	WaitSeconds float64     `json:"wait_seconds"`
	Defaulted   bool        `json:"defaulted"`
	TxID        ledger.TxID `json:"tx_id"`
	Confirmed   bool        `json:"confirmed"`
}

// Store defines the behavior required to persist cycle records.
type Store interface {
	Save(ctx context.Context, rec Record) error
	List(ctx context.Context) ([]Record, error)
	Last(ctx context.Context) (Record, error)
}

// ErrNotFound is returned when no record exists yet.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "record not found" }

// =============================================================================

// Memory is an in-memory implementation of the Store interface. Records are
// kept newest first.
type Memory struct {
	records []Record
	mu      sync.RWMutex
}

// NewMemory constructs an in-memory cycle store.
func NewMemory() *Memory {
	return &Memory{}
}

// Save stores the record in memory.
func (m *Memory) Save(ctx context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append([]Record{rec}, m.records...)
	return nil
}

// List returns a copy of all recorded cycles, newest first.
func (m *Memory) List(ctx context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]Record, len(m.records))
	copy(records, m.records)
	return records, nil
}

// Last returns the most recent record.
func (m *Memory) Last(ctx context.Context) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) == 0 {
		return Record{}, ErrNotFound
	}
	return m.records[0], nil
}
