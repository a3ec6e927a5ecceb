// Package ledger provides the client abstraction the agent uses to observe
// balances and submit transactions against an external chain node.
package ledger

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TxID uniquely identifies a submitted transaction on the chain.
type TxID string

// Status represents the observable state of the backing node.
type Status struct {
	ChainID     *big.Int `json:"chain_id"`
	BlockNumber uint64   `json:"block_number"`
}

// Client defines the chain operations the agent core depends on. The core
// only consumes a decimal balance and produces a wait time; everything behind
// this interface is I/O glue.
type Client interface {

	// Balance returns the account balance converted from the chain's native
	// unit to a decimal coin amount.
	Balance(ctx context.Context, account common.Address) (float64, error)

	// SubmitSelfPayment signs and broadcasts a zero-value payment from the
	// key's account back to itself, carrying the specified note.
	SubmitSelfPayment(ctx context.Context, key *ecdsa.PrivateKey, note string) (TxID, error)

	// ConfirmTransaction blocks until the transaction is confirmed, the
	// chain rejects it, or the context expires.
	ConfirmTransaction(ctx context.Context, id TxID) error

	// Status reports the node's current view of the chain.
	Status(ctx context.Context) (Status, error)
}
