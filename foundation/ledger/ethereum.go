package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

// weiPerCoin converts the chain's native unit into a decimal coin amount.
const weiPerCoin = 1e18

// receiptPollInterval is how often a pending transaction is re-checked while
// waiting for confirmation.
const receiptPollInterval = 2 * time.Second

// Ethereum implements the Client interface against a geth compatible node.
type Ethereum struct {
	client *ethclient.Client
}

// NewEthereum connects to the node at the specified URL.
func NewEthereum(ctx context.Context, url string) (*Ethereum, error) {
	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dialing node %q: %w", url, err)
	}

	return &Ethereum{
		client: client,
	}, nil
}

// Close releases the underlying RPC connection.
func (eth *Ethereum) Close() {
	eth.client.Close()
}

// Balance returns the latest confirmed balance for the account in coins.
func (eth *Ethereum) Balance(ctx context.Context, account common.Address) (float64, error) {
	wei, err := eth.client.BalanceAt(ctx, account, nil)
	if err != nil {
		return 0, fmt.Errorf("querying balance: %w", err)
	}

	coins, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), big.NewFloat(weiPerCoin)).Float64()
	return coins, nil
}

// SubmitSelfPayment signs and broadcasts a zero-value payment from the key's
// account back to itself with the note attached as calldata.
func (eth *Ethereum) SubmitSelfPayment(ctx context.Context, key *ecdsa.PrivateKey, note string) (TxID, error) {
	account := crypto.PubkeyToAddress(key.PublicKey)

	nonce, err := eth.client.PendingNonceAt(ctx, account)
	if err != nil {
		return "", fmt.Errorf("querying nonce: %w", err)
	}

	gasPrice, err := eth.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("querying gas price: %w", err)
	}

	chainID, err := eth.client.NetworkID(ctx)
	if err != nil {
		return "", fmt.Errorf("querying chain id: %w", err)
	}

	// Base transfer gas plus the calldata cost of the note.
	gas := uint64(21_000 + 16*len(note))

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &account,
		Value:    big.NewInt(0),
		Gas:      gas,
		GasPrice: gasPrice,
		Data:     []byte(note),
	})

	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(chainID), key)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}

	if err := eth.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}

	return TxID(signedTx.Hash().Hex()), nil
}

// ConfirmTransaction polls for the transaction receipt until the transaction
// is mined or the context expires. A mined transaction with a failed status
// is reported as an error.
func (eth *Ethereum) ConfirmTransaction(ctx context.Context, id TxID) error {
	hash := common.HexToHash(string(id))

	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := eth.client.TransactionReceipt(ctx, hash)

		switch {
		case err == nil:
			if receipt.Status != types.ReceiptStatusSuccessful {
				return fmt.Errorf("transaction rejected: %s", id)
			}
			return nil

		case !errors.Is(err, ethereum.NotFound):
			return fmt.Errorf("querying receipt: %w", err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("confirming transaction %s: %w", id, ctx.Err())

		case <-ticker.C:
		}
	}
}

// Status reports the node's chain id and latest block number.
func (eth *Ethereum) Status(ctx context.Context) (Status, error) {
	chainID, err := eth.client.NetworkID(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("querying chain id: %w", err)
	}

	blockNumber, err := eth.client.BlockNumber(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("querying block number: %w", err)
	}

	return Status{
		ChainID:     chainID,
		BlockNumber: blockNumber,
	}, nil
}
