package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/compoundlabs/compounder/foundation/ledger"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the agent account balance.",
	Run:   balanceRun,
}

func init() {
	rootCmd.AddCommand(balanceCmd)
}

func balanceRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
	if err != nil {
		log.Fatal(err)
	}

	account := crypto.PubkeyToAddress(privateKey.PublicKey)
	fmt.Println("For Account:", account.Hex())

	ctx := context.Background()

	lgr, err := ledger.NewEthereum(ctx, nodeURL)
	if err != nil {
		log.Fatal(err)
	}
	defer lgr.Close()

	balance, err := lgr.Balance(ctx, account)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(balance)
}
