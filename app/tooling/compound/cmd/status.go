package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/compoundlabs/compounder/foundation/ledger"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the node status.",
	Run:   statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	lgr, err := ledger.NewEthereum(ctx, nodeURL)
	if err != nil {
		log.Fatal(err)
	}
	defer lgr.Close()

	status, err := lgr.Status(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("node chain id:", status.ChainID)
	fmt.Println("node block number:", status.BlockNumber)
}
