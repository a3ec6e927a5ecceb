package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/compoundlabs/compounder/business/core/compound"
)

var (
	planPrincipal float64
	planYears     float64
	planRate      float64
	planAvgFees   float64
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the recommended wait between reward collections.",
	Run:   planRun,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().Float64VarP(&planPrincipal, "principal", "b", 100.0, "Starting balance to model.")
	planCmd.Flags().Float64VarP(&planYears, "years", "y", 1.0, "Duration of compounding in years.")
	planCmd.Flags().Float64VarP(&planRate, "rate", "r", 0.069, "Annual interest rate.")
	planCmd.Flags().Float64VarP(&planAvgFees, "fees", "f", 0.001, "Average fee per collection.")
}

func planRun(cmd *cobra.Command, args []string) {
	coefs, err := compound.NewCoefs(planYears, planRate, planAvgFees, planPrincipal)
	if err != nil {
		log.Fatal(err)
	}

	model := compound.NewModel(coefs)

	seconds, found := model.IdealRewardWait()
	if !found {
		fmt.Println("no extremum found in the search bracket: default to one day")
		return
	}

	fmt.Printf("recommended wait: %.0f seconds or %.2f days\n", seconds, seconds/(24.0*3600.0))
}
