// Command bsm runs the one-shot marketplace store-split migration and its
// commission maintenance pass.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	yesFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "bsm",
	Short: "Legacy store split: migrate the monolith into the per-domain target stores",
	Long: `bsm drains the monolithic legacy store and redistributes its records
into the accounts, billing and partners target stores, rebuilding every
cross-entity reference against target-assigned ids.

Connection strings come from bsm.yaml or BSM_-prefixed environment
variables (BSM_LEGACY_URI, BSM_ACCOUNTS_DSN, BSM_BILLING_DSN,
BSM_PARTNERS_DSN).`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./bsm.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "Skip confirmation prompts")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(recalcCmd)
	rootCmd.AddCommand(reportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// confirmOrAbort prompts before a destructive phase unless --yes was given.
func confirmOrAbort(title string) error {
	if yesFlag {
		return nil
	}
	var proceed bool
	if err := huh.NewConfirm().Title(title).Value(&proceed).Run(); err != nil {
		return fmt.Errorf("confirmation: %w", err)
	}
	if !proceed {
		return fmt.Errorf("aborted")
	}
	return nil
}
