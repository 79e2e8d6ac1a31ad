package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kwatalab/bsm/internal/commission"
	"github.com/kwatalab/bsm/internal/config"
	"github.com/kwatalab/bsm/internal/store/sqlstore"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export partner balance drift as CSV",
	Long: `Runs the commission recalculation read-only and writes one CSV row
per active partner: stored balance, recomputed balance and the delta.
Useful for review before a recalc --apply.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "", "Output file (default: stdout)")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.ValidateRecalc(); err != nil {
		return err
	}

	ctx := context.Background()

	billing, err := sqlstore.Open(ctx, sqlstore.RoleBilling, cfg.BillingDSN)
	if err != nil {
		return fmt.Errorf("billing store: %w", err)
	}
	defer billing.Close()
	partners, err := sqlstore.Open(ctx, sqlstore.RolePartners, cfg.PartnersDSN)
	if err != nil {
		return fmt.Errorf("partners store: %w", err)
	}
	defer partners.Close()

	recalc := &commission.Recalculator{Billing: billing, Partners: partners}
	results, err := recalc.Recalculate(ctx)
	if err != nil {
		return err
	}

	out := os.Stdout
	if reportOut != "" {
		f, err := os.Create(reportOut)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := csv.NewWriter(out)
	if err := w.Write([]string{"partner_id", "user_id", "pack", "entries", "current_balance", "recomputed_balance", "delta"}); err != nil {
		return err
	}
	for _, res := range results {
		row := []string{
			res.Partner.ID,
			res.Partner.UserID,
			string(res.Partner.Pack),
			strconv.Itoa(len(res.Entries)),
			strconv.FormatFloat(res.CurrentBalance, 'f', 2, 64),
			strconv.FormatFloat(res.NewBalance, 'f', 2, 64),
			strconv.FormatFloat(res.Delta(), 'f', 2, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
