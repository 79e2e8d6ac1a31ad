package main

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/kwatalab/bsm/internal/commission"
	"github.com/kwatalab/bsm/internal/config"
	"github.com/kwatalab/bsm/internal/store/sqlstore"
)

var (
	recalcApply   bool
	recalcPartner string
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recompute partner commission ledgers from the referral graph",
	Long: `Rebuilds every active partner's commission ledger from the referral
graph, the referred users' subscription history and the fixed rate
tables, then reports the delta against the stored balance.

Without --apply this is a dry run: nothing is written. With --apply each
partner's ledger is replaced atomically with the recomputed entries and
the stored balance is updated.`,
	RunE: runRecalc,
}

func init() {
	recalcCmd.Flags().BoolVar(&recalcApply, "apply", false, "Replace ledgers and balances with the recomputed values")
	recalcCmd.Flags().StringVar(&recalcPartner, "partner", "", "Limit to a single partner id")
}

func runRecalc(cmd *cobra.Command, args []string) error {
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
	if recalcPartner != "" {
		results = filterResults(results, recalcPartner)
		if len(results) == 0 {
			return fmt.Errorf("no active partner with id %s", recalcPartner)
		}
	}

	changed := printResults(results)

	if !recalcApply {
		fmt.Fprintln(os.Stdout, "\nDry run: no changes applied. Re-run with --apply to replace the ledgers.")
		return nil
	}
	if changed == 0 {
		fmt.Fprintln(os.Stdout, "\nAll balances already match; nothing to apply.")
		return nil
	}
	if err := confirmOrAbort(fmt.Sprintf("Replace the commission ledgers of %d partner(s)?", len(results))); err != nil {
		return err
	}
	if err := recalc.Apply(ctx, results); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "\nApplied: %d ledger(s) replaced.\n", len(results))
	return nil
}

func filterResults(results []*commission.Result, partnerID string) []*commission.Result {
	var out []*commission.Result
	for _, res := range results {
		if res.Partner.ID == partnerID {
			out = append(out, res)
		}
	}
	return out
}

// printResults writes one line per partner and returns how many balances
// would change.
func printResults(results []*commission.Result) int {
	changed := 0
	fmt.Fprintf(os.Stdout, "%-38s %-8s %10s %12s %12s %10s\n",
		"PARTNER", "PACK", "ENTRIES", "CURRENT", "RECOMPUTED", "DELTA")
	for _, res := range results {
		delta := res.Delta()
		if math.Abs(delta) > 0.004 {
			changed++
		}
		fmt.Fprintf(os.Stdout, "%-38s %-8s %10d %12.2f %12.2f %+10.2f\n",
			res.Partner.ID, res.Partner.Pack, len(res.Entries),
			res.CurrentBalance, res.NewBalance, delta)
	}
	fmt.Fprintf(os.Stdout, "\n%d partner(s), %d with balance drift.\n", len(results), changed)
	return changed
}
