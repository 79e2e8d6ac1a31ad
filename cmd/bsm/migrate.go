package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kwatalab/bsm/internal/config"
	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/migrate"
	"github.com/kwatalab/bsm/internal/report"
	"github.com/kwatalab/bsm/internal/store"
	"github.com/kwatalab/bsm/internal/store/memory"
	"github.com/kwatalab/bsm/internal/store/sqlstore"
)

var (
	migrateBatchSize  int
	migrateReportPath string
	migrateDryRun     bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run the full migration from the legacy store into the target stores",
	Long: `Runs every migration phase in order: users and products, ratings,
rating aggregates, transactions, subscriptions, referrals, partners and
the partner ledger. Records that cannot be mapped are skipped and
reported; the run itself still exits zero.

With --dry-run the target stores are replaced by in-memory stores, so
the legacy data is read and transformed but nothing is written to the
real targets.`,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().IntVar(&migrateBatchSize, "batch-size", 0, "Records per insert batch (default 250)")
	migrateCmd.Flags().StringVar(&migrateReportPath, "report", "", "Write a CSV run report to this path")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Read and transform only; write to in-memory stores")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if migrateBatchSize > 0 {
		cfg.BatchSize = migrateBatchSize
	}
	if migrateReportPath != "" {
		cfg.ReportPath = migrateReportPath
	}
	if err := cfg.ValidateMigrate(migrateDryRun); err != nil {
		return err
	}

	if !migrateDryRun {
		if err := confirmOrAbort("Migrate the legacy store into the target stores?"); err != nil {
			return err
		}
	}

	ctx := context.Background()

	src, err := legacy.Open(ctx, cfg.LegacyURI, cfg.LegacyDB)
	if err != nil {
		return fmt.Errorf("legacy store: %w", err)
	}
	defer src.Close(ctx)

	accounts, billing, partners, cleanup, err := openTargets(ctx, cfg, migrateDryRun)
	if err != nil {
		return err
	}
	defer cleanup()

	reporter := report.New(os.Stdout, os.Stderr)
	rc := migrate.NewRunContext(accounts, billing, partners, reporter, migrate.Options{
		BatchSize: cfg.BatchSize,
	})

	if err := migrate.Run(ctx, src, rc); err != nil {
		return err
	}

	if cfg.ReportPath != "" {
		if err := reporter.WriteCSV(cfg.ReportPath); err != nil {
			return fmt.Errorf("report: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Report written to %s\n", cfg.ReportPath)
	}
	return nil
}

// openTargets opens the three target stores, or in-memory stand-ins for a
// dry run. The returned cleanup closes whatever was opened.
func openTargets(ctx context.Context, cfg *config.Config, dryRun bool) (store.Accounts, store.Billing, store.Partners, func(), error) {
	if dryRun {
		return memory.New(), memory.New(), memory.New(), func() {}, nil
	}

	accounts, err := sqlstore.Open(ctx, sqlstore.RoleAccounts, cfg.AccountsDSN)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("accounts store: %w", err)
	}
	billing, err := sqlstore.Open(ctx, sqlstore.RoleBilling, cfg.BillingDSN)
	if err != nil {
		accounts.Close()
		return nil, nil, nil, nil, fmt.Errorf("billing store: %w", err)
	}
	partners, err := sqlstore.Open(ctx, sqlstore.RolePartners, cfg.PartnersDSN)
	if err != nil {
		accounts.Close()
		billing.Close()
		return nil, nil, nil, nil, fmt.Errorf("partners store: %w", err)
	}
	cleanup := func() {
		partners.Close()
		billing.Close()
		accounts.Close()
	}
	return accounts, billing, partners, cleanup, nil
}
