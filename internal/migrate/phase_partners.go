package migrate

import (
	"context"
	"fmt"
	"sort"

	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/report"
	"github.com/kwatalab/bsm/internal/transform"
	"github.com/kwatalab/bsm/internal/types"
)

// runPartners migrates partners and their commission ledgers in two
// dependent sub-phases. Ledger entries are collected first and their
// amounts recomputed from the pack-tier percentage table; a partner's
// starting balance is the sum of its recomputed entries, so the stored
// legacy balance is never read. Ledger entries are then inserted against
// the new partner id, each mirrored by a general-ledger transaction of the
// partner-earnings type in the billing store.
func runPartners(ctx context.Context, src legacy.Source, rc *RunContext) error {
	stats := report.PhaseStats{Name: "partners"}

	// Collect the partner ledger, grouped by owning partner.
	entriesByPartner := make(map[string][]*legacy.PartnerTransaction)
	ptStream, err := src.PartnerTransactions(ctx)
	if err != nil {
		return err
	}
	for ptStream.Next(ctx) {
		rec := ptStream.Record()
		key := rec.PartnerID.Hex()
		entriesByPartner[key] = append(entriesByPartner[key], rec)
	}
	if err := ptStream.Err(); err != nil {
		_ = ptStream.Close(ctx)
		return fmt.Errorf("partner transactions cursor: %w", err)
	}
	_ = ptStream.Close(ctx)

	// Sub-phase one: partners, balance recomputed.
	pStream, err := src.Partners(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = pStream.Close(ctx) }()

	var buf []types.Record
	recomputed := make(map[string][]*types.PartnerTransaction)
	userByPartner := make(map[string]string)

	flushPartners := func() error {
		fs, err := rc.flush(ctx, rc.Partners, "partners", buf, nil)
		if err != nil {
			return err
		}
		stats.Migrated += fs.migrated
		stats.Adopted += fs.adopted
		stats.Skipped += fs.skipped
		buf = buf[:0]
		return nil
	}

	for pStream.Next(ctx) {
		rec := pStream.Record()
		stats.Processed = pStream.Count()
		legacyID := rec.ID.Hex()

		pack, packOK := transform.ParsePack(rec.Pack)
		var entries []*types.PartnerTransaction
		total := 0.0
		if packOK {
			for _, e := range entriesByPartner[legacyID] {
				entry, skip := transform.PartnerEntry(e, pack)
				if skip != nil {
					rc.Reporter.Skip("partners", skip.Kind, skip.LegacyID, skip.Reason)
					continue
				}
				entries = append(entries, entry)
				total += entry.Amount
			}
		}

		partner, skip := transform.Partner(rec, rc.Registry, total)
		if skip != nil {
			stats.Skipped++
			rc.Reporter.Skip("partners", skip.Kind, skip.LegacyID, skip.Reason)
			continue
		}
		recomputed[legacyID] = entries
		userByPartner[legacyID] = partner.UserID
		buf = append(buf, partner)

		if len(buf) >= rc.Opts.BatchSize {
			if err := flushPartners(); err != nil {
				return err
			}
		}
		rc.Reporter.Progress("partners", stats.Processed, stats.Migrated, stats.Skipped)
	}
	if err := pStream.Err(); err != nil {
		return fmt.Errorf("partners cursor: %w", err)
	}
	if err := flushPartners(); err != nil {
		return err
	}
	rc.Reporter.PhaseDone(stats)

	// Sub-phase two: ledger entries against the new partner ids, each
	// mirrored into the billing general ledger.
	ledgerStats := report.PhaseStats{Name: "partner ledger"}
	var ledgerBuf []types.Record
	var mirrorBuf []types.Record

	flushLedger := func() error {
		fs, err := rc.flush(ctx, rc.Partners, "partner ledger", ledgerBuf, nil)
		if err != nil {
			return err
		}
		ledgerStats.Migrated += fs.migrated
		ledgerStats.Skipped += fs.skipped
		ms, err := rc.flush(ctx, rc.Billing, "partner ledger", mirrorBuf, nil)
		if err != nil {
			return err
		}
		ledgerStats.Skipped += ms.skipped
		ledgerBuf = ledgerBuf[:0]
		mirrorBuf = mirrorBuf[:0]
		return nil
	}

	partnerIDs := make([]string, 0, len(recomputed))
	for legacyID := range recomputed {
		partnerIDs = append(partnerIDs, legacyID)
	}
	sort.Strings(partnerIDs)

	for _, legacyID := range partnerIDs {
		entries := recomputed[legacyID]
		partnerID, ok := rc.Registry.Resolve(types.KindPartner, legacyID)
		if !ok {
			for _, entry := range entries {
				ledgerStats.Processed++
				ledgerStats.Skipped++
				rc.Reporter.Skip("partner ledger", types.KindPartnerTransaction, entry.LegacyID,
					fmt.Sprintf("partner %s not migrated", legacyID))
			}
			continue
		}
		userID := userByPartner[legacyID]
		for _, entry := range entries {
			ledgerStats.Processed++
			entry.PartnerID = partnerID
			ledgerBuf = append(ledgerBuf, entry)
			if userID != "" {
				mirrorBuf = append(mirrorBuf, &types.Transaction{
					LegacyID:  entry.LegacyID,
					UserID:    userID,
					Type:      types.TxPartnerEarnings,
					Amount:    entry.Amount,
					Status:    "completed",
					Reference: entry.LegacyID,
					CreatedAt: entry.CreatedAt,
				})
			}
			if len(ledgerBuf) >= rc.Opts.BatchSize {
				if err := flushLedger(); err != nil {
					return err
				}
			}
		}
	}
	if err := flushLedger(); err != nil {
		return err
	}

	rc.Reporter.PhaseDone(ledgerStats)
	return nil
}
