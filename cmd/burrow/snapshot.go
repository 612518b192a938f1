package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/cuemby/burrow/pkg/cache"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/storage"
	"github.com/cuemby/burrow/pkg/wire"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage warm-start cache snapshots",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save FILE...",
	Short: "Fold responses into the latest snapshot and save a new one",
	Long: `Save restores the latest snapshot into an empty cache, commits each
response file as the answer to --name and --type, and saves the result as
a new snapshot. Entries that expired since the last save are dropped.`,
	Example: `  burrow snapshot save --name example.com --type A a.bin aaaa.bin`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runSnapshotSave,
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show [ID]",
	Short: "Show a snapshot (default: the latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSnapshotShow,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.NewBoltStore(cfg.DataDir)
		if err != nil {
			return err
		}
		defer store.Close()

		snapshots, err := store.ListSnapshots()
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %v", err)
		}
		if len(snapshots) == 0 {
			fmt.Println("No snapshots found")
			return nil
		}
		fmt.Printf("%-36s %-25s %s\n", "ID", "CREATED", "ENTRIES")
		for _, s := range snapshots {
			fmt.Printf("%-36s %-25s %d\n", s.ID, s.CreatedAt.Format(time.RFC3339), s.Entries.Len())
		}
		return nil
	},
}

func init() {
	snapshotCmd.PersistentFlags().String("data-dir", "./burrow-data", "Directory holding the snapshot database")

	snapshotSaveCmd.Flags().String("name", "", "Queried name (required)")
	snapshotSaveCmd.Flags().String("type", "A", "Queried type")
	snapshotSaveCmd.Flags().Bool("hex", false, "Files are hex encoded")
	snapshotSaveCmd.Flags().String("transport", "udp", "Transport the responses arrived on (udp, tcp)")
	snapshotSaveCmd.Flags().Uint16("id", 0, "Query ID (default: each response's)")
	snapshotSaveCmd.Flags().Bool("rd", true, "Query had RD set (default: each response's)")
	snapshotSaveCmd.Flags().Bool("do", false, "Query had the EDNS DO bit set")
	snapshotSaveCmd.Flags().Int("keep", 5, "Snapshots to keep after saving")
	_ = snapshotSaveCmd.MarkFlagRequired("name")

	snapshotCmd.AddCommand(snapshotSaveCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
}

func runSnapshotSave(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	owner, _ := flags.GetString("name")
	typeName, _ := flags.GetString("type")
	isHex, _ := flags.GetBool("hex")
	keep, _ := flags.GetInt("keep")
	logger := log.WithComponent("snapshot")

	handler, err := handlerFor(typeName)
	if err != nil {
		return err
	}

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	now := wire.Now()
	c := cache.New()
	latest, err := store.LatestSnapshot()
	switch {
	case err == nil:
		restored := c.Restore(latest.Entries, now)
		logger.Info().Str("snapshot_id", latest.ID).Int("restored", restored).Msg("restored latest snapshot")
	case errors.Is(err, storage.ErrNotFound):
		log.Debug(fmt.Sprintf("No snapshot in %s to restore", cfg.DataDir))
	default:
		return fmt.Errorf("failed to load latest snapshot: %v", err)
	}

	for _, path := range args {
		msg, err := readResponse(path, isHex)
		if err != nil {
			return err
		}
		q, err := buildQuery(cmd, owner, handler.DataType(), msg)
		if err != nil {
			return err
		}
		summary, err := handler.Handle(c, q, msg, now)
		if err != nil {
			return fmt.Errorf("%s: response rejected: %w", path, err)
		}
		fmt.Printf("%s: %s\n", path, summary.Outcome)
	}

	snapshot := storage.NewSnapshot(c.Export(now), now.Time())
	if err := store.SaveSnapshot(snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %v", err)
	}
	pruned, err := store.Prune(keep)
	if err != nil {
		log.Errorf("Failed to prune snapshots", err)
	}
	logger.Info().Str("snapshot_id", snapshot.ID).Int("entries", snapshot.Entries.Len()).Int("pruned", pruned).Msg("snapshot saved")

	fmt.Printf("✓ Snapshot saved: %s (%d entries)\n", snapshot.ID, snapshot.Entries.Len())
	return nil
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	var snapshot *storage.Snapshot
	if len(args) == 1 {
		snapshot, err = store.GetSnapshot(args[0])
	} else {
		snapshot, err = store.LatestSnapshot()
	}
	if err != nil {
		return err
	}

	now := wire.Now()
	fmt.Printf("Snapshot: %s\n", snapshot.ID)
	fmt.Printf("Created:  %s\n", snapshot.CreatedAt.Format(time.RFC3339))
	fmt.Println()
	for _, a := range snapshot.Entries.Addresses {
		for _, addr := range a.Addresses {
			fmt.Printf("  %s %s %s %s\n", a.Name, a.Type, addr, remaining(a.Expires, now))
		}
	}
	for _, a := range snapshot.Entries.Aliases {
		fmt.Printf("  %s CNAME %s %s\n", a.Name, a.Target, remaining(a.Expires, now))
	}
	for _, n := range snapshot.Entries.NoDomains {
		fmt.Printf("  %s NXDOMAIN zone %s %s\n", n.Name, n.Zone, remaining(n.Expires, now))
	}
	return nil
}

func remaining(expires, now wire.NanosecondsSinceUnixEpoch) string {
	if !now.Before(expires) {
		return "(expired)"
	}
	return fmt.Sprintf("(%ds)", cache.Cached(expires).TimeToLive(now))
}
