package clicmd

import (
	"fmt"

	"github.com/hivemindlabs/hivemindd/internal/bus"
	"github.com/hivemindlabs/hivemindd/internal/engine"
	"github.com/hivemindlabs/hivemindd/internal/snapshot"
	"github.com/spf13/cobra"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect or migrate hivemindd snapshots",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Write a copy of the current data directory's snapshot to <dir>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		destDir := args[0]

		eng := engine.New(engine.Options{Bus: bus.New(1, nil)})
		source, err := snapshot.New(cfg.DataDir, eng, nil)
		if err != nil {
			return fmt.Errorf("open source snapshot manager: %w", err)
		}
		if err := source.Load(); err != nil {
			return fmt.Errorf("load snapshot from %s: %w", cfg.DataDir, err)
		}

		dest, err := snapshot.New(destDir, eng, nil)
		if err != nil {
			return fmt.Errorf("open destination snapshot manager: %w", err)
		}
		if err := dest.Save(); err != nil {
			return fmt.Errorf("write snapshot to %s: %w", destDir, err)
		}

		stats := eng.Stats()
		fmt.Printf("exported %d memories, %d entities, %d channels to %s\n",
			stats.MemoryCount, stats.EntityCount, stats.ChannelCount, destDir)
		return nil
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Restore the data directory's snapshot from <dir>",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		srcDir := args[0]

		eng := engine.New(engine.Options{Bus: bus.New(1, nil)})
		source, err := snapshot.New(srcDir, eng, nil)
		if err != nil {
			return fmt.Errorf("open source snapshot manager: %w", err)
		}
		if err := source.Load(); err != nil {
			return fmt.Errorf("load snapshot from %s: %w", srcDir, err)
		}

		dest, err := snapshot.New(cfg.DataDir, eng, nil)
		if err != nil {
			return fmt.Errorf("open destination snapshot manager: %w", err)
		}
		if err := dest.Save(); err != nil {
			return fmt.Errorf("write snapshot to %s: %w", cfg.DataDir, err)
		}

		stats := eng.Stats()
		fmt.Printf("imported %d memories, %d entities, %d channels into %s\n",
			stats.MemoryCount, stats.EntityCount, stats.ChannelCount, cfg.DataDir)
		return nil
	},
}

func init() {
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
}
