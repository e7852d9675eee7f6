package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"bansync/feature/jobs"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dryRunImport bool

// runCmd runs one job to completion and prints its report.
var runCmd = &cobra.Command{
	Use:       "run [import|profiles|reputation|export|all]",
	Short:     "Run a single job once",
	Long:      `Runs one job in the foreground and prints its report as JSON. "all" runs every job in pipeline order.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{jobs.NameImport, jobs.NameProfiles, jobs.NameReputation, jobs.NameExport, jobs.NameAll},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		if dryRunImport {
			a.cfg.Import.DryRun = true
		}
		if err := a.wireJobs(); err != nil {
			return err
		}

		name := args[0]
		start := time.Now()
		report, runErr := a.runner.Run(cmd.Context(), name)
		a.logger.Info("Job finished", zap.String("job", name), zap.Duration("duration", time.Since(start)))

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		return runErr
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRunImport, "dry-run", false, "Report orphaned bans without deleting them")
	RootCmd.AddCommand(runCmd)
}
