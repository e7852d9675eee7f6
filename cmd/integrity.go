package cmd

import (
	"bansync/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd runs the integrity checks from the command line.
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the database schema and bucket layout",
	Long:  `Checks that every table matches the models, that export list folders exist and that bucket dumps are present.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		svc := integrity.NewService(a.client, a.cfg.Storage.Bucket, a.cfg.Export.Prefix, a.store, a.store.DB(), a.logger)

		a.logger.Info("Checking schema...")
		schema, err := svc.CheckSchema()
		if err != nil {
			return err
		}
		if schema.Matched {
			a.logger.Info("Schema matches models.")
		} else {
			for table, report := range schema.Tables {
				if report.Status != "ok" {
					a.logger.Warn("Table is missing columns", zap.String("table", table), zap.Strings("missing", report.MissingColumns))
				}
			}
			for _, msg := range schema.Errors {
				a.logger.Warn("Schema check error", zap.String("error", msg))
			}
		}

		a.logger.Info("Checking export folders...")
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			return err
		}
		if len(missing) == 0 {
			a.logger.Info("Structure is intact.")
		} else {
			a.logger.Warn("Missing folders detected", zap.Strings("missing", missing))
			if fixFlag {
				if err := svc.FixStructure(ctx, missing); err != nil {
					return err
				}
				a.logger.Info("Structure fixed successfully.")
			} else {
				a.logger.Info("Run with --fix to create missing folders.")
			}
		}

		a.logger.Info("Checking bucket dumps...")
		dumps, err := svc.CheckDumps(ctx)
		if err != nil {
			return err
		}
		if len(dumps) == 0 {
			a.logger.Info("All dumps present.")
		} else {
			a.logger.Warn("Missing dump objects", zap.Strings("missing", dumps))
		}
		return nil
	},
}

func init() {
	integrityCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing export folders")
	RootCmd.AddCommand(integrityCmd)
}
