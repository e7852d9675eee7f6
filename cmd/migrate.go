package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"bansync/feature/sources"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd prepares the database and bucket.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables, load the source catalogue and create the bucket",
	Long: `Migrates every table, upserts the lists defined in the source catalogue
and creates the storage bucket when it does not exist yet.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		if err := a.store.Migrate(ctx); err != nil {
			return err
		}
		a.logger.Info("Schema migrated")

		lists, err := sources.LoadCatalogue(a.cfg.Sources.File)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			a.logger.Warn("Source catalogue not found, lists unchanged", zap.String("file", a.cfg.Sources.File))
		case err != nil:
			return err
		default:
			if err := a.store.UpsertLists(ctx, lists); err != nil {
				return err
			}
			a.logger.Info("Source catalogue loaded", zap.Int("lists", len(lists)))
		}

		bucket := a.cfg.Storage.Bucket
		exists, err := a.client.BucketExists(ctx, bucket)
		if err != nil {
			return fmt.Errorf("failed to check bucket existence: %w", err)
		}
		if !exists {
			if err := a.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: a.cfg.Storage.Region}); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
			a.logger.Info("Created bucket", zap.String("bucket", bucket))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
