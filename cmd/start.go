package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"bansync/core/loader"
	"bansync/core/logger"
	"bansync/core/middleware/auth"
	"bansync/core/middleware/rayid"
	"bansync/feature/integrity"
	"bansync/feature/jobs"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler and admin server",
	Long:  `Runs every job on its configured interval and serves the admin API until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.logger.Sync()
		zap.ReplaceGlobals(a.logger)

		if err := a.wireJobs(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		scheduler := jobs.NewScheduler(a.runner, a.cfg.Schedule, a.logger)
		scheduler.Start(ctx)

		var server *fiber.App
		if a.cfg.Server.Enabled {
			server, err = a.newServer(ctx)
			if err != nil {
				return err
			}
			go func() {
				a.logger.Info("Starting server", zap.String("address", a.cfg.Server.Address()))
				if err := server.Listen(a.cfg.Server.Address()); err != nil {
					a.logger.Error("Server stopped", zap.Error(err))
					stop()
				}
			}()
		}

		<-ctx.Done()
		a.logger.Info("Shutting down...")
		if server != nil {
			_ = server.Shutdown()
		}
		scheduler.Stop()
		return nil
	},
}

func (a *app) newServer(ctx context.Context) (*fiber.App, error) {
	server := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// RayID first so every later log line carries it.
	server.Use(rayid.New())
	server.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(a.logger, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})
	server.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey}))

	mgr := loader.NewManager()
	mgr.Register(jobs.NewFeature(ctx, a.runner, a.logger))
	mgr.Register(integrity.NewFeature(integrity.NewService(
		a.client, a.cfg.Storage.Bucket, a.cfg.Export.Prefix, a.store, a.store.DB(), a.logger)))

	if err := mgr.LoadAll(server); err != nil {
		return nil, fmt.Errorf("failed to load features: %w", err)
	}
	return server, nil
}

func init() {
	RootCmd.AddCommand(startCmd)
}
