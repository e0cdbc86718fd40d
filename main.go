// Package main provides the command line entry point of the lead tracker
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	businessflow "github.com/amirphl/lead-connect/business_flow"
	"github.com/amirphl/lead-connect/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lead-connect",
		Short:         "Lead assignment tracker for investment campaigns",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newSeedCmd(), newMigrateCmd(), newNextCampaignIDCmd())
	return root
}

// withApplication loads configuration, wires the application and runs fn with it
func withApplication(cmd *cobra.Command, fn func(ctx context.Context, app *Application) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd, func(ctx context.Context, app *Application) error {
				if err := app.startShardWatcher(ctx); err != nil {
					return err
				}
				r, err := app.newRouter()
				if err != nil {
					return err
				}

				errCh := make(chan error, 1)
				go func() {
					address := app.config.Server.Address()
					app.logger.Info("Server starting", zap.String("address", address))
					errCh <- r.Start(address)
				}()

				select {
				case err := <-errCh:
					return fmt.Errorf("server stopped: %w", err)
				case <-ctx.Done():
				}

				app.logger.Info("Shutting down gracefully")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
				defer cancel()
				if err := r.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
					app.logger.Error("Error during shutdown", zap.Error(err))
				}
				app.logger.Info("Server stopped")
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the demo accounts when no user exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd, func(ctx context.Context, app *Application) error {
				added, err := businessflow.NewMaintenanceFlow(app.store, app.coordinator, app.logger).Seed(ctx)
				if err != nil {
					return err
				}
				if added == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "users already exist, nothing seeded")
					return nil
				}
				for _, acc := range businessflow.DemoAccounts {
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-10s %s\n", acc.Role, acc.Username, acc.Password)
				}
				return nil
			})
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite every table once, splitting a legacy leads file into per-campaign shards",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd, func(ctx context.Context, app *Application) error {
				return businessflow.NewMaintenanceFlow(app.store, app.coordinator, app.logger).MigrateStorage(ctx)
			})
		},
	}
}

func newNextCampaignIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-campaign-id",
		Short: "Print the id the next campaign will receive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApplication(cmd, func(ctx context.Context, app *Application) error {
				flow := businessflow.NewAdminCampaignFlow(app.store, app.coordinator, app.actionLog, app.logger)
				resp, err := flow.NextCampaignID(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), resp.CampaignID)
				return nil
			})
		},
	}
}
