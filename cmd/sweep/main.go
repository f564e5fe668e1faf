// Command sweep runs the expiry sweeps once, for schedulers that prefer a
// process over an HTTP call.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/SOMALeoAfrica/Webhook-Server/internal/app"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/config"
	"github.com/SOMALeoAfrica/Webhook-Server/internal/usecase"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "sweep",
		Short:         "Expire subscriptions past their expiry date",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(ledgerCmd())
	rootCmd.AddCommand(claimsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func ledgerCmd() *cobra.Command {
	var collection string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Expire active ledger entries past expiry in one collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(ctx context.Context, a *app.App) (usecase.SweepResult, error) {
				if collection == "" {
					collection = a.Config.Mongo.Collections.StudentSubscriptions
				}
				return a.Sweeper.SweepLedger(ctx, collection)
			})
		},
	}
	cmd.Flags().StringVarP(&collection, "collection", "c", "", "ledger collection (default: student subscriptions)")
	return cmd
}

func claimsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claims",
		Short: "Clear claims and expire profiles whose subscription has lapsed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), func(ctx context.Context, a *app.App) (usecase.SweepResult, error) {
				return a.Sweeper.RevokeExpiredClaims(ctx)
			})
		},
	}
}

func run(parent context.Context, sweep func(context.Context, *app.App) (usecase.SweepResult, error)) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(context.Background()); err != nil {
			logger.Warn("Failed to close backends", zap.Error(err))
		}
	}()

	result, err := sweep(ctx, a)
	if err != nil {
		return err
	}

	fmt.Println(result.String())
	if result.Failed > 0 {
		return fmt.Errorf("%d users could not be revoked", result.Failed)
	}
	return nil
}
