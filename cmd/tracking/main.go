package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"dropship-tracking/internal/config"
)

var (
	envFile string
	dryRun  bool
	workers int
	catalog string
)

var rootCmd = &cobra.Command{
	Use:   "tracking",
	Short: "Reconcile dropship tracking numbers and deliver partner manifests",
	Long: `tracking reads purchase orders that still lack a tracking number, looks
them up in SellerCloud, uploads one tracking manifest per dropship partner
and writes the tracking back to the order database.

Available subcommands:
  run     - Execute a single reconciliation pass
  serve   - Run on a schedule and expose the ops API
  token   - Mint an operator token for the ops API
  migrate - Create the database schema`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a dotenv file")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Write manifests to TRANSFER_DIR and skip every database write")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Concurrent SellerCloud lookups (overrides FETCH_WORKERS)")
	rootCmd.PersistentFlags().StringVar(&catalog, "catalog", "", "Ship method catalog (overrides CATALOG_PATH)")

	rootCmd.AddCommand(runCmd, serveCmd, tokenCmd, migrateCmd)
}

// loadConfig reads the environment and applies the flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dry-run") {
		cfg.DryRun = dryRun
	}
	if flags.Changed("workers") {
		cfg.FetchWorkers = workers
	}
	if flags.Changed("catalog") {
		cfg.CatalogPath = catalog
	}

	slog.SetDefault(cfg.NewLogger())
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
