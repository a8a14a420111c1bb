package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-leads/internal/config"
	"github.com/xavierca1/ligue-leads/internal/infra/database"
	"github.com/xavierca1/ligue-leads/internal/infra/logger"
	"github.com/xavierca1/ligue-leads/internal/seed"
)

var (
	count      int
	keep       bool
	randSeed   uint64
	migrate    bool
	dbURL      string
	driverName string
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the leads table with random leads",
	Long: `Clears the leads table and inserts random leads with names, emails,
statuses and sale amounts drawn from fixed lists. Commission is computed
with the same rules the API applies.

Examples:
  seed                      # replace all leads with 100 random ones
  seed --count 500 --keep   # append 500 leads
  seed --seed 42            # reproducible data set`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd.Context())
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().IntVarP(&count, "count", "n", 100, "Number of leads to insert")
	rootCmd.Flags().BoolVar(&keep, "keep", false, "Keep existing leads instead of clearing the table")
	rootCmd.Flags().Uint64Var(&randSeed, "seed", 0, "Random seed (0 uses the current time)")
	rootCmd.Flags().BoolVar(&migrate, "migrate", true, "Apply pending migrations first")
	rootCmd.Flags().StringVar(&dbURL, "db", "", "Database URL (defaults to DATABASE_URL)")
	rootCmd.Flags().StringVar(&driverName, "driver", "", "Database driver: pgx or postgres (defaults to DB_DRIVER)")
}

func runSeed(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if driverName != "" {
		cfg.DBDriver = driverName
	}
	cfg.Storage = config.StoragePostgres
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(cfg.Env)

	db, err := database.NewDBConnection(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if migrate {
		if err := database.RunMigrations(ctx, db); err != nil {
			return err
		}
	}

	if randSeed == 0 {
		randSeed = uint64(time.Now().UnixNano())
	}

	start := time.Now()
	leads, err := seed.Run(ctx, database.NewLeadRepository(db), seed.NewGenerator(randSeed), seed.Options{
		Count: count,
		Keep:  keep,
	})
	if err != nil {
		return err
	}

	log.Info("leads seeded",
		slog.Int("count", len(leads)),
		slog.Bool("kept_existing", keep),
		slog.Uint64("seed", randSeed),
		slog.Duration("took", time.Since(start)),
	)
	return nil
}
