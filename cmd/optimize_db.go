package cmd

import (
	"fmt"

	"github.com/frahmantamala/practice-management/internal/maintenance"
	"github.com/spf13/cobra"
)

var optimizeOpts maintenance.Options

var optimizeDBCmd = &cobra.Command{
	Use:          "optimize-db",
	Short:        "Run database maintenance",
	Long:         `Vacuum, refresh planner statistics, tune the SQLite cache and check integrity. Without flags only statistics are refreshed.`,
	SilenceUsage: true,
	RunE:         runOptimizeDB,
}

func init() {
	optimizeDBCmd.Flags().BoolVar(&optimizeOpts.Full, "full", false, "reclaim space (VACUUM)")
	optimizeDBCmd.Flags().BoolVar(&optimizeOpts.Analyze, "analyze", false, "refresh query planner statistics")
	optimizeDBCmd.Flags().BoolVar(&optimizeOpts.Cache, "cache", false, "apply SQLite cache and journal settings")
	optimizeDBCmd.Flags().BoolVar(&optimizeOpts.All, "all", false, "run every step followed by an integrity check")
}

func runOptimizeDB(cmd *cobra.Command, _ []string) error {
	cfg, lg, err := bootstrap()
	if err != nil {
		return err
	}

	engine, err := maintenance.ResolveEngine(cfg.Database.Driver)
	if err != nil {
		return err
	}

	db, err := initDB(cfg.Database, false)
	if err != nil {
		return err
	}
	raw, err := rawDB(db, cfg.Database.Driver)
	if err != nil {
		return err
	}
	defer raw.Close()

	report, err := maintenance.NewOptimizer(raw, engine, lg).Run(cmd.Context(), optimizeOpts)
	if report != nil {
		fmt.Fprint(cmd.OutOrStdout(), report.String())
	}
	return err
}
