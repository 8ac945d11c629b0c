package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kerbaras/mangareader/pkg/config"
	"github.com/kerbaras/mangareader/pkg/data"
	"github.com/kerbaras/mangareader/pkg/logging"
	"github.com/kerbaras/mangareader/pkg/services"
	"github.com/kerbaras/mangareader/pkg/sources"
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Copy the remote catalog into a local DuckDB file",
	Long: `Copy every title, chapter and page image row from the remote table service
into a DuckDB file. Point source.backend at "duckdb" afterwards to browse the
copy offline.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if db, _ := cmd.Flags().GetString("db"); db != "" {
			cfg.DuckDB.Path = db
		}
		if cfg.Source.URL == "" {
			return fmt.Errorf("%w: source.url is required to mirror", config.ErrInvalid)
		}

		log, err := logging.New(cfg.Log, false)
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := data.InitDuckDB(cfg.DuckDB.Path)
		if err != nil {
			return fmt.Errorf("open mirror %s: %w", cfg.DuckDB.Path, err)
		}
		repo := data.NewDuckDBRepository(db)
		defer repo.Close()

		source := sources.NewSupabase(cfg.Source.URL, cfg.Source.Key, cfg.Source.Timeout)

		fmt.Fprintf(cmd.OutOrStdout(), "🔄 Mirroring %s into %s\n", cfg.Source.URL, cfg.DuckDB.Path)
		stats, err := services.Mirror(cmd.Context(), source, repo, log)
		if err != nil {
			log.Error("mirror failed", zap.Error(err))
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✅ %d titles, %d chapters, %d page images\n", stats.Manga, stats.Chapters, stats.Images)
		return nil
	},
}

func init() {
	mirrorCmd.Flags().String("db", "", "DuckDB file (overrides duckdb.path)")
}
