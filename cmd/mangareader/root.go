package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kerbaras/mangareader/pkg/app"
	"github.com/kerbaras/mangareader/pkg/config"
	"github.com/kerbaras/mangareader/pkg/logging"
	"github.com/kerbaras/mangareader/pkg/services"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mangareader",
	Short: "Browse and read a manga catalog from the terminal",
	Long:  "Search, filter and page through a manga catalog, read chapters and export them as EPUB",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The TUI owns the terminal, so logs go to the log file.
		env, err := setup(true)
		if err != nil {
			return err
		}
		defer env.Close()

		return app.NewApp(env.controller, env.log).Run(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mangareader.yaml)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(genresCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(mirrorCmd)
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type environment struct {
	cfg        *config.Config
	log        *zap.Logger
	controller *services.Controller
}

// setup loads the configuration and builds the logger and the controller.
func setup(logToFile bool) (*environment, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log, logToFile)
	if err != nil {
		return nil, err
	}

	controller, err := services.NewController(cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	return &environment{cfg: cfg, log: log, controller: controller}, nil
}

func (e *environment) Close() {
	if err := e.controller.Close(); err != nil {
		e.log.Warn("close controller", zap.Error(err))
	}
	_ = e.log.Sync()
}
