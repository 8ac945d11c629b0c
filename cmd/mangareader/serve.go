package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kerbaras/mangareader/pkg/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog over a JSON HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(false)
		if err != nil {
			return err
		}
		defer env.Close()

		addr := env.cfg.Server.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}
		if !env.cfg.Log.Development {
			gin.SetMode(gin.ReleaseMode)
		}

		// Serve even when the first load fails; POST /refresh retries it.
		if err := env.controller.Store.Refresh(cmd.Context()); err != nil {
			env.log.Warn("initial catalog load failed", zap.Error(err))
		}

		h := server.NewHandler(env.controller.Store, env.controller.Reader, env.log)
		return server.Run(cmd.Context(), addr, server.NewRouter(h), env.log)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
}
