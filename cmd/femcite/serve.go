// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/femcite/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the femcite HTTP API",
	Long: `Serve exposes sessions over HTTP. Each session keeps its own memory and
artifacts, and concurrent questions to the same session are handled one at a
time.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		logger, err := newLogger(cmd, zap.InfoLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		a, err := newApp(cfg, logger)
		if err != nil {
			return err
		}
		mgr, closeStore, err := openManager(cmd, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(mgr, a.orchestrator, a.writer, logger.Named("server"))
		return srv.ListenAndServe(ctx, cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr, :8080)")
	serveCmd.Flags().String("db", "", "SQLite file for session storage (default from server.db_path)")

	rootCmd.AddCommand(serveCmd)
}

