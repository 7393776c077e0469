package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/piwi3910/marcenapp/internal/cache"
	"github.com/piwi3910/marcenapp/internal/server"
)

var (
	servePort     int
	serveCacheTTL time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves nesting, comparison, estimates, exports and editing sessions
over HTTP until interrupted. Nesting results are cached in cache_dir, or in
memory when no directory is configured.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config)")
	serveCmd.Flags().DurationVar(&serveCacheTTL, "cache-ttl", 24*time.Hour, "How long cached results are kept (0 keeps them forever)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port := cfg.ServerPort
	if servePort > 0 {
		port = servePort
	}
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	c, err := cache.Open(cfg.CacheDir, serveCacheTTL)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			logger.Warn("closing cache", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.Int("port", port),
		zap.String("cache_dir", cfg.CacheDir),
		zap.Duration("cache_ttl", serveCacheTTL),
	)
	return server.New(cfg, logger, c).Run(cmd.Context(), fmt.Sprintf(":%d", port))
}
