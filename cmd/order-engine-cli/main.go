// Package main provides the order engine CLI entrypoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/despensa-ai/order-engine/internal/cache"
	"github.com/despensa-ai/order-engine/internal/catalog"
	"github.com/despensa-ai/order-engine/internal/config"
	"github.com/despensa-ai/order-engine/internal/observability"
)

var (
	// Global flags
	cfgFile    string
	outputJSON bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "order-engine",
	Short: "Order engine CLI for processing shopping requests against the catalog",
	Long: `Order engine CLI turns free-text shopping requests into priced tickets.

Use this tool to:
- Process an utterance into a priced order ticket
- Crawl the remote catalog and inspect the product index
- Browse previously processed orders

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      logFormat,
			ServiceName: "order-engine-cli",
		})

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(newOrderCmd())
	rootCmd.AddCommand(newCrawlCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newCacheClient builds the cache backend the config asks for, falling back
// to memory when Redis is unreachable.
func newCacheClient() cache.Client {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err == nil {
			return client
		}
		logger.Warn().Err(err).Msg("Redis unavailable, falling back to in-memory cache")
	}
	return cache.NewMemoryClient()
}

// newProvider builds the catalog provider, optionally reporting crawl
// progress to the UI.
func newProvider(cacheClient cache.Client, progress func(completed, total int)) *catalog.Provider {
	client := catalog.NewClient(catalog.ClientConfig{
		BaseURL:      cfg.Catalog.BaseURL,
		RequestDelay: cfg.Catalog.RequestDelay,
		Timeout:      cfg.Catalog.Timeout,
		UserAgent:    cfg.Catalog.UserAgent,
	}, logger)
	builder := catalog.NewBuilder(client, logger, catalog.BuilderConfig{
		Workers:  cfg.Catalog.Workers,
		Progress: progress,
	})
	return catalog.NewProvider(builder, cacheClient, cfg.Catalog.IndexTTL, logger)
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("order-engine-cli 0.1.0")
		},
	}
}
