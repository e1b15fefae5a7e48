// Package cli wires configuration, the artworks client and the table
// controller into cobra commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/artic-table/internal/config"
	"github.com/Sternrassler/artic-table/pkg/client"
	"github.com/Sternrassler/artic-table/pkg/logging"
	"github.com/Sternrassler/artic-table/pkg/metrics"
	"github.com/Sternrassler/artic-table/pkg/pagination"
	"github.com/Sternrassler/artic-table/pkg/table"
)

// flags holds the persistent flag values. Only flags the user set
// override the environment.
type flags struct {
	baseURL     string
	redisURL    string
	logLevel    string
	logPretty   bool
	logFile     string
	metricsAddr string
}

// app is the per-invocation runtime shared by every command.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	client  *client.Client
	redis   *redis.Client
	metrics *metrics.Server
	closers []io.Closer
}

// NewRootCmd builds the artic-table command tree.
func NewRootCmd() *cobra.Command {
	var f flags
	a := &app{}

	cmd := &cobra.Command{
		Use:   "artic-table",
		Short: "Browse the Art Institute of Chicago collection and select rows across pages",
		Long: `artic-table pages through the Art Institute of Chicago artworks API in a
terminal table with a checkbox column. "Select N" grows the selection to N
rows by fetching the following pages concurrently.

Configuration is read from the environment (and a .env file if present):
  ARTIC_BASE_URL, ARTIC_USER_AGENT, ARTIC_PAGE_SIZE, ARTIC_CONCURRENCY,
  ARTIC_FETCH_TIMEOUT, REDIS_URL, ARTIC_CACHE_TTL, LOG_LEVEL, LOG_PRETTY,
  LOG_FILE, METRICS_ADDR
Flags override the environment.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, f)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.baseURL, "base-url", "", "artworks API base URL (default "+config.DefaultBaseURL+")")
	pf.StringVar(&f.redisURL, "redis", "", "Redis address or URL for the response cache (empty disables it)")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error, disabled")
	pf.BoolVar(&f.logPretty, "log-pretty", false, "human-readable console logs")
	pf.StringVar(&f.logFile, "log-file", "", "write logs to this file")
	pf.StringVar(&f.metricsAddr, "metrics-addr", "", "serve /metrics, /health and /ready on this address")

	browse := newBrowseCmd(a)
	cmd.RunE = browse.RunE
	cmd.Flags().AddFlagSet(browse.Flags())

	cmd.AddCommand(browse, newPageCmd(a), newSelectCmd(a))
	return cmd
}

// setup loads configuration and builds the client. The TUI owns the
// terminal, so browse without a log file logs nothing.
func (a *app) setup(cmd *cobra.Command, f flags) error {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pf := cmd.Flags()
	if pf.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if pf.Changed("redis") {
		cfg.RedisURL = f.redisURL
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if pf.Changed("log-pretty") {
		cfg.LogPretty = f.logPretty
	}
	if pf.Changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if pf.Changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	lc := cfg.Logging()
	if isBrowse(cmd) && lc.File == "" {
		lc.Level = logging.LevelDisabled
	}
	lc.Output = cmd.ErrOrStderr()
	_, logCloser, err := logging.Setup(lc)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, logCloser)
	a.logger = logging.NewLogger("cli")

	clientCfg := client.DefaultConfig(cfg.UserAgent)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.Timeout = cfg.FetchTimeout
	clientCfg.CacheTTL = cfg.CacheTTL

	if cfg.RedisURL != "" {
		rdb, err := connectRedis(cmd.Context(), cfg.RedisURL)
		if err != nil {
			a.logger.Warn().Err(err).Str("redis", cfg.RedisURL).Msg("Redis unavailable; continuing without response cache")
		} else {
			a.redis = rdb
			clientCfg.Redis = rdb
			a.closers = append(a.closers, rdb)
		}
	}

	a.client, err = client.New(clientCfg)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	a.closers = append(a.closers, a.client)

	if cfg.MetricsAddr != "" {
		var ready metrics.Pinger
		if a.redis != nil {
			rdb := a.redis
			ready = metrics.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		}
		a.metrics, err = metrics.Start(cfg.MetricsAddr, ready)
		if err != nil {
			return err
		}
	}

	return nil
}

func (a *app) teardown() error {
	var errs []error

	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, a.metrics.Shutdown(ctx))
		cancel()
	}
	// Reverse order: client, then Redis, then the log file.
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	a.closers = nil

	return errors.Join(errs...)
}

// controller builds a table controller over the client.
func (a *app) controller(pageSize int) *table.Controller {
	return table.New(a.client, table.Options{
		PageSize: pageSize,
		Batch: pagination.Config{
			MaxConcurrency: a.cfg.Concurrency,
			Timeout:        a.cfg.FetchTimeout,
		},
	})
}

// pageSize returns the flag value when set, the configured size otherwise.
func (a *app) pageSize(cmd *cobra.Command, flagValue int) int {
	if cmd.Flags().Changed("size") {
		return flagValue
	}
	return a.cfg.PageSize
}

// connectRedis accepts host:port or a redis:// URL and pings the server.
func connectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

func isBrowse(cmd *cobra.Command) bool {
	return cmd.Name() == "browse" || !cmd.HasParent()
}
