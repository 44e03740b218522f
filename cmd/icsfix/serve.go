package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/acme/autocert"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/icsfix/icsfix/internal/config"
	"github.com/icsfix/icsfix/internal/database"
	applog "github.com/icsfix/icsfix/internal/log"
	"github.com/icsfix/icsfix/internal/metrics"
	"github.com/icsfix/icsfix/internal/pipeline"
	"github.com/icsfix/icsfix/internal/relay"
	"github.com/icsfix/icsfix/internal/server"
	"github.com/icsfix/icsfix/internal/tzdata"
)

// shutdownTimeout bounds the drain of in-flight requests on SIGINT/SIGTERM.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ICS timezone fixer HTTP relay",
		Long: `Serve starts the HTTP relay.

The relay accepts GET requests with an ics_url query parameter,
fetches the referenced calendar over HTTPS, injects the missing
VTIMEZONE definitions, and returns the fixed document.

Examples:
  # Listen on the default loopback address
  icsfix serve

  # Listen on all interfaces with a custom timezone file
  icsfix serve --listen 0.0.0.0:8080 --timezone-file /etc/icsfix/missing_timezones.txt

  # Terminate TLS directly via Let's Encrypt
  icsfix serve --listen :443 --tls-domain fixer.example.com

Configuration file (.icsfix) example:
  listen: 127.0.0.1:8080
  timezone_file: /etc/icsfix/missing_timezones.txt
  max_document_size: 819200
  max_conns: 256`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "l", config.DefaultListen,
		"Listen address in host:port form")
	cmd.Flags().StringP("timezone-file", "z", "",
		"Path to the VTIMEZONE definitions file (default: search the usual locations)")
	cmd.Flags().Int64P("max-size", "s", config.DefaultMaxDocumentSize,
		"Maximum calendar document size in bytes")
	cmd.Flags().Duration("sniff-timeout", config.DefaultSniffTimeout,
		"Timeout for the leading content probe")
	cmd.Flags().Duration("fetch-timeout", config.DefaultFetchTimeout,
		"Timeout for the full calendar download")
	cmd.Flags().IntP("max-conns", "m", config.DefaultMaxConns,
		"Maximum concurrent client connections (0 disables the cap)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .icsfix in current or home directory)")
	cmd.Flags().String("db-dir", "",
		"Directory for the request audit store (default: XDG data directory)")
	cmd.Flags().Bool("no-audit", false,
		"Disable the request audit store entirely")
	cmd.Flags().Bool("json-log", false,
		"Emit logs as JSON instead of text")
	cmd.Flags().String("tls-domain", "",
		"Enable automatic TLS via Let's Encrypt for this domain")
	cmd.Flags().String("tls-cache-dir", "",
		"Certificate cache directory (default: XDG cache directory)")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServe(ctx, cfg, logger)
}

// buildServeConfig assembles the configuration from defaults, the
// optional YAML file, environment variables, and flags, in that order.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	explicitPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = explicitPath

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently skip when no file exists.
	configPath := config.FindConfigFile(explicitPath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		file.Apply(cfg)
	} else if explicitPath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", explicitPath)
	}

	config.ApplyEnv(cfg)

	// Flags beat the file and the environment, but only when actually set.
	if cmd.Flags().Changed("listen") {
		if cfg.Listen, err = cmd.Flags().GetString("listen"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timezone-file") {
		if cfg.TimezoneFile, err = cmd.Flags().GetString("timezone-file"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-size") {
		if cfg.MaxDocumentSize, err = cmd.Flags().GetInt64("max-size"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("sniff-timeout") {
		if cfg.SniffTimeout, err = cmd.Flags().GetDuration("sniff-timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("fetch-timeout") {
		if cfg.FetchTimeout, err = cmd.Flags().GetDuration("fetch-timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-conns") {
		if cfg.MaxConns, err = cmd.Flags().GetInt("max-conns"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("db-dir") {
		if cfg.DBDir, err = cmd.Flags().GetString("db-dir"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("json-log") {
		if cfg.JSONLog, err = cmd.Flags().GetBool("json-log"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("tls-domain") {
		if cfg.TLSDomain, err = cmd.Flags().GetString("tls-domain"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("tls-cache-dir") {
		if cfg.TLSCacheDir, err = cmd.Flags().GetString("tls-cache-dir"); err != nil {
			return nil, err
		}
	}

	// Audit to the XDG data directory unless disabled or overridden.
	noAudit, err := cmd.Flags().GetBool("no-audit")
	if err != nil {
		return nil, err
	}
	if noAudit {
		cfg.DBDir = ""
	} else if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	return cfg, nil
}

// setupLogger creates the structured logger for the relay. All handlers
// run behind the redacting wrapper so calendar URLs with embedded
// tokens never reach the log output.
func setupLogger(cfg *config.Config) *slog.Logger {
	if cfg.JSONLog {
		return applog.NewSecureJSONLogger(os.Stderr, cfg.Verbose)
	}
	return applog.NewSecureLogger(os.Stderr, cfg.Verbose)
}

// runServe builds the processing chain and serves HTTP until ctx is
// cancelled.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// The timezone block is loaded once at startup. A missing data file
	// aborts here instead of failing every request later.
	block, err := tzdata.Load(tzdata.FindDataFile(cfg.TimezoneFile))
	if err != nil {
		return fmt.Errorf("failed to load timezone data: %w", err)
	}
	logger.Info("timezone data loaded", "path", block.Path())

	processor := pipeline.NewProcessor(block,
		pipeline.WithProcessorLogger(logger),
		pipeline.WithSniffer(relay.NewSniffer(
			relay.WithSniffTimeout(cfg.SniffTimeout),
			relay.WithSniffRangeBytes(cfg.SniffRangeBytes),
			relay.WithSniffUserAgent(cfg.UserAgent),
		)),
		pipeline.WithFetcher(relay.NewFetcher(
			relay.WithFetchTimeout(cfg.FetchTimeout),
			relay.WithMaxDocumentSize(cfg.MaxDocumentSize),
			relay.WithFetchChunkSize(cfg.FetchChunkSize),
			relay.WithFetchUserAgent(cfg.UserAgent),
		)),
	)

	serverOpts := []server.Option{
		server.WithServerLogger(logger),
		server.WithMetrics(metrics.New()),
	}

	if cfg.DBDir != "" {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open audit store: %w", err)
		}
		defer db.Close()
		logger.Info("audit store opened", "dir", cfg.DBDir)
		serverOpts = append(serverOpts, server.WithAuditDB(db))
	}

	srv := server.NewServer(cfg, processor, serverOpts...)

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Listen, err)
	}
	if cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, cfg.MaxConns)
	}

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	useTLS := cfg.TLSDomain != ""
	if useTLS {
		cacheDir := cfg.TLSCacheDir
		if cacheDir == "" {
			cacheDir = config.XDGCacheDir()
		}
		manager := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(cfg.TLSDomain),
			Cache:      autocert.DirCache(cacheDir),
		}
		httpServer.TLSConfig = manager.TLSConfig()
		logger.Info("automatic TLS enabled", "domain", cfg.TLSDomain, "cache", cacheDir)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("relay listening",
			"address", cfg.Listen,
			"tls", useTLS,
			"max_conns", cfg.MaxConns,
		)
		var err error
		if useTLS {
			err = httpServer.ServeTLS(ln, "", "")
		} else {
			err = httpServer.Serve(ln)
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down, draining connections", "timeout", shutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
