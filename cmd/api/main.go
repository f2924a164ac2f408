package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/zhouzirui/marketplace/backend/internal/config"
	"github.com/zhouzirui/marketplace/backend/internal/events"
	"github.com/zhouzirui/marketplace/backend/internal/handler"
	"github.com/zhouzirui/marketplace/backend/internal/logging"
	"github.com/zhouzirui/marketplace/backend/internal/model/market"
	marketService "github.com/zhouzirui/marketplace/backend/internal/service/market"
	"github.com/zhouzirui/marketplace/backend/internal/store/sqlstore"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the CLI and returns the process exit code. Deferred cleanup
// runs before main exits.
func run(args []string, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// flagOverrides holds command-line values that take precedence over the environment.
type flagOverrides struct {
	addr      string
	dsn       string
	seed      bool
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	var flags flagOverrides

	root := &cobra.Command{
		Use:          "marketplace-api",
		Short:        "Serve the users, orders and offers record API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap(cmd, flags)
			if err != nil {
				return err
			}
			defer app.close()

			if app.cfg.Database.SeedOnStart {
				if err := app.seed(cmd.Context()); err != nil {
					return err
				}
			}
			return app.serve(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.dsn, "db", "", "database DSN (overrides DB_DSN)")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	pf.StringVar(&flags.logFormat, "log-format", "", "log format: text or json (overrides LOG_FORMAT)")

	root.Flags().StringVar(&flags.addr, "addr", "", "listen port or host:port (overrides PORT)")
	root.Flags().BoolVar(&flags.seed, "seed", false, "drop every table and load the seed dataset before serving (destructive)")

	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Drop every table, load the seed dataset and exit (destructive)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := bootstrap(cmd, flags)
			if err != nil {
				return err
			}
			defer app.close()
			return app.seed(cmd.Context())
		},
	})

	return root
}

type application struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *sqlstore.Store
	hub    *events.Hub
	svc    *marketService.Service
}

// bootstrap loads configuration, applies flag overrides, builds the logger
// and opens the store.
func bootstrap(cmd *cobra.Command, flags flagOverrides) (*application, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if err := applyOverrides(cmd, cfg, flags); err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cmd.ErrOrStderr()})
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("no .env file loaded, using process environment", "error", envErr)
	}

	store, err := sqlstore.Open(sqlstore.Config{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	hub := events.NewHub(cfg.Events.Buffer, logger)
	return &application{
		cfg:    cfg,
		logger: logger,
		store:  store,
		hub:    hub,
		svc:    marketService.NewService(store, hub, logger),
	}, nil
}

func applyOverrides(cmd *cobra.Command, cfg *config.Config, flags flagOverrides) error {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("addr") {
		addr, err := config.ParseAddr(flags.addr)
		if err != nil {
			return err
		}
		cfg.Server.Addr = addr
	}
	if changed("db") {
		cfg.Database.DSN = flags.dsn
	}
	if changed("seed") {
		cfg.Database.SeedOnStart = flags.seed
	}
	if changed("log-level") {
		level, err := logging.ParseLevel(flags.logLevel)
		if err != nil {
			return err
		}
		cfg.Log.Level = level
	}
	if changed("log-format") {
		format, err := logging.ParseFormat(flags.logFormat)
		if err != nil {
			return err
		}
		cfg.Log.Format = format
	}
	return nil
}

func (a *application) seed(ctx context.Context) error {
	ds, err := market.Seed()
	if err != nil {
		return err
	}
	a.logger.Warn("resetting store and loading seed dataset", "dsn", a.cfg.Database.DSN)
	return a.svc.Seed(ctx, ds)
}

func (a *application) serve(ctx context.Context) error {
	router := handler.NewRouter(a.svc, a.hub, a.logger)

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		// Streaming feeds end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	a.logger.Info("marketplace backend listening", "addr", srv.Addr)
	if err := runServer(ctx, srv); err != nil {
		a.logger.Error("server error", "error", err)
		return err
	}
	return nil
}

func (a *application) close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
