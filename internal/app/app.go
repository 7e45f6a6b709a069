package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dayanaadylkhanova/device-readings/internal/adapter/metrics"
	"github.com/dayanaadylkhanova/device-readings/internal/adapter/store/postgres"
	"github.com/dayanaadylkhanova/device-readings/internal/adapter/store/sqlite"
	http_server "github.com/dayanaadylkhanova/device-readings/internal/adapter/transport/http"
	"github.com/dayanaadylkhanova/device-readings/internal/adapter/transport/ws"
	"github.com/dayanaadylkhanova/device-readings/internal/service"
	"github.com/dayanaadylkhanova/device-readings/pkg/config"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type AppInfo struct {
	Name      string
	BuildTime string
	Commit    string
	Release   string
}

// exportSink is an AggregateWriter that owns a connection.
type exportSink interface {
	service.AggregateWriter
	Init(ctx context.Context) error
	Close() error
}

type App struct {
	cfg  config.Config
	info *AppInfo
	log  *zap.Logger

	store    *service.Store
	sink     exportSink
	exporter *service.Exporter
	server   *http_server.Server
}

func New(ctx context.Context, cfg config.Config, info *AppInfo, log *zap.Logger) (*App, error) {
	// 1) Metrics + in-memory store
	collector := metrics.New()
	st := service.NewStore(log, cfg.Shards, collector)

	// 2) Optional aggregate export
	sink, err := openSink(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	var exp *service.Exporter
	if sink != nil {
		exp = service.NewExporter(log, st, sink, cfg.ExportEvery)
	}

	// 3) Transports share one store
	srv := http_server.NewServer(log, cfg.ListenAddr, st, cfg.MaxBodyBytes, http_server.Mounts{
		Metrics:   collector.Handler(),
		Websocket: ws.NewHandler(log, st, cfg.MaxBodyBytes),
	})

	return &App{
		cfg:      cfg,
		info:     info,
		log:      log,
		store:    st,
		sink:     sink,
		exporter: exp,
		server:   srv,
	}, nil
}

func openSink(ctx context.Context, cfg config.Config, log *zap.Logger) (exportSink, error) {
	var (
		sink exportSink
		err  error
	)
	switch cfg.ExportDriver {
	case config.DriverNone:
		return nil, nil
	case config.DriverPostgres:
		sink, err = postgres.New(ctx, cfg.DatabaseURL, log)
	case config.DriverSQLite:
		sink, err = sqlite.New(ctx, cfg.DatabaseURL, log)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrExportSink, cfg.ExportDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrExportSink, cfg.ExportDriver, err)
	}
	if err := sink.Init(ctx); err != nil {
		_ = sink.Close()
		return nil, fmt.Errorf("%w: init %s: %v", ErrExportSink, cfg.ExportDriver, err)
	}
	log.Info("aggregate export enabled",
		zap.String("driver", cfg.ExportDriver),
		zap.Duration("every", cfg.ExportEvery),
	)
	return sink, nil
}

func (a *App) Run(ctx context.Context) error {
	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if a.exporter != nil {
		go a.exporter.Run(bgCtx)
	}

	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- a.server.Start() }()

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ErrAppShutdownNormal
	case err := <-httpErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("%w: %v", ErrAppStartup, err)
		} else {
			runErr = ErrAppShutdownNormal
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.ShutdownWait)
	defer cancelShutdown()
	var errs error
	errs = multierr.Append(errs, a.server.Shutdown(shutdownCtx))
	if a.exporter != nil {
		a.exporter.Stop(shutdownCtx)
	}
	if a.sink != nil {
		errs = multierr.Append(errs, a.sink.Close())
	}

	stats := a.store.Stats()
	a.log.Info("store closed", zap.Int("devices", stats.Devices), zap.Int("readings", stats.Readings))

	if errs != nil && errors.Is(runErr, ErrAppShutdownNormal) {
		return fmt.Errorf("%w: %v", ErrAppShutdownWithError, errs)
	}
	return runErr
}
