// Package app wires configuration, storage, backends, the request
// pipeline and the interactive CLI into a runnable client.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/labportal/internal/client/backend/httpapi"
	"github.com/dmitrijs2005/labportal/internal/client/backend/mock"
	"github.com/dmitrijs2005/labportal/internal/client/cli"
	"github.com/dmitrijs2005/labportal/internal/client/client"
	"github.com/dmitrijs2005/labportal/internal/client/config"
	"github.com/dmitrijs2005/labportal/internal/client/loading"
	"github.com/dmitrijs2005/labportal/internal/client/metrics"
	"github.com/dmitrijs2005/labportal/internal/client/mockdata"
	"github.com/dmitrijs2005/labportal/internal/client/nav"
	"github.com/dmitrijs2005/labportal/internal/client/results"
	"github.com/dmitrijs2005/labportal/internal/client/session"
	"github.com/dmitrijs2005/labportal/internal/client/storage"
	"github.com/dmitrijs2005/labportal/internal/filex"
	"github.com/dmitrijs2005/labportal/internal/logging"
	"golang.org/x/crypto/bcrypt"
)

// IO overrides the terminal streams; nil fields mean the process's own.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	kv      storage.Store
	store   *session.Store
	tracker *loading.Tracker
	metrics *metrics.Metrics
	cli     *cli.App
}

// NewApp opens storage, seeds the mock collections, restores the session
// and builds the CLI. In mock mode authentication never leaves the
// process; otherwise it goes through the request pipeline to the users
// API. Password recovery is always served by the mock backend.
func NewApp(ctx context.Context, c *config.Config, stdio IO) (*App, error) {
	if stdio.Err == nil {
		stdio.Err = os.Stderr
	}
	logger := logging.New(c.LogLevel, c.LogFormat, stdio.Err)

	if c.StorageDriver == storage.DriverSQLite || c.StorageDriver == "" {
		if err := filex.EnsureParentDir(c.StorageDSN); err != nil {
			return nil, fmt.Errorf("storage dir: %w", err)
		}
	}
	kv, err := storage.Open(ctx, c.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	app, err := build(ctx, c, logger, kv, stdio)
	if err != nil {
		_ = kv.Close()
		return nil, err
	}
	return app, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, kv storage.Store, stdio IO) (*App, error) {
	dir := mockdata.NewDirectory(kv, bcrypt.DefaultCost)
	if err := dir.Init(ctx); err != nil {
		return nil, fmt.Errorf("mock data init error: %w", err)
	}
	mockBackend := mock.New(dir, mock.Options{
		Latency:     c.MockLatency,
		TokenSecret: c.MockTokenSecret,
		Logger:      logger,
	})

	tracker := loading.NewTracker()
	m := metrics.New(tracker)
	hc := &http.Client{Timeout: c.RequestTimeout}

	// The pipeline needs the store and router, which need the backend
	// built on the pipeline; bind the handler once everything exists.
	var pipeline client.Handler
	late := func(r *http.Request) (*http.Response, error) { return pipeline(r) }

	var (
		auth      session.Authenticator = mockBackend
		source    results.Source        = results.NewMockSource(dir)
		directory cli.Directory
	)
	if c.MockMode {
		directory = dir
	} else {
		usersAPI, err := client.New(c.UsersBaseURL, late, logger)
		if err != nil {
			return nil, err
		}
		resultsAPI, err := client.New(c.ResultsBaseURL, late, logger)
		if err != nil {
			return nil, err
		}
		auth = httpapi.New(usersAPI)
		source = results.NewHTTPSource(resultsAPI)
	}

	store := session.NewStore(auth, mockBackend, kv, logger)
	if err := store.Open(ctx); err != nil {
		return nil, fmt.Errorf("session restore error: %w", err)
	}
	router := nav.NewDefaultRouter(store)

	pipeline = client.Chain(client.HTTPHandler(hc),
		client.RequestIDInterceptor(),
		client.AuthInterceptor(store),
		client.LoadingInterceptor(tracker),
		client.ErrorInterceptor(store, router, logger),
		m.Interceptor(),
	)

	var links results.Linker
	if c.S3Bucket != "" {
		p, err := results.NewS3Presigner(ctx, results.S3Options{
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		links = p
	}

	ui := cli.NewApp(cli.Deps{
		Session:   store,
		Router:    router,
		Results:   results.NewService(source, store, links, logger),
		Directory: directory,
		Loading:   tracker,
		HTTP:      hc,
		Logger:    logger,
		In:        stdio.In,
		Out:       stdio.Out,
	})

	return &App{config: c, logger: logger, kv: kv, store: store, tracker: tracker, metrics: m, cli: ui}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// startMetricsServer serves /metrics until ctx ends.
func (app *App) startMetricsServer(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())
	srv := &http.Server{Addr: app.config.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	app.logger.Info(ctx, "metrics endpoint listening", "addr", app.config.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "metrics server failed", "error", err)
	}
}

// Run serves the CLI until the user exits or a signal arrives, then
// releases storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "mock", app.config.MockMode, "storage", app.config.StorageDriver)
	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup
	if app.config.MetricsAddr != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startMetricsServer(ctx)
		}()
	}

	err := app.cli.Run(ctx)
	cancelFunc()
	wg.Wait()

	app.store.Close()
	if cerr := app.kv.Close(); cerr != nil {
		app.logger.Warn(ctx, "storage close failed", "error", cerr)
	}
	return err
}
