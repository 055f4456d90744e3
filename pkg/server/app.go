package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "StockCast/internal/domain/repository"
	"StockCast/internal/service/marketdata"
	pkgch "StockCast/pkg/clickhouse"
	"StockCast/pkg/config"
	xhttp "StockCast/pkg/http"
	applogger "StockCast/pkg/logger"
	"StockCast/pkg/queue"
)

// App owns the server lifecycle: the HTTP API, the Redis job queue
// running pipeline workers, and the websocket quote stream, plus the
// optional ClickHouse client and run publisher closed on shutdown.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	queue      *queue.RedisQueue
	stream     *marketdata.Stream
	chClient   *pkgch.Client
	publisher  domrepo.PredictionPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	q *queue.RedisQueue,
	stream *marketdata.Stream,
	chClient *pkgch.Client,
	publisher domrepo.PredictionPublisher,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		queue:     q,
		stream:    stream,
		chClient:  chClient,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.queue.Start(); err != nil {
		a.log.Error("queue start", applogger.Error(err))
		return err
	}

	if err := a.stream.Start(ctx); err != nil {
		a.log.Error("quote stream start", applogger.Error(err))
		return err
	}
	a.log.Info("quote stream started", applogger.Strings("symbols", a.cfg.Finnhub.Symbols))

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown", applogger.Error(err))
	}

	// Stop the queue before closing the stores its workers write to.
	if err := a.queue.Stop(shutdownCtx); err != nil {
		a.log.Warn("queue stop", applogger.Error(err))
	}

	if err := a.stream.Close(); err != nil {
		a.log.Warn("quote stream close", applogger.Error(err))
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close", applogger.Error(err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
