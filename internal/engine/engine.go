package engine

import (
	"context"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/Indomitable/opentelemetry-inspect/internal/grpcapi"
	"github.com/Indomitable/opentelemetry-inspect/internal/httpapi"
	"github.com/Indomitable/opentelemetry-inspect/internal/hub"
	"github.com/Indomitable/opentelemetry-inspect/internal/ingest"
	"github.com/Indomitable/opentelemetry-inspect/internal/wshub"
)

const shutdownGrace = 5 * time.Second

// Engine owns the lifetime of the two OTLP receivers and the WebSocket hub.
// It has no shutdown logic of its own beyond reacting to ctx.Done(): owning
// the process (signal handling) is left to the caller.
type Engine struct {
	cfg    Config
	logger *zap.Logger

	httpServer *http.Server
	grpcServer *grpc.Server
}

// New builds an Engine with all components wired: a shared subscription
// manager feeds both the ingest processor (for the HTTP/gRPC receivers) and
// the WebSocket hub (for outbound fan-out).
func New(cfg Config, logger *zap.Logger) *Engine {
	manager := hub.NewSubscriptionManager()
	processor := ingest.NewProcessor(manager)

	router := httpapi.NewRouter(httpapi.Config{StaticDir: cfg.StaticDir}, processor, logger)
	router.Handle("/ws", wshub.NewHub(manager, logger))

	grpcServer := grpc.NewServer()
	grpcapi.Register(grpcServer, processor)

	return &Engine{
		cfg:        cfg,
		logger:     logger,
		httpServer: &http.Server{Addr: cfg.HTTPAddr, Handler: router},
		grpcServer: grpcServer,
	}
}

// Run starts both receivers and blocks until ctx is cancelled or either
// receiver fails to serve. It always returns a non-nil error from the
// failing component, or the errgroup's first reported error, except on a
// clean ctx-cancellation shutdown.
func (e *Engine) Run(ctx context.Context) error {
	grpcListener, err := net.Listen("tcp", e.cfg.GRPCAddr)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		e.logger.Info("http receiver listening", zap.String("addr", e.cfg.HTTPAddr))
		if err := e.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		e.logger.Info("grpc receiver listening", zap.String("addr", e.cfg.GRPCAddr))
		if err := e.grpcServer.Serve(grpcListener); err != nil && err != grpc.ErrServerStopped {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		e.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = e.httpServer.Shutdown(shutdownCtx)
		e.grpcServer.GracefulStop()
		return nil
	})

	return g.Wait()
}
