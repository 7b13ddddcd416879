// Command otel-inspect-engine runs the OTLP ingest-and-fanout engine as a
// standalone process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Indomitable/opentelemetry-inspect/internal/engine"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := engine.New(engine.DefaultConfig(), logger)
	if err := e.Run(ctx); err != nil {
		logger.Error("engine exited with error", zap.Error(err))
		os.Exit(1)
	}
}
