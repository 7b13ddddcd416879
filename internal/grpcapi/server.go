// Package grpcapi implements the gRPC OTLP receiver by wiring the
// pdata-generated service interfaces directly to the ingest processor.
package grpcapi

import (
	"context"

	"go.opentelemetry.io/collector/pdata/plog/plogotlp"
	"go.opentelemetry.io/collector/pdata/pmetric/pmetricotlp"
	"go.opentelemetry.io/collector/pdata/ptrace/ptraceotlp"
	"google.golang.org/grpc"

	"github.com/Indomitable/opentelemetry-inspect/internal/ingest"
)

// Register wires the logs, traces, and metrics OTLP services onto s,
// delegating every export call to processor.
func Register(s *grpc.Server, processor *ingest.Processor) {
	plogotlp.RegisterGRPCServer(s, logsServer{processor: processor})
	ptraceotlp.RegisterGRPCServer(s, tracesServer{processor: processor})
	pmetricotlp.RegisterGRPCServer(s, metricsServer{processor: processor})
}

type logsServer struct {
	processor *ingest.Processor
}

func (l logsServer) Export(_ context.Context, req plogotlp.ExportRequest) (plogotlp.ExportResponse, error) {
	l.processor.ProcessLogs(req.Logs())
	return plogotlp.NewExportResponse(), nil
}

type tracesServer struct {
	processor *ingest.Processor
}

func (t tracesServer) Export(_ context.Context, req ptraceotlp.ExportRequest) (ptraceotlp.ExportResponse, error) {
	t.processor.ProcessTraces(req.Traces())
	return ptraceotlp.NewExportResponse(), nil
}

type metricsServer struct {
	processor *ingest.Processor
}

func (m metricsServer) Export(_ context.Context, req pmetricotlp.ExportRequest) (pmetricotlp.ExportResponse, error) {
	m.processor.ProcessMetrics(req.Metrics())
	return pmetricotlp.NewExportResponse(), nil
}
