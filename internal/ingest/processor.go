// Package ingest walks decoded OTLP export requests and publishes each
// normalized record onto the hub.
package ingest

import (
	"go.opentelemetry.io/collector/pdata/plog"
	"go.opentelemetry.io/collector/pdata/pmetric"
	"go.opentelemetry.io/collector/pdata/ptrace"

	"github.com/Indomitable/opentelemetry-inspect/internal/hub"
	"github.com/Indomitable/opentelemetry-inspect/internal/normalize"
)

// Processor normalizes OTLP export requests and publishes the results onto
// a hub.
type Processor struct {
	hub *hub.SubscriptionManager
}

func NewProcessor(h *hub.SubscriptionManager) *Processor {
	return &Processor{hub: h}
}

// ProcessLogs walks resource -> scope -> record, publishing one LogDto per
// record.
func (p *Processor) ProcessLogs(logs plog.Logs) {
	rls := logs.ResourceLogs()
	for i := 0; i < rls.Len(); i++ {
		rl := rls.At(i)
		resource := rl.Resource()
		sls := rl.ScopeLogs()
		for j := 0; j < sls.Len(); j++ {
			sl := sls.At(j)
			scope := sl.Scope()
			records := sl.LogRecords()
			for k := 0; k < records.Len(); k++ {
				p.hub.PublishLog(normalize.Log(resource, scope, records.At(k)))
			}
		}
	}
}

// ProcessTraces walks resource -> scope -> span, publishing one SpanDto per
// span.
func (p *Processor) ProcessTraces(traces ptrace.Traces) {
	rss := traces.ResourceSpans()
	for i := 0; i < rss.Len(); i++ {
		rs := rss.At(i)
		resource := rs.Resource()
		sss := rs.ScopeSpans()
		for j := 0; j < sss.Len(); j++ {
			ss := sss.At(j)
			scope := ss.Scope()
			spans := ss.Spans()
			for k := 0; k < spans.Len(); k++ {
				p.hub.PublishSpan(normalize.Span(resource, scope, spans.At(k)))
			}
		}
	}
}

// ProcessMetrics walks resource -> scope -> metric, publishing one
// MetricDto per metric.
func (p *Processor) ProcessMetrics(metrics pmetric.Metrics) {
	rms := metrics.ResourceMetrics()
	for i := 0; i < rms.Len(); i++ {
		rm := rms.At(i)
		resource := rm.Resource()
		sms := rm.ScopeMetrics()
		for j := 0; j < sms.Len(); j++ {
			sm := sms.At(j)
			scope := sm.Scope()
			ms := sm.Metrics()
			for k := 0; k < ms.Len(); k++ {
				p.hub.PublishMetric(normalize.Metric(resource, scope, ms.At(k)))
			}
		}
	}
}
