package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/pdata/plog"
	"go.opentelemetry.io/collector/pdata/pmetric"
	"go.opentelemetry.io/collector/pdata/ptrace"

	"github.com/Indomitable/opentelemetry-inspect/internal/dto"
	"github.com/Indomitable/opentelemetry-inspect/internal/hub"
)

func drain(t *testing.T, ch <-chan dto.TopicMessage, n int) []dto.TopicMessage {
	t.Helper()
	out := make([]dto.TopicMessage, 0, n)
	for i := 0; i < n; i++ {
		select {
		case msg := <-ch:
			out = append(out, msg)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for message %d", i)
		}
	}
	return out
}

func TestProcessLogsPublishesOneMessagePerRecord(t *testing.T) {
	h := hub.NewSubscriptionManager()
	ch := h.Subscribe(dto.TopicLogs, "client-1")
	p := NewProcessor(h)

	logs := plog.NewLogs()
	rl := logs.ResourceLogs().AppendEmpty()
	rl.Resource().Attributes().PutStr("service.name", "checkout")
	sl := rl.ScopeLogs().AppendEmpty()
	rec := sl.LogRecords().AppendEmpty()
	rec.Body().SetStr("hello")
	rec.SetObservedTimestamp(100)

	p.ProcessLogs(logs)

	got := drain(t, ch, 1)
	log, ok := got[0].(dto.LogDto)
	require.True(t, ok)
	assert.Equal(t, "hello", log.Message)
	assert.Equal(t, "checkout", log.Resource.ServiceName)
}

func TestProcessTracesPublishesOneMessagePerSpan(t *testing.T) {
	h := hub.NewSubscriptionManager()
	ch := h.Subscribe(dto.TopicTraces, "client-1")
	p := NewProcessor(h)

	traces := ptrace.NewTraces()
	rs := traces.ResourceSpans().AppendEmpty()
	ss := rs.ScopeSpans().AppendEmpty()
	span := ss.Spans().AppendEmpty()
	span.SetName("GET /checkout")

	p.ProcessTraces(traces)

	got := drain(t, ch, 1)
	span2, ok := got[0].(dto.SpanDto)
	require.True(t, ok)
	assert.Equal(t, "GET /checkout", span2.Name)
}

func TestProcessMetricsPublishesOneMessagePerMetric(t *testing.T) {
	h := hub.NewSubscriptionManager()
	ch := h.Subscribe(dto.TopicMetrics, "client-1")
	p := NewProcessor(h)

	metrics := pmetric.NewMetrics()
	rm := metrics.ResourceMetrics().AppendEmpty()
	sm := rm.ScopeMetrics().AppendEmpty()
	m := sm.Metrics().AppendEmpty()
	m.SetName("cpu.usage")
	m.SetEmptyGauge().DataPoints().AppendEmpty().SetIntValue(7)

	p.ProcessMetrics(metrics)

	got := drain(t, ch, 1)
	metric, ok := got[0].(dto.MetricDto)
	require.True(t, ok)
	assert.Equal(t, "cpu.usage", metric.Name)
}
