package grpcapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/pdata/plog"
	"go.opentelemetry.io/collector/pdata/plog/plogotlp"

	"github.com/Indomitable/opentelemetry-inspect/internal/dto"
	"github.com/Indomitable/opentelemetry-inspect/internal/hub"
	"github.com/Indomitable/opentelemetry-inspect/internal/ingest"
)

func TestLogsServerExportPublishesToHub(t *testing.T) {
	h := hub.NewSubscriptionManager()
	ch := h.Subscribe(dto.TopicLogs, "client-1")
	p := ingest.NewProcessor(h)
	s := logsServer{processor: p}

	logs := plog.NewLogs()
	rl := logs.ResourceLogs().AppendEmpty()
	sl := rl.ScopeLogs().AppendEmpty()
	sl.LogRecords().AppendEmpty().Body().SetStr("from grpc")

	_, err := s.Export(context.Background(), plogotlp.NewExportRequestFromLogs(logs))
	require.NoError(t, err)

	select {
	case msg := <-ch:
		log, ok := msg.(dto.LogDto)
		require.True(t, ok)
		assert.Equal(t, "from grpc", log.Message)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published log")
	}
}
