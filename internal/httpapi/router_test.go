package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/collector/pdata/plog"
	"go.opentelemetry.io/collector/pdata/plog/plogotlp"
	"go.uber.org/zap"

	"github.com/Indomitable/opentelemetry-inspect/internal/dto"
	"github.com/Indomitable/opentelemetry-inspect/internal/hub"
	"github.com/Indomitable/opentelemetry-inspect/internal/ingest"
)

func newTestRouter(t *testing.T) (*mux.Router, *hub.SubscriptionManager) {
	t.Helper()
	h := hub.NewSubscriptionManager()
	p := ingest.NewProcessor(h)
	r := NewRouter(Config{}, p, zap.NewNop())
	return r, h
}

func TestLogsAcceptsJSON(t *testing.T) {
	r, hb := newTestRouter(t)
	ch := hb.Subscribe(dto.TopicLogs, "client-1")

	logs := plog.NewLogs()
	rl := logs.ResourceLogs().AppendEmpty()
	sl := rl.ScopeLogs().AppendEmpty()
	sl.LogRecords().AppendEmpty().Body().SetStr("hi")

	req := plogotlp.NewExportRequestFromLogs(logs)
	body, err := req.MarshalJSON()
	require.NoError(t, err)

	httpReq := httptest.NewRequest(http.MethodPost, "/v1/logs", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httpReq)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeProtobuf, rec.Header().Get("Content-Type"))

	select {
	case msg := <-ch:
		log, ok := msg.(dto.LogDto)
		require.True(t, ok)
		assert.Equal(t, "hi", log.Message)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published log")
	}
}

func TestLogsRejectsUnsupportedContentType(t *testing.T) {
	r, _ := newTestRouter(t)

	httpReq := httptest.NewRequest(http.MethodPost, "/v1/logs", bytes.NewReader([]byte("{}")))
	httpReq.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httpReq)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not supported content type")
}

func TestLogsRejectsMalformedJSON(t *testing.T) {
	r, _ := newTestRouter(t)

	httpReq := httptest.NewRequest(http.MethodPost, "/v1/logs", bytes.NewReader([]byte("not json")))
	httpReq.Header.Set("Content-Type", contentTypeJSON)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httpReq)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to decode json request body")
}
