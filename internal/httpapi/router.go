// Package httpapi implements the HTTP OTLP receiver: one route per signal,
// each accepting protobuf or JSON bodies, plus a static-file fallback for
// the UI.
package httpapi

import (
	"io"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Indomitable/opentelemetry-inspect/internal/ingest"
)

const (
	contentTypeProtobuf = "application/x-protobuf"
	contentTypeJSON      = "application/json"
)

// Config controls the static-file fallback. StaticDir is only served when
// it resolves to an existing directory; an empty or missing StaticDir
// disables the fallback entirely rather than erroring.
type Config struct {
	StaticDir string
}

// NewRouter builds the mux.Router serving the OTLP ingest routes and,
// optionally, the static UI fallback.
func NewRouter(cfg Config, processor *ingest.Processor, logger *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	h := &handlers{processor: processor, logger: logger}

	r.HandleFunc("/v1/logs", h.logs).Methods(http.MethodPost)
	r.HandleFunc("/v1/traces", h.traces).Methods(http.MethodPost)
	r.HandleFunc("/v1/metrics", h.metrics).Methods(http.MethodPost)

	// The file server only answers requests no route matches, so routes a
	// caller adds after NewRouter (such as /ws) still take precedence.
	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		r.NotFoundHandler = http.FileServer(http.Dir(cfg.StaticDir))
	}

	return r
}

type handlers struct {
	processor *ingest.Processor
	logger    *zap.Logger
}

// readBody reads the request body, writing "Failed to read request body"
// on failure, matching the original receiver's exact error text.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}
