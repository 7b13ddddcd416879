package httpapi

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/collector/pdata/plog/plogotlp"
)

func (h *handlers) logs(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	req := plogotlp.NewExportRequest()
	switch r.Header.Get("Content-Type") {
	case contentTypeProtobuf:
		if err := req.UnmarshalProto(body); err != nil {
			http.Error(w, fmt.Sprintf("Failed to decode protobuf request body: %s", err), http.StatusBadRequest)
			return
		}
	case contentTypeJSON:
		if err := req.UnmarshalJSON(body); err != nil {
			http.Error(w, fmt.Sprintf("Failed to decode json request body: %s", err), http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "Not supported content type", http.StatusBadRequest)
		return
	}

	h.processor.ProcessLogs(req.Logs())
	writeExportResponse(w, plogotlp.NewExportResponse())
}

// writeExportResponse always answers with the protobuf encoding and an
// empty-default OTLP response body, regardless of which encoding the
// request body arrived in.
func writeExportResponse(w http.ResponseWriter, resp interface {
	MarshalProto() ([]byte, error)
}) {
	body, err := resp.MarshalProto()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeProtobuf)
	_, _ = w.Write(body)
}
