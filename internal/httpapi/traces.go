package httpapi

import (
	"fmt"
	"net/http"

	"go.opentelemetry.io/collector/pdata/ptrace/ptraceotlp"
)

func (h *handlers) traces(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	req := ptraceotlp.NewExportRequest()
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

	h.processor.ProcessTraces(req.Traces())
	writeExportResponse(w, ptraceotlp.NewExportResponse())
}
