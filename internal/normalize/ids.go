package normalize

import (
	"go.opentelemetry.io/collector/pdata/pcommon"

	"github.com/Indomitable/opentelemetry-inspect/internal/dto"
)

func traceID(id pcommon.TraceID) *dto.TraceID {
	return dto.NewTraceID(id[:])
}

func spanID(id pcommon.SpanID) *dto.SpanID {
	return dto.NewSpanID(id[:])
}
