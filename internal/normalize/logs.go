package normalize

import (
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/plog"

	"github.com/Indomitable/opentelemetry-inspect/internal/dto"
)

// DeriveSeverity applies the severity_number band first, falling back to a
// case-insensitive match on severity_text, and finally to the raw text as
// an unknown variant.
func DeriveSeverity(number plog.SeverityNumber, text string) dto.Severity {
	if sev, ok := dto.SeverityFromNumber(int32(number)); ok {
		return sev
	}
	if sev, ok := dto.SeverityFromText(text); ok {
		return sev
	}
	return dto.UnknownSeverity(text)
}

// Log converts a single OTLP log record, plus its owning resource and scope,
// into the normalized LogDto.
func Log(resource pcommon.Resource, scope pcommon.InstrumentationScope, record plog.LogRecord) dto.LogDto {
	timestamp := record.Timestamp()
	if timestamp == 0 {
		timestamp = record.ObservedTimestamp()
	}

	return dto.LogDto{
		Timestamp: dto.Timestamp(timestamp),
		Severity:  DeriveSeverity(record.SeverityNumber(), record.SeverityText()),
		Message:   FlattenValue(record.Body()),
		Tags:      ExtractTags(record.Attributes()),
		Resource:  ExtractResourceInfo(resource),
		Scope:     scope.Name(),
		TraceID:   traceID(record.TraceID()),
		SpanID:    spanID(record.SpanID()),
		EventName: record.EventName(),
	}
}
