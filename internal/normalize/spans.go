package normalize

import (
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/ptrace"

	"github.com/Indomitable/opentelemetry-inspect/internal/dto"
)

func spanKind(k ptrace.SpanKind) dto.SpanKind {
	switch k {
	case ptrace.SpanKindInternal:
		return dto.SpanKindInternal
	case ptrace.SpanKindServer:
		return dto.SpanKindServer
	case ptrace.SpanKindClient:
		return dto.SpanKindClient
	case ptrace.SpanKindProducer:
		return dto.SpanKindProducer
	case ptrace.SpanKindConsumer:
		return dto.SpanKindConsumer
	default:
		return dto.SpanKindUnspecified
	}
}

func spanStatusCode(c ptrace.StatusCode) dto.SpanStatusCode {
	switch c {
	case ptrace.StatusCodeOk:
		return dto.SpanStatusOk
	case ptrace.StatusCodeError:
		return dto.SpanStatusError
	default:
		return dto.SpanStatusUnset
	}
}

func spanEvents(events ptrace.SpanEventSlice) []dto.SpanEvent {
	out := make([]dto.SpanEvent, 0, events.Len())
	for i := 0; i < events.Len(); i++ {
		e := events.At(i)
		out = append(out, dto.SpanEvent{
			Name:       e.Name(),
			Timestamp:  dto.Timestamp(e.Timestamp()),
			Attributes: ExtractTags(e.Attributes()),
		})
	}
	return out
}

func spanLinks(links ptrace.SpanLinkSlice) []dto.SpanLink {
	out := make([]dto.SpanLink, 0, links.Len())
	for i := 0; i < links.Len(); i++ {
		l := links.At(i)
		out = append(out, dto.SpanLink{
			TraceID:    traceID(l.TraceID()),
			SpanID:     spanID(l.SpanID()),
			TraceState: l.TraceState().AsRaw(),
			Attributes: ExtractTags(l.Attributes()),
		})
	}
	return out
}

// Span converts a single OTLP span, plus its owning resource and scope,
// into the normalized SpanDto.
func Span(resource pcommon.Resource, scope pcommon.InstrumentationScope, span ptrace.Span) dto.SpanDto {
	status := span.Status()
	start := span.StartTimestamp()
	end := span.EndTimestamp()
	return dto.SpanDto{
		TraceID:           traceID(span.TraceID()),
		SpanID:            spanID(span.SpanID()),
		ParentSpanID:      spanID(span.ParentSpanID()),
		Name:              span.Name(),
		Kind:              spanKind(span.Kind()),
		StartTime:         dto.Timestamp(start),
		EndTime:           dto.Timestamp(end),
		StartTimeUnixNano: dto.Nanoseconds(start),
		EndTimeUnixNano:   dto.Nanoseconds(end),
		Tags:              ExtractTags(span.Attributes()),
		Status: dto.SpanStatus{
			Code:    spanStatusCode(status.Code()),
			Message: status.Message(),
		},
		Events:   spanEvents(span.Events()),
		Links:    spanLinks(span.Links()),
		Resource: ExtractResourceInfo(resource),
		Scope:    scope.Name(),
	}
}
