package dto

// TopicTraces is the hub topic every normalized span is published on.
const TopicTraces = "traces"

// SpanKind mirrors the OTLP span kind enum by name rather than ordinal, so
// the wire shape stays human-readable.
type SpanKind string

const (
	SpanKindUnspecified SpanKind = "Unspecified"
	SpanKindInternal    SpanKind = "Internal"
	SpanKindServer      SpanKind = "Server"
	SpanKindClient      SpanKind = "Client"
	SpanKindProducer    SpanKind = "Producer"
	SpanKindConsumer    SpanKind = "Consumer"
)

// SpanStatusCode mirrors the OTLP span status code enum by name.
type SpanStatusCode string

const (
	SpanStatusUnset SpanStatusCode = "Unset"
	SpanStatusOk    SpanStatusCode = "Ok"
	SpanStatusError SpanStatusCode = "Error"
)

// SpanStatus is always present, defaulting to {message: "", code: Unset}
// when the source span carries no status at all.
type SpanStatus struct {
	Message string         `json:"message"`
	Code    SpanStatusCode `json:"code"`
}

type SpanEvent struct {
	Name       string            `json:"name"`
	Timestamp  Timestamp         `json:"timestamp"`
	Attributes map[string]string `json:"attributes"`
}

type SpanLink struct {
	TraceID    *TraceID          `json:"trace_id,omitempty"`
	SpanID     *SpanID           `json:"span_id,omitempty"`
	TraceState string            `json:"trace_state"`
	Attributes map[string]string `json:"attributes"`
}

// SpanDto is the normalized, UI-facing rendition of an OTLP span. Start/end
// time are carried twice: as RFC 3339 strings for humans and as quoted-decimal
// nanoseconds for anything that needs full precision.
type SpanDto struct {
	StartTime         Timestamp         `json:"start_time"`
	EndTime           Timestamp         `json:"end_time"`
	StartTimeUnixNano Nanoseconds       `json:"start_time_unix_nano"`
	EndTimeUnixNano   Nanoseconds       `json:"end_time_unix_nano"`
	Scope             string            `json:"scope"`
	Name              string            `json:"name"`
	TraceID           *TraceID          `json:"trace_id,omitempty"`
	SpanID            *SpanID           `json:"span_id,omitempty"`
	ParentSpanID      *SpanID           `json:"parent_span_id,omitempty"`
	Resource          ResourceInfo      `json:"resource"`
	Kind              SpanKind          `json:"kind"`
	Status            SpanStatus        `json:"status"`
	Events            []SpanEvent       `json:"events"`
	Links             []SpanLink        `json:"links"`
	Tags              map[string]string `json:"tags"`
}

func (SpanDto) Topic() string { return TopicTraces }
