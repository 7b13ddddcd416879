package dto

// TopicLogs is the hub topic every normalized log record is published on.
const TopicLogs = "logs"

// LogDto is the normalized, UI-facing rendition of an OTLP log record.
type LogDto struct {
	Timestamp Timestamp         `json:"timestamp"`
	Severity  Severity          `json:"severity"`
	Message   string            `json:"message"`
	Scope     string            `json:"scope"`
	TraceID   *TraceID          `json:"trace_id,omitempty"`
	SpanID    *SpanID           `json:"span_id,omitempty"`
	EventName string            `json:"event_name,omitempty"`
	Resource  ResourceInfo      `json:"resource"`
	Tags      map[string]string `json:"tags"`
}

func (LogDto) Topic() string { return TopicLogs }
