package dto

import "encoding/json"

// TopicMetrics is the hub topic every normalized metric is published on.
const TopicMetrics = "metrics"

// AggregationTemporality mirrors the OTLP aggregation temporality enum by
// name. Anything unmatched, including an explicit Unspecified, normalizes
// to Delta (see normalize.deriveTemporality).
type AggregationTemporality string

const (
	AggregationTemporalityDelta      AggregationTemporality = "Delta"
	AggregationTemporalityCumulative AggregationTemporality = "Cumulative"
)

// NumberValue is an int-or-double-or-absent union. It marshals as a bare
// JSON number, or null when absent -- never as a wrapper object.
type NumberValue struct {
	Present  bool
	IsDouble bool
	Int      int64
	Double   float64
}

func IntValue(v int64) NumberValue      { return NumberValue{Present: true, Int: v} }
func DoubleValue(v float64) NumberValue { return NumberValue{Present: true, IsDouble: true, Double: v} }
func AbsentValue() NumberValue          { return NumberValue{} }

func (v NumberValue) MarshalJSON() ([]byte, error) {
	if !v.Present {
		return []byte("null"), nil
	}
	if v.IsDouble {
		return json.Marshal(v.Double)
	}
	return json.Marshal(v.Int)
}

// Exemplar is an example measurement attached to a data point, optionally
// correlated to the trace/span that produced it.
type Exemplar struct {
	TimeUnixNano Nanoseconds  `json:"time_unix_nano"`
	TraceID      *TraceID     `json:"trace_id,omitempty"`
	SpanID       *SpanID      `json:"span_id,omitempty"`
	Value        *NumberValue `json:"value,omitempty"`
}

type NumberDataPoint struct {
	StartTimeUnixNano Nanoseconds       `json:"start_time_unix_nano"`
	TimeUnixNano      Nanoseconds       `json:"time_unix_nano"`
	Value             NumberValue       `json:"value"`
	Attributes        map[string]string `json:"attributes"`
	Exemplars         []Exemplar        `json:"exemplars"`
}

type HistogramDataPoint struct {
	StartTimeUnixNano Nanoseconds       `json:"start_time_unix_nano"`
	TimeUnixNano      Nanoseconds       `json:"time_unix_nano"`
	Count             uint64            `json:"count"`
	Sum               *float64          `json:"sum,omitempty"`
	BucketCounts      []uint64          `json:"bucket_counts"`
	ExplicitBounds    []float64         `json:"explicit_bounds"`
	Min               *float64          `json:"min,omitempty"`
	Max               *float64          `json:"max,omitempty"`
	Attributes        map[string]string `json:"attributes"`
	Exemplars         []Exemplar        `json:"exemplars"`
}

// MetricData is the payload carried by a MetricDto's data field; each
// implementation embeds its own "t" discriminator so the union stays
// distinguishable on the wire.
type MetricData interface {
	isMetricData()
}

type GaugeData struct {
	Type   string            `json:"t"`
	Points []NumberDataPoint `json:"points"`
}

func NewGaugeData(points []NumberDataPoint) GaugeData {
	return GaugeData{Type: "Gauge", Points: points}
}

func (GaugeData) isMetricData() {}

type SumData struct {
	Type        string                 `json:"t"`
	Points      []NumberDataPoint      `json:"points"`
	Temporality AggregationTemporality `json:"aggregation_temporality"`
	Monotonic   bool                   `json:"is_monotonic"`
}

func NewSumData(points []NumberDataPoint, temporality AggregationTemporality, monotonic bool) SumData {
	return SumData{Type: "Sum", Points: points, Temporality: temporality, Monotonic: monotonic}
}

func (SumData) isMetricData() {}

type HistogramData struct {
	Type        string                 `json:"t"`
	Points      []HistogramDataPoint   `json:"points"`
	Temporality AggregationTemporality `json:"aggregation_temporality"`
}

func NewHistogramData(points []HistogramDataPoint, temporality AggregationTemporality) HistogramData {
	return HistogramData{Type: "Histogram", Points: points, Temporality: temporality}
}

func (HistogramData) isMetricData() {}

// MetricDto is the normalized, UI-facing rendition of an OTLP metric. Data
// is a plain interface-typed field: encoding/json marshals the concrete
// Gauge/Sum/Histogram value underneath it without any flattening.
type MetricDto struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Unit        string       `json:"unit"`
	Scope       string       `json:"scope"`
	Resource    ResourceInfo `json:"resource"`
	Data        MetricData   `json:"data"`
}

func (MetricDto) Topic() string { return TopicMetrics }
