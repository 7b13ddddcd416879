package normalize

import (
	"go.opentelemetry.io/collector/pdata/pcommon"
	"go.opentelemetry.io/collector/pdata/pmetric"

	"github.com/Indomitable/opentelemetry-inspect/internal/dto"
)

// deriveTemporality maps an OTLP aggregation temporality to its normalized
// form. Anything unmatched -- including an explicit Unspecified -- defaults
// to Delta.
func deriveTemporality(t pmetric.AggregationTemporality) dto.AggregationTemporality {
	if t == pmetric.AggregationTemporalityCumulative {
		return dto.AggregationTemporalityCumulative
	}
	return dto.AggregationTemporalityDelta
}

func numberValue(p pmetric.NumberDataPoint) dto.NumberValue {
	switch p.ValueType() {
	case pmetric.NumberDataPointValueTypeDouble:
		return dto.DoubleValue(p.DoubleValue())
	case pmetric.NumberDataPointValueTypeInt:
		return dto.IntValue(p.IntValue())
	default:
		return dto.AbsentValue()
	}
}

func exemplarValue(e pmetric.Exemplar) dto.NumberValue {
	switch e.ValueType() {
	case pmetric.ExemplarValueTypeDouble:
		return dto.DoubleValue(e.DoubleValue())
	case pmetric.ExemplarValueTypeInt:
		return dto.IntValue(e.IntValue())
	default:
		return dto.AbsentValue()
	}
}

func exemplars(exs pmetric.ExemplarSlice) []dto.Exemplar {
	out := make([]dto.Exemplar, 0, exs.Len())
	for i := 0; i < exs.Len(); i++ {
		e := exs.At(i)
		value := exemplarValue(e)
		out = append(out, dto.Exemplar{
			TimeUnixNano: dto.Nanoseconds(e.Timestamp()),
			Value:        &value,
			TraceID:      traceID(e.TraceID()),
			SpanID:       spanID(e.SpanID()),
		})
	}
	return out
}

func numberDataPoints(points pmetric.NumberDataPointSlice) []dto.NumberDataPoint {
	out := make([]dto.NumberDataPoint, 0, points.Len())
	for i := 0; i < points.Len(); i++ {
		p := points.At(i)
		out = append(out, dto.NumberDataPoint{
			Attributes:        ExtractTags(p.Attributes()),
			StartTimeUnixNano: dto.Nanoseconds(p.StartTimestamp()),
			TimeUnixNano:      dto.Nanoseconds(p.Timestamp()),
			Value:             numberValue(p),
			Exemplars:         exemplars(p.Exemplars()),
		})
	}
	return out
}

func histogramDataPoints(points pmetric.HistogramDataPointSlice) []dto.HistogramDataPoint {
	out := make([]dto.HistogramDataPoint, 0, points.Len())
	for i := 0; i < points.Len(); i++ {
		p := points.At(i)
		dp := dto.HistogramDataPoint{
			Attributes:        ExtractTags(p.Attributes()),
			StartTimeUnixNano: dto.Nanoseconds(p.StartTimestamp()),
			TimeUnixNano:      dto.Nanoseconds(p.Timestamp()),
			Count:             p.Count(),
			BucketCounts:      p.BucketCounts().AsRaw(),
			ExplicitBounds:    p.ExplicitBounds().AsRaw(),
			Exemplars:         exemplars(p.Exemplars()),
		}
		if p.HasSum() {
			sum := p.Sum()
			dp.Sum = &sum
		}
		if p.HasMin() {
			min := p.Min()
			dp.Min = &min
		}
		if p.HasMax() {
			max := p.Max()
			dp.Max = &max
		}
		out = append(out, dp)
	}
	return out
}

func metricData(m pmetric.Metric) dto.MetricData {
	switch m.Type() {
	case pmetric.MetricTypeGauge:
		return dto.NewGaugeData(numberDataPoints(m.Gauge().DataPoints()))
	case pmetric.MetricTypeSum:
		sum := m.Sum()
		return dto.NewSumData(numberDataPoints(sum.DataPoints()), deriveTemporality(sum.AggregationTemporality()), sum.IsMonotonic())
	case pmetric.MetricTypeHistogram:
		hist := m.Histogram()
		return dto.NewHistogramData(histogramDataPoints(hist.DataPoints()), deriveTemporality(hist.AggregationTemporality()))
	default:
		return nil
	}
}

// Metric converts a single OTLP metric, plus its owning resource and scope,
// into the normalized MetricDto.
func Metric(resource pcommon.Resource, scope pcommon.InstrumentationScope, m pmetric.Metric) dto.MetricDto {
	return dto.MetricDto{
		Name:        m.Name(),
		Description: m.Description(),
		Unit:        m.Unit(),
		Data:        metricData(m),
		Resource:    ExtractResourceInfo(resource),
		Scope:       scope.Name(),
	}
}
