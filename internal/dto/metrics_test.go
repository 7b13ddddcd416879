package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberValueMarshalsBare(t *testing.T) {
	out, err := json.Marshal(IntValue(42))
	require.NoError(t, err)
	assert.Equal(t, `42`, string(out))

	out, err = json.Marshal(DoubleValue(3.5))
	require.NoError(t, err)
	assert.Equal(t, `3.5`, string(out))
}

func TestMetricDtoMarshalNestsDataUnderDataKey(t *testing.T) {
	m := MetricDto{
		Name: "http.requests",
		Unit: "1",
		Data: NewGaugeData([]NumberDataPoint{
			{Attributes: map[string]string{}, Value: IntValue(5)},
		}),
		Resource: ResourceInfo{ServiceName: "svc"},
		Scope:    "scope",
	}

	out, err := json.Marshal(m)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &fields))

	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "resource")
	assert.Contains(t, fields, "data")
	assert.NotContains(t, fields, "t")

	var data map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(fields["data"], &data))
	assert.Contains(t, data, "t")
	assert.Contains(t, data, "points")

	var kind string
	require.NoError(t, json.Unmarshal(data["t"], &kind))
	assert.Equal(t, "Gauge", kind)
}

func TestNumberValueMarshalsNullWhenAbsent(t *testing.T) {
	out, err := json.Marshal(AbsentValue())
	require.NoError(t, err)
	assert.Equal(t, `null`, string(out))
}

func TestSumDataCarriesTemporality(t *testing.T) {
	s := NewSumData(nil, AggregationTemporalityCumulative, true)
	assert.Equal(t, AggregationTemporalityCumulative, s.Temporality)
	assert.True(t, s.Monotonic)
}
