package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureJSON(t *testing.T) {
	b, err := json.Marshal(Record{Country: "Peru", Region: "LAC", Assumptions: "low", DalysSaved: Some(1500)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"country":"Peru","region":"LAC","assumptions":"low","r_iron_r_2030":null,"d_iron_r_2030":1500}`, string(b))

	var r Record
	require.NoError(t, json.Unmarshal(b, &r))
	assert.False(t, r.RelativeReduction.Valid)
	assert.Equal(t, Some(1500), r.DalysSaved)

	assert.Error(t, json.Unmarshal([]byte(`{"d_iron_r_2030":"x"}`), &r))
}

func TestMetricValue(t *testing.T) {
	r := Record{RelativeReduction: Some(12.5), DalysSaved: Some(4000)}
	assert.Equal(t, 12.5, MetricRelativeReduction.Value(r).Value)
	assert.Equal(t, 4000.0, MetricDalysSaved.Value(r).Value)
	assert.False(t, Metric(0).Value(r).Valid)
	assert.Equal(t, "unknown", Metric(9).String())
}
