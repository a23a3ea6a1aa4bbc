package usage

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMetric(t *testing.T) {
	cases := []struct {
		raw  string
		want Metric
	}{
		{"3.5", Num(3.5)},
		{" 4 ", Num(4)},
		{"-1.25", Num(-1.25)},
		{"1e2", Num(100)},
		{"", Missing},
		{"   ", Missing},
		{"bad", Missing},
		{"3.5 hrs", Missing},
		{"NaN", Missing},
		{"inf", Missing},
		{"-Inf", Missing},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseMetric(tc.raw))
		})
	}
}

func TestMetricJSON_MissingIsNull(t *testing.T) {
	rec := UsageRecord{UserID: "u1", ScreenTime: Num(2.5)}
	b, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"screen_time":2.5`)
	assert.Contains(t, string(b), `"data_usage":null`)

	var back UsageRecord
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, rec, back)
}

func TestRecordMetricByField(t *testing.T) {
	rec := UsageRecord{
		ScreenTime:      Num(1),
		DataUsage:       Num(2),
		SocialMediaTime: Num(3),
		StreamingTime:   Num(4),
		GamingTime:      Num(5),
	}
	for i, f := range Fields {
		assert.Equal(t, float64(i+1), rec.Metric(f).Value)
	}
	assert.False(t, rec.Metric(Field("age")).Valid)

	f, ok := ParseField("data_usage")
	require.True(t, ok)
	assert.Equal(t, DataUsage, f)
	_, ok = ParseField("battery")
	assert.False(t, ok)
}
