package mapview

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usage-map/internal/aggregate"
	"usage-map/internal/boundary"
	"usage-map/internal/region"
	"usage-map/internal/usage"
)

func rec(user, city string, screen float64, use string) usage.UsageRecord {
	return usage.UsageRecord{UserID: user, Location: city, ScreenTime: usage.Num(screen), PrimaryUse: use}
}

func feature(name string) boundary.Feature {
	return boundary.Feature{Name: name, Geometry: json.RawMessage(`{"type":"Point","coordinates":[0,0]}`)}
}

func TestScale_Bins(t *testing.T) {
	s := NewScale([]float64{2, 8, 5}, YlOrRd)
	require.Len(t, s.Edges, 7)
	assert.Equal(t, 2.0, s.Edges[0])
	assert.Equal(t, 8.0, s.Edges[6])
	assert.Equal(t, YlOrRd[0], s.Color(2))
	assert.Equal(t, YlOrRd[3], s.Color(5.5))
	assert.Equal(t, YlOrRd[5], s.Color(8))

	assert.Equal(t, NeutralFill, NewScale(nil, YlOrRd).Color(3))
	single := NewScale([]float64{4}, YlOrRd)
	assert.Equal(t, YlOrRd[5], single.Color(4))
}

func TestBuild_MarkerPerFeature(t *testing.T) {
	res := aggregate.Summarize([]usage.UsageRecord{
		rec("U1", "Mumbai", 3, "Social Media"),
		rec("U2", "Pune", 4, "Social Media"),
		rec("U3", "Delhi", 4, "Gaming"),
		rec("U4", "Chennai", 6, "Education"),
	})
	col := &boundary.Collection{Features: []boundary.Feature{
		feature("Maharashtra"), feature("Delhi"), feature("Kerala"), feature("Orissa"),
	}}

	a := Build(res, col, Options{})
	require.Len(t, a.Markers, len(col.Features))
	require.Len(t, a.Shapes, len(col.Features))
	assert.Equal(t, region.DefaultCenter, a.Center)
	assert.Equal(t, 5, a.Zoom)
	assert.Equal(t, usage.ScreenTime, a.Metric)

	mh := a.Markers[0]
	assert.True(t, mh.HasData)
	assert.Equal(t, dataIcon, mh.Icon)
	assert.Equal(t, "Maharashtra", mh.Tooltip)
	assert.Contains(t, mh.Popup, "3.5 hrs")
	assert.Contains(t, mh.Popup, "<b>Total Users:</b> 2")
	assert.Contains(t, mh.Popup, "Social Media")
	anchor, _ := region.Maharashtra.Anchor()
	assert.Equal(t, anchor, mh.Position)

	dl := a.Markers[1]
	assert.True(t, dl.HasData)
	assert.Equal(t, region.DefaultCenter, dl.Position)
	assert.Contains(t, dl.Popup, "4.0 hrs")

	for _, m := range a.Markers[2:] {
		assert.False(t, m.HasData, m.Name)
		assert.Equal(t, noDataIcon, m.Icon)
		assert.Contains(t, m.Popup, "No data available")
	}
	assert.Equal(t, NeutralFill, a.Shapes[2].Fill)
	assert.Equal(t, NeutralFill, a.Shapes[3].Fill)
	assert.Equal(t, YlOrRd[0], a.Shapes[0].Fill)
	assert.Equal(t, region.Kerala, a.Shapes[2].Region)
	assert.Empty(t, a.Shapes[3].Region)

	assert.Equal(t, []region.Mismatch{
		{Kind: region.MissingBoundary, Name: "Tamil Nadu"},
		{Kind: region.UnknownBoundaryName, Name: "Orissa"},
	}, a.Mismatches)
}

func TestBuild_AlternateMetric(t *testing.T) {
	res := aggregate.Summarize([]usage.UsageRecord{
		{UserID: "U1", Location: "Mumbai", DataUsage: usage.Num(10)},
		{UserID: "U2", Location: "Kolkata", DataUsage: usage.Num(40)},
		{UserID: "U3", Location: "Jaipur"},
	})
	col := &boundary.Collection{Features: []boundary.Feature{
		feature("Maharashtra"), feature("West Bengal"), feature("Rajasthan"),
	}}
	a := Build(res, col, Options{Metric: usage.DataUsage, Zoom: 6})
	assert.Equal(t, "Average Data Usage (GB/month)", a.Legend.Title)
	assert.Equal(t, 6, a.Zoom)
	assert.Equal(t, YlOrRd[0], a.Shapes[0].Fill)
	assert.Equal(t, YlOrRd[5], a.Shapes[1].Fill)
	assert.Equal(t, NeutralFill, a.Shapes[2].Fill, "region with rows but no valid metric")
	assert.True(t, a.Markers[2].HasData)
	assert.Contains(t, a.Markers[2].Popup, "n/a")
}

func TestBuild_EmptyInputs(t *testing.T) {
	a := Build(aggregate.Result{}, &boundary.Collection{}, Options{})
	assert.Empty(t, a.Markers)
	assert.Empty(t, a.Mismatches)
	assert.Empty(t, a.Legend.Colors)
}

func TestRenderFragment(t *testing.T) {
	res := aggregate.Summarize([]usage.UsageRecord{rec("U1", "Mumbai", 3, "Gaming <b>")})
	col := &boundary.Collection{Features: []boundary.Feature{feature("Maharashtra"), {Name: "Goa", Geometry: json.RawMessage("null")}}}
	a := Build(res, col, Options{})

	var b strings.Builder
	require.NoError(t, RenderFragment(&b, a, FragmentOptions{ID: "m1", Height: 400}))
	out := b.String()
	assert.Contains(t, out, `id="m1"`)
	assert.Contains(t, out, "height: 400px")
	assert.Contains(t, out, leafletJS)
	assert.Contains(t, out, "L.AwesomeMarkers.icon")
	assert.Contains(t, out, "Maharashtra")
	assert.NotContains(t, out, "Gaming <b>", "user text must be escaped")

	h, err := Fragment(a, FragmentOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(h), `id="usage-map"`)
}
