package mapview

import (
	"html/template"
	"io"
	"strings"
)

const (
	leafletCSS        = "https://cdn.jsdelivr.net/npm/leaflet@1.9.4/dist/leaflet.css"
	leafletJS         = "https://cdn.jsdelivr.net/npm/leaflet@1.9.4/dist/leaflet.js"
	awesomeMarkersCSS = "https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.css"
	awesomeMarkersJS  = "https://cdnjs.cloudflare.com/ajax/libs/Leaflet.awesome-markers/2.0.2/leaflet.awesome-markers.js"
	fontAwesomeCSS    = "https://cdn.jsdelivr.net/npm/@fortawesome/fontawesome-free@6.2.0/css/all.min.css"
	glyphiconCSS      = "https://netdna.bootstrapcdn.com/bootstrap/3.0.0/css/bootstrap-glyphicons.css"
)

var fragmentTmpl = template.Must(template.New("map").Parse(`
<link rel="stylesheet" href="{{.Assets.LeafletCSS}}">
<link rel="stylesheet" href="{{.Assets.AwesomeCSS}}">
<link rel="stylesheet" href="{{.Assets.FontAwesomeCSS}}">
<link rel="stylesheet" href="{{.Assets.GlyphiconCSS}}">
<script src="{{.Assets.LeafletJS}}"></script>
<script src="{{.Assets.AwesomeJS}}"></script>
<style>
.usage-legend { background: #fff; padding: 6px 8px; font: 12px/16px sans-serif; border-radius: 4px; box-shadow: 0 0 6px rgba(0,0,0,.2); }
.usage-legend i { display: inline-block; width: 14px; height: 14px; margin-right: 6px; vertical-align: middle; }
</style>
<div id="{{.ID}}" class="usage-map" style="width: 100%; height: {{.Height}}px;"></div>
<script>
(function () {
  var data = {{.Data}};
  var map = L.map({{.ID}}, { center: [data.center.lat, data.center.lon], zoom: data.zoom });
  L.tileLayer("https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png", {
    attribution: "&copy; OpenStreetMap contributors"
  }).addTo(map);
  L.control.scale().addTo(map);

  var base = { color: "black", weight: 1, opacity: 0.2 };
  data.shapes.forEach(function (s) {
    if (!s.geometry) { return; }
    var layer = L.geoJSON({ type: "Feature", properties: { name: s.name }, geometry: s.geometry }, {
      style: function () {
        return Object.assign({ fillColor: s.fill, fillOpacity: s.fill_opacity }, base);
      }
    });
    layer.on("mouseover", function (e) { e.layer.setStyle({ weight: 3, opacity: 0.8 }); });
    layer.on("mouseout", function (e) { e.layer.setStyle(base); });
    layer.addTo(map);
  });

  data.markers.forEach(function (m) {
    var icon = L.AwesomeMarkers.icon({ icon: m.icon.name, markerColor: m.icon.color, prefix: m.icon.prefix });
    L.marker([m.position.lat, m.position.lon], { icon: icon })
      .bindPopup(m.popup, { maxWidth: 300 })
      .bindTooltip(m.tooltip)
      .addTo(map);
  });

  var legend = L.control({ position: "bottomright" });
  legend.onAdd = function () {
    var div = L.DomUtil.create("div", "usage-legend");
    var html = "<b>" + data.legend.title + "</b><br>";
    var edges = data.legend.edges || [];
    (data.legend.colors || []).forEach(function (c, i) {
      html += '<i style="background:' + c + '"></i>' + edges[i].toFixed(1) + " &ndash; " + edges[i + 1].toFixed(1) + "<br>";
    });
    html += '<i style="background:{{.Neutral}}"></i>No data';
    div.innerHTML = html;
    return div;
  };
  legend.addTo(map);
})();
</script>
`))

type assets struct {
	LeafletCSS, LeafletJS, AwesomeCSS, AwesomeJS, FontAwesomeCSS, GlyphiconCSS string
}

type fragmentData struct {
	ID      string
	Height  int
	Data    *Artifact
	Neutral string
	Assets  assets
}

// FragmentOptions：HTML 片段参数
type FragmentOptions struct {
	ID     string
	Height int
}

// RenderFragment：把地图输出为可嵌入页面的 HTML 片段（Leaflet 客户端渲染）
func RenderFragment(w io.Writer, a *Artifact, opts FragmentOptions) error {
	if opts.ID == "" {
		opts.ID = "usage-map"
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	return fragmentTmpl.Execute(w, fragmentData{
		ID:      opts.ID,
		Height:  opts.Height,
		Data:    a,
		Neutral: NeutralFill,
		Assets: assets{
			LeafletCSS: leafletCSS, LeafletJS: leafletJS,
			AwesomeCSS: awesomeMarkersCSS, AwesomeJS: awesomeMarkersJS,
			FontAwesomeCSS: fontAwesomeCSS, GlyphiconCSS: glyphiconCSS,
		},
	})
}

// Fragment：RenderFragment 的字符串形式，供页面模板直接嵌入
func Fragment(a *Artifact, opts FragmentOptions) (template.HTML, error) {
	var b strings.Builder
	if err := RenderFragment(&b, a, opts); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
