// mapview/render.go
package mapview

import (
	"bytes"
	"html/template"
	"net/url"
	"time"
)

// CountryLink is the dashboard URL filtering the team list by country.
func CountryLink(country string) string {
	return "/?" + url.Values{"country": {country}}.Encode()
}

type page struct {
	Markers     []Marker
	GeneratedAt string
	Notice      string
}

var pageTemplate = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Teams by country</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body data-generated-at="{{.GeneratedAt}}">
<div id="map"></div>
{{if .Notice}}<p id="map-notice">{{.Notice}}</p>{{end}}
<ul id="marker-index" hidden>
{{range .Markers}}<li class="marker" data-country="{{.Country}}" data-count="{{.Count}}"><a href="{{.Link}}">{{.Country}}: {{.Count}} teams</a></li>
{{end}}</ul>
<script>
function filterByCountry(country, link) {
  if (window.parent && window.parent !== window && window.parent.filterByCountry) {
    window.parent.filterByCountry(country);
  } else {
    window.open(link, '_blank');
  }
}
var map = L.map('map').setView([20, 0], 2);
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var markers = {{.Markers}};
markers.forEach(function (m) {
  var box = document.createElement('div');
  var title = document.createElement('h4');
  title.textContent = m.country;
  var count = document.createElement('p');
  count.textContent = m.count + ' teams and leagues';
  var button = document.createElement('button');
  button.className = 'btn btn-primary btn-sm';
  button.textContent = 'View Teams';
  button.onclick = function () { filterByCountry(m.country, m.link); };
  box.appendChild(title);
  box.appendChild(count);
  box.appendChild(button);
  L.marker([m.lat, m.lng])
    .bindPopup(box, {maxWidth: 250})
    .bindTooltip(m.country + ': ' + m.count + ' teams')
    .addTo(map);
});
</script>
</body>
</html>
`))

// minimalPage is written when the full page cannot be rendered.
const minimalPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Teams by country</title></head>
<body>
<div id="map"></div>
<p id="map-notice">Map data is currently unavailable.</p>
<ul id="marker-index" hidden></ul>
</body>
</html>
`

func render(markers []Marker, generatedAt time.Time, notice string) ([]byte, error) {
	if markers == nil {
		markers = []Marker{}
	}
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, page{
		Markers:     markers,
		GeneratedAt: generatedAt.UTC().Format(time.RFC3339),
		Notice:      notice,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
