package server

import (
	"bytes"
	"html/template"
	"time"

	"github.com/omarshaarawi/hoopscores/internal/gameday"
	"github.com/omarshaarawi/hoopscores/internal/models"
)

var funcs = template.FuncMap{
	"updated": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.In(gameday.Zone).Format("Jan 2, 2006, 3:04:05 PM")
	},
}

var boardTmpl = template.Must(template.New("board").Funcs(funcs).Parse(`
{{- define "team" -}}
<div class="team-stats">
  <h3>{{.TeamName}}</h3>
  {{- if .Message}}
  <p class="empty">{{.Message}}</p>
  {{- else}}
  <table class="stats-table">
    <thead><tr><th class="player">Player</th>{{range .Headers}}<th>{{.}}</th>{{end}}</tr></thead>
    <tbody>
    {{- range .Rows}}
      <tr><td class="player">{{.Name}}</td>{{range .Stats}}<td>{{.}}</td>{{end}}</tr>
    {{- end}}
    </tbody>
  </table>
  {{- end}}
</div>
{{- end -}}
<div class="board board-{{.Kind}}">
  <div class="counter">Game <span id="current-game-number">{{.Position}}</span> of <span id="total-games">{{.Total}}</span>{{if .Paused}} (paused){{end}}</div>
  {{- if eq .Kind "game"}}{{with .Game}}
  <div id="game-info">
    <h2>{{.Title}}</h2>
    <p>{{.Venue}}{{if .Date}} &bull; {{.Date}}{{end}}</p>
  </div>
  <div class="team-header">
    <div class="team">{{if .Away.Logo}}<img src="{{.Away.Logo}}" alt="{{.Away.DisplayName}}">{{end}}<b>{{.Away.Abbreviation}}</b> <span class="score">{{.Away.Score}}</span></div>
    <div class="status">FINAL<br><small>{{.Status}}</small></div>
    <div class="team"><b>{{.Home.Abbreviation}}</b> <span class="score">{{.Home.Score}}</span>{{if .Home.Logo}}<img src="{{.Home.Logo}}" alt="{{.Home.DisplayName}}">{{end}}</div>
  </div>
  <div class="stats">
    {{template "team" .AwayStats}}
    {{template "team" .HomeStats}}
  </div>
  {{- end}}
  {{- else if eq .Kind "empty"}}
  <h3>No Games Yesterday</h3>
  <p>{{.Message}}</p>
  {{- else if eq .Kind "error"}}
  <h3>Unable to Load Data</h3>
  <p>{{.Message}}</p>
  {{- else}}
  <p class="loading">{{.Message}}</p>
  {{- end}}
  {{- with updated .UpdatedAt}}
  <div class="updated">Last updated <span id="last-updated">{{.}}</span></div>
  {{- end}}
</div>
`))

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>HoopScores Rotator</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1f2937; }
.team-header { display: flex; justify-content: space-around; align-items: center; }
.team img { width: 3rem; height: 3rem; vertical-align: middle; }
.score { font-size: 1.5rem; font-weight: bold; }
.stats { display: grid; grid-template-columns: 1fr 1fr; gap: 1.5rem; }
.stats-table td, .stats-table th { text-align: right; padding: 0 .5rem; }
.stats-table .player { text-align: left; }
</style>
</head>
<body>
<nav>
  <button id="prev-game">Previous</button>
  <button id="toggle-rotation">{{if .Paused}}Resume{{else}}Pause{{end}}</button>
  <button id="next-game">Next</button>
</nav>
<div id="boxscore-container">{{.Board}}</div>
<script>
(function () {
  var box = document.getElementById('boxscore-container');
  var proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
  var ws = new WebSocket(proto + location.host + '/ws');
  function send(msg) { if (ws.readyState === 1) ws.send(JSON.stringify(msg)); }
  var toggle = document.getElementById('toggle-rotation');
  ws.onmessage = function (e) {
    var m = JSON.parse(e.data);
    if (m.html) box.innerHTML = m.html;
    if (m.view) toggle.textContent = m.view.paused ? 'Resume' : 'Pause';
  };
  document.getElementById('prev-game').onclick = function () { send({type: 'previous'}); };
  document.getElementById('next-game').onclick = function () { send({type: 'next'}); };
  toggle.onclick = function () { send({type: 'toggle'}); };
  document.addEventListener('keydown', function (e) {
    if (e.key === 'ArrowLeft') send({type: 'previous'});
    if (e.key === 'ArrowRight') send({type: 'next'});
    if (e.key === ' ') { e.preventDefault(); send({type: 'toggle'}); }
  });
  document.addEventListener('visibilitychange', function () {
    send({type: 'visibility', visible: !document.hidden});
  });
})();
</script>
</body>
</html>
`))

// RenderBoard returns the HTML fragment for view.
type pageData struct {
	Board  template.HTML
	Paused bool
}

func RenderBoard(view models.View) (template.HTML, error) {
	var buf bytes.Buffer
	if err := boardTmpl.Execute(&buf, view); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
