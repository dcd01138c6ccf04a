package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/boilerstat/internal/logic"
	"github.com/sweeney/boilerstat/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"onOff": func(on bool) string {
		if on {
			return "ON"
		}
		return "OFF"
	},
	"yesNo": func(v bool) string {
		if v {
			return "yes"
		}
		return "no"
	},
	"mode": status.ModeString,
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="10">
<title>Boilerstat</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.ON, .yes { color: green; font-weight: bold; }
.OFF { color: #888; }
.no { color: red; }
.DEMO { color: orange; font-weight: bold; }
</style>
</head>
<body>
<h1>Boilerstat</h1>

<h2>Inputs</h2>
<table>
{{range .Inputs}}<tr><th>{{.Name}}</th><td class="{{onOff .On}}">{{onOff .On}}</td></tr>
{{end}}</table>

<h2>Bridge</h2>
<table>
<tr><th>Mode</th><td class="{{mode .Demo}}">{{mode .Demo}}</td></tr>
<tr><th>Indicator</th><td>{{.Display}}</td></tr>
<tr><th>Transport</th><td class="{{yesNo .TransportReady}}">{{yesNo .TransportReady}}</td></tr>
<tr><th>MQTT session</th><td class="{{yesNo .SessionReady}}">{{yesNo .SessionReady}}</td></tr>
<tr><th>Time synced</th><td class="{{yesNo .TimeReady}}">{{yesNo .TimeReady}}</td></tr>
<tr><th>Error</th><td>{{if .ErrorFlagged}}FLAGGED{{else}}none{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Publishing</h2>
<table>
<tr><th>Published</th><td>{{.Counts.Published}}</td></tr>
<tr><th>Failed</th><td>{{.Counts.PublishFailed}}</td></tr>
<tr><th>Skipped</th><td>{{.Counts.Skipped}}</td></tr>
<tr><th>Control messages</th><td>{{.Counts.ControlMessages}} ({{.Counts.ControlRejected}} rejected)</td></tr>
{{with .LastReading}}<tr><th>Last reading</th><td>{{.FormattedTimestamp}}{{if .IsDemo}} (demo){{end}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Publish</th><td>{{.Config.PublishMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.StableCount}} samples within {{.Config.DebounceMs}}ms</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> · <a href="/metrics">metrics</a></p>
</body>
</html>
`

type inputRow struct {
	Name string
	On   bool
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Inputs []inputRow
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	for _, ch := range logic.Channels {
		data.Inputs = append(data.Inputs, inputRow{Name: ch.String(), On: snap.Channels[ch]})
	}
	indexTmpl.Execute(w, data)
}
