package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/tracker-uplink/internal/logic"
	"github.com/sweeney/tracker-uplink/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"duration": func(d time.Duration) string {
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
	"volts": func(level int) string {
		return fmt.Sprintf("%.2f V", float64(level)/100)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Tracker {{.Config.DeviceID}}</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.ok { color: green; font-weight: bold; }
.warn { color: orange; }
.bad { color: red; }
</style>
</head>
<body>
<h1>Tracker {{.Config.DeviceID}}</h1>

<h2>Uplink</h2>
<table>
<tr><th>Network</th><td class="{{if .Stats.Joined}}ok{{else}}bad{{end}}">{{if .Stats.Joined}}joined{{else}}not joined{{end}}</td></tr>
<tr><th>In flight</th><td id="busy" class="{{if .Stats.Busy}}warn{{end}}">{{if .Stats.Busy}}yes{{else}}no{{end}}</td></tr>
<tr><th>Last report</th><td>{{if .Stats.LastSend.IsZero}}never{{else}}{{.Stats.LastSend.UTC.Format "2006-01-02T15:04:05Z"}}{{end}}</td></tr>
<tr><th>Interval</th><td>{{if eq .Interval 0}}disabled{{else}}{{duration .Interval}}{{end}}</td></tr>
<tr><th>Consecutive failures</th><td class="{{if .Stats.ConsecutiveFailures}}bad{{end}}">{{.Stats.ConsecutiveFailures}}</td></tr>
</table>

<h2>Battery</h2>
<table>
<tr><th>Level</th><td>{{volts .Stats.BatteryLevel}}</td></tr>
<tr><th>Protection</th><td id="protected" class="{{if .Stats.Protected}}warn{{else}}ok{{end}}">{{if .Stats.Protected}}active{{else}}off{{end}}</td></tr>
</table>

<h2>Counters</h2>
<table>
<tr><th>Cycles</th><td>{{.Stats.Cycles}}</td></tr>
<tr><th>Accepted</th><td>{{.Stats.Accepted}}</td></tr>
<tr><th>ACK / NAK</th><td>{{.Stats.Completed}} / {{.Stats.Failed}}</td></tr>
<tr><th>Radio busy</th><td>{{.Stats.RadioBusy}}</td></tr>
<tr><th>Rejected</th><td>{{.Stats.Rejected}}</td></tr>
<tr><th>Skipped</th><td>{{.Stats.Skipped}}</td></tr>
<tr><th>Motion delayed / coalesced</th><td>{{.Stats.DebounceArmed}} / {{.Stats.Coalesced}}</td></tr>
<tr><th>Downlinks</th><td>{{.Stats.Downlinks}}</td></tr>
</table>

<h2>Events handled</h2>
<table>
{{range .Events}}<tr><th>{{.Name}}</th><td>{{.Count}}</td></tr>
{{end}}</table>

<h2>System</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}ok{{else}}bad{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Data rate</th><td>DR{{.Config.DataRate}}</td></tr>
<tr><th>Environmental sensor</th><td>{{if .Config.HasEnv}}yes{{else}}no{{end}}</td></tr>
<tr><th>Uptime</th><td>{{duration .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> &middot; <a href="/metrics">metrics</a></p>
</body>
</html>
`

type eventCount struct {
	Name  string
	Count int
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Events []eventCount
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	for _, k := range logic.Priority {
		data.Events = append(data.Events, eventCount{k.String(), snap.Stats.Handled[k]})
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("web: render index: %v", err)
	}
}
