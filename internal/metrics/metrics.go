// Package metrics exposes the tracker's status as Prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/tracker-uplink/internal/logic"
	"github.com/sweeney/tracker-uplink/internal/status"
)

// Snapshotter provides the state the collector reports.
type Snapshotter interface {
	Snapshot() status.Snapshot
}

const namespace = "tracker"

var (
	eventsDesc = prometheus.NewDesc(namespace+"_events_handled_total",
		"Events handled by the dispatcher, by kind.", []string{"kind"}, nil)
	uplinksDesc = prometheus.NewDesc(namespace+"_uplink_attempts_total",
		"Report send attempts, by outcome.", []string{"result"}, nil)
	completionsDesc = prometheus.NewDesc(namespace+"_uplink_completions_total",
		"Completed uplinks, by outcome.", []string{"outcome"}, nil)
	motionDesc = prometheus.NewDesc(namespace+"_motion_debounce_total",
		"Motion events that armed or were coalesced into the delayed send.", []string{"action"}, nil)
	cyclesDesc = prometheus.NewDesc(namespace+"_cycles_total",
		"Sampling cycles started.", nil, nil)
	downlinksDesc = prometheus.NewDesc(namespace+"_downlinks_total",
		"Downlink payloads received.", nil, nil)
	resetsDesc = prometheus.NewDesc(namespace+"_resets_total",
		"Resets requested after repeated uplink failures.", nil, nil)
	failuresDesc = prometheus.NewDesc(namespace+"_consecutive_failures",
		"Consecutive failed uplinks.", nil, nil)
	busyDesc = prometheus.NewDesc(namespace+"_uplink_busy",
		"1 while an accepted uplink has not completed.", nil, nil)
	batteryDesc = prometheus.NewDesc(namespace+"_battery_level",
		"Last battery level in 10 mV units.", nil, nil)
	protectedDesc = prometheus.NewDesc(namespace+"_battery_protected",
		"1 while battery protection is active.", nil, nil)
	intervalDesc = prometheus.NewDesc(namespace+"_report_interval_seconds",
		"Periodic report interval in effect.", nil, nil)
	joinedDesc = prometheus.NewDesc(namespace+"_joined",
		"1 once the network join succeeded.", nil, nil)
	connectedDesc = prometheus.NewDesc(namespace+"_mqtt_connected",
		"1 while the broker connection is up.", nil, nil)
	uptimeDesc = prometheus.NewDesc(namespace+"_uptime_seconds",
		"Seconds since the daemon started.", nil, nil)
)

// Collector reads a status snapshot on every scrape.
type Collector struct {
	source Snapshotter
}

// NewCollector creates a Collector over source.
func NewCollector(source Snapshotter) *Collector {
	return &Collector{source: source}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		eventsDesc, uplinksDesc, completionsDesc, motionDesc, cyclesDesc,
		downlinksDesc, resetsDesc, failuresDesc, busyDesc, batteryDesc,
		protectedDesc, intervalDesc, joinedDesc, connectedDesc, uptimeDesc,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.source.Snapshot()
	st := snap.Stats

	counter := func(d *prometheus.Desc, v int, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), labels...)
	}
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}

	for _, k := range logic.Priority {
		counter(eventsDesc, st.Handled[k], k.String())
	}
	counter(uplinksDesc, st.Accepted, "accepted")
	counter(uplinksDesc, st.RadioBusy, "radio_busy")
	counter(uplinksDesc, st.Rejected, "rejected")
	counter(uplinksDesc, st.Skipped, "skipped")
	counter(completionsDesc, st.Completed, "ack")
	counter(completionsDesc, st.Failed, "nak")
	counter(motionDesc, st.DebounceArmed, "armed")
	counter(motionDesc, st.Coalesced, "coalesced")
	counter(cyclesDesc, st.Cycles)
	counter(downlinksDesc, st.Downlinks)
	counter(resetsDesc, st.Resets)

	gauge(failuresDesc, float64(st.ConsecutiveFailures))
	gauge(busyDesc, boolValue(st.Busy))
	gauge(batteryDesc, float64(st.BatteryLevel))
	gauge(protectedDesc, boolValue(st.Protected))
	gauge(intervalDesc, snap.Interval.Seconds())
	gauge(joinedDesc, boolValue(st.Joined))
	gauge(connectedDesc, boolValue(snap.MQTTConnected))
	gauge(uptimeDesc, snap.Uptime().Seconds())
}

// Register adds a Collector over source to reg and returns the /metrics
// handler serving reg.
func Register(reg *prometheus.Registry, source Snapshotter) (http.Handler, error) {
	if err := reg.Register(NewCollector(source)); err != nil {
		return nil, fmt.Errorf("register tracker collector: %w", err)
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
