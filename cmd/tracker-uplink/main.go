// Command tracker-uplink samples the tracker's sensors and reports them
// over an MQTT uplink, following the tracker's scheduling policy.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/tracker-uplink/internal/config"
	"github.com/sweeney/tracker-uplink/internal/console"
	"github.com/sweeney/tracker-uplink/internal/gpio"
	"github.com/sweeney/tracker-uplink/internal/logic"
	"github.com/sweeney/tracker-uplink/internal/metrics"
	"github.com/sweeney/tracker-uplink/internal/mqtt"
	"github.com/sweeney/tracker-uplink/internal/payload"
	"github.com/sweeney/tracker-uplink/internal/sensor"
	"github.com/sweeney/tracker-uplink/internal/status"
	"github.com/sweeney/tracker-uplink/internal/timer"
	"github.com/sweeney/tracker-uplink/internal/web"
)

const (
	// dataQueue bounds data-carrying events waiting for the run loop.
	dataQueue  = 64
	// reportPort is the application port of tracker reports.
	reportPort = 2
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("config: %v", err)
	}

	if err := run(cfg); err != nil {
		// A non-zero exit lets the service manager restart us after a reset.
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config) error {
	done := make(chan struct{})
	defer close(done)
	queue := newEventQueue(dataQueue, done)
	sink := queue.Deliver

	// Initialize MQTT
	client := mqtt.NewClient(mqtt.ClientConfig{
		Broker:      cfg.Broker,
		DeviceID:    cfg.DeviceID,
		JoinTimeout: cfg.JoinTimeout,
	}, sink)
	defer client.Close()
	radio := client.Radio(mqtt.RadioConfig{
		DeviceID:       cfg.DeviceID,
		FPort:          reportPort,
		DataRate:       cfg.DataRate,
		ConfirmTimeout: cfg.ConfirmTimeout,
	})

	scheduler := timer.New(sink)
	defer scheduler.Stop()

	// Initialize sensors
	locator := sensor.NewStaticLocator(payload.Fix{
		Latitude:  cfg.Location.Latitude,
		Longitude: cfg.Location.Longitude,
		Altitude:  cfg.Location.Altitude,
	}, cfg.Location.FixTime, func() { sink(logic.LocationReady()) })
	defer locator.Stop()

	var accel sensor.Accelerometer
	if cfg.AccelDir != "" {
		accel = sensor.IIOAccelerometer{Dir: cfg.AccelDir}
	}
	var env sensor.Environmental
	if cfg.HasEnv {
		env = sensor.IIOEnvironment{Dir: cfg.EnvDir}
	}
	collector := sensor.NewCollector(sensor.SysfsBattery{Path: cfg.BatteryPath}, accel, env, locator)

	// Initialize GPIO
	if cfg.MotionPin != gpio.DisabledPin {
		line, err := gpio.NewMotionLine(cfg.MotionChip, cfg.MotionPin, func() { sink(logic.MotionTriggered()) })
		if err != nil {
			return fmt.Errorf("init motion line: %w", err)
		}
		defer line.Close()
	}

	observers := multiObserver{client.Observer(mqtt.DefaultBacklog)}
	var cons *console.Console
	if cfg.Console {
		c, err := console.New(sink)
		if err != nil {
			return fmt.Errorf("init console: %w", err)
		}
		defer c.Close()
		log.SetOutput(c.Stdout())
		observers = append(observers, c)
		cons = c
	}

	d := logic.NewDispatcher(logic.DefaultConfig(cfg.ReportInterval, cfg.HasEnv), logic.Deps{
		Radio:    radio,
		Sensors:  collector,
		Timers:   scheduler,
		Resetter: processResetter{},
		Observer: observers,
	})
	if cons != nil {
		d.SetHost(&console.Handler{Raise: d.Raise, Stats: d.Stats, Out: cons})
		go cons.Run()
	}

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		DeviceID:       cfg.DeviceID,
		ReportInterval: cfg.ReportInterval,
		HasEnv:         cfg.HasEnv,
		Broker:         cfg.Broker,
		DataRate:       cfg.DataRate,
		HTTPAddr:       cfg.HTTPAddr,
	})
	tracker.TrackConnection(client)

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		metricsHandler, err := metrics.Register(prometheus.NewRegistry(), tracker)
		if err != nil {
			return err
		}
		srv := web.New(cfg.HTTPAddr, tracker, metricsHandler)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	client.Join()
	scheduler.RestartCycle(cfg.ReportInterval)

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := client.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	log.Printf("started: device=%s interval=%v env=%v broker=%s dr=%d",
		cfg.DeviceID, cfg.ReportInterval, cfg.HasEnv, cfg.Broker, cfg.DataRate)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(d, client, tracker, time.Now, queue, sigCh)
}

// runLoop is the dispatcher's goroutine. Every event already queued is
// delivered before the pending kinds are drained, so repeated kinds coalesce.
func runLoop(d *logic.Dispatcher, publisher mqtt.Publisher, tracker *status.Tracker, now func() time.Time, queue *eventQueue, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			publishShutdown(publisher, tracker, now(), signalName(s))
			return nil

		case ev := <-queue.data:
			d.Handle(ev)
		case <-queue.wake:
		}

		queue.collect(d.Handle)
		d.Drain(now())

		// Update status tracker for HTTP/metrics consumers
		if tracker != nil {
			tracker.Update(d.Stats(), d.Interval())
		}

		if d.ResetRequested() {
			publishShutdown(publisher, tracker, now(), "RESET")
			return logic.ErrResetRequested
		}
	}
}

func publishShutdown(publisher mqtt.Publisher, tracker *status.Tracker, t time.Time, reason string) {
	event := mqtt.SystemEvent{
		Timestamp: t,
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if tracker != nil {
		event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	default:
		return "UNKNOWN"
	}
}

// multiObserver fans diagnostics out to several observers.
type multiObserver []logic.Observer

func (m multiObserver) Notify(msg string) {
	for _, o := range m {
		o.Notify(msg)
	}
}

// processResetter leaves the actual restart to runLoop's caller: the process
// exits non-zero and the service manager starts it again.
type processResetter struct{}

func (processResetter) Reset() {
	log.Printf("reset: too many failed uplinks, restarting")
}
