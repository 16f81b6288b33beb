// Package config loads tracker settings from an optional YAML file and
// command-line flags. Flags override the file; the file overrides defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/tracker-uplink/internal/gpio"
	"github.com/sweeney/tracker-uplink/internal/sensor"
)

// Location is the position reported by the static locator.
type Location struct {
	Latitude  float64       `yaml:"lat"`
	Longitude float64       `yaml:"lon"`
	Altitude  float64       `yaml:"alt"`
	FixTime   time.Duration `yaml:"fix_time"`
}

// Config holds every runtime setting.
type Config struct {
	DeviceID       string        `yaml:"device_id"`
	ReportInterval time.Duration `yaml:"report_interval"`
	HasEnv         bool          `yaml:"has_env"`

	Broker         string        `yaml:"broker"`
	DataRate       int           `yaml:"data_rate"`
	ConfirmTimeout time.Duration `yaml:"confirm_timeout"`
	JoinTimeout    time.Duration `yaml:"join_timeout"`

	MotionChip  string `yaml:"motion_chip"`
	MotionPin   int    `yaml:"motion_pin"`
	BatteryPath string `yaml:"battery_path"`
	AccelDir    string `yaml:"accel_dir"`
	EnvDir      string `yaml:"env_dir"`

	Location Location `yaml:"location"`

	HTTPAddr string `yaml:"http"`
	Console  bool   `yaml:"console"`
}

// Default returns the built-in settings. DeviceID is left empty; Parse
// generates one when neither file nor flags set it.
func Default() Config {
	return Config{
		ReportInterval: 90 * time.Second,
		Broker:         "tcp://127.0.0.1:1883",
		DataRate:       3,
		ConfirmTimeout: 30 * time.Second,
		JoinTimeout:    30 * time.Second,
		MotionChip:     gpio.DefaultChip,
		MotionPin:      gpio.DisabledPin,
		BatteryPath:    sensor.DefaultBatteryPath,
		Location:       Location{FixTime: 5 * time.Second},
		HTTPAddr:       ":8080",
	}
}

// Load reads a YAML file over cfg. Unknown keys are an error. An empty file
// leaves cfg unchanged.
func Load(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings for values the tracker cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.DeviceID == "" {
		errs = append(errs, errors.New("device id is empty"))
	}
	if c.ReportInterval < 0 {
		errs = append(errs, fmt.Errorf("report interval %v is negative", c.ReportInterval))
	}
	if c.Broker == "" {
		errs = append(errs, errors.New("broker is empty"))
	}
	if c.DataRate < 0 || c.DataRate > 7 {
		errs = append(errs, fmt.Errorf("data rate %d out of range 0-7", c.DataRate))
	}
	if c.ConfirmTimeout <= 0 {
		errs = append(errs, fmt.Errorf("confirm timeout %v must be positive", c.ConfirmTimeout))
	}
	if c.JoinTimeout <= 0 {
		errs = append(errs, fmt.Errorf("join timeout %v must be positive", c.JoinTimeout))
	}
	if c.Location.FixTime < 0 {
		errs = append(errs, fmt.Errorf("fix time %v is negative", c.Location.FixTime))
	}
	return errors.Join(errs...)
}

// Parse builds the configuration from args (without the program name).
// A --config file is applied first, then every flag given on the command line.
func Parse(args []string) (Config, error) {
	cfg := Default()

	if path := configPath(args); path != "" {
		if err := Load(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	fs := flag.NewFlagSet("tracker-uplink", flag.ContinueOnError)
	fs.String("config", "", "YAML configuration file")
	fs.StringVar(&cfg.DeviceID, "device-id", cfg.DeviceID, "Device identifier (generated if empty)")
	fs.DurationVar(&cfg.ReportInterval, "interval", cfg.ReportInterval, "Report interval (0 disables periodic reports)")
	fs.BoolVar(&cfg.HasEnv, "env", cfg.HasEnv, "Environmental sensor present (long reports)")
	fs.StringVar(&cfg.Broker, "broker", cfg.Broker, "MQTT broker address")
	fs.IntVar(&cfg.DataRate, "data-rate", cfg.DataRate, "Data rate (0-7), limits the payload size")
	fs.DurationVar(&cfg.ConfirmTimeout, "confirm-timeout", cfg.ConfirmTimeout, "Uplink confirmation timeout")
	fs.DurationVar(&cfg.JoinTimeout, "join-timeout", cfg.JoinTimeout, "Network join timeout")
	fs.StringVar(&cfg.MotionChip, "motion-chip", cfg.MotionChip, "GPIO chip for the motion interrupt")
	fs.IntVar(&cfg.MotionPin, "motion-pin", cfg.MotionPin, "GPIO line for the motion interrupt (-1 disables)")
	fs.StringVar(&cfg.BatteryPath, "battery", cfg.BatteryPath, "Battery voltage sysfs file")
	fs.StringVar(&cfg.AccelDir, "accel", cfg.AccelDir, "IIO accelerometer directory (empty disables)")
	fs.StringVar(&cfg.EnvDir, "env-dir", cfg.EnvDir, "IIO environmental sensor directory")
	fs.Float64Var(&cfg.Location.Latitude, "lat", cfg.Location.Latitude, "Reported latitude")
	fs.Float64Var(&cfg.Location.Longitude, "lon", cfg.Location.Longitude, "Reported longitude")
	fs.Float64Var(&cfg.Location.Altitude, "alt", cfg.Location.Altitude, "Reported altitude (m)")
	fs.DurationVar(&cfg.Location.FixTime, "fix-time", cfg.Location.FixTime, "Simulated location fix time")
	fs.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP status address (empty to disable)")
	fs.BoolVar(&cfg.Console, "console", cfg.Console, "Interactive host console on stdin")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.DeviceID == "" {
		cfg.DeviceID = NewDeviceID()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// NewDeviceID returns a random device identifier.
func NewDeviceID() string {
	return "tracker-" + uuid.New().String()[:8]
}

// configPath finds the --config value without parsing the other flags.
func configPath(args []string) string {
	for i, a := range args {
		if a == "--" {
			break
		}
		name := strings.TrimLeft(a, "-")
		if name == a {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
