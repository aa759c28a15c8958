package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the bell-timer binaries.
type Config struct {
	// ListenAddress is the address the HTTP API binds to.
	ListenAddress string `yaml:"listen_addr"`
	// ServerURL is the base URL clients use to reach the HTTP API.
	ServerURL string `yaml:"server_url"`
	// AlarmsFile is the path to the JSON file storing the alarm list.
	AlarmsFile string `yaml:"alarms_file"`
	// AudioDir is the directory holding the .wav sound library.
	AudioDir string `yaml:"audio_dir"`
	// TickInterval is how often the scheduler evaluates due alarms.
	TickInterval time.Duration `yaml:"tick_interval"`
	// RingDuration bounds how long a single playback may run.
	RingDuration time.Duration `yaml:"ring_duration"`
	// MaxAlarms caps the number of stored alarms.
	MaxAlarms int `yaml:"max_alarms"`
	// WatchdogTimeout is the heartbeat staleness threshold before escalation.
	WatchdogTimeout time.Duration `yaml:"watchdog_timeout"`
	// Timeout is the duration for HTTP client operations.
	Timeout time.Duration `yaml:"timeout"`
	// UpdateFolder is the URL where update artifacts are hosted.
	UpdateFolder string `yaml:"update_folder"`
	// LogLevel selects the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "bell-timer-settings.yaml"

	// DefaultAlarmsFilename is the default filename for the alarm list JSON.
	DefaultAlarmsFilename = "alarms.json"

	// DefaultAudioDir is the default sound library location.
	DefaultAudioDir = "static/audio"

	// DefaultListenAddress matches the port the original appliance exposed.
	DefaultListenAddress = ":5001"

	// DefaultServerURL points clients at a server on the same host.
	DefaultServerURL = "http://127.0.0.1:5001"

	// DefaultTickInterval keeps checks responsive without double-firing
	// within a minute (the scheduler dedupes per minute regardless).
	DefaultTickInterval = 30 * time.Second

	// DefaultRingDuration bounds a single playback.
	DefaultRingDuration = 60 * time.Second

	// DefaultMaxAlarms caps the stored alarm list.
	DefaultMaxAlarms = 50

	// DefaultWatchdogTimeout is the heartbeat staleness threshold.
	DefaultWatchdogTimeout = 10 * time.Minute

	// DefaultTimeout is the default duration for HTTP client operations.
	DefaultTimeout = 5 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for formatting problems and
// fills unset fields with defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	if _, err := net.ResolveTCPAddr("tcp", cfg.ListenAddress); err != nil {
		return fmt.Errorf("invalid listen address: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.ServerURL); err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	if cfg.UpdateFolder == "" {
		return nil
	}

	if _, err := url.ParseRequestURI(cfg.UpdateFolder); err != nil {
		return fmt.Errorf("invalid update folder URI: %w", err)
	}

	return nil
}

// applyDefaults fills zero-valued fields in place.
func applyDefaults(cfg *Config) {
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultServerURL
	}

	if cfg.AlarmsFile == "" {
		cfg.AlarmsFile = DefaultAlarmsFilename
	}

	if cfg.AudioDir == "" {
		cfg.AudioDir = DefaultAudioDir
	}

	if cfg.TickInterval <= 0 {
		cfg.TickInterval = DefaultTickInterval
	}

	if cfg.RingDuration <= 0 {
		cfg.RingDuration = DefaultRingDuration
	}

	if cfg.MaxAlarms <= 0 {
		cfg.MaxAlarms = DefaultMaxAlarms
	}

	if cfg.WatchdogTimeout <= 0 {
		cfg.WatchdogTimeout = DefaultWatchdogTimeout
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
}
