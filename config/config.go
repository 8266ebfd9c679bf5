package config

import (
	"blib/bridge"
	"blib/internal/timeutil"
	"blib/notify"
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyDatabasePath        = "database.path"
	KeyDatabaseEpoch       = "database.epoch"
	KeyBridgeClient        = "bridge.client"
	KeyBridgeDestination   = "bridge.destination"
	KeyBridgeInterval      = "bridge.interval"
	KeyBridgeActor         = "bridge.actor"
	KeyNotifierKind        = "notifier.kind"
	KeyNotifierWebhookURL  = "notifier.webhook_url"
	KeyRetryAttempts       = "retry.attempts"
	KeyRetryInitialBackoff = "retry.initial_backoff"
	KeyRetryMaxBackoff     = "retry.max_backoff"
	KeyLogLevel            = "log.level"
	KeyLogFile             = "log.file"
	KeyLogMaxSizeMB        = "log.max_size_mb"
	KeyLogMaxBackups       = "log.max_backups"
)

const (
	DefaultIntervalSeconds = 90
	DefaultLogMaxSizeMB    = 10
	DefaultLogMaxBackups   = 3
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Bridge   BridgeConfig   `mapstructure:"bridge"`
	Notifier NotifierConfig `mapstructure:"notifier"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Log      LogConfig      `mapstructure:"log"`
}

type DatabaseConfig struct {
	// Path is empty when the Billings default location should be used.
	Path  string `mapstructure:"path"`
	Epoch string `mapstructure:"epoch" validate:"omitempty,oneof=unix reference nsdate"`
}

type BridgeConfig struct {
	Client      string `mapstructure:"client"`
	Destination string `mapstructure:"destination"`
	// Interval is in seconds.
	Interval int    `mapstructure:"interval" validate:"gte=1"`
	Actor    string `mapstructure:"actor"`
}

type NotifierConfig struct {
	Kind       string `mapstructure:"kind" validate:"omitempty,oneof=adium webhook console"`
	WebhookURL string `mapstructure:"webhook_url" validate:"omitempty,url"`
}

type RetryConfig struct {
	Attempts       int           `mapstructure:"attempts" validate:"gte=1"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff" validate:"gt=0"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff" validate:"gtefield=InitialBackoff"`
}

type LogConfig struct {
	Level      string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=1"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
}

// IntervalDuration returns the poll interval as a duration.
func (b BridgeConfig) IntervalDuration() time.Duration {
	return time.Duration(b.Interval) * time.Second
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# blib configuration
database:
  # Empty uses ~/Library/Application Support/Billings/Database/billings.bid
  path: ""
  # unix for Billings 3.5 and later, reference for older NSDate databases
  epoch: "unix"

bridge:
  client: ""
  destination: ""
  interval: 90
  actor: "/me"

notifier:
  kind: "adium"
  webhook_url: ""

retry:
  attempts: 5
  initial_backoff: "2s"
  max_backoff: "1m"

log:
  level: "info"
  file: ""
  max_size_mb: 10
  max_backups: 3
`
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateNotifier(cfg.Notifier); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, "")
	v.SetDefault(KeyDatabaseEpoch, string(timeutil.EpochUnix))
	v.SetDefault(KeyBridgeClient, "")
	v.SetDefault(KeyBridgeDestination, "")
	v.SetDefault(KeyBridgeInterval, DefaultIntervalSeconds)
	v.SetDefault(KeyBridgeActor, bridge.DefaultActor)
	v.SetDefault(KeyNotifierKind, notify.KindAdium)
	v.SetDefault(KeyNotifierWebhookURL, "")
	retry := bridge.DefaultRetryPolicy()
	v.SetDefault(KeyRetryAttempts, retry.Attempts)
	v.SetDefault(KeyRetryInitialBackoff, retry.InitialBackoff)
	v.SetDefault(KeyRetryMaxBackoff, retry.MaxBackoff)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogMaxSizeMB, DefaultLogMaxSizeMB)
	v.SetDefault(KeyLogMaxBackups, DefaultLogMaxBackups)
}

func validateNotifier(cfg NotifierConfig) error {
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	if kind == notify.KindWebhook && strings.TrimSpace(cfg.WebhookURL) == "" {
		return fmt.Errorf("validation failed: notifier.webhook_url is required for notifier.kind webhook")
	}
	return nil
}
