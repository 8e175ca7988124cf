package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Unvalidated message policies for osc.unvalidated_policy.
const (
	// PolicyReject drops messages whose address has no validator (fail closed).
	PolicyReject = "reject"

	// PolicyForward forwards messages whose address has no validator (fail open).
	PolicyForward = "forward"
)

// Config is the root configuration structure for Gray Logic OSC.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	OSC       OSCConfig       `yaml:"osc"`
	Switcher  SwitcherConfig  `yaml:"switcher"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Database  DatabaseConfig  `yaml:"database"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// OSCConfig contains the inbound OSC receiver and routing settings.
type OSCConfig struct {
	ListenHost string `yaml:"listen_host"`
	ListenPort int    `yaml:"listen_port"`

	// ReadTimeout bounds each UDP read so the receiver notices shutdown (seconds).
	ReadTimeout int `yaml:"read_timeout"`

	// AddressPrefix is the root of the switcher's OSC address space.
	AddressPrefix string `yaml:"address_prefix"`

	// UnvalidatedPolicy governs addresses with no registered validator:
	// "reject" (default) or "forward".
	UnvalidatedPolicy string `yaml:"unvalidated_policy"`

	// SkipValidation lists concrete addresses that are dispatched without
	// running their validator.
	SkipValidation []string `yaml:"skip_validation"`
}

// SwitcherConfig identifies the controlled switcher and its command queue.
type SwitcherConfig struct {
	ID        string         `yaml:"id"`
	QueueSize int            `yaml:"queue_size"`
	Capacity  CapacityConfig `yaml:"capacity"`
}

// CapacityConfig holds the initial switcher topology used to expand
// address templates. Live state messages from the switcher refine it.
type CapacityConfig struct {
	MixEffects       int `yaml:"mix_effects"`
	Inputs           int `yaml:"inputs"`
	Aux              int `yaml:"aux"`
	UpstreamKeyers   int `yaml:"upstream_keyers"`
	DownstreamKeyers int `yaml:"downstream_keyers"`
	MediaPlayers     int `yaml:"media_players"`
	MediaClips       int `yaml:"media_clips"`
	MediaStills      int `yaml:"media_stills"`
	Macros           int `yaml:"macros"`
	SuperSourceBoxes int `yaml:"supersource_boxes"`
	AudioInputs      int `yaml:"audio_inputs"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// RetentionDays is how long drop events are kept. Zero keeps them forever.
	RetentionDays int `yaml:"retention_days"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`

	// PanelDir serves the drop monitor from disk instead of the embedded
	// copy. Empty uses the embedded page.
	PanelDir string `yaml:"panel_dir"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYLOGIC_OSC_SECTION_KEY
// For example: GRAYLOGIC_OSC_LISTEN_PORT, GRAYLOGIC_OSC_MQTT_HOST
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// The OSC listen port defaults to 3333, the port ATEM control surfaces
// conventionally send to.
func defaultConfig() *Config {
	return &Config{
		OSC: OSCConfig{
			ListenHost:        "0.0.0.0",
			ListenPort:        3333,
			ReadTimeout:       1,
			AddressPrefix:     "/atem",
			UnvalidatedPolicy: PolicyReject,
		},
		Switcher: SwitcherConfig{
			ID:        "atem-01",
			QueueSize: 256,
			Capacity: CapacityConfig{
				MixEffects:       1,
				Inputs:           8,
				Aux:              1,
				UpstreamKeyers:   1,
				DownstreamKeyers: 2,
				MediaPlayers:     2,
				MediaClips:       2,
				MediaStills:      20,
				Macros:           100,
				SuperSourceBoxes: 4,
				AudioInputs:      8,
			},
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-osc",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Database: DatabaseConfig{
			Path:          "./data/graylogic-osc.db",
			WALMode:       true,
			BusyTimeout:   5,
			RetentionDays: 30,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				AccessTokenTTL: 15,
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GRAYLOGIC_OSC_LISTEN_HOST"); v != "" {
		cfg.OSC.ListenHost = v
	}
	if v := os.Getenv("GRAYLOGIC_OSC_LISTEN_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.OSC.ListenPort = port
		}
	}
	if v := os.Getenv("GRAYLOGIC_OSC_UNVALIDATED_POLICY"); v != "" {
		cfg.OSC.UnvalidatedPolicy = v
	}

	if v := os.Getenv("GRAYLOGIC_OSC_SWITCHER_ID"); v != "" {
		cfg.Switcher.ID = v
	}

	if v := os.Getenv("GRAYLOGIC_OSC_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("GRAYLOGIC_OSC_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_OSC_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLOGIC_OSC_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("GRAYLOGIC_OSC_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("GRAYLOGIC_OSC_JWT_SECRET"); v != "" {
		cfg.Security.JWT.Secret = v
	}
}

// Validate checks the configuration for errors and security issues.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []string

	if c.OSC.ListenPort < 1 || c.OSC.ListenPort > 65535 {
		errs = append(errs, "osc.listen_port must be between 1 and 65535")
	}
	if !strings.HasPrefix(c.OSC.AddressPrefix, "/") {
		errs = append(errs, "osc.address_prefix must start with '/'")
	}
	switch c.OSC.UnvalidatedPolicy {
	case PolicyReject, PolicyForward:
	default:
		errs = append(errs, fmt.Sprintf("osc.unvalidated_policy must be %q or %q", PolicyReject, PolicyForward))
	}
	for _, addr := range c.OSC.SkipValidation {
		if !strings.HasPrefix(addr, "/") {
			errs = append(errs, fmt.Sprintf("osc.skip_validation entry %q must start with '/'", addr))
		}
	}

	if c.Switcher.ID == "" {
		errs = append(errs, "switcher.id is required")
	}
	if c.Switcher.QueueSize < 1 {
		errs = append(errs, "switcher.queue_size must be at least 1")
	}
	if c.Switcher.Capacity.MixEffects < 1 {
		errs = append(errs, "switcher.capacity.mix_effects must be at least 1")
	}
	if c.Switcher.Capacity.Inputs < 1 {
		errs = append(errs, "switcher.capacity.inputs must be at least 1")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.RetentionDays < 0 {
		errs = append(errs, "database.retention_days must not be negative")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Enabled {
		if c.API.Port < 1 || c.API.Port > 65535 {
			errs = append(errs, "api.port must be between 1 and 65535")
		}

		// The API can inject commands that move a live broadcast switcher,
		// so a weak signing secret is refused outright.
		const minJWTSecretLength = 32
		if c.Security.JWT.Secret == "" {
			errs = append(errs, "security.jwt.secret is required when the API is enabled (set GRAYLOGIC_OSC_JWT_SECRET)")
		} else if len(c.Security.JWT.Secret) < minJWTSecretLength {
			errs = append(errs, "security.jwt.secret must be at least 32 characters")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ListenAddr returns the host:port the OSC receiver binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.OSC.ListenHost, c.OSC.ListenPort)
}

// GetOSCReadTimeout returns the UDP read timeout as a Duration.
func (c *Config) GetOSCReadTimeout() time.Duration {
	return time.Duration(c.OSC.ReadTimeout) * time.Second
}

// GetRetention returns the drop event retention period, or zero to keep
// events forever.
func (c *Config) GetRetention() time.Duration {
	return time.Duration(c.Database.RetentionDays) * 24 * time.Hour
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
