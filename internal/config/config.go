package config

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker      string // empty disables the MQTT sink
	MQTTClientID    string
	TopicTrackPoint string

	// GPS
	GPSSerialPort string
	GPSBaudRate   int

	// Live feed (websocket), empty disables it
	LiveServerAddr string

	// Conversion
	SkipInvalidPairs bool // log and skip pairs that fail to decode instead of aborting
	Verbose          bool // log every decoded fix and output line
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return &Config{
		MQTTClientID:    "nmea-trackpoints",
		TopicTrackPoint: "nmea/track",
		GPSSerialPort:   "/dev/serial0",
		GPSBaudRate:     9600,
	}
}

// Package-level state for the singleton: InitGlobal sets it once,
// Get reads it under the read lock.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads a KEY=VALUE configuration file on top of Default.
// Lines starting with # are comments.
func Load(configPath string) (*Config, error) {
	values, err := godotenv.Read(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// godotenv returns a map; sort so the first bad key reported is stable.
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cfg := Default()
	for _, key := range keys {
		if err := cfg.setValue(key, values[key]); err != nil {
			return nil, fmt.Errorf("config %s: %w", configPath, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID":
		c.MQTTClientID = value
	case "TOPIC_TRACK_POINT":
		c.TopicTrackPoint = value

	// GPS
	case "GPS_SERIAL_PORT":
		c.GPSSerialPort = value
	case "GPS_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid GPS_BAUD_RATE %q: %w", value, err)
		}
		if rate <= 0 {
			return fmt.Errorf("GPS_BAUD_RATE must be positive, got %d", rate)
		}
		c.GPSBaudRate = rate

	// Live feed
	case "LIVE_SERVER_ADDR":
		c.LiveServerAddr = value

	// Conversion
	case "SKIP_INVALID_PAIRS":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid SKIP_INVALID_PAIRS %q: %w", value, err)
		}
		c.SkipInvalidPairs = v
	case "VERBOSE":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid VERBOSE %q: %w", value, err)
		}
		c.Verbose = v

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks fields that other settings depend on.
func (c *Config) validate() error {
	if c.MQTTBroker != "" && c.TopicTrackPoint == "" {
		return fmt.Errorf("TOPIC_TRACK_POINT is required when MQTT_BROKER is set")
	}
	if c.MQTTBroker != "" && c.MQTTClientID == "" {
		return fmt.Errorf("MQTT_CLIENT_ID is required when MQTT_BROKER is set")
	}
	if c.GPSSerialPort == "" {
		return fmt.Errorf("GPS_SERIAL_PORT is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// An empty path installs Default. Only the first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		if configPath == "" {
			globalConfig = Default()
			return
		}
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
