package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "trackpoints_config.txt")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `# capture settings
MQTT_BROKER=tcp://localhost:1883
TOPIC_TRACK_POINT=car/track
GPS_SERIAL_PORT=/dev/ttyUSB0
GPS_BAUD_RATE=38400
LIVE_SERVER_ADDR=:8080
SKIP_INVALID_PAIRS=true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" || cfg.TopicTrackPoint != "car/track" {
		t.Fatalf("unexpected mqtt settings: %+v", cfg)
	}
	if cfg.GPSSerialPort != "/dev/ttyUSB0" || cfg.GPSBaudRate != 38400 {
		t.Fatalf("unexpected gps settings: %+v", cfg)
	}
	if cfg.LiveServerAddr != ":8080" || !cfg.SkipInvalidPairs || cfg.Verbose {
		t.Fatalf("unexpected flags: %+v", cfg)
	}
	// Not set in the file, so the default survives.
	if cfg.MQTTClientID != "nmea-trackpoints" {
		t.Fatalf("expected default client id, got %q", cfg.MQTTClientID)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "IMU_SAMPLE_INTERVAL=10\n",
		"bad baud":      "GPS_BAUD_RATE=fast\n",
		"zero baud":     "GPS_BAUD_RATE=0\n",
		"bad bool":      "VERBOSE=maybe\n",
		"missing topic": "MQTT_BROKER=tcp://localhost:1883\nTOPIC_TRACK_POINT=\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Fatalf("expected read error, got %v", err)
	}
}
