package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/nmea_trackpoints/internal/config"
	"github.com/relabs-tech/nmea_trackpoints/internal/gps"
	"github.com/relabs-tech/nmea_trackpoints/internal/trackjs"
)

// RunTrackConsole subscribes to the track topic and prints every fix
// published by the converter or the capture tool until Ctrl+C.
func RunTrackConsole(cfg *config.Config) error {
	if cfg.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required for the console")
	}
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID + "-console")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicTrackPoint, 0, func(_ mqtt.Client, msg mqtt.Message) {
		if err := printFix(os.Stdout, msg.Payload()); err != nil {
			log.Printf("console: fix unmarshal error: %v", err)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicTrackPoint)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

func printFix(w io.Writer, payload []byte) error {
	var f gps.Fix
	if err := json.Unmarshal(payload, &f); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "[GPS ]  %s  lat=%.6f lon=%.6f alt=%dm\n",
		f.Timestamp(), f.Latitude, f.Longitude, trackjs.RoundHalfUp(f.Altitude))
	return err
}
