package app

import (
	"encoding/json"
	"fmt"
	"log"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/nmea_trackpoints/internal/gps"
)

// Sink receives every decoded fix in input order.
type Sink interface {
	Emit(f gps.Fix) error
	Close() error
}

// emitAll hands f to every sink. Sink failures are logged and do not stop
// the run.
func emitAll(sinks []Sink, f gps.Fix) {
	for _, s := range sinks {
		if err := s.Emit(f); err != nil {
			log.Printf("sink %T: %v", s, err)
		}
	}
}

func closeAll(sinks []Sink) {
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.Printf("sink %T close: %v", s, err)
		}
	}
}

// MQTTSink publishes each fix as retained JSON on one topic.
type MQTTSink struct {
	client mqtt.Client
	topic  string
}

// NewMQTTSink connects to broker and returns a sink publishing to topic.
func NewMQTTSink(broker, clientID, topic string) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	log.Printf("connected to MQTT broker at %s, publishing to %s", broker, topic)
	return newMQTTSink(client, topic), nil
}

func newMQTTSink(client mqtt.Client, topic string) *MQTTSink {
	return &MQTTSink{client: client, topic: topic}
}

func (s *MQTTSink) Emit(f gps.Fix) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal fix: %w", err)
	}
	token := s.client.Publish(s.topic, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("publish %s: %w", s.topic, token.Error())
	}
	return nil
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
