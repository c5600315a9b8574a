package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	nmea "github.com/adrianmo/go-nmea"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/nmea_trackpoints/internal/config"
	"github.com/relabs-tech/nmea_trackpoints/internal/gps"
)

var recordedPrefixes = map[string]bool{
	"GP" + nmea.TypeGGA: true,
	"GP" + nmea.TypeRMC: true,
}

// Capture reads raw NMEA from a receiver, appends every checksum-valid
// GPGGA/GPRMC sentence to logw in the converter's input format and decodes
// pairs live into sinks. It returns at EOF or once ctx is done.
func Capture(ctx context.Context, r io.Reader, logw io.Writer, sinks ...Sink) (Stats, error) {
	var (
		stats  Stats
		pairer gps.Pairer
	)
	reader := bufio.NewReader(r)
	bw := bufio.NewWriter(logw)

	finish := func(err error) (Stats, error) {
		stats.Orphans = pairer.Orphans
		stats.Dropped = pairer.Dropped
		if ferr := bw.Flush(); ferr != nil && err == nil {
			err = ferr
		}
		return stats, err
	}

	for {
		if ctx.Err() != nil {
			return finish(nil)
		}
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF || ctx.Err() != nil {
				return finish(nil)
			}
			return finish(fmt.Errorf("gps read: %w", err))
		}
		stats.Lines++

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, nmea.SentenceStart) {
			continue
		}
		sentence, err := nmea.Parse(line)
		if err != nil {
			// partial sentences are common right after the port opens
			stats.Rejected++
			continue
		}
		if !recordedPrefixes[sentence.Prefix()] {
			continue
		}

		if _, err := bw.WriteString(line + "\n"); err != nil {
			return finish(fmt.Errorf("write log: %w", err))
		}
		if err := bw.Flush(); err != nil {
			return finish(fmt.Errorf("write log: %w", err))
		}
		stats.Recorded++

		pair, ok := pairer.Feed(line)
		if !ok {
			continue
		}
		stats.Pairs++
		fix, err := gps.Decode(pair.GGA, pair.RMC)
		if err != nil {
			stats.Skipped++
			log.Printf("capture: skipping pair: %v", err)
			continue
		}
		stats.Points++
		emitAll(sinks, fix)
	}
}

// RunCapture records the GPS receiver on cfg.GPSSerialPort into logPath
// (appending) until ctx is done, publishing live fixes to the configured
// MQTT broker and websocket feed.
func RunCapture(ctx context.Context, cfg *config.Config, logPath string) error {
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer logFile.Close()

	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("open %s: %w", serialOpts.PortName, err)
	}
	log.Printf("capture: GPS serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	var sinks []Sink
	if cfg.MQTTBroker != "" {
		s, err := NewMQTTSink(cfg.MQTTBroker, cfg.MQTTClientID, cfg.TopicTrackPoint)
		if err != nil {
			port.Close()
			return err
		}
		sinks = append(sinks, s)
	}
	if cfg.LiveServerAddr != "" {
		hub := NewLiveHub()
		sinks = append(sinks, hub)
		go func() {
			if err := ServeLive(ctx, cfg.LiveServerAddr, hub); err != nil {
				log.Printf("capture: live server stopped: %v", err)
			}
		}()
	}
	defer closeAll(sinks)

	// Closing the port unblocks the pending read.
	stop := context.AfterFunc(ctx, func() { port.Close() })
	defer func() {
		if stop() {
			port.Close()
		}
	}()

	header := fmt.Sprintf("@ capture %s %d baud started %s\n", cfg.GPSSerialPort, cfg.GPSBaudRate, time.Now().UTC().Format(time.RFC3339))
	if _, err := logFile.WriteString(header); err != nil {
		return fmt.Errorf("write log: %w", err)
	}

	stats, err := Capture(ctx, port, logFile, sinks...)
	log.Printf("capture: stopped, recorded=%d rejected=%d %s", stats.Recorded, stats.Rejected, stats)
	return err
}
