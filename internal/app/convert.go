package app

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/relabs-tech/nmea_trackpoints/internal/config"
	"github.com/relabs-tech/nmea_trackpoints/internal/gps"
	"github.com/relabs-tech/nmea_trackpoints/internal/trackjs"
)

const maxLineBytes = 1 << 20

// ConvertOptions controls the failure policy of Convert.
type ConvertOptions struct {
	// SkipInvalid logs and skips pairs that fail to decode. Without it the
	// first bad pair aborts the run; points already written are kept.
	SkipInvalid bool
	Verbose     bool
}

// Stats summarizes one converter or capture run.
type Stats struct {
	Lines    int
	Recorded int // capture only: sentences written to the log
	Rejected int // capture only: lines that were not valid NMEA
	Pairs    int
	Points   int
	Skipped  int // pairs that failed to decode and were skipped
	Orphans  int // GPRMC lines with no pending GPGGA
	Dropped  int // GPGGA lines replaced before being paired
}

func (s Stats) String() string {
	return fmt.Sprintf("lines=%d pairs=%d points=%d skipped=%d orphans=%d dropped_gga=%d",
		s.Lines, s.Pairs, s.Points, s.Skipped, s.Orphans, s.Dropped)
}

// Convert reads an NMEA log from r and writes one TrackPoint line per
// GPGGA/GPRMC pair to w. Every decoded fix is also handed to sinks.
func Convert(r io.Reader, w io.Writer, opts ConvertOptions, sinks ...Sink) (Stats, error) {
	var (
		stats  Stats
		pairer gps.Pairer
	)
	out := trackjs.NewWriter(w)

	finish := func(err error) (Stats, error) {
		stats.Orphans = pairer.Orphans
		stats.Dropped = pairer.Dropped
		stats.Points = out.Points
		if ferr := out.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("flush output: %w", ferr)
		}
		return stats, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
	for scanner.Scan() {
		stats.Lines++
		pair, ok := pairer.Feed(scanner.Text())
		if !ok {
			continue
		}
		stats.Pairs++

		fix, err := gps.Decode(pair.GGA, pair.RMC)
		if err != nil {
			if !opts.SkipInvalid {
				return finish(fmt.Errorf("line %d: %w", stats.Lines, err))
			}
			stats.Skipped++
			log.Printf("convert: line %d: skipping pair: %v", stats.Lines, err)
			continue
		}
		if opts.Verbose {
			log.Printf("convert: lat=%f lon=%f alt=%f time=%q", fix.Latitude, fix.Longitude, fix.Altitude, fix.Timestamp())
		}

		if err := out.Write(fix); err != nil {
			return finish(fmt.Errorf("write output: %w", err))
		}
		if opts.Verbose {
			log.Printf("convert: %s", trackjs.FormatPoint(fix))
		}
		emitAll(sinks, fix)
	}
	if err := scanner.Err(); err != nil {
		return finish(fmt.Errorf("read input: %w", err))
	}
	return finish(nil)
}

// RunConvert converts the NMEA log at inPath into the JavaScript point
// file at outPath, which is truncated first.
func RunConvert(cfg *config.Config, inPath, outPath string) error {
	log.Printf("in = %s, out = %s", inPath, outPath)

	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	var sinks []Sink
	if cfg.MQTTBroker != "" {
		s, err := NewMQTTSink(cfg.MQTTBroker, cfg.MQTTClientID, cfg.TopicTrackPoint)
		if err != nil {
			out.Close()
			return err
		}
		sinks = append(sinks, s)
	}
	defer closeAll(sinks)

	stats, err := Convert(in, out, ConvertOptions{SkipInvalid: cfg.SkipInvalidPairs, Verbose: cfg.Verbose}, sinks...)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("convert %s: %w", inPath, err)
	}

	log.Printf("convert: done, %s", stats)
	return nil
}
