// Package trackjs renders decoded fixes as JavaScript statements that push
// TrackPoint objects onto track[0].
package trackjs

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/relabs-tech/nmea_trackpoints/internal/gps"
)

// OutputSuffix is appended to the input name (minus extension) when no
// output file is given.
const OutputSuffix = "js-points.js"

// FormatPoint renders one fix. Lat/lon use 6 decimals, the altitude is
// rounded half-up to whole meters.
func FormatPoint(f gps.Fix) string {
	return fmt.Sprintf("\ttrack[0].push(new TrackPoint(%f, %f, 0.0, %d, 0, 0, \"%s\"));",
		f.Latitude, f.Longitude, RoundHalfUp(f.Altitude), f.Timestamp())
}

// RoundHalfUp rounds to the nearest integer, ties away from zero.
func RoundHalfUp(v float64) int64 {
	return int64(math.Round(v))
}

// DefaultOutputPath derives "<input minus extension>js-points.js".
// A leading dot in the file name is not an extension.
func DefaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	if ext == filepath.Base(input) {
		ext = ""
	}
	return strings.TrimSuffix(input, ext) + OutputSuffix
}

// Writer writes one point line per fix.
type Writer struct {
	bw     *bufio.Writer
	Points int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

func (w *Writer) Write(f gps.Fix) error {
	if _, err := w.bw.WriteString(FormatPoint(f) + "\n"); err != nil {
		return err
	}
	w.Points++
	return nil
}

func (w *Writer) Flush() error {
	return w.bw.Flush()
}
