package gps

import (
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

const (
	ggaPrefix     = nmea.SentenceStart + "GP" + nmea.TypeGGA
	commentMarker = "@"
)

// Field indexes into the comma-split sentence.
const (
	idxUTCTime      = 1 // hhmmss.sss, GPRMC
	idxGGALatitude  = 2 // ddmm.mmmm
	idxGGALongitude = 4 // dddmm.mmmm
	idxGGAAltitude  = 9 // meters above MSL
	idxRMCDate      = 9 // ddmmyy

	minGGAFields = idxGGAAltitude + 1
	minRMCFields = idxRMCDate + 1
)

// IsGGA reports whether line is a GPGGA sentence. Only the first six
// characters are compared.
func IsGGA(line string) bool {
	return strings.HasPrefix(line, ggaPrefix)
}

// IsComment reports whether line is a log comment.
func IsComment(line string) bool {
	return strings.HasPrefix(line, commentMarker)
}

// splitFields splits a raw sentence on commas and drops the checksum
// suffix from the last field. The checksum itself is never verified.
func splitFields(raw string) []string {
	fields := strings.Split(raw, nmea.FieldSep)
	last := len(fields) - 1
	fields[last], _, _ = strings.Cut(fields[last], nmea.ChecksumSep)
	return fields
}
