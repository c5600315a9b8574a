package gps

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CenturyBase is added to the two-digit GPRMC year. Dates from 2100 on
// decode into the wrong century.
const CenturyBase = 2000

// LocalOffset is the fixed offset applied to the UTC fix time (JST).
const LocalOffset = 9 * time.Hour

var localZone = time.FixedZone("JST", int(LocalOffset/time.Second))

var (
	ErrTooFewFields  = errors.New("too few fields")
	ErrNotNumeric    = errors.New("not a number")
	ErrMalformedTime = errors.New("malformed hhmmss.sss time")
	ErrMalformedDate = errors.New("malformed ddmmyy date")
	ErrOutOfRange    = errors.New("calendar value out of range")
)

// ParseError reports why a GPGGA/GPRMC pair could not be decoded.
type ParseError struct {
	Sentence string // "GPGGA" or "GPRMC"
	Field    int    // index into the comma-split sentence, -1 for the whole sentence
	Value    string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Field < 0 {
		return fmt.Sprintf("%s: %v", e.Sentence, e.Err)
	}
	return fmt.Sprintf("%s field %d %q: %v", e.Sentence, e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Decode turns one GPGGA sentence and the GPRMC sentence that follows it
// into a Fix. Position and altitude come from GPGGA, date and time from
// GPRMC. The N/S and E/W indicators are not read, so southern and western
// coordinates come out positive.
func Decode(gga, rmc string) (Fix, error) {
	g := splitFields(gga)
	if len(g) < minGGAFields {
		return Fix{}, &ParseError{Sentence: "GPGGA", Field: -1, Err: fmt.Errorf("%w: have %d, need %d", ErrTooFewFields, len(g), minGGAFields)}
	}
	r := splitFields(rmc)
	if len(r) < minRMCFields {
		return Fix{}, &ParseError{Sentence: "GPRMC", Field: -1, Err: fmt.Errorf("%w: have %d, need %d", ErrTooFewFields, len(r), minRMCFields)}
	}

	lat, err := parseNumber("GPGGA", g, idxGGALatitude)
	if err != nil {
		return Fix{}, err
	}
	lon, err := parseNumber("GPGGA", g, idxGGALongitude)
	if err != nil {
		return Fix{}, err
	}
	alt, err := parseNumber("GPGGA", g, idxGGAAltitude)
	if err != nil {
		return Fix{}, err
	}

	utc, err := parseDateTime(r[idxRMCDate], r[idxUTCTime])
	if err != nil {
		return Fix{}, err
	}

	return Fix{
		Latitude:  DegreesMinutes(lat),
		Longitude: DegreesMinutes(lon),
		Altitude:  alt,
		Local:     utc.In(localZone).Truncate(time.Second),
	}, nil
}

// DegreesMinutes converts ddmm.mmmm (or dddmm.mmmm) to decimal degrees.
// The split uses floor division by 100, so the remainder is always in
// [0, 100).
func DegreesMinutes(v float64) float64 {
	rem := math.Mod(v, 100)
	div := (v - rem) / 100
	if rem < 0 {
		rem += 100
		div--
	}
	whole := math.Floor(div)
	if div-whole > 0.5 {
		whole++
	}
	return whole + rem/60
}

func parseNumber(sentence string, fields []string, idx int) (float64, error) {
	raw := fields[idx]
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &ParseError{Sentence: sentence, Field: idx, Value: raw, Err: ErrNotNumeric}
	}
	return v, nil
}

// parseDateTime builds the UTC instant from the GPRMC ddmmyy date and
// hhmmss.sss time. The millisecond part must be present and well formed
// even though it is dropped from the Fix.
func parseDateTime(date, clock string) (time.Time, error) {
	dateErr := func(err error) error {
		return &ParseError{Sentence: "GPRMC", Field: idxRMCDate, Value: date, Err: err}
	}
	timeErr := func(err error) error {
		return &ParseError{Sentence: "GPRMC", Field: idxUTCTime, Value: clock, Err: err}
	}

	if len(date) != 6 || !isDigits(date) {
		return time.Time{}, dateErr(ErrMalformedDate)
	}
	day := atoi2(date[0:2])
	month := atoi2(date[2:4])
	year := CenturyBase + atoi2(date[4:6])

	hms, frac, ok := strings.Cut(clock, ".")
	if !ok || len(hms) != 6 || !isDigits(hms) || frac == "" || !isDigits(frac) {
		return time.Time{}, timeErr(ErrMalformedTime)
	}
	millis, err := strconv.Atoi(frac)
	if err != nil || millis > 999 {
		return time.Time{}, timeErr(ErrMalformedTime)
	}
	hour := atoi2(hms[0:2])
	minute := atoi2(hms[2:4])
	second := atoi2(hms[4:6])

	if month < 1 || month > 12 {
		return time.Time{}, dateErr(fmt.Errorf("%w: month %d", ErrOutOfRange, month))
	}
	if day < 1 || day > daysIn(year, time.Month(month)) {
		return time.Time{}, dateErr(fmt.Errorf("%w: day %d", ErrOutOfRange, day))
	}
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, timeErr(fmt.Errorf("%w: %02d:%02d:%02d", ErrOutOfRange, hour, minute, second))
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, millis*int(time.Millisecond), time.UTC), nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// atoi2 converts a two character string already checked by isDigits.
func atoi2(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}
