package gps

import (
	"fmt"
	"time"
)

// Fix is one decoded GPGGA/GPRMC pair, suitable for JSON and MQTT.
type Fix struct {
	Latitude  float64   `json:"lat"`   // decimal degrees, hemisphere not applied
	Longitude float64   `json:"lon"`   // decimal degrees, hemisphere not applied
	Altitude  float64   `json:"alt_m"` // antenna altitude above MSL, unrounded
	Local     time.Time `json:"local"` // UTC+9, whole seconds
}

var weekdayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var monthNames = [...]string{"", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Timestamp renders the local time as "Sun Feb 3 2019 15:55:14".
// Day, hour, minute and second are not zero padded.
func (f Fix) Timestamp() string {
	t := f.Local
	return fmt.Sprintf("%s %s %d %d %d:%d:%d",
		weekdayNames[t.Weekday()], monthNames[t.Month()], t.Day(), t.Year(),
		t.Hour(), t.Minute(), t.Second())
}
