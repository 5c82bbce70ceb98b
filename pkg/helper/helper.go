package helper

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// FormatTimedelta renders a duration the way timedelta columns print: "0 days 00:01:31.447000".
// Negative values borrow a whole day, e.g. "-1 days +23:59:59".
func FormatTimedelta(d time.Duration) string {
	days := int64(d / day)
	rem := d % day
	if rem < 0 {
		days--
		rem += day
	}

	hours := int64(rem / time.Hour)
	rem -= time.Duration(hours) * time.Hour
	minutes := int64(rem / time.Minute)
	rem -= time.Duration(minutes) * time.Minute
	seconds := int64(rem / time.Second)
	nanos := int64(rem - time.Duration(seconds)*time.Second)

	sign := ""
	if days < 0 {
		sign = "+"
	}
	text := fmt.Sprintf("%d days %s%02d:%02d:%02d", days, sign, hours, minutes, seconds)
	switch {
	case nanos == 0:
		return text
	case nanos%1000 == 0:
		return text + fmt.Sprintf(".%06d", nanos/1000)
	default:
		return text + fmt.Sprintf(".%09d", nanos)
	}
}

// ISOFormat renders a time as ISO-8601 with microseconds only when present and
// an explicit UTC offset.
func ISOFormat(t time.Time) string {
	micros := t.Nanosecond() / 1000
	if micros == 0 {
		return t.Format("2006-01-02T15:04:05-07:00")
	}
	return t.Format("2006-01-02T15:04:05") + fmt.Sprintf(".%06d", micros) + t.Format("-07:00")
}

// TotalSeconds converts a duration to fractional seconds.
func TotalSeconds(d time.Duration) float64 {
	return d.Seconds()
}

// ParseLapTime reads "1:31.295", "31.295" or "1:33:56.736" into a duration.
func ParseLapTime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty lap time")
	}
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid lap time %q", s)
	}

	var minutes int64
	for _, part := range parts[:len(parts)-1] {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid lap time %q", s)
		}
		minutes = minutes*60 + int64(n)
	}
	secs, err := time.ParseDuration(parts[len(parts)-1] + "s")
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid lap time %q", s)
	}
	total := time.Duration(minutes)*time.Minute + secs
	return total, nil
}
