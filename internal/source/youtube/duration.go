package youtube

import (
	"regexp"
	"strconv"
	"time"
)

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDuration converts an ISO-8601 duration ("PT1M5S") to a
// time.Duration. Malformed or empty input parses as zero, which downstream
// duration filters treat as "too short".
func ParseDuration(iso string) time.Duration {
	m := isoDuration.FindStringSubmatch(iso)
	if m == nil {
		return 0
	}

	days, _ := strconv.Atoi(zeroWhenEmpty(m[1]))
	hours, _ := strconv.Atoi(zeroWhenEmpty(m[2]))
	minutes, _ := strconv.Atoi(zeroWhenEmpty(m[3]))
	seconds, _ := strconv.Atoi(zeroWhenEmpty(m[4]))

	return time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second
}

func zeroWhenEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
