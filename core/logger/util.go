package logger

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Result maps err to the status value and level of an outcome log line:
// "ok" at INFO or "fail" at ERROR.
func Result(err error) (string, slog.Level) {
	if err != nil {
		return "fail", slog.LevelError
	}
	return "ok", slog.LevelInfo
}

// Took is the time since start, rounded like every other duration we log.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// RoundMS rounds d to whole milliseconds; negative durations become zero.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Preview joins at most limit values and appends "+N" for the rest.
func Preview(values []string, limit int) string {
	if limit < 0 {
		limit = 0
	}
	if len(values) <= limit {
		return strings.Join(values, ", ")
	}
	rest := "+" + strconv.Itoa(len(values)-limit)
	if limit == 0 {
		return rest
	}
	return strings.Join(values[:limit], ", ") + ", " + rest
}
