// Package progress turns cumulative attempt counters into a hash rate and a
// rough countdown to the next leading zero.
//
// The countdown assumes every attempt is an independent draw, so the expected
// number of attempts for k leading zero nibbles is 16^k no matter how many
// attempts have already been made. Elapsed time is still subtracted from the
// expectation so the number visibly counts down. It is a heuristic and will
// happily overshoot into negative values.
package progress

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// Rate returns attempts per second. ok is false when elapsed is below one
// millisecond; callers skip reporting in that case.
func Rate(totalAttempts uint64, elapsed time.Duration) (rate float64, ok bool) {
	ms := elapsed.Milliseconds()
	if ms <= 0 {
		return 0, false
	}
	return float64(totalAttempts) / float64(ms) * 1000, true
}

// ExpectedAttempts returns 16^zeros.
func ExpectedAttempts(zeros int) float64 {
	return math.Pow(16, float64(zeros))
}

// ETA formats the expected time left to find an address with zeros leading
// zero nibbles at the given rate.
func ETA(zeros int, rate float64, elapsed time.Duration) string {
	total := ExpectedAttempts(zeros) / rate
	elapsedSecs := float64(elapsed.Milliseconds()) / 1000
	return FormatDMS(clampSeconds(total - elapsedSecs))
}

// clampSeconds truncates secs toward zero, saturating at the int64 range.
// A zero rate gives +Inf, which saturates too.
func clampSeconds(secs float64) int64 {
	switch {
	case math.IsNaN(secs):
		return 0
	case secs >= math.MaxInt64:
		return math.MaxInt64
	case secs <= math.MinInt64:
		return math.MinInt64
	}
	return int64(secs)
}

// FormatDMS formats seconds as XdYhZmSs, e.g. 1d2h3m4s. Negative values get
// a leading minus sign.
func FormatDMS(seconds int64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		if seconds == math.MinInt64 {
			seconds = math.MaxInt64
		} else {
			seconds = -seconds
		}
	}
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	seconds = seconds % 60
	return fmt.Sprintf("%s%dd%dh%dm%ds", sign, days, hours, minutes, seconds)
}

// Line renders a progress line such as
// "Round 12 @ 1,234,567 attempts/sec (5 0s T-0d0h3m12s)".
func Line(round uint64, rate float64, nextZeros int, eta string) string {
	return fmt.Sprintf("Round %d @ %s attempts/sec (%d 0s T-%s)",
		round, humanize.Comma(int64(rate)), nextZeros, eta)
}
