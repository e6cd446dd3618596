package progress

import (
	"math"
	"testing"
	"time"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name     string
		attempts uint64
		elapsed  time.Duration
		rate     float64
		ok       bool
	}{
		{"zero elapsed", 1000, 0, 0, false},
		{"sub-millisecond", 1000, 999 * time.Microsecond, 0, false},
		{"half second", 1000, 500 * time.Millisecond, 2000, true},
		{"ten seconds", 1_000_000, 10 * time.Second, 100_000, true},
		{"no attempts", 0, time.Second, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, ok := Rate(tt.attempts, tt.elapsed)
			if ok != tt.ok {
				t.Fatalf("Rate() ok = %v, want %v", ok, tt.ok)
			}
			if rate != tt.rate {
				t.Errorf("Rate() = %v, want %v", rate, tt.rate)
			}
		})
	}
}

func TestETA(t *testing.T) {
	tests := []struct {
		name     string
		zeros    int
		rate     float64
		elapsed  time.Duration
		expected string
	}{
		// 16^2 = 256 attempts at 1000/s is 0.256s, floored.
		{"two zeros fast", 2, 1000, 0, "0d0h0m0s"},
		// 16^4 = 65536 attempts at 1/s.
		{"four zeros slow", 4, 1, 0, "0d18h12m16s"},
		{"elapsed subtracted", 4, 1, 16 * time.Second, "0d18h12m0s"},
		// 16^3 = 4096 attempts at 1000/s is 4.096s; 10s elapsed leaves -5.9s.
		{"overshoot", 3, 1000, 10 * time.Second, "-0d0h0m5s"},
		// Expectations beyond the int64 range of seconds saturate.
		{"sixteen zeros at 1/s", 16, 1, 0, "106751991167300d15h30m7s"},
		{"twenty-one zeros", 21, 1e6, 0, "106751991167300d15h30m7s"},
		{"zero rate", 3, 0, 0, "106751991167300d15h30m7s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ETA(tt.zeros, tt.rate, tt.elapsed); got != tt.expected {
				t.Errorf("ETA() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatDMS(t *testing.T) {
	tests := []struct {
		seconds  int64
		expected string
	}{
		{0, "0d0h0m0s"},
		{59, "0d0h0m59s"},
		{3600, "0d1h0m0s"},
		{90061, "1d1h1m1s"},
		{-65, "-0d0h1m5s"},
		{math.MaxInt64, "106751991167300d15h30m7s"},
		{math.MinInt64, "-106751991167300d15h30m7s"},
	}
	for _, tt := range tests {
		if got := FormatDMS(tt.seconds); got != tt.expected {
			t.Errorf("FormatDMS(%d) = %q, want %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestExpectedAttempts(t *testing.T) {
	if got := ExpectedAttempts(2); got != 256 {
		t.Errorf("ExpectedAttempts(2) = %v, want 256", got)
	}
	if got := ExpectedAttempts(12); got != 281474976710656 {
		t.Errorf("ExpectedAttempts(12) = %v, want 281474976710656", got)
	}
}

func TestLine(t *testing.T) {
	got := Line(12, 1234567.8, 5, "0d0h3m12s")
	want := "Round 12 @ 1,234,567 attempts/sec (5 0s T-0d0h3m12s)"
	if got != want {
		t.Errorf("Line() = %q, want %q", got, want)
	}
}
