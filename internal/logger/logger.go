package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/screa/create2-vanity-miner/pkg/progress"
	"github.com/screa/create2-vanity-miner/pkg/types"
)

// Timestamp formats
const (
	TimeFormat      = "2006/01/02 15:04:05"
	TimeFormatMicro = "2006/01/02 15:04:05.000000"
)

// Logger wraps zerolog.Logger with the printf helpers the command uses.
type Logger struct {
	zerolog.Logger
}

// New creates a new coloured console logger on stdout
func New() *Logger {
	return &Logger{
		Logger: zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: TimeFormat}).
			With().Timestamp().Logger(),
	}
}

// NewWriter creates a new logger that writes uncoloured lines with
// microsecond timestamps to the provided writer
func NewWriter(w io.Writer) *Logger {
	return &Logger{
		Logger: zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: TimeFormatMicro}).
			With().Timestamp().Logger(),
	}
}

// SetVerbose switches between debug and info level.
func (l *Logger) SetVerbose(verbose bool) {
	if verbose {
		l.Logger = l.Logger.Level(zerolog.DebugLevel)
	} else {
		l.Logger = l.Logger.Level(zerolog.InfoLevel)
	}
}

// Printf logs an info message
func (l *Logger) Printf(format string, v ...any) {
	l.Info().Msg(fmt.Sprintf(format, v...))
}

// Println logs an info message
func (l *Logger) Println(v ...any) {
	l.Info().Msg(fmt.Sprint(v...))
}

// Notify implements types.Notifier.
func (l *Logger) Notify(n types.Notification) {
	switch n.Kind {
	case types.Improvement:
		l.Info().
			Str("kind", n.Kind.String()).
			Int("zeros", n.Zeros).
			Str("address", n.Best.Address.Hex()).
			Str("salt", n.Best.SaltHex()).
			Uint64("round", n.TotalRounds).
			Msg("new best")
	case types.Status:
		l.Info().
			Str("kind", n.Kind.String()).
			Int("zeros", n.Zeros).
			Str("address", n.Best.Address.Hex()).
			Str("salt", n.Best.SaltHex()).
			Msg("best so far")
	case types.Progress:
		l.Info().Msg(progress.Line(n.TotalRounds, n.Rate, n.NextZeros, n.ETA))
		l.Debug().
			Uint64("attempts", n.TotalAttempts).
			Dur("elapsed", n.Elapsed.Truncate(time.Millisecond)).
			Msg("progress")
	}
}
