// Package telemetry wraps zerolog and the Prometheus client in the shape
// this repository's teacher lineage (jhkimqd-chaos-utils/pkg/reporting)
// wraps them: a small typed Logger and a Metrics registry, never raw
// third-party types passed around the codebase.
package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// LogFormat selects the wire format of the underlying zerolog writer.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

// LoggerConfig configures a new Logger.
type LoggerConfig struct {
	Level  string
	Format LogFormat
	Output io.Writer
}

// Logger is a structured logger used for refusals and cycle failures
// (conservation violations among them) in addition to their JSONL artifact
// records (SPEC_FULL.md ambient stack). Gate-state transitions are not
// logged.
type Logger struct {
	z zerolog.Logger
}

// NewLogger builds a Logger from cfg, defaulting to stdout/info/json.
func NewLogger(cfg LoggerConfig) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	var out io.Writer = cfg.Output
	if cfg.Format == LogFormatText {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339, NoColor: false}
	}
	z := zerolog.New(out).With().Timestamp().Logger()
	switch cfg.Level {
	case "debug":
		z = z.Level(zerolog.DebugLevel)
	case "warn":
		z = z.Level(zerolog.WarnLevel)
	case "error":
		z = z.Level(zerolog.ErrorLevel)
	default:
		z = z.Level(zerolog.InfoLevel)
	}
	return &Logger{z: z}
}

// Info logs a structured info event with key/value pairs.
func (l *Logger) Info(msg string, kv ...any) { l.event(l.z.Info(), msg, kv) }

// Warn logs a structured warning event.
func (l *Logger) Warn(msg string, kv ...any) { l.event(l.z.Warn(), msg, kv) }

// Error logs a structured error event. err may be nil.
func (l *Logger) Error(err error, msg string, kv ...any) {
	ev := l.z.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	l.event(ev, msg, kv)
}

func (l *Logger) event(ev *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}
