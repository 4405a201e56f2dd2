package events

import (
	"github.com/rs/zerolog"
)

// LogSink writes each event as a structured log line.
type LogSink struct {
	Log zerolog.Logger
}

// NewLogSink wraps a zerolog logger as an event sink.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{Log: log}
}

func (s *LogSink) Emit(e Event) {
	ev := s.Log.Info().
		Int("seq", e.Seq).
		Int("tick", e.Tick).
		Str("type", e.Type.String())
	if e.Agent >= 0 {
		ev = ev.Int("agent", e.Agent)
	}
	switch e.Type {
	case TypeMoved, TypeDisplaced:
		ev = ev.
			Str("from", e.From.String()).
			Str("to", e.To.String())
	case TypeAssigned, TypePathPlanned:
		ev = ev.Str("goal", e.To.String())
	}
	if e.Detail != "" {
		ev = ev.Str("detail", e.Detail)
	}
	ev.Msg("event")
}
