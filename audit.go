package memberauth

import (
	"context"
	"io"

	internalaudit "github.com/MrEthical07/memberauth/internal/audit"
	"github.com/rs/zerolog"
)

// AuditEvent is a session lifecycle record delivered to an [AuditSink].
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the store's dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink discards every event.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink forwards events to a buffered channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes one JSON object per event line.
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink returns a sink whose Events channel has the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing JSON lines to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// LoggerSink writes audit events as structured zerolog entries.
type LoggerSink struct {
	logger zerolog.Logger
}

// NewLoggerSink returns a sink that logs every event at info level, or warn
// level for unsuccessful events.
func NewLoggerSink(logger zerolog.Logger) *LoggerSink {
	return &LoggerSink{logger: logger}
}

func (s *LoggerSink) Emit(_ context.Context, event AuditEvent) {
	if s == nil {
		return
	}
	entry := s.logger.Info()
	if !event.Success {
		entry = s.logger.Warn()
	}
	entry = entry.
		Str("audit_id", event.ID).
		Str("event", event.EventType).
		Time("at", event.Timestamp).
		Bool("success", event.Success)
	if event.MemberID != 0 {
		entry = entry.Int64("member_id", event.MemberID)
	}
	if event.Error != "" {
		entry = entry.Str("error", event.Error)
	}
	for k, v := range event.Metadata {
		entry = entry.Str(k, v)
	}
	entry.Msg("memberauth audit")
}
