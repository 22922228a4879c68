package events

import (
	"fmt"
	"log"
)

type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Event is one structured record emitted by the core pipeline.
type Event struct {
	Level     Level
	Component string
	Message   string
}

// Sink receives events from the core. The core never writes to a
// process-wide logger directly so hosts (CLI, MCP server, tests) can
// route records wherever they need.
type Sink interface {
	Emit(e Event)
}

// LogSink routes events to the standard logger.
type LogSink struct{}

func (LogSink) Emit(e Event) {
	log.Printf("[%s] %s: %s", e.Level, e.Component, e.Message)
}

func Infof(s Sink, component, format string, args ...any) {
	emit(s, LevelInfo, component, format, args...)
}

func Warnf(s Sink, component, format string, args ...any) {
	emit(s, LevelWarn, component, format, args...)
}

func Errorf(s Sink, component, format string, args ...any) {
	emit(s, LevelError, component, format, args...)
}

func emit(s Sink, level Level, component, format string, args ...any) {
	if s == nil {
		return
	}
	s.Emit(Event{Level: level, Component: component, Message: fmt.Sprintf(format, args...)})
}
