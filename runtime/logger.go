package runtime

import (
	"fmt"
	"io"
)

// Logger collects the lines scripts write with the log built-in. Optionally
// lines are echoed to a writer as they arrive.
type Logger struct {
	lines []string
	echo  io.Writer
}

// NewLogger creates a logger. echo may be nil.
func NewLogger(echo io.Writer) *Logger {
	return &Logger{echo: echo}
}

// SetEcho sets the echo sink. Passing nil switches echo off.
func (l *Logger) SetEcho(w io.Writer) {
	l.echo = w
}

// Log appends a line.
func (l *Logger) Log(line string) {
	l.lines = append(l.lines, line)
	T().P("log", len(l.lines)).Debugf("%s", line)
	if l.echo != nil {
		if _, err := fmt.Fprintln(l.echo, line); err != nil {
			T().Errorf("cannot echo log line: %v", err)
		}
	}
}

// Lines returns a copy of the lines logged so far.
func (l *Logger) Lines() []string {
	c := make([]string, len(l.lines))
	copy(c, l.lines)
	return c
}

// Reset discards all lines.
func (l *Logger) Reset() {
	l.lines = l.lines[:0]
}
