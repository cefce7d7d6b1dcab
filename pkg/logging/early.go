package logging

import (
	"fmt"
	"io"
	"os"
)

// EarlyLog covers the window before the real logger exists (flag parsing,
// config loading).
type EarlyLog struct {
	out io.Writer
	err io.Writer
}

func NewEarlyLog() *EarlyLog {
	return &EarlyLog{out: os.Stdout, err: os.Stderr}
}

func (l *EarlyLog) logf(w io.Writer, level, msg string, args ...interface{}) {
	fmt.Fprintf(w, level+": "+msg+"\n", args...)
}

func (l *EarlyLog) Info(msg string, args ...interface{}) {
	l.logf(l.out, "INFO", msg, args...)
}

func (l *EarlyLog) Warn(msg string, args ...interface{}) {
	l.logf(l.err, "WARN", msg, args...)
}

func (l *EarlyLog) Error(msg string, args ...interface{}) {
	l.logf(l.err, "ERROR", msg, args...)
}

func (l *EarlyLog) Fatal(msg string, args ...interface{}) {
	l.logf(l.err, "FATAL", msg, args...)
	os.Exit(1)
}
