package observability

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileLogger writes one line per event to a run-scoped log file. It is the
// conversion tool's operational side channel: its absence must never abort
// a run, so construction failures are reported but callers are expected to
// substitute NopLogger and continue.
type FileLogger struct {
	file   *os.File
	w      *bufio.Writer
	level  Level
	bound  []Field
	shared *FileLogger // non-nil on With() children; owns file/writer
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// NewRunLog creates a timestamped log file in dir, named
// conversion_log_<YYYYMMDD_HHMMSS>.txt, and returns a logger writing to it.
func NewRunLog(dir string, level Level) (*FileLogger, error) {
	name := fmt.Sprintf("conversion_log_%s.txt", time.Now().Format("20060102_150405"))
	return NewFileLogger(filepath.Join(dir, name), level)
}

// NewFileLogger creates a logger appending to the given path.
func NewFileLogger(path string, level Level) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &FileLogger{file: f, w: bufio.NewWriter(f), level: level}, nil
}

// Path returns the log file path.
func (l *FileLogger) Path() string { return l.root().file.Name() }

// Close flushes buffered lines and closes the underlying file. Only the
// root logger (the one returned by a constructor) should be closed.
func (l *FileLogger) Close() error {
	r := l.root()
	if err := r.w.Flush(); err != nil {
		r.file.Close()
		return err
	}
	return r.file.Close()
}

func (l *FileLogger) root() *FileLogger {
	if l.shared != nil {
		return l.shared
	}
	return l
}

func (l *FileLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *FileLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *FileLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *FileLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

func (l *FileLogger) With(fields ...Field) Logger {
	child := &FileLogger{
		level:  l.level,
		bound:  append(append([]Field(nil), l.bound...), fields...),
		shared: l.root(),
	}
	return child
}

func (l *FileLogger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	var sb strings.Builder
	sb.WriteString(msg)
	all := append(append([]Field(nil), l.bound...), fields...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Key() < all[j].Key() })
	for _, f := range all {
		fmt.Fprintf(&sb, " %s=%v", f.Key(), f.Value())
	}
	sb.WriteByte('\n')
	r := l.root()
	r.w.WriteString(sb.String())
}
