// Package logging provides component-tagged session logging.
//
// Every process run shares one session log file under ~/.sensenote/logs; each
// component writes through its own Logger so entries stay attributable. File
// logging is best-effort: when the directory or file cannot be opened the
// logger degrades to stderr and keeps working.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

const fileSuffix = "-sensenote.log"

var (
	sessionID     string
	sessionIDOnce sync.Once
)

// SessionID returns the id shared by every logger in this process run.
func SessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.NewString()
	})
	return sessionID
}

// DefaultDir returns the directory session logs are written to.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("logging: resolve home directory: %w", err)
	}
	return filepath.Join(home, ".sensenote", "logs"), nil
}

// Logger writes leveled, component-tagged entries to the session log file.
// Methods are safe for concurrent use.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	out       *log.Logger
	path      string
	mu        sync.Mutex
	closeOnce sync.Once
}

// New creates a logger for one component writing to the session log file
// under the default directory. When file logging cannot be set up the
// returned logger writes to stderr and the error says why; the logger is
// usable either way.
func New(component string) (*Logger, error) {
	dir, err := DefaultDir()
	if err != nil {
		return fallback(component, err), err
	}
	return NewAt(dir, component)
}

// NewAt creates a component logger rooted at an explicit directory. Multiple
// components opened against the same directory append to the same session
// file.
func NewAt(dir, component string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		err = fmt.Errorf("logging: create %s: %w", dir, err)
		return fallback(component, err), err
	}
	path := filepath.Join(dir, SessionID()+fileSuffix)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("logging: open %s: %w", path, err)
		return fallback(component, err), err
	}
	return &Logger{
		sessionID: SessionID(),
		component: component,
		file:      file,
		out:       log.New(file, "", 0),
		path:      path,
	}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{sessionID: SessionID(), component: "nop", out: log.New(io.Discard, "", 0)}
}

func fallback(component string, cause error) *Logger {
	l := &Logger{
		sessionID: SessionID(),
		component: component,
		out:       log.New(os.Stderr, "", 0),
	}
	l.emit("WARN", "file logging unavailable, writing to stderr: %v", cause)
	return l
}

// emit serializes one entry. All log methods funnel through here so the
// format stays uniform.
func (l *Logger) emit(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.out.Printf("[%s] [%s] [%s] %s", ts, l.component, level, fmt.Sprintf(format, v...))
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) { l.emit("DEBUG", format, v...) }

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...interface{}) { l.emit("INFO", format, v...) }

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) { l.emit("WARN", format, v...) }

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) { l.emit("ERROR", format, v...) }

// Writer exposes the underlying sink for collaborators that need an
// io.Writer.
func (l *Logger) Writer() io.Writer {
	if l.file != nil {
		return l.file
	}
	return os.Stderr
}

// SessionID returns the session id this logger stamps entries with.
func (l *Logger) SessionID() string {
	return l.sessionID
}

// Path returns the log file path, empty when running on the stderr fallback.
func (l *Logger) Path() string {
	return l.path
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
