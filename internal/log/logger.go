// Package log provides leveled, optionally-JSON structured logging and a
// progress spinner for long batch runs.
package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Logger writes leveled log lines with key=value fields.
type Logger struct {
	mu     sync.Mutex
	level  Level
	json   bool
	out    io.Writer
	colors bool
}

// Options configures a Logger.
type Options struct {
	Level Level
	JSON  bool
	Out   io.Writer // defaults to os.Stderr
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// New creates a Logger.
func New(opts Options) *Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		level:  opts.Level,
		json:   opts.JSON,
		out:    out,
		colors: wantColors(out),
	}
}

// Default returns the process-wide logger.
func Default() *Logger {
	once.Do(func() {
		defaultLogger = New(Options{Level: InfoLevel})
	})
	return defaultLogger
}

// wantColors reports whether out is a terminal that should get ANSI
// colors.
func wantColors(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// SetLevel sets the minimum level that gets written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetJSON switches between text and JSON-lines output.
func (l *Logger) SetJSON(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.json = enabled
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...interface{}) { l.log(DebugLevel, msg, args...) }

// Info logs at info level.
func (l *Logger) Info(msg string, args ...interface{}) { l.log(InfoLevel, msg, args...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...interface{}) { l.log(WarnLevel, msg, args...) }

// Error logs at error level.
func (l *Logger) Error(msg string, args ...interface{}) { l.log(ErrorLevel, msg, args...) }

func (l *Logger) log(level Level, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	ts := time.Now().Format("2006-01-02 15:04:05")

	if l.json {
		entry := map[string]interface{}{
			"timestamp": ts,
			"level":     level.String(),
			"message":   msg,
		}
		for i := 0; i+1 < len(args); i += 2 {
			if key, ok := args[i].(string); ok {
				entry[key] = args[i+1]
			}
		}
		data, _ := json.Marshal(entry)
		fmt.Fprintln(l.out, string(data))
		return
	}

	fmt.Fprintf(l.out, "[%s] %s: %s\n", ts, level.String(), l.paint(level, formatFields(msg, args...)))
}

// formatFields appends key=value pairs to the message.
func formatFields(msg string, args ...interface{}) string {
	if len(args) == 0 {
		return msg
	}
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, " %s=%v", key, args[i+1])
	}
	if len(args)%2 != 0 {
		fmt.Fprintf(&sb, " %v", args[len(args)-1])
	}
	return sb.String()
}

func (l *Logger) paint(level Level, msg string) string {
	if !l.colors {
		return msg
	}
	var color string
	switch level {
	case DebugLevel:
		color = "\033[36m"
	case InfoLevel:
		color = "\033[32m"
	case WarnLevel:
		color = "\033[33m"
	case ErrorLevel:
		color = "\033[31m"
	default:
		return msg
	}
	return color + msg + "\033[0m"
}

// Spinner shows an animated progress indicator on stderr while a batch
// operation runs. Safe to Stop more than once.
type Spinner struct {
	mu      sync.Mutex
	message string
	frames  []string
	frame   int
	active  bool
	out     io.Writer
	done    chan struct{}
}

// NewSpinner creates a Spinner with the given message.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		out:     os.Stderr,
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run()
}

// Stop ends the animation and clears the spinner line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.done)
	s.mu.Unlock()

	fmt.Fprint(s.out, "\r\033[K")
}

// Message updates the spinner text.
func (s *Spinner) Message(msg string) {
	s.mu.Lock()
	s.message = msg
	s.mu.Unlock()
}

func (s *Spinner) run() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.mu.Lock()
			if !s.active {
				s.mu.Unlock()
				return
			}
			frame := s.frames[s.frame%len(s.frames)]
			s.frame++
			fmt.Fprintf(s.out, "\r%s %s", frame, s.message)
			s.mu.Unlock()
		case <-s.done:
			return
		}
	}
}
