// Package eventlog writes the bank's event stream. Every event becomes one
// line of the form "[2006-01-02 15:04:05.000] message" on both the console
// and the persistent sink.
package eventlog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TimestampLayout is the millisecond-precision layout of every event line.
const TimestampLayout = "2006-01-02 15:04:05.000"

// Logger serializes events to two sinks.
type Logger struct {
	mu     sync.Mutex
	out    *logrus.Logger
	now    func() time.Time
	closer io.Closer
}

// Option configures a Logger.
type Option func(*Logger)

// WithClock replaces time.Now as the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		l.now = now
	}
}

// New returns a logger writing every event to console and then to sink.
// A nil sink is skipped.
func New(console, sink io.Writer, opts ...Option) *Logger {
	outputs := fanOut{{name: "console", w: console}}
	if sink != nil {
		outputs = append(outputs, output{name: "sink", w: sink})
	}

	out := logrus.New()
	out.SetOutput(outputs)
	out.SetFormatter(lineFormatter{})
	out.SetLevel(logrus.InfoLevel)

	l := &Logger{
		out: out,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OpenFile returns a logger writing to console and appending to the file at path.
// The file is closed by Close.
func OpenFile(console io.Writer, path string, opts ...Option) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log %s: %w", path, err)
	}
	l := New(console, f, opts...)
	l.closer = f
	return l, nil
}

// Log records one event. The timestamp is taken inside the same critical
// section as the writes so line order always matches timestamp order.
func (l *Logger) Log(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.out.WithTime(l.now()).Info(message)
}

// Logf formats and records one event.
func (l *Logger) Logf(format string, args ...any) {
	l.Log(fmt.Sprintf(format, args...))
}

// Close closes the persistent sink if the logger opened it.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// lineFormatter renders "[timestamp] message\n", dropping level and fields.
type lineFormatter struct{}

func (lineFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if e.Buffer != nil {
		b = e.Buffer
	} else {
		b = &bytes.Buffer{}
	}
	b.WriteString(FormatLine(e.Time, e.Message))
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// FormatLine renders a line the way Log writes it, without the newline.
func FormatLine(t time.Time, message string) string {
	return fmt.Sprintf("[%s] %s", t.Format(TimestampLayout), message)
}

type output struct {
	name string
	w    io.Writer
}

// fanOut writes every line to each output in turn. Unlike io.MultiWriter a
// failing output does not stop the ones after it; the errors are joined and
// logrus reports them on stderr.
type fanOut []output

func (f fanOut) Write(p []byte) (int, error) {
	var errs []error
	for _, o := range f {
		if _, err := o.w.Write(p); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.name, err))
		}
	}
	return len(p), errors.Join(errs...)
}
