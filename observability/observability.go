// Package observability defines the logging hooks used by the rendering
// engines. Callers inject an implementation; the library never logs on its
// own behalf through a global.
package observability

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type float64Field struct {
	key string
	val float64
}

func (f float64Field) Key() string        { return f.key }
func (f float64Field) Value() interface{} { return f.val }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field          { return stringField{key, value} }
func Int(key string, value int) Field         { return intField{key, value} }
func Float64(key string, value float64) Field { return float64Field{key, value} }
func Error(key string, err error) Field       { return errorField{key, err} }

type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// TextLogger writes one line per event to an io.Writer. It is what the CLI
// wires up; library code only sees the Logger interface.
type TextLogger struct {
	mu     sync.Mutex
	out    io.Writer
	fields []Field
	// Verbose enables Debug output.
	Verbose bool
}

func NewTextLogger(out io.Writer) *TextLogger { return &TextLogger{out: out} }

func (l *TextLogger) log(level, msg string, fields []Field) {
	var sb strings.Builder
	sb.WriteString(level)
	sb.WriteByte(' ')
	sb.WriteString(msg)
	for _, f := range append(l.fields, fields...) {
		fmt.Fprintf(&sb, " %s=%v", f.Key(), f.Value())
	}
	sb.WriteByte('\n')
	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, sb.String())
}

func (l *TextLogger) Debug(msg string, fields ...Field) {
	if l.Verbose {
		l.log("DEBUG", msg, fields)
	}
}
func (l *TextLogger) Info(msg string, fields ...Field)  { l.log("INFO", msg, fields) }
func (l *TextLogger) Warn(msg string, fields ...Field)  { l.log("WARN", msg, fields) }
func (l *TextLogger) Error(msg string, fields ...Field) { l.log("ERROR", msg, fields) }

func (l *TextLogger) With(fields ...Field) Logger {
	child := &TextLogger{out: l.out, Verbose: l.Verbose}
	child.fields = append(append([]Field(nil), l.fields...), fields...)
	return child
}
