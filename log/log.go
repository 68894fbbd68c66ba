// Package log provides the leveled, structured logger used across the
// module. It follows the geth convention: a small Logger interface,
// key/value context pairs, and a terminal formatter that colorizes
// output when writing to an interactive tty.
package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Level is a logging severity level.
type Level int

const (
	LevelCrit Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
	LevelTrace
)

func (l Level) String() string {
	switch l {
	case LevelCrit:
		return "CRIT"
	case LevelError:
		return "ERROR"
	case LevelWarn:
		return "WARN"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

var levelColor = map[Level]*color.Color{
	LevelCrit:  color.New(color.FgMagenta, color.Bold),
	LevelError: color.New(color.FgRed, color.Bold),
	LevelWarn:  color.New(color.FgYellow),
	LevelInfo:  color.New(color.FgGreen),
	LevelDebug: color.New(color.FgCyan),
	LevelTrace: color.New(color.FgWhite),
}

// Logger emits leveled records carrying a message and key/value context.
type Logger interface {
	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})
	Crit(msg string, ctx ...interface{})
	// New returns a child logger with additional context pairs attached
	// to every record it emits.
	New(ctx ...interface{}) Logger
}

type logger struct {
	mu     *sync.Mutex
	w      io.Writer
	color  bool
	level  Level
	module string
	ctx    []interface{}
}

// Root is the default logger, writing to stderr at LevelInfo.
var Root Logger = newLogger(os.Stderr, LevelInfo, "")

func newLogger(w io.Writer, level Level, module string) *logger {
	out := w
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd())
		out = colorable.NewColorable(f)
	}
	return &logger{
		mu:     &sync.Mutex{},
		w:      out,
		color:  useColor,
		level:  level,
		module: module,
	}
}

// New creates a root logger writing to w at the given level.
func New(w io.Writer, level Level) Logger {
	return newLogger(w, level, "")
}

// SetLevel adjusts the severity threshold of the root logger.
func SetLevel(level Level) {
	if l, ok := Root.(*logger); ok {
		l.level = level
	}
}

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{
		mu:     l.mu,
		w:      l.w,
		color:  l.color,
		level:  l.level,
		module: l.module,
		ctx:    append(append([]interface{}{}, l.ctx...), ctx...),
	}
	return child
}

func (l *logger) log(lvl Level, msg string, ctx []interface{}) {
	if lvl > l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("2006-01-02T15:04:05.000")
	caller := callerSite()

	var line string
	if l.color {
		tag := levelColor[lvl].Sprintf("[%-5s]", lvl.String())
		line = fmt.Sprintf("%s %s %s %s", ts, tag, msg, formatCtx(append(l.ctx, ctx...)))
	} else {
		line = fmt.Sprintf("%s [%-5s] %s %s", ts, lvl.String(), msg, formatCtx(append(l.ctx, ctx...)))
	}
	fmt.Fprintf(l.w, "%s caller=%s\n", line, caller)
}

// callerSite captures the call site the way geth's log package does,
// skipping frames internal to this package.
func callerSite() string {
	call := stack.Caller(3)
	return fmt.Sprintf("%+v", call)
}

func formatCtx(ctx []interface{}) string {
	if len(ctx) == 0 {
		return ""
	}
	out := ""
	for i := 0; i+1 < len(ctx); i += 2 {
		out += fmt.Sprintf("%v=%v ", ctx[i], ctx[i+1])
	}
	return out
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.log(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.log(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.log(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.log(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.log(LevelError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...interface{})  { l.log(LevelCrit, msg, ctx) }

// Package-level convenience wrappers delegating to Root, matching the
// call sites used throughout the rest of the module (log.Info(...)).
func Trace(msg string, ctx ...interface{}) { Root.Trace(msg, ctx...) }
func Debug(msg string, ctx ...interface{}) { Root.Debug(msg, ctx...) }
func Info(msg string, ctx ...interface{})  { Root.Info(msg, ctx...) }
func Warn(msg string, ctx ...interface{})  { Root.Warn(msg, ctx...) }
func Error(msg string, ctx ...interface{}) { Root.Error(msg, ctx...) }
func Crit(msg string, ctx ...interface{})  { Root.Crit(msg, ctx...) }

// NewContext creates a child of Root with the given context pairs attached.
func NewContext(ctx ...interface{}) Logger { return Root.New(ctx...) }
