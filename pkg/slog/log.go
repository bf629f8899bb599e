// Package slog is a simple leveled logger with colored level tags and code
// locations, and a set of error-check shortcuts that allow error handling to
// be bundled into if statements.
package slog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/gookit/color"
)

const (
	Off = iota
	Fatal
	Error
	Warn
	Info
	Debug
	Trace
)

func init() {
	switch strings.ToUpper(os.Getenv("GODEBUG")) {
	case "1", "TRUE", "ON", "DEBUG":
		SetLogLevel(Debug)
	case "INFO":
		SetLogLevel(Info)
	case "TRACE":
		SetLogLevel(Trace)
	case "WARN":
		SetLogLevel(Warn)
	case "ERROR":
		SetLogLevel(Error)
	case "FATAL":
		SetLogLevel(Fatal)
	case "0", "OFF", "FALSE":
		SetLogLevel(Off)
	default:
		SetLogLevel(Info)
	}
}

type (
	// Ln prints lists of interfaces with spaces in between
	Ln func(a ...interface{})
	// F prints like fmt.Printf surrounded by log details
	F func(format string, a ...interface{})
	// S prints a spew.Sdump for an interface slice
	S func(a ...interface{})
	// C accepts a function so that the extra computation can be avoided if
	// it is not being viewed
	C func(closure func() string)
	// Chk is a shortcut for printing if there is an error, or returning true
	Chk func(e error) bool
	// Err is a pass-through function that uses fmt.Errorf to construct an
	// error and returns the error after printing it to the log
	Err func(format string, a ...interface{}) error

	LevelPrinter struct {
		Ln
		F
		S
		C
		Chk
		Err
	}
	LevelSpec struct {
		ID        int
		Name      string
		Colorizer func(a ...interface{}) string
	}
)

var (
	currentLevel atomic.Int32

	// LevelSpecs specifies the id, string name and color-printing function
	LevelSpecs = []LevelSpec{
		{Off, "   ", color.Bit24(0, 0, 0, false).Sprint},
		{Fatal, "FTL", color.Bit24(128, 0, 0, false).Sprint},
		{Error, "ERR", color.Bit24(255, 0, 0, false).Sprint},
		{Warn, "WRN", color.Bit24(0, 255, 0, false).Sprint},
		{Info, "INF", color.Bit24(255, 255, 0, false).Sprint},
		{Debug, "DBG", color.Bit24(0, 125, 255, false).Sprint},
		{Trace, "TRC", color.Bit24(125, 0, 255, false).Sprint},
	}
)

// Log is a set of log printers for the various Level items.
type Log struct {
	F, E, W, I, D, T LevelPrinter
}

// Check is a set of error checkers matching the printers of a Log.
type Check struct {
	F, E, W, I, D, T Chk
}

func New(writer io.Writer) (l *Log, c *Check) {
	l = &Log{
		F: getPrinter(Fatal, writer),
		E: getPrinter(Error, writer),
		W: getPrinter(Warn, writer),
		I: getPrinter(Info, writer),
		D: getPrinter(Debug, writer),
		T: getPrinter(Trace, writer),
	}
	c = &Check{
		F: l.F.Chk,
		E: l.E.Chk,
		W: l.W.Chk,
		I: l.I.Chk,
		D: l.D.Chk,
		T: l.T.Chk,
	}
	return
}

func GetStd() (l *Log) {
	l, _ = New(os.Stderr)
	return
}

func SetLogLevel(l int) { currentLevel.Store(int32(l)) }

func GetLogLevel() (l int) { return int(currentLevel.Load()) }

// SetLogLevelString sets the log level from the first letter of the given
// string, so "t", "trace" and "TRACE" all select Trace.
func SetLogLevelString(s string) {
	if s == "" {
		return
	}
	first := strings.ToLower(s[:1])
	if first == "o" {
		SetLogLevel(Off)
		return
	}
	for i := range LevelSpecs {
		if first == strings.ToLower(LevelSpecs[i].Name[:1]) {
			SetLogLevel(i)
			return
		}
	}
}

func joinStrings(a ...interface{}) (s string) {
	for i := range a {
		s += fmt.Sprint(a[i])
		if i < len(a)-1 {
			s += " "
		}
	}
	return
}

func getLoc(skip int) (output string) {
	_, file, line, _ := runtime.Caller(skip)
	return color.Bit24(0, 128, 255, false).Sprint(file, ":", line)
}

func logPrint(l int, writer io.Writer, text, loc string) {
	if l > GetLogLevel() {
		return
	}
	fmt.Fprintf(writer, "%s %s %s %s\n",
		time.Now().Format(time.StampMilli),
		LevelSpecs[l].Colorizer(LevelSpecs[l].Name), text, loc)
}

func getPrinter(l int, writer io.Writer) LevelPrinter {
	return LevelPrinter{
		Ln: func(a ...interface{}) {
			logPrint(l, writer, joinStrings(a...), getLoc(2))
		},
		F: func(format string, a ...interface{}) {
			logPrint(l, writer, fmt.Sprintf(format, a...), getLoc(2))
		},
		S: func(a ...interface{}) {
			logPrint(l, writer, spew.Sdump(a...), getLoc(2))
		},
		C: func(closure func() string) {
			if l > GetLogLevel() {
				return
			}
			logPrint(l, writer, closure(), getLoc(2))
		},
		Chk: func(e error) bool {
			if e != nil {
				logPrint(l, writer, e.Error(), getLoc(2))
				return true
			}
			return false
		},
		Err: func(format string, a ...interface{}) error {
			logPrint(l, writer, fmt.Sprintf(format, a...), getLoc(2))
			return fmt.Errorf(format, a...)
		},
	}
}
