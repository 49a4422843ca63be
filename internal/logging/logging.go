// Package logging builds the gommon logger shared by echo and the usecases.
package logging

import (
	"io"
	"os"

	"github.com/labstack/gommon/log"
)

// 1行1JSON
const header = `{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}","file":"${short_file}","line":"${line}"}`

func New(prefix string, level string) *log.Logger {
	return NewWithOutput(prefix, level, os.Stdout)
}

func NewWithOutput(prefix string, level string, w io.Writer) *log.Logger {
	l := log.New(prefix)
	l.SetHeader(header)
	l.SetOutput(w)
	l.SetLevel(ParseLevel(level))
	return l
}

func ParseLevel(level string) log.Lvl {
	switch level {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	default:
		return log.INFO
	}
}
