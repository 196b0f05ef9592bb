package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/lmittmann/tint"
)

var (
	level = new(slog.LevelVar)

	// Default logger writes to stderr; stdout is reserved for results and
	// for the LSP transport.
	std = newLogger(os.Stderr)
)

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		NoColor:    runtime.GOOS == "windows" || w != os.Stderr,
		TimeFormat: "15:04:05",
	}).WithAttrs([]slog.Attr{slog.String("app", "paramcheck")}))
}

func SetOutput(w io.Writer) {
	std = newLogger(w)
}

func SetLevel(l slog.Level) {
	level.Set(l)
}

func Logger() *slog.Logger { return std }

func Debug(msg string, args ...any) { std.Debug(msg, args...) }
func Info(msg string, args ...any)  { std.Info(msg, args...) }
func Warn(msg string, args ...any)  { std.Warn(msg, args...) }
func Error(msg string, args ...any) { std.Error(msg, args...) }

func Printf(format string, v ...interface{}) {
	std.Info(fmt.Sprintf(format, v...))
}

func Println(v ...interface{}) {
	std.Info(fmt.Sprint(v...))
}

func Fatal(v ...interface{}) {
	std.Error(fmt.Sprint(v...))
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	std.Error(fmt.Sprintf(format, v...))
	os.Exit(1)
}
