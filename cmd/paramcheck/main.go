package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/paramcheck/paramcheck/internal/config"
	"github.com/paramcheck/paramcheck/internal/logger"
)

// errFailed signals a run whose results were already printed but which must
// exit with status 1.
var errFailed = errors.New("check failed")

var stdout io.Writer = os.Stdout

type options struct {
	Check checkCommand `command:"check" description:"Validate parameter files against the parameter metadata"`
	Build buildCommand `command:"build" description:"Flatten a defaults file, resolving @include and @delete"`
	Fmt   fmtCommand   `command:"fmt" description:"Rewrite parameter files in canonical layout"`
	Devid devidCommand `command:"devid" description:"Encode or decode sensor device ids"`
	LSP   lspCommand   `command:"lsp" description:"Run the language server on stdio"`
}

// CommonOptions are shared by the commands that validate files.
type CommonOptions struct {
	Config  string `short:"c" long:"config" description:"Configuration file" default:".paramcheck.toml"`
	Verbose bool   `short:"v" long:"verbose" description:"Enable debug logging"`
}

func (o CommonOptions) load() (*config.Config, error) {
	if o.Verbose {
		logger.SetLevel(slog.LevelDebug)
	}
	return config.Load(o.Config)
}

func newParser() *flags.Parser {
	p := flags.NewParser(&options{}, flags.HelpFlag|flags.PassDoubleDash)
	p.Name = "paramcheck"
	return p
}

func run(args []string) int {
	p := newParser()
	if _, err := p.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		switch {
		case errors.As(err, &flagsErr) && errors.Is(flagsErr.Type, flags.ErrHelp):
			p.WriteHelp(stdout)
			return 0
		case errors.Is(err, errFailed):
			return 1
		default:
			logger.Error(err.Error())
			return 1
		}
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:]))
}
