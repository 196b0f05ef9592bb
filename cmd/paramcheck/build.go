package main

import (
	"io"
	"os"

	"github.com/paramcheck/paramcheck/internal/builder"
	"github.com/paramcheck/paramcheck/internal/logger"
)

type buildCommand struct {
	Output string `short:"o" long:"output" description:"Output file (default stdout)"`

	Args struct {
		Input string `positional-arg-name:"INPUT" description:"Defaults file to flatten" required:"yes"`
	} `positional-args:"yes" required:"yes"`
}

func (c *buildCommand) Execute(_ []string) error {
	var out io.Writer = stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	if err := builder.NewBuilder().Build(c.Args.Input, out); err != nil {
		return err
	}
	logger.Debug("built defaults", "input", c.Args.Input, "output", c.Output)
	return nil
}
