package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/paramcheck/paramcheck/internal/formatter"
	"github.com/paramcheck/paramcheck/internal/logger"
)

type fmtCommand struct {
	Write bool `short:"w" long:"write" description:"Rewrite files in place instead of printing"`

	Args struct {
		Files []string `positional-arg-name:"FILES" description:"Parameter files or glob patterns"`
	} `positional-args:"yes"`
}

func (c *fmtCommand) Execute(_ []string) error {
	files, err := expandPatterns(c.Args.Files)
	if errors.Is(err, ErrNoFiles) {
		fmt.Fprintln(stdout, "No files found")
		return errFailed
	}
	if err != nil {
		return err
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := formatter.Format(string(content), &buf); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}

		if !c.Write {
			if _, err := stdout.Write(buf.Bytes()); err != nil {
				return err
			}
			continue
		}
		if bytes.Equal(content, buf.Bytes()) {
			continue
		}
		info, err := os.Stat(file)
		if err != nil {
			return err
		}
		if err := os.WriteFile(file, buf.Bytes(), info.Mode().Perm()); err != nil {
			return err
		}
		logger.Info("formatted", "file", relPath(file))
	}
	return nil
}
