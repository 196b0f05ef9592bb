package main

import (
	"context"
	"os"

	"github.com/paramcheck/paramcheck/internal/logger"
	"github.com/paramcheck/paramcheck/internal/lsp"
	"github.com/paramcheck/paramcheck/internal/schema"
)

type lspCommand struct {
	CommonOptions
}

func (c *lspCommand) Execute(_ []string) error {
	// stdout carries the protocol.
	logger.SetOutput(os.Stderr)

	cfg, err := c.load()
	if err != nil {
		return err
	}

	var s *schema.Schema
	if cfg.Metadata != "" || cfg.Vehicle != "" {
		s, err = schemaProvider(cfg).Load(context.Background(), cfg.Vehicle)
		if err != nil {
			logger.Warn("metadata unavailable, only checking syntax", "error", err)
			s = nil
		}
	} else {
		logger.Warn("no vehicle or metadata configured, only checking syntax")
	}

	return lsp.NewServer(s, cfg.Checks, os.Stdin, os.Stdout).Run()
}
