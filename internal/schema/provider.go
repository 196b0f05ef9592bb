package schema

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/paramcheck/paramcheck/internal/logger"
)

var ErrGenerate = errors.New("metadata generation failed")

// Provider supplies the flattened metadata for a vehicle. Any error is fatal
// for the run: nothing can be validated without a schema.
type Provider interface {
	Load(ctx context.Context, vehicle string) (*Schema, error)
}

// FileProvider reads an already generated metadata document.
type FileProvider struct {
	Path string
}

func (p FileProvider) Load(_ context.Context, _ string) (*Schema, error) {
	return LoadSchema(p.Path)
}

// GeneratorProvider runs the external metadata generator and consumes the
// JSON document it writes. The document must be (re)written by this run, and
// it is removed once loaded.
type GeneratorProvider struct {
	Command []string
	Output  string
	Dir     string
}

func (p GeneratorProvider) Load(ctx context.Context, vehicle string) (*Schema, error) {
	if len(p.Command) == 0 {
		return nil, fmt.Errorf("%w: no generator command", ErrGenerate)
	}
	if vehicle == "" {
		return nil, fmt.Errorf("%w: no vehicle given", ErrGenerate)
	}

	output := p.Output
	if p.Dir != "" && !filepath.IsAbs(output) {
		output = filepath.Join(p.Dir, output)
	}

	var previous time.Time
	if info, err := os.Stat(output); err == nil {
		previous = info.ModTime()
	}

	logger.Info("generating metadata", "vehicle", vehicle)

	args := append(append([]string{}, p.Command[1:]...), "--vehicle="+vehicle, "--format=json")
	cmd := exec.CommandContext(ctx, p.Command[0], args...)
	cmd.Dir = p.Dir
	if _, err := cmd.Output(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrGenerate, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerate, err)
	}

	info, err := os.Stat(output)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata file '%s' was not created", ErrGenerate, output)
	}
	if !info.ModTime().After(previous) {
		return nil, fmt.Errorf("%w: metadata file '%s' was not updated", ErrGenerate, output)
	}

	s, err := LoadSchema(output)
	if err != nil {
		return nil, err
	}
	if err := os.Remove(output); err != nil {
		logger.Warn("could not remove metadata file", "path", output, "error", err)
	}

	logger.Debug("metadata loaded", "vehicle", vehicle, "params", s.Len())
	return s, nil
}
