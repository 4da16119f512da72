// Package logging builds the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

const DefaultLevel = "warn"

type Options struct {
	Level  string
	Output io.Writer
	JSON   bool
}

func New(opts Options) (hclog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       "parkyoga",
		Level:      level,
		Output:     output,
		JSONFormat: opts.JSON,
	}), nil
}

// ParseLevel accepts the hclog level names; blank means DefaultLevel.
func ParseLevel(raw string) (hclog.Level, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		name = DefaultLevel
	}

	level := hclog.LevelFromString(name)
	if level == hclog.NoLevel {
		return hclog.NoLevel, fmt.Errorf("unknown log level %q", raw)
	}
	return level, nil
}
