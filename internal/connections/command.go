package connections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/npratt/relgraph/internal/testutil"
)

// CommandSource asks an external scoring command for connections.
// The focus key is appended as the final argument and the command must print
// a JSON array of records on stdout.
type CommandSource struct {
	cmdRunner testutil.CommandRunner
	name      string
	args      []string
	timeout   time.Duration
}

// NewCommandSource creates a CommandSource. argv must contain at least the
// command name.
func NewCommandSource(runner testutil.CommandRunner, argv []string, timeout time.Duration) (*CommandSource, error) {
	if len(argv) == 0 {
		return nil, errors.New("connection command is empty")
	}
	return &CommandSource{
		cmdRunner: runner,
		name:      argv[0],
		args:      append([]string(nil), argv[1:]...),
		timeout:   timeout,
	}, nil
}

// Connections runs the command for focusKey and parses its output.
func (c *CommandSource) Connections(ctx context.Context, focusKey string) ([]Connection, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := append(append([]string(nil), c.args...), focusKey)
	output, err := c.cmdRunner.Run(ctx, c.name, args...)
	if err != nil {
		return nil, fmt.Errorf("%s failed for %s: %w", c.name, focusKey, err)
	}

	return ParseList(output)
}
