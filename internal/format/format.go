// Package format pipes article markdown through an external formatter.
package format

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommand is the formatter used when none is configured
const DefaultCommand = "prettier --parser markdown"

// DefaultWaitDelay bounds how long output is drained after the formatter exits
// or is cancelled, when descendants still hold its stdout open
const DefaultWaitDelay = 5 * time.Second

// Formatter rewrites markdown, writing the result to w
type Formatter interface {
	Format(ctx context.Context, markdown string, w io.Writer) error
}

// Command runs an executable with the markdown on stdin and copies its stdout to w.
// No shell is involved; Name is resolved on PATH.
type Command struct {
	Name string
	Args []string

	// WaitDelay overrides DefaultWaitDelay when non-zero
	WaitDelay time.Duration
}

func (c *Command) Format(ctx context.Context, markdown string, w io.Writer) error {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = strings.NewReader(markdown)
	cmd.Stdout = w
	cmd.Stderr = &stderr
	cmd.WaitDelay = c.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("formatter %s failed: %w: %s", c, err, msg)
		}
		return fmt.Errorf("formatter %s failed: %w", c, err)
	}
	return nil
}

func (c *Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// Passthrough writes markdown unchanged
type Passthrough struct{}

func (Passthrough) Format(_ context.Context, markdown string, w io.Writer) error {
	_, err := io.WriteString(w, markdown)
	return err
}

// Parse builds a formatter from a command line such as "prettier --parser markdown".
// An empty line or "none" disables formatting.
func Parse(line string) Formatter {
	fields := strings.Fields(line)
	if len(fields) == 0 || (len(fields) == 1 && strings.EqualFold(fields[0], "none")) {
		return Passthrough{}
	}
	return &Command{Name: fields[0], Args: fields[1:]}
}

// Available reports whether f can run on this machine
func Available(f Formatter) error {
	c, ok := f.(*Command)
	if !ok {
		return nil
	}
	if _, err := exec.LookPath(c.Name); err != nil {
		return fmt.Errorf("formatter %q not found on PATH: %w", c.Name, err)
	}
	return nil
}
