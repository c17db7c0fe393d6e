package chdman

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
)

// ProgressUpdate captures chdman progress output.
type ProgressUpdate struct {
	Percent float64
	Message string
}

// Converter defines the behaviour required by the conversion stage.
type Converter interface {
	CreateCD(ctx context.Context, descriptor, output string, progress func(ProgressUpdate)) error
}

// Client wraps chdman CLI interactions for one resolved command.
type Client struct {
	cmd      Command
	settings settings
}

// NewClient constructs a client around a resolved command.
func NewClient(cmd Command, opts ...Option) (*Client, error) {
	if cmd.Binary == "" {
		return nil, errors.New("chdman command required")
	}
	return &Client{cmd: cmd, settings: applyOptions(opts)}, nil
}

// CreateCD converts descriptor into a CHD at output. It fails unless the tool
// exits cleanly and output exists afterwards.
func (c *Client) CreateCD(ctx context.Context, descriptor, output string, progress func(ProgressUpdate)) error {
	if descriptor == "" || output == "" {
		return errors.New("descriptor and output required")
	}
	binary, args := c.cmd.Argv("createcd", "-i", descriptor, "-o", output)
	if err := c.settings.exec.Run(ctx, binary, args, func(line string) {
		if progress == nil {
			return
		}
		if update, ok := parseProgress(line); ok {
			progress(update)
		}
	}); err != nil {
		return fmt.Errorf("chdman createcd: %w", err)
	}
	if _, err := os.Stat(output); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.New("chdman produced no output file; check the descriptor and its data files")
		}
		return fmt.Errorf("verify output: %w", err)
	}
	return nil
}

var progressPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%\s+complete`)

// parseProgress reads lines like "Compressing, 45.3% complete... (ratio=52.1%)".
func parseProgress(line string) (ProgressUpdate, bool) {
	match := progressPattern.FindStringSubmatch(line)
	if match == nil {
		return ProgressUpdate{}, false
	}
	percent, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return ProgressUpdate{}, false
	}
	return ProgressUpdate{Percent: percent, Message: line}, true
}
