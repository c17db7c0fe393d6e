package chdman

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"romtidy/internal/config"
	"romtidy/internal/services"
)

// Source names where a resolved command came from.
type Source string

const (
	SourcePath     Source = "path"
	SourceFallback Source = "fallback"
	SourceSandbox  Source = "sandbox"
)

// Command is a resolved chdman invocation prefix.
type Command struct {
	Binary string
	Prefix []string
	Source Source
}

// Argv returns the binary and full argument list for args.
func (c Command) Argv(args ...string) (string, []string) {
	full := make([]string, 0, len(c.Prefix)+len(args))
	full = append(full, c.Prefix...)
	full = append(full, args...)
	return c.Binary, full
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Binary}, c.Prefix...), " ")
}

// Resolver finds a working chdman and caches the outcome for the run.
type Resolver struct {
	cfg      config.Chdman
	settings settings

	once sync.Once
	cmd  Command
	err  error
}

// NewResolver constructs a resolver for the configured candidates.
func NewResolver(cfg config.Chdman, opts ...Option) *Resolver {
	return &Resolver{cfg: cfg, settings: applyOptions(opts)}
}

// Resolve returns the first candidate that passes the probe. The result,
// including failure, is computed once.
func (r *Resolver) Resolve(ctx context.Context) (Command, error) {
	r.once.Do(func() {
		r.cmd, r.err = r.resolve(ctx)
	})
	return r.cmd, r.err
}

type candidate struct {
	cmd  Command
	skip string
}

func (r *Resolver) candidates() []candidate {
	var out []candidate
	if binary := strings.TrimSpace(r.cfg.Binary); binary != "" {
		if path, err := r.settings.lookPath(binary); err == nil {
			out = append(out, candidate{cmd: Command{Binary: path, Source: SourcePath}})
		} else {
			out = append(out, candidate{skip: binary + ": not on PATH"})
		}
	}
	if fallback := strings.TrimSpace(r.cfg.FallbackPath); fallback != "" {
		if isExecutable(fallback) {
			out = append(out, candidate{cmd: Command{Binary: fallback, Source: SourceFallback}})
		} else {
			out = append(out, candidate{skip: fallback + ": not executable"})
		}
	}
	if len(r.cfg.SandboxCommand) > 0 {
		wrapper := r.cfg.SandboxCommand[0]
		if path, err := r.settings.lookPath(wrapper); err == nil {
			prefix := append([]string(nil), r.cfg.SandboxCommand[1:]...)
			out = append(out, candidate{cmd: Command{Binary: path, Prefix: prefix, Source: SourceSandbox}})
		} else {
			out = append(out, candidate{skip: wrapper + ": not on PATH"})
		}
	}
	return out
}

func (r *Resolver) resolve(ctx context.Context) (Command, error) {
	var attempts []string
	for _, c := range r.candidates() {
		if c.skip != "" {
			attempts = append(attempts, c.skip)
			continue
		}
		if err := r.probe(ctx, c.cmd); err != nil {
			attempts = append(attempts, fmt.Sprintf("%s: %v", c.cmd, err))
			continue
		}
		return c.cmd, nil
	}

	detail := "no candidates configured"
	if len(attempts) > 0 {
		detail = strings.Join(attempts, "; ")
	}
	return Command{}, services.Wrap(services.ErrUnavailable, "convert", "resolve chdman",
		"Install MAME tools (chdman) or set chdman.binary", errors.New(detail))
}

// probe accepts a clean exit, or any exit whose output names chdman since
// some builds print usage with a non-zero status.
func (r *Resolver) probe(ctx context.Context, cmd Command) error {
	var output strings.Builder
	binary, args := cmd.Argv(r.cfg.ProbeArgs...)
	err := r.settings.exec.Run(ctx, binary, args, func(line string) {
		output.WriteString(line)
		output.WriteByte('\n')
	})
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(output.String()), "chdman") {
		return nil
	}
	return fmt.Errorf("probe failed: %w", err)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0o111 != 0
}
