package chdman_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"romtidy/internal/config"
	"romtidy/internal/services"
	"romtidy/internal/services/chdman"
)

type stubExecutor struct {
	lines  []string
	errFor map[string]error
	create func(args []string)
	calls  [][]string
}

func (s *stubExecutor) Run(_ context.Context, binary string, args []string, onOutput func(string)) error {
	s.calls = append(s.calls, append([]string{binary}, args...))
	for _, line := range s.lines {
		onOutput(line)
	}
	if s.create != nil {
		s.create(args)
	}
	if s.errFor != nil {
		return s.errFor[binary]
	}
	return nil
}

func lookPathIn(found map[string]string) func(string) (string, error) {
	return func(name string) (string, error) {
		if path, ok := found[name]; ok {
			return path, nil
		}
		return "", errors.New("not found")
	}
}

func TestResolvePrefersPath(t *testing.T) {
	exec := &stubExecutor{}
	resolver := chdman.NewResolver(config.Chdman{
		Binary:         "chdman",
		SandboxCommand: []string{"flatpak", "run", "--command=chdman", "org.mamedev.MAME"},
		ProbeArgs:      []string{"help"},
	}, chdman.WithExecutor(exec), chdman.WithLookPath(lookPathIn(map[string]string{
		"chdman":  "/usr/bin/chdman",
		"flatpak": "/usr/bin/flatpak",
	})))

	cmd, err := resolver.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Source != chdman.SourcePath || cmd.Binary != "/usr/bin/chdman" {
		t.Fatalf("unexpected command %+v", cmd)
	}
	if _, err := resolver.Resolve(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(exec.calls) != 1 {
		t.Fatalf("expected cached resolution, got %d probes", len(exec.calls))
	}
}

func TestResolveFallsBackToSandbox(t *testing.T) {
	exec := &stubExecutor{errFor: map[string]error{"/usr/bin/chdman": errors.New("exit status 127")}}
	resolver := chdman.NewResolver(config.Chdman{
		Binary:         "chdman",
		FallbackPath:   filepath.Join(t.TempDir(), "missing"),
		SandboxCommand: []string{"flatpak", "run", "--command=chdman", "org.mamedev.MAME"},
		ProbeArgs:      []string{"help"},
	}, chdman.WithExecutor(exec), chdman.WithLookPath(lookPathIn(map[string]string{
		"chdman":  "/usr/bin/chdman",
		"flatpak": "/usr/bin/flatpak",
	})))

	cmd, err := resolver.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Source != chdman.SourceSandbox {
		t.Fatalf("expected sandbox, got %+v", cmd)
	}
	binary, args := cmd.Argv("createcd")
	if binary != "/usr/bin/flatpak" || strings.Join(args, " ") != "run --command=chdman org.mamedev.MAME createcd" {
		t.Fatalf("unexpected argv %s %v", binary, args)
	}
}

func TestResolveProbeAcceptsUsageOutput(t *testing.T) {
	dir := t.TempDir()
	fallback := filepath.Join(dir, "chdman")
	if err := os.WriteFile(fallback, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	exec := &stubExecutor{
		lines:  []string{"chdman - MAME Compressed Hunks of Data (CHD) manager 0.262"},
		errFor: map[string]error{fallback: errors.New("exit status 1")},
	}
	resolver := chdman.NewResolver(config.Chdman{FallbackPath: fallback, ProbeArgs: []string{"help"}},
		chdman.WithExecutor(exec), chdman.WithLookPath(lookPathIn(nil)))
	cmd, err := resolver.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Source != chdman.SourceFallback {
		t.Fatalf("expected fallback, got %+v", cmd)
	}
}

func TestResolveUnavailable(t *testing.T) {
	resolver := chdman.NewResolver(config.Chdman{Binary: "chdman", ProbeArgs: []string{"help"}},
		chdman.WithExecutor(&stubExecutor{}), chdman.WithLookPath(lookPathIn(nil)))
	_, err := resolver.Resolve(context.Background())
	if !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestCreateCDRequiresOutputFile(t *testing.T) {
	dir := t.TempDir()
	client, err := chdman.NewClient(chdman.Command{Binary: "chdman"}, chdman.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatal(err)
	}
	err = client.CreateCD(context.Background(), filepath.Join(dir, "a.cue"), filepath.Join(dir, "a.chd"), nil)
	if err == nil || !strings.Contains(err.Error(), "no output file") {
		t.Fatalf("expected missing output error, got %v", err)
	}
}

func TestCreateCDReportsProgressAndSucceeds(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "a.chd")
	exec := &stubExecutor{
		lines: []string{"Compressing, 12.5% complete... (ratio=40.0%)", "Compression complete ... final ratio = 45.1%"},
		create: func(args []string) {
			_ = os.WriteFile(args[len(args)-1], []byte("chd"), 0o644)
		},
	}
	client, err := chdman.NewClient(chdman.Command{Binary: "chdman"}, chdman.WithExecutor(exec))
	if err != nil {
		t.Fatal(err)
	}
	var updates []chdman.ProgressUpdate
	if err := client.CreateCD(context.Background(), filepath.Join(dir, "a.cue"), output, func(u chdman.ProgressUpdate) {
		updates = append(updates, u)
	}); err != nil {
		t.Fatal(err)
	}
	if len(updates) != 1 || updates[0].Percent != 12.5 {
		t.Fatalf("unexpected updates %+v", updates)
	}
	want := []string{"chdman", "createcd", "-i", filepath.Join(dir, "a.cue"), "-o", output}
	if strings.Join(exec.calls[0], "|") != strings.Join(want, "|") {
		t.Fatalf("unexpected call %v", exec.calls[0])
	}
}

func TestCreateCDExitFailureWins(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "a.chd")
	exec := &stubExecutor{
		errFor: map[string]error{"chdman": errors.New("exit status 1")},
		create: func(args []string) { _ = os.WriteFile(output, []byte("partial"), 0o644) },
	}
	client, _ := chdman.NewClient(chdman.Command{Binary: "chdman"}, chdman.WithExecutor(exec))
	if err := client.CreateCD(context.Background(), filepath.Join(dir, "a.cue"), output, nil); err == nil {
		t.Fatal("expected failure despite output present")
	}
}
