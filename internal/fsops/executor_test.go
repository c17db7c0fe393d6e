package fsops

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestRealMoveRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.bin")
	dst := filepath.Join(dir, "b.bin")
	if err := os.WriteFile(src, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}

	exec := New(false, nil)
	err := exec.Move(context.Background(), src, dst)
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "b" {
		t.Fatalf("destination overwritten: %q", data)
	}
}

func TestRealMoveAndMkdir(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "game.chd")
	if err := os.WriteFile(src, []byte("chd"), 0o644); err != nil {
		t.Fatal(err)
	}
	exec := New(false, nil)
	hidden := filepath.Join(dir, ".game")
	if err := exec.MkdirAll(context.Background(), hidden); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(hidden, "game.chd")
	if err := exec.Move(context.Background(), src, dst); err != nil {
		t.Fatal(err)
	}
	if Exists(src) || !Exists(dst) {
		t.Fatalf("move did not happen: src=%v dst=%v", Exists(src), Exists(dst))
	}
}

func TestRealWriteFileExclusive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "list.m3u")
	exec := New(false, nil)
	if err := exec.WriteFile(context.Background(), path, []byte("one\n")); err != nil {
		t.Fatal(err)
	}
	if err := exec.WriteFile(context.Background(), path, []byte("two\n")); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
}

func TestRemoveEmptyDirRejectsContent(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "inner")
	if err := os.Mkdir(inner, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(inner, "keep"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	exec := New(false, nil)
	if err := exec.RemoveEmptyDir(context.Background(), inner); err == nil {
		t.Fatal("expected error removing non-empty directory")
	}
	if !Exists(filepath.Join(inner, "keep")) {
		t.Fatal("content removed")
	}
}

func TestDryRunAppliesNothing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.bin")
	if err := os.WriteFile(src, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	logger, buf := captureLogger()
	exec := New(true, logger)
	ctx := context.Background()

	if !exec.DryRun() {
		t.Fatal("expected dry-run executor")
	}
	if err := exec.Move(ctx, src, filepath.Join(dir, "b.bin")); err != nil {
		t.Fatal(err)
	}
	if err := exec.MkdirAll(ctx, filepath.Join(dir, "new")); err != nil {
		t.Fatal(err)
	}
	if err := exec.WriteFile(ctx, filepath.Join(dir, "x.txt"), []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := exec.RemoveAll(ctx, dir); err != nil {
		t.Fatal(err)
	}
	called := false
	applied, err := exec.Run(ctx, Action{Description: "extract", Apply: func(context.Context) error {
		called = true
		return nil
	}})
	if err != nil || applied || called {
		t.Fatalf("dry-run action applied=%v called=%v err=%v", applied, called, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.bin" {
		t.Fatalf("dry run changed directory: %v", entries)
	}
	out := buf.String()
	for _, want := range []string{"msg=move", "msg=\"create directory\"", "msg=\"write file\"", "msg=extract", "dry_run=true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
}

func TestRunPropagatesError(t *testing.T) {
	exec := New(false, nil)
	boom := errors.New("boom")
	applied, err := exec.Run(context.Background(), Action{Description: "tool", Apply: func(context.Context) error { return boom }})
	if !applied || !errors.Is(err, boom) {
		t.Fatalf("applied=%v err=%v", applied, err)
	}
}
