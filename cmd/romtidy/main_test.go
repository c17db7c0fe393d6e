package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"romtidy/internal/config"
	"romtidy/internal/history"
	"romtidy/internal/services"
	"romtidy/internal/testsupport"
)

type cliEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLIEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliEnv {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	configPath := filepath.Join(testsupport.BaseDir(cfg), "romtidy.toml")
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliEnv{cfg: cfg, configPath: configPath}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedDisc(t *testing.T, dir, name string) {
	t.Helper()
	testsupport.WriteText(t, filepath.Join(dir, name+".cue"), "FILE \""+name+".bin\" BINARY\n  TRACK 01 MODE2/2352\n")
	testsupport.WriteText(t, filepath.Join(dir, name+".bin"), "data")
}

func TestRunCommandProcessesTarget(t *testing.T) {
	env := setupCLIEnv(t, testsupport.WithStubChdman(testsupport.ChdmanSucceeds))
	dir := t.TempDir()
	seedDisc(t, dir, "Crash Bandicoot (USA)")

	out, err := env.run(t, dir)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "Crash Bandicoot (USA).chd")); err != nil {
		t.Fatalf("expected container: %v", err)
	}
	for _, want := range []string{"Crash Bandicoot (USA)", "convert", "Relocated 2 item(s)", "Run log:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	logs, _ := filepath.Glob(filepath.Join(env.cfg.Paths.LogDir, "romtidy-*.log"))
	if len(logs) != 1 {
		t.Errorf("run logs = %v, want one", logs)
	}
}

func TestRunCommandRejectsMissingTarget(t *testing.T) {
	env := setupCLIEnv(t)
	_, err := env.run(t, filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestRunCommandRejectsUnknownFlag(t *testing.T) {
	env := setupCLIEnv(t)
	dir := t.TempDir()
	seedDisc(t, dir, "Crash Bandicoot (USA)")
	before := testsupport.Tree(t, dir)

	if _, err := env.run(t, "--frobnicate", dir); err == nil {
		t.Fatal("expected unknown flag error")
	}
	if after := testsupport.Tree(t, dir); strings.Join(after, ",") != strings.Join(before, ",") {
		t.Fatalf("target changed: %v -> %v", before, after)
	}
}

func TestRunCommandRejectsExtraArgs(t *testing.T) {
	env := setupCLIEnv(t)
	if _, err := env.run(t, t.TempDir(), t.TempDir()); err == nil {
		t.Fatal("expected error for two targets")
	}
}

func TestHistoryAndRestore(t *testing.T) {
	env := setupCLIEnv(t, testsupport.WithStubChdman(testsupport.ChdmanSucceeds), testsupport.WithHistory(true))
	dir := t.TempDir()
	seedDisc(t, dir, "Crash Bandicoot (USA)")
	if out, err := env.run(t, dir); err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}

	store, err := history.Open(env.cfg.HistoryPath())
	if err != nil {
		t.Fatal(err)
	}
	runs, err := store.RecentRuns(context.Background(), 5)
	store.Close()
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs = %v, err = %v", runs, err)
	}
	runID := runs[0].ID

	out, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, shortID(runID)) || !strings.Contains(out, "finished") {
		t.Errorf("history output:\n%s", out)
	}

	out, err = env.run(t, "history", runID[:8])
	if err != nil {
		t.Fatalf("history run: %v", err)
	}
	if !strings.Contains(out, "Bandicoot") || !strings.Contains(out, runID) {
		t.Errorf("relocations output:\n%s", out)
	}

	out, err = env.run(t, "restore", "--dry-run", runID)
	if err != nil {
		t.Fatalf("restore dry run: %v", err)
	}
	if !strings.Contains(out, "Would restore 2 file(s)") {
		t.Errorf("dry restore output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "Crash Bandicoot (USA).cue")); !os.IsNotExist(err) {
		t.Fatalf("dry restore must not move files, stat err=%v", err)
	}

	out, err = env.run(t, "restore", runID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !strings.Contains(out, "Restored 2 file(s)") {
		t.Errorf("restore output: %s", out)
	}
	for _, name := range []string{"Crash Bandicoot (USA).cue", "Crash Bandicoot (USA).bin"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s not restored: %v", name, err)
		}
	}
}

func TestHistoryWithoutJournal(t *testing.T) {
	env := setupCLIEnv(t)
	if _, err := env.run(t, "history"); err == nil {
		t.Fatal("expected error when no journal exists")
	}
}

func TestDoctorReportsStages(t *testing.T) {
	env := setupCLIEnv(t)
	out, err := env.run(t, "doctor", t.TempDir())
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	for _, want := range []string{"Tools", "Directories", "Stages", "convert", "inventory"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "romtidy.toml")
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "init", "--path", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config does not load: exists=%v err=%v", exists, err)
	}

	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"config", "init", "--path", path})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected refusal to overwrite")
	}
}

func TestLogsShowsLatestRunLog(t *testing.T) {
	env := setupCLIEnv(t)
	dir := t.TempDir()
	if out, err := env.run(t, "--log-level", "info", dir); err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}

	out, err := env.run(t, "logs", "-n", "200")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "run started") || !strings.Contains(out, "run finished") {
		t.Errorf("logs output:\n%s", out)
	}

	out, err = env.run(t, "logs", "--list")
	if err != nil {
		t.Fatalf("logs --list: %v", err)
	}
	if !strings.Contains(out, "romtidy-") {
		t.Errorf("logs --list output:\n%s", out)
	}
}
