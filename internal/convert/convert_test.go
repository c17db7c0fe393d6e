package convert_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"romtidy/internal/convert"
	"romtidy/internal/fsops"
	"romtidy/internal/services"
	"romtidy/internal/services/chdman"
	"romtidy/internal/testsupport"
)

type fixedResolver struct {
	cmd chdman.Command
	err error
}

func (r fixedResolver) Resolve(context.Context) (chdman.Command, error) { return r.cmd, r.err }

type fakeConverter struct {
	writeOutput bool
	err         error
	calls       int
}

func (f *fakeConverter) CreateCD(_ context.Context, _, output string, progress func(chdman.ProgressUpdate)) error {
	f.calls++
	if progress != nil {
		progress(chdman.ProgressUpdate{Percent: 50})
	}
	if f.writeOutput {
		if err := os.WriteFile(output, []byte("MComprHD"), 0o644); err != nil {
			return err
		}
	}
	return f.err
}

func newStage(conv *fakeConverter) *convert.Stage {
	return convert.NewStage(fixedResolver{cmd: chdman.Command{Binary: "chdman"}}, nil).
		WithConverter(func(chdman.Command) (chdman.Converter, error) { return conv, nil })
}

func seedSet(t *testing.T, dir, base string) {
	t.Helper()
	testsupport.WriteText(t, filepath.Join(dir, base+".cue"), "FILE \""+base+".bin\" BINARY\n  TRACK 01 MODE2/2352\n")
	testsupport.WriteText(t, filepath.Join(dir, base+".bin"), "data")
}

func TestConvertSuccessRelocatesSources(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	seedSet(t, dir, "Metal Gear Solid")

	run := testsupport.NewRun(t, cfg, dir, false)
	if err := newStage(&fakeConverter{writeOutput: true}).Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	want := []string{".trash/", ".trash/20260102-030405/", ".trash/20260102-030405/Metal Gear Solid.bin", ".trash/20260102-030405/Metal Gear Solid.cue", "Metal Gear Solid.chd"}
	if got := testsupport.Tree(t, dir); !reflect.DeepEqual(got, want) {
		t.Fatalf("tree = %v, want %v", got, want)
	}
}

func TestConvertRequiresOutputOnDisk(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	seedSet(t, dir, "Game")
	before := testsupport.Tree(t, dir)

	run := testsupport.NewRun(t, cfg, dir, false)
	stage := convert.NewStage(fixedResolver{cmd: chdman.Command{Binary: "chdman"}}, nil)
	// A real client around a tool that exits 0 without output.
	stage.WithConverter(func(cmd chdman.Command) (chdman.Converter, error) {
		return chdman.NewClient(cmd, chdman.WithExecutor(noopExecutor{}))
	})
	if err := stage.Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if after := testsupport.Tree(t, dir); !reflect.DeepEqual(before, after) {
		t.Fatalf("sources must stay untouched: %v -> %v", before, after)
	}
	if len(run.Report.Warnings()) != 1 || !errors.Is(run.Report.Warnings()[0].Err, services.ErrExternalTool) {
		t.Fatalf("unexpected report %+v", run.Report.Issues())
	}
}

type noopExecutor struct{}

func (noopExecutor) Run(context.Context, string, []string, func(string)) error { return nil }

func TestConvertFailureContinuesAndTrashesPartialOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	seedSet(t, dir, "Broken")

	run := testsupport.NewRun(t, cfg, dir, false)
	conv := &fakeConverter{writeOutput: true, err: errors.New("exit status 1")}
	if err := newStage(conv).Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"Broken.cue", "Broken.bin"} {
		if !fsops.Exists(filepath.Join(dir, name)) {
			t.Fatalf("%s must remain after failure", name)
		}
	}
	if fsops.Exists(filepath.Join(dir, "Broken.chd")) {
		t.Fatal("partial output must not stay at top level")
	}
	if !fsops.Exists(filepath.Join(run.Trash.RunDir(), "Broken.chd")) {
		t.Fatal("partial output should be in trash")
	}
}

func TestConvertSkipsExistingOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	seedSet(t, dir, "Game")
	testsupport.WriteText(t, filepath.Join(dir, "Game.chd"), "existing")

	run := testsupport.NewRun(t, cfg, dir, false)
	conv := &fakeConverter{writeOutput: true}
	if err := newStage(conv).Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if conv.calls != 0 {
		t.Fatal("converter must not run when output exists")
	}
	if len(run.Report.Warnings()) != 1 {
		t.Fatalf("expected one warning, got %+v", run.Report.Issues())
	}
	data, _ := os.ReadFile(filepath.Join(dir, "Game.chd"))
	if string(data) != "existing" {
		t.Fatal("existing container overwritten")
	}
}

func TestConvertUnavailableDisablesStage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	seedSet(t, dir, "Game")

	run := testsupport.NewRun(t, cfg, dir, false)
	unavailable := services.Wrap(services.ErrUnavailable, "convert", "resolve chdman", "", errors.New("not found"))
	stage := convert.NewStage(fixedResolver{err: unavailable}, nil)
	if err := stage.Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	errs := run.Report.Errors()
	if len(errs) != 1 || !errors.Is(errs[0].Err, services.ErrUnavailable) {
		t.Fatalf("expected unavailable error, got %+v", run.Report.Issues())
	}
	if health := stage.HealthCheck(context.Background()); health.Ready {
		t.Fatal("expected unhealthy stage")
	}
}

func TestConvertDryRunDescribesOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	seedSet(t, dir, "Game")
	before := testsupport.Tree(t, dir)

	run := testsupport.NewRun(t, cfg, dir, true)
	conv := &fakeConverter{writeOutput: true}
	if err := newStage(conv).Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if conv.calls != 0 {
		t.Fatal("dry run invoked the converter")
	}
	if after := testsupport.Tree(t, dir); !reflect.DeepEqual(before, after) {
		t.Fatalf("dry run changed tree: %v -> %v", before, after)
	}
	if run.Trash.Count() != 2 {
		t.Fatalf("expected 2 planned relocations, got %d", run.Trash.Count())
	}
}

func TestConvertWithStubTool(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubChdman(testsupport.ChdmanSucceeds))
	dir := t.TempDir()
	seedSet(t, dir, "Final Fantasy VII (Disc 1)")

	run := testsupport.NewRun(t, cfg, dir, false)
	stage := convert.NewStage(chdman.NewResolver(cfg.Chdman), nil)
	if err := stage.Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if !fsops.Exists(filepath.Join(dir, "Final Fantasy VII (Disc 1).chd")) {
		t.Fatalf("tree = %v, issues = %+v", testsupport.Tree(t, dir), run.Report.Issues())
	}
	if fsops.Exists(filepath.Join(dir, "Final Fantasy VII (Disc 1).bin")) {
		t.Fatal("data file should be relocated")
	}
}
