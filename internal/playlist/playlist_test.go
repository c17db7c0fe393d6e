package playlist_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"romtidy/internal/fsops"
	"romtidy/internal/playlist"
	"romtidy/internal/testsupport"
)

func TestXenogearsPlaylist(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "Xenogears (USA) (Disc 2).chd"), "2")
	testsupport.WriteText(t, filepath.Join(dir, "Xenogears (USA) (Disc 1).chd"), "1")
	testsupport.WriteText(t, filepath.Join(dir, "Metal Gear Solid.chd"), "m")

	run := testsupport.NewRun(t, cfg, dir, false)
	if err := playlist.NewStage(nil).Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Xenogears_USA_.m3u"))
	if err != nil {
		t.Fatal(err)
	}
	want := "./.Xenogears_USA_/Xenogears (USA) (Disc 1).chd\n./.Xenogears_USA_/Xenogears (USA) (Disc 2).chd\n"
	if string(data) != want {
		t.Fatalf("playlist = %q, want %q", data, want)
	}
	wantTree := []string{
		".Xenogears_USA_/",
		".Xenogears_USA_/Xenogears (USA) (Disc 1).chd",
		".Xenogears_USA_/Xenogears (USA) (Disc 2).chd",
		"Metal Gear Solid.chd",
		"Xenogears_USA_.m3u",
	}
	if got := testsupport.Tree(t, dir); !reflect.DeepEqual(got, wantTree) {
		t.Fatalf("tree = %v, want %v", got, wantTree)
	}
}

func TestExistingPlaylistsRelocatedFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "Riven.m3u"), "stale\n")
	testsupport.WriteText(t, filepath.Join(dir, "Riven (Disc 1).chd"), "1")
	testsupport.WriteText(t, filepath.Join(dir, "Riven (Disc 2).chd"), "2")

	run := testsupport.NewRun(t, cfg, dir, false)
	if err := playlist.NewStage(nil).Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	stale, err := os.ReadFile(filepath.Join(run.Trash.RunDir(), "Riven.m3u"))
	if err != nil || string(stale) != "stale\n" {
		t.Fatalf("stale playlist not in trash: %q %v", stale, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "Riven.m3u"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "./.Riven/Riven (Disc 1).chd\n./.Riven/Riven (Disc 2).chd\n" {
		t.Fatalf("playlist = %q", data)
	}
}

func TestMoveFailureAbandonsGameOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "Alpha (Disc 1).chd"), "1")
	testsupport.WriteText(t, filepath.Join(dir, "Alpha (Disc 2).chd"), "2")
	// A same-named file already inside the hidden directory blocks disc 2.
	testsupport.WriteText(t, filepath.Join(dir, ".Alpha", "Alpha (Disc 2).chd"), "old")
	testsupport.WriteText(t, filepath.Join(dir, "Beta (Disc 1).chd"), "1")
	testsupport.WriteText(t, filepath.Join(dir, "Beta (Disc 2).chd"), "2")

	run := testsupport.NewRun(t, cfg, dir, false)
	if err := playlist.NewStage(nil).Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if fsops.Exists(filepath.Join(dir, "Alpha.m3u")) {
		t.Fatal("abandoned game must not get a playlist")
	}
	if !fsops.Exists(filepath.Join(dir, "Beta.m3u")) {
		t.Fatal("other games must still be processed")
	}
	if len(run.Report.Warnings()) != 1 {
		t.Fatalf("expected one warning, got %+v", run.Report.Issues())
	}
}

func TestGroupingDryRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "Game (Disc 1).chd"), "1")
	testsupport.WriteText(t, filepath.Join(dir, "Game (Disc 2).chd"), "2")
	testsupport.WriteText(t, filepath.Join(dir, "Old.m3u"), "x\n")
	before := testsupport.Tree(t, dir)

	run := testsupport.NewRun(t, cfg, dir, true)
	if err := playlist.NewStage(nil).Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if after := testsupport.Tree(t, dir); !reflect.DeepEqual(before, after) {
		t.Fatalf("dry run changed tree: %v -> %v", before, after)
	}
}

func TestEmptyCanonicalNameLeftInPlace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "(Disc 1).chd"), "1")

	run := testsupport.NewRun(t, cfg, dir, false)
	if err := playlist.NewStage(nil).Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}
	if !fsops.Exists(filepath.Join(dir, "(Disc 1).chd")) {
		t.Fatal("file must stay at top level")
	}
	if len(run.Report.Warnings()) != 1 {
		t.Fatalf("expected a warning, got %+v", run.Report.Issues())
	}
}

func TestContent(t *testing.T) {
	got := playlist.Content(".G", []string{"a.chd", "b.chd"})
	if got != "./.G/a.chd\n./.G/b.chd\n" {
		t.Fatalf("content = %q", got)
	}
}

func TestSanitizedNameCollisionLeavesSecondGameInPlace(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "Game (USA) (Disc 1).chd"), "1")
	testsupport.WriteText(t, filepath.Join(dir, "Game (USA) (Disc 2).chd"), "2")
	testsupport.WriteText(t, filepath.Join(dir, "Game [USA] (Disc 1).chd"), "1")
	testsupport.WriteText(t, filepath.Join(dir, "Game [USA] (Disc 2).chd"), "2")

	run := testsupport.NewRun(t, cfg, dir, false)
	if err := playlist.NewStage(nil).Execute(context.Background(), run); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Game_USA_.m3u"))
	if err != nil {
		t.Fatal(err)
	}
	want := "./.Game_USA_/Game (USA) (Disc 1).chd\n./.Game_USA_/Game (USA) (Disc 2).chd\n"
	if string(data) != want {
		t.Fatalf("playlist = %q, want %q", data, want)
	}
	wantTree := []string{
		".Game_USA_/",
		".Game_USA_/Game (USA) (Disc 1).chd",
		".Game_USA_/Game (USA) (Disc 2).chd",
		"Game [USA] (Disc 1).chd",
		"Game [USA] (Disc 2).chd",
		"Game_USA_.m3u",
	}
	if got := testsupport.Tree(t, dir); !reflect.DeepEqual(got, wantTree) {
		t.Fatalf("tree = %v, want %v", got, wantTree)
	}
	warnings := run.Report.Warnings()
	if len(warnings) != 1 || warnings[0].Subject != "Game [USA]" {
		t.Fatalf("expected one warning for the colliding game, got %+v", run.Report.Issues())
	}
}
