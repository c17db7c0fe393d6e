package deps

import (
	"os"
	"path/filepath"
	"testing"

	"romtidy/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestChdmanRequirements(t *testing.T) {
	reqs := ChdmanRequirements(config.Chdman{
		Binary:         "chdman",
		FallbackPath:   "/usr/lib/mame/chdman",
		SandboxCommand: []string{"flatpak", "run", "--command=chdman", "org.mamedev.MAME"},
	})
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(reqs))
	}
	for _, req := range reqs {
		if !req.Optional {
			t.Fatalf("chdman candidates must be optional individually: %#v", req)
		}
	}
	if reqs[2].Command != "flatpak" {
		t.Fatalf("sandbox requirement should check the wrapper, got %q", reqs[2].Command)
	}
}

func TestAnyAvailable(t *testing.T) {
	if AnyAvailable([]Status{{Available: false}}) {
		t.Fatal("expected false")
	}
	if !AnyAvailable([]Status{{Available: false}, {Available: true}}) {
		t.Fatal("expected true")
	}
}
