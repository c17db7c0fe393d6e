package services_test

import (
	"errors"
	"strings"
	"testing"

	"romtidy/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "convert", "chdman createcd", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"convert", "chdman createcd", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "operation failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want services.Severity
	}{
		{services.Wrap(services.ErrValidation, "target", "stat", "missing", nil), services.SeverityFatal},
		{services.Wrap(services.ErrConfiguration, "config", "parse", "bad", nil), services.SeverityFatal},
		{services.Wrap(services.ErrUnavailable, "convert", "resolve", "no chdman", nil), services.SeverityError},
		{services.Wrap(services.ErrFilesystem, "playlist", "mkdir", "denied", nil), services.SeverityWarning},
		{services.Wrap(services.ErrExternalTool, "archive", "extract", "corrupt", nil), services.SeverityWarning},
		{errors.New("plain"), services.SeverityWarning},
	}
	for _, tc := range cases {
		if got := services.Classify(tc.err); got != tc.want {
			t.Fatalf("Classify(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
