package main

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Zacy-Sokach/DentalXray/internal/mockserver"
)

func headless(t *testing.T) {
	t.Helper()
	t.Setenv("DENTALXRAY_CONFIG_HOME", t.TempDir())
	t.Setenv("DENTALXRAY_API_URL", "")
	t.Setenv("VITE_API_URL", "")
	t.Setenv("DENTALXRAY_THEME", "")

	orig := stdoutIsTerminal
	stdoutIsTerminal = func() bool { return false }
	t.Cleanup(func() { stdoutIsTerminal = orig })
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestHeadlessUploadPrintsReport(t *testing.T) {
	headless(t)

	srv, err := mockserver.New(mockserver.Config{ImagesDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("mockserver: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var out bytes.Buffer
	cmd := newRootCommand("dev", "none", "unknown")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--api-url", ts.URL, "--file", writeFile(t, "xray1.png", []byte("not really a png"))})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"xray1.png", "Annotated X-ray: " + ts.URL + "/images/", "Findings", "No pathologies detected."} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestHeadlessFailurePrintsPlaceholder(t *testing.T) {
	headless(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	var out bytes.Buffer
	cmd := newRootCommand("dev", "none", "unknown")
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--api-url", ts.URL, "--file", writeFile(t, "xray1.png", []byte("x"))})

	err := cmd.Execute()
	if !errors.Is(err, errEmptyReport) {
		t.Fatalf("expected errEmptyReport, got %v", err)
	}
	if !strings.Contains(out.String(), "No report yet.") {
		t.Errorf("expected placeholder in output:\n%s", out.String())
	}
}

func TestHeadlessRequiresFile(t *testing.T) {
	headless(t)

	cmd := newRootCommand("dev", "none", "unknown")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error without --file")
	}
}

func TestInvalidAPIURLRejected(t *testing.T) {
	headless(t)

	cmd := newRootCommand("dev", "none", "unknown")
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--api-url", "localhost:8000", "--file", "x.png"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected validation error for api url without scheme")
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand("1.2.3", "abc123", "2026-10-18")
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out.String(), "dentalxray 1.2.3 (abc123) built on 2026-10-18") {
		t.Errorf("unexpected version output: %q", out.String())
	}
}
