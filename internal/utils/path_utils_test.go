package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetConfigDirOverride(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("DENTALXRAY_CONFIG_HOME", tmpDir)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir failed: %v", err)
	}
	if dir != tmpDir {
		t.Errorf("GetConfigDir = %q, want %q", dir, tmpDir)
	}
}

func TestGetConfigDirXDG(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("DENTALXRAY_CONFIG_HOME", "")
	t.Setenv("APPDATA", "")
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	dir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir failed: %v", err)
	}
	if want := filepath.Join(tmpDir, "dentalxray"); dir != want {
		t.Errorf("GetConfigDir = %q, want %q", dir, want)
	}
}

func TestExpandHome(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/var/log/x.log", "/var/log/x.log"},
		{"relative/x.log", "relative/x.log"},
		{"~/x.log", filepath.Join(homeDir, "x.log")},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.in); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
