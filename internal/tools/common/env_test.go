package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nCAMPUSCTL_TEST_A=\"alpha\"\nCAMPUSCTL_TEST_B = beta\nmalformed\nCAMPUSCTL_TEST_KEEP=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("CAMPUSCTL_TEST_KEEP", "from-env")
	t.Setenv("CAMPUSCTL_TEST_A", "")
	os.Unsetenv("CAMPUSCTL_TEST_A")
	t.Setenv("CAMPUSCTL_TEST_B", "")
	os.Unsetenv("CAMPUSCTL_TEST_B")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("CAMPUSCTL_TEST_A"); got != "alpha" {
		t.Fatalf("expected quoted value stripped, got %q", got)
	}
	if got := os.Getenv("CAMPUSCTL_TEST_B"); got != "beta" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := os.Getenv("CAMPUSCTL_TEST_KEEP"); got != "from-env" {
		t.Fatalf("existing env must win, got %q", got)
	}
}

func TestLoadEnvFileMissingIsNotAnError(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("expected nil for missing file, got %v", err)
	}
	if err := LoadEnvFile(""); err != nil {
		t.Fatalf("expected nil for empty path, got %v", err)
	}
}

func TestParseEnvLine(t *testing.T) {
	tests := []struct {
		line  string
		key   string
		value string
		ok    bool
	}{
		{line: "", ok: false},
		{line: "   # note", ok: false},
		{line: "NO_EQUALS", ok: false},
		{line: "=value", ok: false},
		{line: "A=1", key: "A", value: "1", ok: true},
		{line: "export B = two ", key: "B", value: "two", ok: true},
		{line: `C="quoted # kept"`, key: "C", value: "quoted # kept", ok: true},
		{line: "D='single'", key: "D", value: "single", ok: true},
		{line: "E=value # trailing", key: "E", value: "value", ok: true},
		{line: "F=a=b", key: "F", value: "a=b", ok: true},
	}
	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			key, value, ok := ParseEnvLine(tc.line)
			if ok != tc.ok || key != tc.key || value != tc.value {
				t.Fatalf("ParseEnvLine(%q) = (%q, %q, %v), want (%q, %q, %v)", tc.line, key, value, ok, tc.key, tc.value, tc.ok)
			}
		})
	}
}
