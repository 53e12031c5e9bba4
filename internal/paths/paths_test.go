package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidatePathString(t *testing.T) {
	cases := []struct {
		name    string
		path    string
		maxLen  int
		wantErr bool
	}{
		{"plain", "data/threads", 0, false},
		{"empty", "", 0, true},
		{"whitespace only", "   ", 0, true},
		{"null byte", "a\x00b", 0, true},
		{"invalid utf8", "a\xffb", 0, true},
		{"within limit", "abc", 5, false},
		{"over limit", "abcdef", 5, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePathString(tc.path, tc.maxLen)
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidatePathString(%q, %d) error = %v, wantErr %t", tc.path, tc.maxLen, err, tc.wantErr)
			}
		})
	}
}

func TestValidateFileComponent(t *testing.T) {
	for _, name := range []string{"default", "work-chat", "thread_2", "a.b"} {
		if err := ValidateFileComponent(name); err != nil {
			t.Errorf("ValidateFileComponent(%q) = %v, want nil", name, err)
		}
	}
	bad := []string{
		"",
		".",
		"..",
		".hidden",
		"a/b",
		`a\b`,
		"../../etc/passwd",
		strings.Repeat("x", 200),
	}
	for _, name := range bad {
		if err := ValidateFileComponent(name); err == nil {
			t.Errorf("ValidateFileComponent(%q) = nil, want error", name)
		}
	}
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}
	// Idempotent on an existing directory.
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir second call: %v", err)
	}
	if err := EnsureDir(""); err == nil {
		t.Fatal("empty path must be rejected")
	}
}
