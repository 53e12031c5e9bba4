package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadThemeMissingFileReturnsDefault(t *testing.T) {
	theme, err := LoadTheme(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("LoadTheme: %v", err)
	}
	def := DefaultTheme()
	if theme.ChatUserColor != def.ChatUserColor {
		t.Fatalf("expected default theme, got %+v", theme)
	}
}

func TestLoadThemeOverridesFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.json")
	if err := os.WriteFile(path, []byte(`{"chat_user_color":"#ffffff"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	theme, err := LoadTheme(path)
	if err != nil {
		t.Fatalf("LoadTheme: %v", err)
	}
	if theme.ChatUserColor != "#ffffff" {
		t.Errorf("override not applied: %q", theme.ChatUserColor)
	}
	if theme.ChatErrorColor != DefaultTheme().ChatErrorColor {
		t.Errorf("unset field lost its default: %q", theme.ChatErrorColor)
	}
}

func TestLoadThemeRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "theme.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadTheme(path); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestDisabledColorSchemeHasAllStyles(t *testing.T) {
	cs := DisabledColorScheme()
	if cs.Header == nil || cs.User == nil || cs.Assistant == nil ||
		cs.Observation == nil || cs.Error == nil || cs.Success == nil {
		t.Fatal("disabled scheme must still provide every style")
	}
}
