package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[format]
style = "spaces"
width = 2

[checker]
binary = "/opt/scrcheck"
args = ["-strict"]

commands = ["extra_commands.json"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Format.Style != "spaces" || cfg.Format.Width != 2 {
		t.Errorf("format not loaded: %+v", cfg.Format)
	}
	if cfg.Checker.Binary != "/opt/scrcheck" || len(cfg.Checker.Args) != 1 {
		t.Errorf("checker not loaded: %+v", cfg.Checker)
	}
	if len(cfg.Commands) != 1 || cfg.Commands[0] != "extra_commands.json" {
		t.Errorf("commands not loaded: %+v", cfg.Commands)
	}
	opts := cfg.FormatterOptions()
	if !opts.InsertSpaces || opts.TabSize != 2 {
		t.Errorf("formatter options wrong: %+v", opts)
	}
}

func TestLoadRejectsBadStyle(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[format]\nstyle = \"elastic\"\n")
	if _, err := Load(path); err == nil {
		t.Fatal("want error for unknown style")
	}
}

func TestDefaultsAreTabs(t *testing.T) {
	cfg := Default()
	if cfg.Format.Style != "tabs" {
		t.Errorf("want tabs default, got %q", cfg.Format.Style)
	}
	if opts := cfg.FormatterOptions(); opts.InsertSpaces {
		t.Error("default must not insert spaces")
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[format]\nstyle = \"tabs\"\n")
	nested := filepath.Join(root, "maps", "dm")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path, ok, err := Find(nested)
	if err != nil || !ok {
		t.Fatalf("Find: ok=%v err=%v", ok, err)
	}
	if path != filepath.Join(root, FileName) {
		t.Errorf("found %q", path)
	}
}

func TestLoadForDirFallsBack(t *testing.T) {
	dir := t.TempDir()
	cfg, root := LoadForDir(dir)
	if root != "" {
		t.Errorf("want empty root without a manifest, got %q", root)
	}
	if cfg.Format.Style != "tabs" {
		t.Errorf("want defaults, got %+v", cfg)
	}
}
