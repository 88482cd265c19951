package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTable(t *testing.T) {
	table := Default()
	if table.Len() == 0 {
		t.Fatal("embedded table is empty")
	}

	cmd, ok := table.Lookup("spawn")
	if !ok {
		t.Fatal("spawn not found in embedded table")
	}
	if cmd.EventVar != "EV_Spawn" {
		t.Errorf("unexpected event var: %s", cmd.EventVar)
	}
	if cmd.Doc == "" {
		t.Error("spawn has no doc string")
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	table := Default()
	for _, name := range []string{"spawn", "Spawn", "SPAWN"} {
		if !table.Has(name) {
			t.Errorf("lookup of %q failed", name)
		}
	}
	if table.Has("teleportx") {
		t.Error("teleportx should not resolve")
	}
}

func TestLoadDropsMalformedEntries(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "commands.json")
	content := `{
		"goodcmd": {"event_var": "EV_Good", "file": "entity.cpp", "args": [], "doc": "ok"},
		"badcmd": {"event_var": 42, "file": "entity.cpp"},
		"nocore": {"doc": "missing event_var and file"}
	}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !table.Has("goodcmd") {
		t.Error("goodcmd missing")
	}
	if table.Has("badcmd") || table.Has("nocore") {
		t.Errorf("malformed entries survived: %v", table.Names())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/commands.json"); err == nil {
		t.Fatal("expected error for missing file")
	}
	// LoadFull degrades to the embedded table instead.
	table := LoadFull("/nonexistent")
	if table.Len() == 0 {
		t.Fatal("LoadFull should fall back to the embedded table")
	}
}

func TestMergeOverrides(t *testing.T) {
	table := Default()
	before, _ := table.Lookup("spawn")

	other := NewTable()
	other.put("Spawn", Command{EventVar: "EV_Custom", File: "custom.cpp", Doc: "override"})
	table.Merge(other)

	cmd, ok := table.Lookup("spawn")
	if !ok {
		t.Fatal("spawn lost after merge")
	}
	if cmd.EventVar == before.EventVar {
		t.Error("merge did not override entry")
	}
	// Only one entry should remain under any casing of the name.
	count := 0
	for _, name := range table.Names() {
		if strings.EqualFold(name, "spawn") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected 1 spawn entry, found %d", count)
	}
}

func TestExport(t *testing.T) {
	table := NewTable()
	table.put("bravo", Command{EventVar: "EV_B", File: "b.cpp"})
	table.put("alpha", Command{EventVar: "EV_A", File: "a.cpp"})

	var buf strings.Builder
	if err := table.Export(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "alpha\nbravo\n" {
		t.Errorf("unexpected export: %q", buf.String())
	}
}
