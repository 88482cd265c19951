// Package commands loads the game command metadata table scraped from the
// engine source. The table is read-only lookup data: both analyzers and the
// hover/completion surfaces consume it, nothing mutates it after load.
package commands

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed commands.json
var defaultTableJSON []byte

// commandSchema is the shape every table entry must satisfy. Entries from
// user-provided tables that fail it are dropped rather than failing the load.
const commandSchema = `
#Command: {
	event_var: string
	file:      string
	args?: [...string]
	doc?:      string
	...
}
`

// Command is the metadata recorded for one scripting command.
type Command struct {
	EventVar string   `json:"event_var"`
	File     string   `json:"file"`
	Args     []string `json:"args"`
	Doc      string   `json:"doc"`
}

// Table maps command names to their metadata. Keys keep their original case;
// lookups are case-insensitive.
type Table struct {
	entries map[string]Command
	index   map[string]string // lowercase -> original key
}

func NewTable() *Table {
	return &Table{
		entries: make(map[string]Command),
		index:   make(map[string]string),
	}
}

// Load reads a command table from a JSON file. Entries that do not match the
// command schema are skipped.
func Load(path string) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parse(content)
}

// Default returns the built-in embedded table.
func Default() *Table {
	t, err := parse(defaultTableJSON)
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded command table: %v", err))
	}
	return t
}

func parse(content []byte) (*Table, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse command table: %v", err)
	}

	cctx := cuecontext.New()
	def := cctx.CompileString(commandSchema).LookupPath(cue.ParsePath("#Command"))

	t := NewTable()
	for name, entry := range raw {
		var decoded map[string]any
		if err := json.Unmarshal(entry, &decoded); err != nil {
			continue
		}
		res := def.Unify(cctx.Encode(decoded))
		if err := res.Validate(cue.Concrete(true)); err != nil {
			continue
		}
		var cmd Command
		if err := json.Unmarshal(entry, &cmd); err != nil {
			continue
		}
		t.put(name, cmd)
	}
	return t, nil
}

func (t *Table) put(name string, cmd Command) {
	lower := strings.ToLower(name)
	if prev, ok := t.index[lower]; ok && prev != name {
		delete(t.entries, prev)
	}
	t.entries[name] = cmd
	t.index[lower] = name
}

// Lookup finds a command by name, ignoring case.
func (t *Table) Lookup(name string) (Command, bool) {
	original, ok := t.index[strings.ToLower(name)]
	if !ok {
		return Command{}, false
	}
	return t.entries[original], true
}

// Has reports whether name is a known command, ignoring case.
func (t *Table) Has(name string) bool {
	_, ok := t.index[strings.ToLower(name)]
	return ok
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Names returns all command names in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge adds entries from other, overriding same-name entries in t.
func (t *Table) Merge(other *Table) {
	if other == nil {
		return
	}
	for name, cmd := range other.entries {
		t.put(name, cmd)
	}
}

// Export writes the table as a flat sorted name list, one per line. This is
// the command-list format consumed by the external script checker.
func (t *Table) Export(w io.Writer) error {
	for _, name := range t.Names() {
		if _, err := fmt.Fprintln(w, name); err != nil {
			return err
		}
	}
	return nil
}

// LoadFull layers the embedded table with system-wide and project tables.
// Missing or malformed files are ignored; the result is never nil.
func LoadFull(projectRoot string, extraPaths ...string) *Table {
	t := Default()

	paths := []string{
		"/usr/share/scrtool/commands.json",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".local/share/scrtool/commands.json"))
	}
	if projectRoot != "" {
		paths = append(paths, filepath.Join(projectRoot, ".scr-commands.json"))
	}
	paths = append(paths, extraPaths...)

	for _, path := range paths {
		if extra, err := Load(path); err == nil {
			t.Merge(extra)
		}
	}
	return t
}
