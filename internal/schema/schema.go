// Package schema reads column definitions and record files for gridctl.
//
// Definitions are JSON or TOML, chosen by file extension. Records are a JSON
// array, a {"data": [...]} envelope, or JSON Lines.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mesh-intelligence/datagrid/pkg/types"
)

// Definition is a table layout stored on disk.
type Definition struct {
	PageSize int            `json:"page_size,omitempty" toml:"page_size,omitempty"`
	IDField  string         `json:"id_field,omitempty" toml:"id_field,omitempty"`
	Columns  []types.Column `json:"columns" toml:"columns"`
}

// LoadDefinition reads a definition file. A .toml extension selects TOML;
// anything else is parsed as JSON, either a Definition object or a bare
// array of columns.
func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("reading definition: %w", err)
	}
	var def Definition
	if isTOML(path) {
		def, err = parseTOML(data)
	} else {
		def, err = parseJSON(data)
	}
	if err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	if len(def.Columns) == 0 {
		return Definition{}, &types.ConfigError{Err: types.ErrNoColumns}
	}
	return def, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

func parseJSON(data []byte) (Definition, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var cols []types.Column
		if err := json.Unmarshal(trimmed, &cols); err != nil {
			return Definition{}, fmt.Errorf("parsing columns: %w", err)
		}
		return Definition{Columns: cols}, nil
	}
	var def Definition
	if err := json.Unmarshal(trimmed, &def); err != nil {
		return Definition{}, fmt.Errorf("parsing definition: %w", err)
	}
	return def, nil
}

// tomlLookups carries the lookup members that have no TOML mapping on
// types.LookupConfig because they hold free-form values.
type tomlLookups struct {
	Columns []struct {
		Lookup *struct {
			Data   []map[string]any `toml:"data"`
			Filter map[string]any   `toml:"filter"`
		} `toml:"lookup"`
	} `toml:"columns"`
}

func parseTOML(data []byte) (Definition, error) {
	var def Definition
	meta, err := toml.Decode(string(data), &def)
	if err != nil {
		return Definition{}, fmt.Errorf("parsing definition: %w", err)
	}
	for _, key := range meta.Undecoded() {
		k := key.String()
		if strings.Contains(k, "lookup.data") || strings.Contains(k, "lookup.filter") {
			continue
		}
		return Definition{}, fmt.Errorf("unknown key %q", k)
	}

	var extra tomlLookups
	if _, err := toml.Decode(string(data), &extra); err != nil {
		return Definition{}, fmt.Errorf("parsing lookups: %w", err)
	}
	for i, c := range extra.Columns {
		if c.Lookup == nil || i >= len(def.Columns) || def.Columns[i].Lookup == nil {
			continue
		}
		lk := def.Columns[i].Lookup
		if c.Lookup.Data != nil {
			lk.Data = make([]types.Record, len(c.Lookup.Data))
			for j, m := range c.Lookup.Data {
				lk.Data[j] = types.RecordOf(m)
			}
		}
		if len(c.Lookup.Filter) > 0 {
			lk.Filter = make(map[string]types.Value, len(c.Lookup.Filter))
			for k, v := range c.Lookup.Filter {
				lk.Filter[k] = types.ValueOf(v)
			}
		}
	}
	return def, nil
}

// SaveDefinition writes def as TOML or JSON depending on the extension of
// path. Static lookup data is only kept in JSON.
func SaveDefinition(path string, def Definition) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if isTOML(path) {
		err = toml.NewEncoder(f).Encode(def)
	} else {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(def)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
