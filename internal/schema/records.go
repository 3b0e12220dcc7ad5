package schema

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/mesh-intelligence/datagrid/internal/remote"
	"github.com/mesh-intelligence/datagrid/pkg/types"
)

const maxLineBytes = 4 * 1024 * 1024

// LoadRecords reads records from path, or from stdin when path is "-".
func LoadRecords(path string) ([]types.Record, error) {
	if path == "-" {
		return ReadRecords(os.Stdin, false)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening records: %w", err)
	}
	defer f.Close()
	records, err := ReadRecords(f, strings.EqualFold(filepath.Ext(path), ".jsonl"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ReadRecords decodes r as JSON Lines when lines is set and as a JSON
// array or envelope otherwise. Input that starts with an object but holds
// no "data" member is retried as JSON Lines.
func ReadRecords(r io.Reader, lines bool) ([]types.Record, error) {
	if lines {
		return readLines(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	records, err := remote.DecodeRecords(data)
	if err == nil {
		return records, nil
	}
	if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '{' {
		if recs, lerr := readLines(bytes.NewReader(t)); lerr == nil {
			return recs, nil
		}
	}
	return nil, err
}

// readLines parses one JSON object per line. Blank lines are skipped; a
// malformed line is an error naming its line number.
func readLines(r io.Reader) ([]types.Record, error) {
	var records []types.Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	n := 0
	for scanner.Scan() {
		n++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec types.Record
		if err := json.Unmarshal(line, &rec); err != nil || rec == nil {
			return nil, fmt.Errorf("line %d: %w", n, types.ErrUnexpectedResponse)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning records: %w", err)
	}
	return records, nil
}

// InferColumns builds a column per field seen in records. The id field
// comes first, the rest in name order. Labels are the field name with its
// first letter upper-cased and underscores turned into spaces.
func InferColumns(records []types.Record, idField string) []types.Column {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			if k != "" {
				seen[k] = struct{}{}
			}
		}
	}
	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Slice(fields, func(i, j int) bool {
		if (fields[i] == idField) != (fields[j] == idField) {
			return fields[i] == idField
		}
		return fields[i] < fields[j]
	})

	cols := make([]types.Column, len(fields))
	for i, f := range fields {
		cols[i] = types.Column{Field: f, Label: labelFor(f)}
	}
	return cols
}

func labelFor(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	r := []rune(s)
	if len(r) == 0 {
		return field
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
