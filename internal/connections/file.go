package connections

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// FileSource reads connections from a JSON file of the form
// {"focus/key.md": [{"targetId": "...", "score": 0.9, "kind": "block"}]}.
// The file is re-read on every call so external edits are picked up.
type FileSource struct {
	path string
}

// NewFileSource creates a FileSource for the given path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Path returns the backing file path.
func (f *FileSource) Path() string {
	return f.path
}

// Connections returns the records for focusKey, or nil if the key is absent.
func (f *FileSource) Connections(ctx context.Context, focusKey string) ([]Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read connections file: %w", err)
	}

	all, err := ParseIndex(data)
	if err != nil {
		return nil, err
	}
	return all[focusKey], nil
}

// Keys returns every focus key present in the file.
func (f *FileSource) Keys() ([]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read connections file: %w", err)
	}
	all, err := ParseIndex(data)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	return keys, nil
}

// ParseIndex parses a focus-key to records JSON document.
func ParseIndex(data []byte) (map[string][]Connection, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var all map[string][]Connection
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("failed to parse connections: %w", err)
	}
	return all, nil
}

// ParseList parses a JSON array of connection records.
func ParseList(data []byte) ([]Connection, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var conns []Connection
	if err := json.Unmarshal(data, &conns); err != nil {
		return nil, fmt.Errorf("failed to parse connections: %w", err)
	}
	return conns, nil
}
