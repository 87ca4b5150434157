/*
File Name:  JSONLedger.go
Copyright:  2024 Hearthmesh Contributors

File-backed Ledger, written atomically via a temp-file-then-rename sequence
(§6: "the proxy's own configuration file is written atomically at startup" —
the same discipline applied here to every JSON-array persisted list so a
crash mid-write never corrupts the read-receipts ledger or bookmarks list).
*/

package store

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// JSONLedger persists entries as a JSON array of strings at path.
type JSONLedger struct {
	path string
}

// NewJSONLedger builds a ledger backed by the file at path. The file is
// created on first Save if it does not exist.
func NewJSONLedger(path string) *JSONLedger {
	return &JSONLedger{path: path}
}

// Load reads and parses the JSON array at path. A missing file is not an
// error; it is treated as an empty ledger.
func (l *JSONLedger) Load() ([]string, error) {
	raw, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Save atomically overwrites path with the JSON encoding of entries.
func (l *JSONLedger) Save(entries []string) error {
	if entries == nil {
		entries = []string{}
	}

	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, l.path)
}
