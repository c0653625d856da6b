package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Session identifies one recorded watch session on disk.
type Session struct {
	ID   string
	Path string
}

// ListSessions returns the recorded sessions in dir, oldest first.
// A missing directory is treated as an empty history.
func ListSessions(dir string) ([]Session, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read dir %q: %w", dir, err)
	}

	var sessions []Session
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jsonl") {
			continue
		}
		sessions = append(sessions, Session{
			ID:   strings.TrimSuffix(e.Name(), ".jsonl"),
			Path: filepath.Join(dir, e.Name()),
		})
	}

	// Timestamp-prefixed IDs sort chronologically.
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

// ReadSession loads all records from one session file. Malformed lines
// are skipped so a partially written tail does not hide the rest.
func ReadSession(path string) ([]RunRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	defer f.Close()
	return readRecords(f), nil
}
