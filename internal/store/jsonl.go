package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JSONL is a Store backed by an append-only JSONL file. Each line is a
// JSON-serialized RunRecord. The file is synced after every Append so a
// killed session still leaves a complete history.
//
// Session identity: "<unix-timestamp>-<uuid prefix>.jsonl". The
// timestamp prefix keeps directory listings chronological.
type JSONL struct {
	file      *os.File
	mu        sync.Mutex
	records   []RunRecord
	sessionID string
	startedAt time.Time
}

// NewJSONL creates the session history log in dir. dir is created with
// os.MkdirAll if it does not exist.
func NewJSONL(dir string) (*JSONL, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("store: mkdir %q: %w", dir, err)
	}
	now := time.Now()
	sessionID := fmt.Sprintf("%d-%s", now.Unix(), uuid.NewString()[:8])
	path := filepath.Join(dir, sessionID+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	return &JSONL{
		file:      f,
		sessionID: sessionID,
		startedAt: now,
	}, nil
}

// SessionID returns the identity stamped on every record.
func (j *JSONL) SessionID() string { return j.sessionID }

// Append stamps rec with the session identity, writes it as a JSON line,
// and syncs. It is safe to call from multiple goroutines.
func (j *JSONL) Append(rec RunRecord) error {
	rec.SessionID = j.sessionID

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.Write(data); err != nil {
		return fmt.Errorf("store: write: %w", err)
	}
	if err := j.file.Sync(); err != nil {
		return fmt.Errorf("store: sync: %w", err)
	}
	j.records = append(j.records, rec)
	return nil
}

// Close closes the underlying file.
func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

// Runs returns all records appended in this session. The returned slice
// is a copy and safe to mutate.
func (j *JSONL) Runs() ([]RunRecord, error) {
	j.mu.Lock()
	result := make([]RunRecord, len(j.records))
	copy(result, j.records)
	j.mu.Unlock()
	return result, nil
}

// SessionSummary returns metadata about the current session derived from
// the in-memory record list.
func (j *JSONL) SessionSummary() (SessionSummary, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	s := SessionSummary{
		SessionID: j.sessionID,
		StartedAt: j.startedAt,
		Runs:      len(j.records),
	}
	for _, r := range j.records {
		if r.Passed {
			s.Passed++
		} else if !r.Interrupted {
			s.Failed++
		}
	}
	return s, nil
}

// EnforceRetention removes the oldest session log files in dir, keeping
// at most maxKeep files. If maxKeep is 0, no files are removed. Returns
// nil if dir does not exist or is empty.
func EnforceRetention(dir string, maxKeep int) error {
	if maxKeep <= 0 {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("store: read dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".jsonl") {
			files = append(files, e.Name())
		}
	}

	sort.Strings(files) // timestamp-prefixed names sort chronologically

	toDelete := len(files) - maxKeep
	for i := 0; i < toDelete; i++ {
		path := filepath.Join(dir, files[i])
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("store: remove %q: %w", path, err)
		}
	}
	return nil
}

// readRecords decodes JSONL records from r, skipping malformed lines.
func readRecords(r io.Reader) []RunRecord {
	var records []RunRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec RunRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records
}
