// Package audit records credential operations to an append-only log and
// reads them back.
//
// The log is newline-delimited JSON, one Entry per line, at
// ~/.latch/audit.log unless configured otherwise. Passwords never appear in
// it: an Entry has no field that could carry one.
package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Action is the credential operation that was attempted.
type Action string

const (
	ActionCredentialRead   Action = "credential_read"
	ActionCredentialWrite  Action = "credential_write"
	ActionCredentialDelete Action = "credential_delete"
)

// OutcomeOK marks a successful operation. Failed operations carry the
// credential error kind ("no_entry", "no_storage_access", ...) instead.
const OutcomeOK = "ok"

// Entry is one line of the log.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Action    Action    `json:"action"`
	Platform  string    `json:"platform"`
	Service   string    `json:"service"`
	Account   string    `json:"account"`
	Domain    string    `json:"domain,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
}

// OK reports whether the operation succeeded.
func (e Entry) OK() bool {
	return e.Outcome == OutcomeOK
}

// Logger appends entries to a log file. It is safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// NewLogger opens path for appending, creating it (0600) and its directory
// (0700) when missing.
func NewLogger(path string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating audit log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	return &Logger{path: path, f: f}, nil
}

func (l *Logger) Path() string {
	return l.path
}

// Log appends entry. A zero Timestamp becomes the current UTC time and an
// empty Outcome becomes OutcomeOK.
func (l *Logger) Log(entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Outcome == "" {
		entry.Outcome = OutcomeOK
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.f.Write(line); err != nil {
		return fmt.Errorf("writing audit entry to %s: %w", l.path, err)
	}
	return nil
}

func (l *Logger) Close() error {
	return l.f.Close()
}

// Filter selects entries in Read. Zero fields match everything.
type Filter struct {
	Service string
	Account string
	Action  Action
	Since   time.Time
	// Failed keeps only entries whose Outcome is not OutcomeOK.
	Failed bool
}

func (f Filter) match(e Entry) bool {
	switch {
	case f.Service != "" && e.Service != f.Service:
		return false
	case f.Account != "" && e.Account != f.Account:
		return false
	case f.Action != "" && e.Action != f.Action:
		return false
	case !f.Since.IsZero() && e.Timestamp.Before(f.Since):
		return false
	case f.Failed && e.OK():
		return false
	}
	return true
}

// Read returns the entries of the log at path that match filter, oldest
// first. A missing log reads as empty. Lines that are not valid entries, such
// as a line cut short by a crash, are skipped and counted in skipped.
func Read(path string, filter Filter) (entries []Entry, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil || e.Action == "" {
			skipped++
			continue
		}
		if filter.match(e) {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, fmt.Errorf("reading audit log: %w", err)
	}
	return entries, skipped, nil
}

// Last returns the final n entries, or all of them when n <= 0.
func Last(entries []Entry, n int) []Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}
