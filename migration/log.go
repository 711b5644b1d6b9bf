package migration

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/smartcontractkit/ton-deployments-kit/internal/jsonutils"
)

// DefaultLogPath is the migration log used when none is configured.
const DefaultLogPath = "migration-log.json"

// ErrMigrationNotFound is returned when an alias has no logged deployment.
var ErrMigrationNotFound = errors.New("migration not found")

// Entry is the logged deployment of one alias.
type Entry struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Log persists deployed contracts by alias.
type Log interface {
	// Get returns the entry of alias or ErrMigrationNotFound.
	Get(alias string) (Entry, error)
	// Put records entry under alias, replacing any previous one.
	Put(alias string, entry Entry) error
	// Entries returns every logged entry by alias.
	Entries() (map[string]Entry, error)
}

var _ Log = (*FileLog)(nil)

// FileLog is a Log backed by a JSON object file mapping alias to entry. The file is read on every
// access. Writes are serialized within one process only.
type FileLog struct {
	mu   sync.Mutex
	path string
}

// OpenFileLog returns the FileLog at path, creating an empty log when the file does not exist.
func OpenFileLog(path string) (*FileLog, error) {
	if path == "" {
		path = DefaultLogPath
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err = jsonutils.WriteFile(path, map[string]Entry{}); err != nil {
			return nil, fmt.Errorf("failed to create migration log: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat migration log: %w", err)
	}

	return &FileLog{path: path}, nil
}

// Path returns the log file path.
func (l *FileLog) Path() string {
	return l.path
}

func (l *FileLog) Get(alias string) (Entry, error) {
	entries, err := l.Entries()
	if err != nil {
		return Entry{}, err
	}

	entry, ok := entries[alias]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrMigrationNotFound, alias)
	}

	return entry, nil
}

func (l *FileLog) Put(alias string, entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.read()
	if err != nil {
		return err
	}
	entries[alias] = entry

	return jsonutils.WriteFile(l.path, entries)
}

func (l *FileLog) Entries() (map[string]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.read()
}

func (l *FileLog) read() (map[string]Entry, error) {
	entries, err := jsonutils.LoadFile[map[string]Entry](l.path)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}

	return entries, nil
}
