package auditlog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Daskott/swiftly/shared"
	"github.com/Daskott/swiftly/utils"
	"github.com/pkg/errors"
)

const DEFAULT_FILE_NAME = "logs.json"

var ErrCorrupt = errors.New("audit log is corrupt")

// FileStore persists log entries as a single JSON array file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (fs *FileStore) Path() string {
	return fs.path
}

// Load returns every entry in the log. A missing or blank file is an empty log,
// malformed content returns an error wrapping ErrCorrupt.
func (fs *FileStore) Load() ([]shared.LogEntry, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return []shared.LogEntry{}, nil
	}

	if err != nil {
		return nil, errors.Wrap(err, "read audit log")
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []shared.LogEntry{}, nil
	}

	entries := []shared.LogEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "%s: %v", fs.path, err)
	}

	return entries, nil
}

// Write replaces the log with entries.
func (fs *FileStore) Write(entries []shared.LogEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode audit log")
	}

	return errors.Wrap(utils.WriteFileAtomic(fs.path, data, 0600), "write audit log")
}

// Quarantine moves the current log file aside so a fresh log can be started,
// and returns the path it was moved to.
func (fs *FileStore) Quarantine(now time.Time) (string, error) {
	dest := fmt.Sprintf("%s.corrupt-%d", fs.path, now.Unix())
	if err := os.Rename(fs.path, dest); err != nil {
		return "", errors.Wrap(err, "quarantine audit log")
	}

	return dest, nil
}
