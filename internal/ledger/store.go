package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// Store is the only component that touches the filesystem for record data.
// Every bulk write goes through a temp-file-plus-rename replace so a reader
// never observes a half-written file.
type Store struct {
	log zerolog.Logger
}

// NewStore creates a Store logging skipped rows to log.
func NewStore(log zerolog.Logger) *Store {
	return &Store{log: log}
}

// renameFile is swapped out in tests to simulate a crash before the rename.
var renameFile = os.Rename

// Load reads all records from path. A missing or empty file is an empty
// ledger, not an error. Rows that fail to decode are skipped and logged;
// load is best-effort by design, writes are not.
func (s *Store) Load(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening records %s: %w", path, err)
	}
	defer f.Close()

	records, bad, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("reading records %s: %w", path, err)
	}
	for _, de := range bad {
		s.log.Warn().
			Str("path", path).
			Int("row", de.Row).
			Str("column", de.Column).
			Str("reason", de.Reason).
			Msg("skipping malformed row")
	}
	return records, nil
}

// AppendOne appends a single encoded record to path, creating parent
// directories and the header row as needed. Existing rows are not touched.
func (s *Store) AppendOne(path string, rec model.Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating records dir: %w", err)
	}

	needsHeader := true
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		needsHeader = false
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening records %s: %w", path, err)
	}
	defer f.Close()

	if needsHeader {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := AppendRecords(f, []model.Record{rec}); err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	return nil
}

// RewriteAll atomically replaces path with the full header plus records.
// The temp file is created in the target's directory so the final rename
// stays on one volume. On any failure before the rename the temp file is
// removed and the original file is left untouched.
func (s *Store) RewriteAll(path string, records []model.Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating records dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".records-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := WriteRecords(tmp, records); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing records: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("syncing records: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing records: %w", err)
	}

	if err := renameFile(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing records %s: %w", path, err)
	}
	return nil
}

// DeleteOne removes every record whose order number matches exactly after
// trimming. Returns whether anything was removed; when nothing matched the
// file is not rewritten.
func (s *Store) DeleteOne(path, orderNo string) (bool, error) {
	records, err := s.Load(path)
	if err != nil {
		return false, err
	}

	orderNo = strings.TrimSpace(orderNo)
	kept := records[:0:0]
	for _, rec := range records {
		if strings.TrimSpace(rec.OrderNo) != orderNo {
			kept = append(kept, rec)
		}
	}

	if len(kept) == len(records) {
		return false, nil
	}
	if err := s.RewriteAll(path, kept); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateOne applies a single-field mutation to the record matching orderNo
// and rewrites the full set. Returns whether a record matched.
func (s *Store) UpdateOne(path, orderNo string, field Field, value string) (bool, error) {
	records, err := s.Load(path)
	if err != nil {
		return false, err
	}

	orderNo = strings.TrimSpace(orderNo)
	found := false
	for i := range records {
		if strings.TrimSpace(records[i].OrderNo) != orderNo {
			continue
		}
		if err := field.apply(&records[i], value); err != nil {
			return false, err
		}
		found = true
	}

	if !found {
		return false, nil
	}
	if err := s.RewriteAll(path, records); err != nil {
		return false, err
	}
	return true, nil
}
