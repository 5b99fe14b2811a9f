// Package orphanledger persists records of orphaned results artifacts.
//
// An orphan is an artifact that exists in durable storage but whose
// existence was never committed to run metadata (upload succeeded, commit
// failed). Records are kept on disk for operator cleanup or compensating
// retry; they are never silently discarded.
package orphanledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is one orphaned artifact.
//
// NOTE: These fields are persisted in <id>.json and are part of the stable
// on-disk contract.
type Record struct {
	ID         string    `json:"id"`
	StorageURL string    `json:"storage_url"`
	JobID      int64     `json:"job_id"`
	RunID      int64     `json:"run_id"`
	Reason     string    `json:"reason"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Ledger persists and loads orphan records from an on-disk directory.
//
// Directory layout:
//
//	<root>/<record_id>.json
//
// Writes are atomic (temp file + rename) so a crashed process never leaves
// a torn record.
type Ledger struct {
	root string
}

func NewLedger(root string) *Ledger {
	return &Ledger{root: strings.TrimSpace(root)}
}

func (l *Ledger) RootDir() string {
	return l.root
}

func (l *Ledger) recordPath(id string) string {
	return filepath.Join(l.root, id+".json")
}

func (l *Ledger) ensureRoot() error {
	if l.root == "" {
		return fmt.Errorf("orphan ledger root dir is empty")
	}
	return os.MkdirAll(l.root, 0o755)
}

// Record persists an orphan record, assigning an ID if empty.
func (l *Ledger) Record(rec Record) error {
	if rec.StorageURL == "" {
		return fmt.Errorf("orphan record storage_url is required")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	if err := l.ensureRoot(); err != nil {
		return err
	}

	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal orphan record: %w", err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(l.root, rec.ID+".json.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write orphan record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close orphan record: %w", err)
	}
	if err := os.Rename(tmpName, l.recordPath(rec.ID)); err != nil {
		return fmt.Errorf("rename orphan record: %w", err)
	}
	return nil
}

// Get loads a single record by ID.
func (l *Ledger) Get(id string) (*Record, error) {
	b, err := os.ReadFile(l.recordPath(id))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("parse orphan record %s: %w", id, err)
	}
	return &rec, nil
}

// List returns all records, oldest first. A missing root directory is an
// empty ledger, not an error.
func (l *Ledger) List() ([]Record, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		rec, err := l.Get(strings.TrimSuffix(e.Name(), ".json"))
		if err != nil {
			// Torn or foreign file; skip rather than fail the listing.
			continue
		}
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

// Resolve removes a record after its artifact has been reconciled.
func (l *Ledger) Resolve(id string) error {
	if err := os.Remove(l.recordPath(id)); err != nil {
		return fmt.Errorf("resolve orphan record %s: %w", id, err)
	}
	return nil
}
