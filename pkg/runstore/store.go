// Package runstore persists runs and jobs as on-disk JSON records.
//
// This is the production persistence for the CLI deployment: one record per
// file, atomic writes via temp file + rename, monotonic ID assignment.
// Record layout:
//
//	<root>/jobs/<id>.json
//	<root>/runs/<id>.json
//
// Root is expected to be under the app data dir.
package runstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// writeRecord marshals v and atomically writes it to dir/<id>.json.
func writeRecord(dir string, id int64, v any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create record dir: %w", err)
	}

	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(dir, "record.json.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close record: %w", err)
	}
	if err := os.Rename(tmpName, recordPath(dir, id)); err != nil {
		return fmt.Errorf("rename record: %w", err)
	}
	return nil
}

func readRecord(dir string, id int64, v any) error {
	b, err := os.ReadFile(recordPath(dir, id))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse record %d: %w", id, err)
	}
	return nil
}

func recordPath(dir string, id int64) string {
	return filepath.Join(dir, strconv.FormatInt(id, 10)+".json")
}

// listIDs returns all record IDs in dir, unsorted. A missing dir is empty.
func listIDs(dir string) ([]int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []int64
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(e.Name(), ".json"), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// nextID returns max(existing IDs)+1, starting at 1 for an empty dir.
func nextID(dir string) (int64, error) {
	ids, err := listIDs(dir)
	if err != nil {
		return 0, err
	}
	var max int64
	for _, id := range ids {
		if id > max {
			max = id
		}
	}
	return max + 1, nil
}
