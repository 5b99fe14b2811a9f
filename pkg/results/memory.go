package results

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store for tests.
//
// It records every upload and counts puts so tests can assert on
// idempotence (no duplicate storage writes).
type MemoryStore struct {
	mu      sync.Mutex
	bucket  string
	objects map[string][]byte
	puts    int

	// FailUploads makes UploadRunResults fail with a retryable storage
	// error when set.
	FailUploads bool
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(bucket string) *MemoryStore {
	return &MemoryStore{bucket: bucket, objects: make(map[string][]byte)}
}

func (m *MemoryStore) UploadRunResults(_ context.Context, prefix ArtifactPrefix, runID int64, archive []byte) (UploadLocation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUploads {
		return UploadLocation{}, &StorageError{
			Op:      "UploadRunResults",
			Bucket:  m.bucket,
			Key:     prefix.RunResultsKey(runID),
			Message: "simulated upload failure",
			Err:     ErrStorageUnavailable,
		}
	}

	key := prefix.RunResultsKey(runID)
	m.objects[key] = append([]byte(nil), archive...)
	m.puts++

	return UploadLocation{
		URL: fmt.Sprintf("https://%s.s3.amazonaws.com/%s", m.bucket, key),
	}, nil
}

func (m *MemoryStore) PresignDownload(_ context.Context, resultsURL string, expiry time.Duration) (UploadLocation, error) {
	_, key, err := ExtractBucketKey(resultsURL)
	if err != nil {
		return UploadLocation{}, err
	}
	if expiry <= 0 {
		expiry = DefaultDownloadExpiry
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return UploadLocation{}, &StorageError{Op: "PresignDownload", Bucket: m.bucket, Key: key, Message: "no such object", Err: ErrNotFound}
	}
	return UploadLocation{
		URL: fmt.Sprintf("%s?X-Amz-Expires=%d", resultsURL, int(expiry.Seconds())),
	}, nil
}

// PutCount returns the number of successful storage writes.
func (m *MemoryStore) PutCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}

// Object returns a stored object's bytes, if present.
func (m *MemoryStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[key]
	return b, ok
}
