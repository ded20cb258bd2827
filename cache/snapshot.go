package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Snapshot is the JSON structure for cache warm files. A snapshot written
// after a busy period can be loaded at the next process start so the first
// requests skip the slow upstream calls.
type Snapshot struct {
	Version    string            `json:"version"`
	ExportedAt string            `json:"exported_at"`
	Entries    []SnapshotEntry   `json:"entries"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// SnapshotEntry represents a single cache entry.
type SnapshotEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// snapshotVersion is bumped when the snapshot layout changes.
const snapshotVersion = "1.0"

// WriteSnapshot writes the cache contents to a writer in JSON format.
// Only the in-memory backend supports export; remote backends keep their
// own persistence.
func WriteSnapshot(w io.Writer, c Cache, metadata map[string]string) error {
	mem, ok := c.(*InMemoryCache)
	if !ok {
		return fmt.Errorf("cache type %T does not support snapshot export", c)
	}

	data := mem.Entries()
	entries := make([]SnapshotEntry, 0, len(data))
	for key, value := range data {
		entries = append(entries, SnapshotEntry{Key: key, Value: value})
	}

	snap := Snapshot{
		Version:    snapshotVersion,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Entries:    entries,
		Metadata:   metadata,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// WriteSnapshotFile writes a cache snapshot to a file.
func WriteSnapshotFile(path string, c Cache, metadata map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	defer f.Close()

	return WriteSnapshot(f, c, metadata)
}

// LoadResult contains statistics about a snapshot load.
type LoadResult struct {
	Version  string
	Metadata map[string]string
	Loaded   int
	Failed   int
}

// LoadSnapshot reads cache entries from a reader and loads them into the
// cache. Works with any backend; entries are stored with a fresh timestamp.
func LoadSnapshot(r io.Reader, c Cache) (*LoadResult, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	result := &LoadResult{
		Version:  snap.Version,
		Metadata: snap.Metadata,
	}

	for _, entry := range snap.Entries {
		if err := c.Set(entry.Key, entry.Value); err != nil {
			result.Failed++
			continue
		}
		result.Loaded++
	}

	return result, nil
}

// LoadSnapshotFile loads cache entries from a snapshot file.
func LoadSnapshotFile(path string, c Cache) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	return LoadSnapshot(f, c)
}
