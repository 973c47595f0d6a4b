package snapshot

import (
	"errors"
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"sync"
	"time"
)

// Snapshot is the cached fingerprint of one monitored file
type Snapshot struct {
	ModTime  time.Time
	Size     int64
	Checksum uint32

	// Absent marks a file that did not exist when observed
	Absent bool
	// Unreadable marks a file whose metadata was visible but whose content could not be read
	Unreadable bool
}

// Checksum returns the CRC-32 (IEEE) checksum of data
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// sameMeta reports whether the cheap fields match
func (s Snapshot) sameMeta(o Snapshot) bool {
	return s.Size == o.Size && s.ModTime.Equal(o.ModTime)
}

// Diff reports whether cur represents a change from prev. Metadata alone
// never confirms a change: two readable snapshots differ only when their
// checksums do.
func Diff(prev, cur Snapshot) bool {
	if prev.Absent || cur.Absent {
		return prev.Absent != cur.Absent
	}
	if prev.Unreadable || cur.Unreadable {
		return prev.Unreadable != cur.Unreadable || !prev.sameMeta(cur)
	}
	return prev.Checksum != cur.Checksum
}

// Store holds the last-known snapshot of every monitored path
type Store struct {
	mu    sync.Mutex
	items map[string]Snapshot
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{items: make(map[string]Snapshot)}
}

// Get returns the stored snapshot for path
func (s *Store) Get(path string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.items[path]
	return snap, ok
}

// Record stores snap as the latest observation of path
func (s *Store) Record(path string, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[path] = snap
}

// Len returns the number of stored snapshots
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Retain drops snapshots for paths outside the given set
func (s *Store) Retain(paths []string) {
	keep := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		keep[p] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for p := range s.items {
		if _, ok := keep[p]; !ok {
			delete(s.items, p)
		}
	}
}

// Observe fingerprints path without recording the result. The content is
// read only when there is no usable previous snapshot, when size or modify
// time moved, or when force is set; otherwise the stored checksum is reused.
func (s *Store) Observe(path string, force bool) (Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{Absent: true}, nil
		}
		return Snapshot{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	cur := Snapshot{ModTime: info.ModTime(), Size: info.Size()}

	if !force {
		if prev, ok := s.Get(path); ok && !prev.Absent && !prev.Unreadable && prev.sameMeta(cur) {
			cur.Checksum = prev.Checksum
			return cur, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{Absent: true}, nil
		}
		cur.Unreadable = true
		return cur, nil
	}
	cur.Checksum = Checksum(data)
	return cur, nil
}

// Seed records a forced observation of path, reconciled with the content a
// full pass actually compared. When the file moved on between that read and
// this observation, the recorded snapshot is made to disagree with the disk
// so the next tick reports a change instead of silently absorbing it.
func (s *Store) Seed(path string, content []byte, loaded bool) error {
	cur, err := s.Observe(path, true)
	if err != nil {
		return err
	}

	switch {
	case loaded && (cur.Absent || cur.Unreadable || cur.Checksum != Checksum(content)):
		cur = Snapshot{Size: -1, Checksum: Checksum(content)}
	case !loaded && !cur.Absent && !cur.Unreadable:
		cur = Snapshot{Absent: true}
	}

	s.Record(path, cur)
	return nil
}
