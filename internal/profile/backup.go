package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DefaultKeepBackups is how many switch backups are retained
const DefaultKeepBackups = 5

// Backup is a copy of the active configuration taken before a switch
type Backup struct {
	Path    string
	TakenAt time.Time
	Size    int64
}

// ListBackups returns the backups in the layout directory, newest first
func ListBackups(layout Layout) ([]Backup, error) {
	entries, err := os.ReadDir(layout.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	var backups []Backup
	for _, entry := range entries {
		stamp, ok := layout.backupStamp(entry.Name())
		if !ok || !entry.Type().IsRegular() {
			continue
		}
		b := Backup{
			Path:    filepath.Join(layout.Dir, entry.Name()),
			TakenAt: time.Unix(0, stamp),
		}
		if info, err := entry.Info(); err == nil {
			b.Size = info.Size()
		}
		backups = append(backups, b)
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].TakenAt.After(backups[j].TakenAt)
	})
	return backups, nil
}

// PruneBackups removes all but the keep most recent backups
func PruneBackups(layout Layout, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	backups, err := ListBackups(layout)
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	removed := 0
	var firstErr error
	for _, b := range backups[keep:] {
		if err := os.Remove(b.Path); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to remove backup %s: %w", b.Path, err)
			}
			continue
		}
		removed++
	}
	return removed, firstErr
}
