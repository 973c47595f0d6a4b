package profile

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultSettingsFile is the active configuration file name
	DefaultSettingsFile = "settings.json"
	// DefaultSuffix marks profile files: {name}.settings.json
	DefaultSuffix = ".settings.json"
	// MaxNameLength bounds profile names derived from file names
	MaxNameLength = 255

	backupMarker = ".backup."
)

// Layout describes where the active configuration and its profiles live
type Layout struct {
	Dir          string
	SettingsFile string
	Suffix       string
}

// NewLayout returns a Layout for dir using the default file names
func NewLayout(dir string) Layout {
	return Layout{
		Dir:          dir,
		SettingsFile: DefaultSettingsFile,
		Suffix:       DefaultSuffix,
	}
}

// withDefaults fills empty fields with the default naming convention
func (l Layout) withDefaults() Layout {
	if l.SettingsFile == "" {
		l.SettingsFile = DefaultSettingsFile
	}
	if l.Suffix == "" {
		l.Suffix = DefaultSuffix
	}
	return l
}

// ActivePath returns the path of the active configuration file
func (l Layout) ActivePath() string {
	l = l.withDefaults()
	return filepath.Join(l.Dir, l.SettingsFile)
}

// ProfilePath returns the path a profile with the given name would have
func (l Layout) ProfilePath(name string) string {
	l = l.withDefaults()
	return filepath.Join(l.Dir, name+l.Suffix)
}

// ProfileName extracts the profile name from a file name.
// It returns false for the active file and for names without the suffix.
func (l Layout) ProfileName(fileName string) (string, bool) {
	l = l.withDefaults()
	if fileName == l.SettingsFile || !strings.HasSuffix(fileName, l.Suffix) {
		return "", false
	}
	name := strings.TrimSuffix(fileName, l.Suffix)
	if name == "" {
		return "", false
	}
	return name, true
}

// Contains reports whether path is a direct child of the layout directory
func (l Layout) Contains(path string) bool {
	return filepath.Clean(filepath.Dir(path)) == filepath.Clean(l.Dir)
}

// BackupPath returns the backup location for a copy taken at t
func (l Layout) BackupPath(t time.Time) string {
	return l.ActivePath() + backupMarker + strconv.FormatInt(t.UnixNano(), 10)
}

// backupStamp parses the timestamp out of a backup file name
func (l Layout) backupStamp(fileName string) (int64, bool) {
	l = l.withDefaults()
	prefix := l.SettingsFile + backupMarker
	if !strings.HasPrefix(fileName, prefix) {
		return 0, false
	}
	stamp, err := strconv.ParseInt(strings.TrimPrefix(fileName, prefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return stamp, true
}

// Validate checks that the naming convention is usable
func (l Layout) Validate() error {
	l = l.withDefaults()
	if l.Dir == "" {
		return fmt.Errorf("%w: empty directory", ErrDirectoryUnavailable)
	}
	if strings.ContainsAny(l.SettingsFile, `/\`) || strings.ContainsAny(l.Suffix, `/\`) {
		return fmt.Errorf("settings file and suffix must be plain file names")
	}
	return nil
}
