package claude

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

// ConfigDirEnv overrides the Claude Code configuration directory
const ConfigDirEnv = "CLAUDE_CONFIG_DIR"

var (
	// ErrNotFound means no candidate directory holds an active configuration
	ErrNotFound = errors.New("Claude Code configuration directory not found")

	// ErrNoSettings means a directory exists but has no active configuration file
	ErrNoSettings = errors.New("active settings file not found; run Claude Code at least once")
)

// Detector locates the Claude Code configuration directory
type Detector struct {
	SettingsFile string

	getenv    func(string) string
	homeDir   func() (string, error)
	configDir func() (string, error)
}

// NewDetector creates a detector that validates settingsFile in each candidate
func NewDetector(settingsFile string) *Detector {
	if settingsFile == "" {
		settingsFile = "settings.json"
	}
	return &Detector{
		SettingsFile: settingsFile,
		getenv:       os.Getenv,
		homeDir:      getHomeDir,
		configDir:    os.UserConfigDir,
	}
}

// Detect returns explicit when set, otherwise the first candidate that
// contains the active settings file
func (d *Detector) Detect(explicit string) (string, error) {
	if explicit != "" {
		dir, err := filepath.Abs(explicit)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %s: %w", explicit, err)
		}
		return dir, d.Validate(dir)
	}

	for _, dir := range d.Candidates() {
		if err := d.Validate(dir); err != nil {
			log.Debug().Err(err).Str("dir", dir).Msg("Skipping candidate directory")
			continue
		}
		log.Debug().Str("dir", dir).Msg("Found Claude Code directory")
		return dir, nil
	}

	return "", ErrNotFound
}

// Candidates lists the directories Detect tries, in order
func (d *Detector) Candidates() []string {
	var dirs []string
	if env := d.getenv(ConfigDirEnv); env != "" {
		dirs = append(dirs, env)
	}
	if home, err := d.homeDir(); err == nil && home != "" {
		dirs = append(dirs, filepath.Join(home, ".claude"))
	}
	if cfg, err := d.configDir(); err == nil && cfg != "" {
		dirs = append(dirs, filepath.Join(cfg, "claude"))
	}
	return dirs
}

// Validate checks that dir is a directory holding the active settings file
func (d *Detector) Validate(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}

	settings := filepath.Join(dir, d.SettingsFile)
	info, err = os.Stat(settings)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", ErrNoSettings, settings)
	}
	return nil
}

// getHomeDir returns the user's home directory
func getHomeDir() (string, error) {
	if runtime.GOOS == "windows" {
		if home := os.Getenv("USERPROFILE"); home != "" {
			return home, nil
		}
	}
	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}
	return os.UserHomeDir()
}
