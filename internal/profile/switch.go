package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/barff/cccs/internal/fsutil"
	"github.com/rs/zerolog/log"
)

// Switcher activates profiles by atomically replacing the active configuration
type Switcher struct {
	layout      Layout
	keepBackups int
	writer      fsutil.Writer
	now         func() time.Time
}

// SwitcherOption configures a Switcher
type SwitcherOption func(*Switcher)

// WithKeepBackups sets how many backups survive a switch; 0 disables backups
func WithKeepBackups(n int) SwitcherOption {
	return func(s *Switcher) {
		s.keepBackups = n
	}
}

// WithWriter replaces the atomic writer
func WithWriter(w fsutil.Writer) SwitcherOption {
	return func(s *Switcher) {
		s.writer = w
	}
}

// NewSwitcher creates a switcher for the given layout
func NewSwitcher(layout Layout, opts ...SwitcherOption) *Switcher {
	s := &Switcher{
		layout:      layout.withDefaults(),
		keepBackups: DefaultKeepBackups,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activate makes p the active configuration. On success the active file is
// byte-identical to the profile file as read during the call. On failure the
// active file is left untouched and a *SwitchError describes the cause.
func (s *Switcher) Activate(ctx context.Context, p Profile) error {
	if !p.Selectable() {
		cause := p.Err
		if cause == nil {
			cause = errNotObject
		}
		return fmt.Errorf("%w: %s: %w", ErrProfileNotSelectable, p.Name, cause)
	}
	if !s.layout.Contains(p.Path) {
		return fmt.Errorf("%w: %s is outside %s", ErrProfileNotSelectable, p.Path, s.layout.Dir)
	}

	content, err := os.ReadFile(p.Path)
	if err != nil {
		return &SwitchError{Kind: SourceUnreadable, Profile: p.Name, Path: p.Path, Err: err}
	}
	if _, err := parseObject(content); err != nil {
		return &SwitchError{Kind: SourceUnreadable, Profile: p.Name, Path: p.Path, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	target := s.layout.ActivePath()
	perm := os.FileMode(0644)

	current, err := os.ReadFile(target)
	switch {
	case err == nil:
		if bytes.Equal(current, content) {
			log.Info().Str("profile", p.Name).Msg("Profile already active, nothing to write")
			return nil
		}
		if info, statErr := os.Stat(target); statErr == nil {
			perm = info.Mode().Perm()
		}
		if err := s.backup(current, perm); err != nil {
			return &SwitchError{Kind: TargetUnwritable, Profile: p.Name, Path: target, Err: err}
		}
	case errors.Is(err, os.ErrNotExist):
		// nothing to back up
	default:
		return &SwitchError{Kind: TargetUnwritable, Profile: p.Name, Path: target, Err: err}
	}

	if err := s.writer.WriteFile(target, content, perm); err != nil {
		kind := TargetUnwritable
		var werr *fsutil.WriteError
		if errors.As(err, &werr) && werr.Stage == fsutil.StageRename {
			kind = RenameFailed
		}
		return &SwitchError{Kind: kind, Profile: p.Name, Path: target, Err: err}
	}

	if s.keepBackups > 0 {
		if removed, err := PruneBackups(s.layout, s.keepBackups); err != nil {
			log.Warn().Err(err).Msg("Failed to prune old backups")
		} else if removed > 0 {
			log.Debug().Int("removed", removed).Msg("Pruned old backups")
		}
	}

	log.Info().Str("profile", p.Name).Str("path", target).Msg("Switched active configuration")
	return nil
}

// backup saves a copy of the current active configuration
func (s *Switcher) backup(current []byte, perm os.FileMode) error {
	if s.keepBackups <= 0 {
		return nil
	}
	path := s.layout.BackupPath(s.now())
	if err := fsutil.WriteFile(path, current, perm); err != nil {
		return fmt.Errorf("failed to create backup: %w", err)
	}
	log.Debug().Str("path", path).Msg("Created backup")
	return nil
}
