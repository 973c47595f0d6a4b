package profile

import (
	"errors"
	"fmt"
)

var (
	// ErrDirectoryUnavailable means the configuration directory cannot be read
	ErrDirectoryUnavailable = errors.New("configuration directory unavailable")

	// ErrDuplicateProfileName means two profile files normalize to the same name
	ErrDuplicateProfileName = errors.New("duplicate profile name")

	// ErrInvalidProfileName means a profile name is empty or too long
	ErrInvalidProfileName = errors.New("invalid profile name")

	// ErrProfileNotSelectable means a profile failed to load and cannot be activated
	ErrProfileNotSelectable = errors.New("profile is not selectable")

	ErrSourceUnreadable = errors.New("source profile unreadable")
	ErrTargetUnwritable = errors.New("active configuration unwritable")
	ErrRenameFailed     = errors.New("atomic replace failed")
)

// SwitchErrorKind classifies why a switch failed
type SwitchErrorKind int

const (
	// SourceUnreadable means the profile vanished or changed into invalid content
	SourceUnreadable SwitchErrorKind = iota + 1
	// TargetUnwritable means the temp file or backup could not be written
	TargetUnwritable
	// RenameFailed means the final atomic replace was rejected
	RenameFailed
)

func (k SwitchErrorKind) String() string {
	switch k {
	case SourceUnreadable:
		return "source unreadable"
	case TargetUnwritable:
		return "target unwritable"
	case RenameFailed:
		return "rename failed"
	default:
		return "unknown"
	}
}

// SwitchError is returned by Switcher.Activate. The active configuration is
// unchanged whenever a SwitchError is returned.
type SwitchError struct {
	Kind    SwitchErrorKind
	Profile string
	Path    string
	Err     error
}

func (e *SwitchError) Error() string {
	return fmt.Sprintf("switch to profile %q failed (%s): %v", e.Profile, e.Kind, e.Err)
}

func (e *SwitchError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels so callers can use errors.Is
func (e *SwitchError) Is(target error) bool {
	switch target {
	case ErrSourceUnreadable:
		return e.Kind == SourceUnreadable
	case ErrTargetUnwritable:
		return e.Kind == TargetUnwritable
	case ErrRenameFailed:
		return e.Kind == RenameFailed
	}
	return false
}
