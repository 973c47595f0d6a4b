package notification

import (
	"github.com/barff/cccs/internal/monitor"
)

// ChangeKind classifies a difference between two reports
type ChangeKind int

const (
	// ActiveChanged means a different profile (or none) now matches the active configuration
	ActiveChanged ChangeKind = iota + 1
	// ProfileAdded means a new profile file appeared
	ProfileAdded
	// ProfileRemoved means a profile file disappeared
	ProfileRemoved
	// ActiveUnreadable means the active configuration can no longer be read
	ActiveUnreadable
)

func (k ChangeKind) String() string {
	switch k {
	case ActiveChanged:
		return "active-changed"
	case ProfileAdded:
		return "profile-added"
	case ProfileRemoved:
		return "profile-removed"
	case ActiveUnreadable:
		return "active-unreadable"
	default:
		return "unknown"
	}
}

// Change is one user-visible difference between consecutive reports
type Change struct {
	Kind    ChangeKind
	Profile string // empty for ActiveChanged when no profile matches
}

// DetectChanges compares two reports. A nil prev yields no changes.
func DetectChanges(prev *monitor.Report, cur monitor.Report) []Change {
	if prev == nil {
		return nil
	}

	var changes []Change

	if cur.ActiveErr != nil && prev.ActiveErr == nil {
		changes = append(changes, Change{Kind: ActiveUnreadable})
	}

	prevActive, _ := prev.Active()
	curActive, _ := cur.Active()
	if prevActive != curActive && cur.ActiveErr == nil {
		changes = append(changes, Change{Kind: ActiveChanged, Profile: curActive})
	}

	before := make(map[string]struct{}, len(prev.Entries))
	for _, e := range prev.Entries {
		before[e.Name] = struct{}{}
	}
	after := make(map[string]struct{}, len(cur.Entries))
	for _, e := range cur.Entries {
		after[e.Name] = struct{}{}
		if _, ok := before[e.Name]; !ok {
			changes = append(changes, Change{Kind: ProfileAdded, Profile: e.Name})
		}
	}
	for _, e := range prev.Entries {
		if _, ok := after[e.Name]; !ok {
			changes = append(changes, Change{Kind: ProfileRemoved, Profile: e.Name})
		}
	}

	return changes
}
