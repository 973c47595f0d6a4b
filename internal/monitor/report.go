package monitor

import (
	"time"

	"github.com/barff/cccs/internal/profile"
)

// Entry is one profile's status in a Report
type Entry struct {
	Name   string         `json:"name" yaml:"name"`
	Path   string         `json:"path" yaml:"path"`
	Status profile.Status `json:"status" yaml:"status"`
	Err    error          `json:"-" yaml:"-"`
	Error  string         `json:"error,omitempty" yaml:"error,omitempty"`
}

// Selectable reports whether the entry can be activated
func (e Entry) Selectable() bool {
	return e.Err == nil
}

// Report is the result of one full scan and compare pass
type Report struct {
	Dir         string    `json:"dir" yaml:"dir"`
	ActivePath  string    `json:"activePath" yaml:"activePath"`
	ActiveErr   error     `json:"-" yaml:"-"`
	ActiveError string    `json:"activeError,omitempty" yaml:"activeError,omitempty"`
	Entries     []Entry   `json:"profiles" yaml:"profiles"`
	At          time.Time `json:"at" yaml:"at"`
}

// Active returns the name of the first profile fully matching the active configuration
func (r Report) Active() (string, bool) {
	for _, e := range r.Entries {
		if e.Status == profile.StatusFullMatch {
			return e.Name, true
		}
	}
	return "", false
}

// Count returns the number of discovered profiles
func (r Report) Count() int {
	return len(r.Entries)
}

// Status returns the status of the named profile
func (r Report) Status(name string) (profile.Status, bool) {
	for _, e := range r.Entries {
		if e.Name == name {
			return e.Status, true
		}
	}
	return profile.StatusReadError, false
}

// buildReport classifies every profile against the active configuration
func buildReport(dir string, cmp profile.Comparator, active profile.Document, profiles []profile.Profile, at time.Time) Report {
	r := Report{
		Dir:        dir,
		ActivePath: active.Path,
		ActiveErr:  active.Err,
		Entries:    make([]Entry, 0, len(profiles)),
		At:         at,
	}
	if active.Err != nil {
		r.ActiveError = active.Err.Error()
	}

	for _, p := range profiles {
		e := Entry{
			Name:   p.Name,
			Path:   p.Path,
			Status: cmp.ClassifyProfile(p, active),
		}
		switch {
		case p.Err != nil:
			e.Err = p.Err
		case p.Parsed == nil:
			e.Err = profile.ErrProfileNotSelectable
		}
		if e.Err != nil {
			e.Error = e.Err.Error()
		}
		r.Entries = append(r.Entries, e)
	}
	return r
}
