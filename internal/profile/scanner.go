package profile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
)

// scanWorkers bounds concurrent profile reads
const scanWorkers = 4

// Scanner discovers profiles in a configuration directory
type Scanner struct {
	layout Layout
}

// NewScanner creates a scanner for the given layout
func NewScanner(layout Layout) *Scanner {
	return &Scanner{layout: layout.withDefaults()}
}

// Layout returns the layout the scanner reads
func (s *Scanner) Layout() Layout {
	return s.layout
}

// Scan loads the active configuration and every profile in the directory.
// A profile that cannot be read or parsed is returned with Err set rather
// than aborting the scan. Profiles are sorted by name.
func (s *Scanner) Scan(ctx context.Context) (Document, []Profile, error) {
	dir := s.layout.Dir

	info, err := os.Stat(dir)
	if err != nil {
		return Document{}, nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if !info.IsDir() {
		return Document{}, nil, fmt.Errorf("%w: %s is not a directory", ErrDirectoryUnavailable, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return Document{}, nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	var names []string
	for _, entry := range entries {
		name, ok := s.layout.ProfileName(entry.Name())
		if !ok {
			continue
		}
		if !regularEntry(dir, entry) {
			log.Debug().Str("file", entry.Name()).Msg("Skipping non-regular profile entry")
			continue
		}
		names = append(names, name)
	}

	profiles := make([]Profile, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(scanWorkers)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p := s.loadProfile(name)
			if p.Err != nil {
				log.Warn().Err(p.Err).Str("profile", name).Msg("Failed to load profile")
			}
			profiles[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Document{}, nil, err
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	markDuplicates(profiles)

	active := readDocument(s.layout.ActivePath())
	if active.Err != nil {
		log.Warn().Err(active.Err).Str("path", active.Path).Msg("Active configuration unavailable")
	}

	log.Debug().Str("dir", dir).Int("profiles", len(profiles)).Msg("Scanned configuration directory")
	return active, profiles, nil
}

// regularEntry reports whether entry is a regular file or a symlink to one.
// Links whose target cannot be resolved are kept so they surface as read errors.
func regularEntry(dir string, entry os.DirEntry) bool {
	mode := entry.Type()
	if mode.IsRegular() {
		return true
	}
	if mode&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, entry.Name()))
	if err != nil {
		return true
	}
	return info.Mode().IsRegular()
}

// loadProfile reads and parses a single profile file
func (s *Scanner) loadProfile(name string) Profile {
	p := Profile{
		Name: name,
		Path: s.layout.ProfilePath(name),
	}

	if len(name) > MaxNameLength {
		p.Err = fmt.Errorf("%w: longer than %d bytes", ErrInvalidProfileName, MaxNameLength)
		return p
	}

	doc := readDocument(p.Path)
	p.Content = doc.Content
	p.Parsed = doc.Parsed
	p.Err = doc.Err
	return p
}

// readDocument reads and parses a JSON configuration file
func readDocument(path string) Document {
	doc := Document{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		doc.Err = fmt.Errorf("failed to read %s: %w", path, err)
		return doc
	}
	if data == nil {
		data = []byte{}
	}
	doc.Content = data

	parsed, err := parseObject(data)
	if err != nil {
		doc.Err = fmt.Errorf("invalid JSON in %s: %w", path, err)
		return doc
	}
	doc.Parsed = parsed
	return doc
}

// markDuplicates flags profiles whose names collide under Unicode case folding;
// none of the colliding profiles is selectable
func markDuplicates(profiles []Profile) {
	fold := cases.Fold()
	groups := make(map[string][]int)
	for i, p := range profiles {
		key := fold.String(p.Name)
		groups[key] = append(groups[key], i)
	}

	for _, idx := range groups {
		if len(idx) < 2 {
			continue
		}
		names := make([]string, len(idx))
		for k, i := range idx {
			names[k] = profiles[i].Name
		}
		for _, i := range idx {
			profiles[i].Err = fmt.Errorf("%w: %s", ErrDuplicateProfileName, strings.Join(names, ", "))
		}
	}
}
