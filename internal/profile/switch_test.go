package profile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/barff/cccs/internal/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanOne(t *testing.T, dir, name string) Profile {
	t.Helper()
	_, profiles, err := NewScanner(NewLayout(dir)).Scan(context.Background())
	require.NoError(t, err)
	for _, p := range profiles {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("profile %q not found", name)
	return Profile{}
}

func listTemps(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var temps []string
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			temps = append(temps, e.Name())
		}
	}
	return temps
}

func TestActivate_ReplacesActiveConfiguration(t *testing.T) {
	dir := t.TempDir()
	active := writeFile(t, dir, "settings.json", `{"model":"A","x":1}`)
	work := `{"model":"B",
  "x": 2}`
	writeFile(t, dir, "Work.settings.json", work)

	s := NewSwitcher(NewLayout(dir))
	require.NoError(t, s.Activate(context.Background(), scanOne(t, dir, "Work")))

	got, err := os.ReadFile(active)
	require.NoError(t, err)
	assert.Equal(t, work, string(got))
	assert.Empty(t, listTemps(t, dir))

	backups, err := ListBackups(NewLayout(dir))
	require.NoError(t, err)
	require.Len(t, backups, 1)
	saved, err := os.ReadFile(backups[0].Path)
	require.NoError(t, err)
	assert.Equal(t, `{"model":"A","x":1}`, string(saved))
}

func TestActivate_ThenClassifiesAsFullMatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "settings.json", `{"model":"A","x":1}`)
	writeFile(t, dir, "Home.settings.json", `{"model":"B","x":1}`)

	require.NoError(t, NewSwitcher(NewLayout(dir)).Activate(context.Background(), scanOne(t, dir, "Home")))

	active, profiles, err := NewScanner(NewLayout(dir)).Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusFullMatch, NewComparator(DefaultVolatileField).ClassifyProfile(profiles[0], active))
}

func TestActivate_CreatesMissingActiveFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "work.settings.json", `{"x":1}`)

	require.NoError(t, NewSwitcher(NewLayout(dir)).Activate(context.Background(), scanOne(t, dir, "work")))

	got, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(got))

	backups, err := ListBackups(NewLayout(dir))
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestActivate_IdenticalContentIsNoop(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "settings.json", `{"x":1}`)
	writeFile(t, dir, "work.settings.json", `{"x":1}`)

	require.NoError(t, NewSwitcher(NewLayout(dir)).Activate(context.Background(), scanOne(t, dir, "work")))

	backups, err := ListBackups(NewLayout(dir))
	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestActivate_RenameFailureLeavesActiveUntouched(t *testing.T) {
	dir := t.TempDir()
	active := writeFile(t, dir, "settings.json", `{"model":"A","x":1}`)
	writeFile(t, dir, "work.settings.json", `{"model":"B","x":2}`)

	boom := errors.New("rename rejected")
	w := fsutil.Writer{Rename: func(string, string) error { return boom }}
	s := NewSwitcher(NewLayout(dir), WithWriter(w), WithKeepBackups(0))

	err := s.Activate(context.Background(), scanOne(t, dir, "work"))
	require.Error(t, err)

	var serr *SwitchError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, RenameFailed, serr.Kind)
	assert.ErrorIs(t, err, ErrRenameFailed)
	assert.ErrorIs(t, err, boom)

	got, err := os.ReadFile(active)
	require.NoError(t, err)
	assert.Equal(t, `{"model":"A","x":1}`, string(got))
	assert.Empty(t, listTemps(t, dir))
}

func TestActivate_SourceRemovedAfterScan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "settings.json", `{"x":1}`)
	path := writeFile(t, dir, "work.settings.json", `{"x":2}`)

	p := scanOne(t, dir, "work")
	require.NoError(t, os.Remove(path))

	err := NewSwitcher(NewLayout(dir)).Activate(context.Background(), p)
	assert.ErrorIs(t, err, ErrSourceUnreadable)
}

func TestActivate_SourceCorruptedAfterScan(t *testing.T) {
	dir := t.TempDir()
	active := writeFile(t, dir, "settings.json", `{"x":1}`)
	writeFile(t, dir, "work.settings.json", `{"x":2}`)

	p := scanOne(t, dir, "work")
	writeFile(t, dir, "work.settings.json", `{"x":`)

	err := NewSwitcher(NewLayout(dir)).Activate(context.Background(), p)
	assert.ErrorIs(t, err, ErrSourceUnreadable)

	got, err := os.ReadFile(active)
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(got))
}

func TestActivate_RejectsUnselectableProfile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "settings.json", `{"x":1}`)
	writeFile(t, dir, "broken.settings.json", `not json`)

	err := NewSwitcher(NewLayout(dir)).Activate(context.Background(), scanOne(t, dir, "broken"))
	assert.ErrorIs(t, err, ErrProfileNotSelectable)
}

func TestActivate_RejectsProfileOutsideDirectory(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()
	path := writeFile(t, other, "evil.settings.json", `{"x":1}`)

	p := Profile{Name: "evil", Path: path, Content: []byte(`{"x":1}`), Parsed: map[string]any{"x": 1.0}}
	err := NewSwitcher(NewLayout(dir)).Activate(context.Background(), p)
	assert.ErrorIs(t, err, ErrProfileNotSelectable)
}

func TestActivate_PrunesOldBackups(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "settings.json", `{"n":0}`)
	writeFile(t, dir, "a.settings.json", `{"n":1}`)
	writeFile(t, dir, "b.settings.json", `{"n":2}`)

	clock := time.Unix(1700000000, 0)
	s := NewSwitcher(NewLayout(dir), WithKeepBackups(2))
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Activate(context.Background(), scanOne(t, dir, "a")))
		require.NoError(t, s.Activate(context.Background(), scanOne(t, dir, "b")))
	}

	backups, err := ListBackups(NewLayout(dir))
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.True(t, backups[0].TakenAt.After(backups[1].TakenAt))
}

func TestActivate_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	active := writeFile(t, dir, "settings.json", `{"x":1}`)
	writeFile(t, dir, "work.settings.json", `{"x":2}`)
	p := scanOne(t, dir, "work")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewSwitcher(NewLayout(dir)).Activate(ctx, p)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := os.ReadFile(active)
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(got))
}

func TestSwitchError_Message(t *testing.T) {
	err := &SwitchError{Kind: TargetUnwritable, Profile: "work", Path: "/x/settings.json", Err: os.ErrPermission}
	assert.Contains(t, err.Error(), "work")
	assert.ErrorIs(t, err, ErrTargetUnwritable)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.NotErrorIs(t, err, ErrRenameFailed)
}

func TestPruneBackups(t *testing.T) {
	dir := t.TempDir()
	layout := NewLayout(dir)
	for i := 1; i <= 4; i++ {
		writeFile(t, dir, filepath.Base(layout.BackupPath(time.Unix(int64(i), 0))), `{}`)
	}
	writeFile(t, dir, "settings.json.backup.junk", `{}`)

	removed, err := PruneBackups(layout, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, removed)

	backups, err := ListBackups(layout)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.True(t, backups[0].TakenAt.Equal(time.Unix(4, 0)))

	_, err = os.Stat(filepath.Join(dir, "settings.json.backup.junk"))
	assert.NoError(t, err)
}
