package monitor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/barff/cccs/internal/profile"
	"github.com/barff/cccs/internal/snapshot"
	"github.com/rs/zerolog/log"
)

// Interval bounds in minutes
const (
	MinInterval     = 1
	MaxInterval     = 60
	DefaultInterval = 5
)

var (
	// ErrInvalidInterval means the requested interval is outside 1-60 minutes
	ErrInvalidInterval = errors.New("invalid monitor interval")

	// ErrAlreadyRunning means Start was called on a running monitor
	ErrAlreadyRunning = errors.New("monitor is already running")

	// ErrProfileNotFound means no discovered profile has the requested name
	ErrProfileNotFound = errors.New("profile not found")
)

// State is the lifecycle state of a Monitor
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "idle"
	}
}

// ValidateInterval checks that minutes is within the allowed range
func ValidateInterval(minutes int) error {
	if minutes < MinInterval || minutes > MaxInterval {
		return fmt.Errorf("%w: %d minutes (must be %d-%d)", ErrInvalidInterval, minutes, MinInterval, MaxInterval)
	}
	return nil
}

// OnChange receives every report produced by a full pass. It is called from
// the monitor's goroutine or from the goroutine that requested the pass and
// must not call back into the Monitor.
type OnChange func(Report)

// Stats summarizes the monitor's runtime state
type Stats struct {
	State             State
	IntervalMinutes   int
	MonitoredFiles    int
	Snapshots         int
	ConsecutiveErrors int
	LastPass          time.Time
}

// Option configures a Monitor
type Option func(*Monitor)

// WithVolatileField sets the top-level key excluded from comparison
func WithVolatileField(field string) Option {
	return func(m *Monitor) {
		m.comparator = profile.NewComparator(field)
	}
}

// WithSwitcher replaces the switcher used by Activate
func WithSwitcher(s *profile.Switcher) Option {
	return func(m *Monitor) {
		m.switcher = s
	}
}

// WithIntervalHook registers a callback for accepted interval changes
func WithIntervalHook(fn func(minutes int)) Option {
	return func(m *Monitor) {
		m.onInterval = fn
	}
}

// WithMetrics records ticks, passes and switches to metrics
func WithMetrics(metrics *Metrics) Option {
	return func(m *Monitor) {
		m.metrics = metrics
	}
}

// Monitor watches the active configuration and every profile for changes
type Monitor struct {
	layout     profile.Layout
	scanner    *profile.Scanner
	comparator profile.Comparator
	switcher   *profile.Switcher
	store      *snapshot.Store
	metrics    *Metrics
	onInterval func(int)
	unit       time.Duration

	// passMu serializes full passes and ticks; the fields below it are guarded by it
	passMu   sync.Mutex
	paths    []string
	profiles []profile.Profile

	// notifyMu keeps onChange deliveries in pass order
	notifyMu sync.Mutex

	report      atomic.Pointer[Report]
	monitored   atomic.Pointer[map[string]struct{}]
	consecutive atomic.Int64
	forceNext   atomic.Bool

	resetCh   chan struct{}
	triggerCh chan struct{}

	mu       sync.Mutex
	state    State
	interval int
	onChange OnChange
	stopCh   chan struct{}
	done     chan struct{}
}

// New creates an idle monitor for the given layout
func New(layout profile.Layout, opts ...Option) *Monitor {
	scanner := profile.NewScanner(layout)
	m := &Monitor{
		layout:     scanner.Layout(),
		scanner:    scanner,
		comparator: profile.NewComparator(profile.DefaultVolatileField),
		store:      snapshot.NewStore(),
		unit:       time.Minute,
		interval:   DefaultInterval,
		resetCh:    make(chan struct{}, 1),
		triggerCh:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.switcher == nil {
		m.switcher = profile.NewSwitcher(m.layout)
	}
	return m
}

// Layout returns the monitored layout
func (m *Monitor) Layout() profile.Layout {
	return m.layout
}

// Start runs an initial full pass and schedules ticks every minutes.
// A failing initial pass is logged and retried on the next tick.
func (m *Monitor) Start(ctx context.Context, minutes int, onChange OnChange) error {
	if err := ValidateInterval(minutes); err != nil {
		return err
	}

	m.mu.Lock()
	if m.state == StateRunning {
		m.mu.Unlock()
		return ErrAlreadyRunning
	}
	stopCh := make(chan struct{})
	done := make(chan struct{})
	m.state = StateRunning
	m.interval = minutes
	m.onChange = onChange
	m.stopCh = stopCh
	m.done = done
	m.mu.Unlock()

	drain(m.resetCh)
	drain(m.triggerCh)

	if _, err := m.ForceScan(ctx); err != nil {
		log.Warn().Err(err).Str("dir", m.layout.Dir).Msg("Initial scan failed")
	}

	go m.loop(ctx, stopCh, done)

	log.Info().
		Str("dir", m.layout.Dir).
		Int("interval_minutes", minutes).
		Msg("Monitor started")
	return nil
}

// Stop cancels the pending tick and waits for an in-flight pass to finish.
// Calling Stop on a monitor that is not running does nothing.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.state != StateRunning {
		m.mu.Unlock()
		return
	}
	close(m.stopCh)
	done := m.done
	m.state = StateStopped
	m.stopCh = nil
	m.done = nil
	m.mu.Unlock()

	<-done
	log.Info().Msg("Monitor stopped")
}

// SetInterval changes the tick interval; it takes effect from the next tick
func (m *Monitor) SetInterval(minutes int) error {
	if err := ValidateInterval(minutes); err != nil {
		return err
	}

	m.mu.Lock()
	m.interval = minutes
	running := m.state == StateRunning
	hook := m.onInterval
	m.mu.Unlock()

	if running {
		select {
		case m.resetCh <- struct{}{}:
		default:
		}
	}
	if hook != nil {
		hook(minutes)
	}

	log.Info().Int("interval_minutes", minutes).Msg("Monitor interval changed")
	return nil
}

// ForceScan performs a full pass immediately and resets all snapshots
func (m *Monitor) ForceScan(ctx context.Context) (Report, error) {
	m.passMu.Lock()
	report, err := m.passLocked(ctx, triggerForce)
	if err != nil {
		m.passMu.Unlock()
		return Report{}, err
	}
	m.deliver(report)
	return report, nil
}

// Activate switches to the named profile and re-scans so the next reported
// status of that profile reflects the switch
func (m *Monitor) Activate(ctx context.Context, name string) error {
	m.passMu.Lock()

	p, ok := m.findLocked(name)
	if !ok {
		// the profile may have been created since the last pass
		if _, err := m.passLocked(ctx, triggerActivate); err != nil {
			m.passMu.Unlock()
			return err
		}
		p, ok = m.findLocked(name)
	}
	if !ok {
		m.passMu.Unlock()
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}

	if err := m.switcher.Activate(ctx, p); err != nil {
		m.passMu.Unlock()
		m.metrics.recordSwitch(switchResult(err))
		return err
	}
	m.metrics.recordSwitch("ok")

	report, err := m.passLocked(ctx, triggerActivate)
	if err != nil {
		m.passMu.Unlock()
		return fmt.Errorf("profile %s activated but rescan failed: %w", name, err)
	}
	m.deliver(report)
	return nil
}

// Notify hints that path changed on disk. Monitored paths trigger an early
// tick; a new profile file triggers a full pass.
func (m *Monitor) Notify(path string) {
	path = filepath.Clean(path)
	if set := m.monitored.Load(); set != nil {
		if _, ok := (*set)[path]; ok {
			m.trigger()
			return
		}
	}
	if !m.layout.Contains(path) {
		return
	}
	if _, ok := m.layout.ProfileName(filepath.Base(path)); ok {
		m.forceNext.Store(true)
		m.trigger()
	}
}

// Report returns the last successful report
func (m *Monitor) Report() (Report, bool) {
	r := m.report.Load()
	if r == nil {
		return Report{}, false
	}
	return *r, true
}

// State returns the lifecycle state
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Stats returns monitoring statistics
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	st := Stats{State: m.state, IntervalMinutes: m.interval}
	m.mu.Unlock()

	if set := m.monitored.Load(); set != nil {
		st.MonitoredFiles = len(*set)
	}
	st.Snapshots = m.store.Len()
	st.ConsecutiveErrors = int(m.consecutive.Load())
	if r := m.report.Load(); r != nil {
		st.LastPass = r.At
	}
	return st
}

func (m *Monitor) trigger() {
	select {
	case m.triggerCh <- struct{}{}:
	default:
	}
}

func (m *Monitor) period() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Duration(m.interval) * m.unit
}

func (m *Monitor) loop(ctx context.Context, stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(m.period())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			m.mu.Lock()
			if m.state == StateRunning && m.done == done {
				m.state = StateStopped
				m.stopCh = nil
				m.done = nil
			}
			m.mu.Unlock()
			return
		case <-stopCh:
			return
		case <-m.resetCh:
			resetTimer(timer, m.period())
		case <-m.triggerCh:
			if stopped(stopCh) {
				return
			}
			m.tick(ctx)
		case <-timer.C:
			if stopped(stopCh) {
				return
			}
			m.tick(ctx)
			timer.Reset(m.period())
		}
	}
}

// tick re-observes the monitored set and runs a full pass when anything moved
func (m *Monitor) tick(ctx context.Context) {
	m.passMu.Lock()

	changed := m.forceNext.Swap(false) || m.report.Load() == nil
	for _, path := range m.paths {
		prev, had := m.store.Get(path)
		cur, err := m.store.Observe(path, false)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to observe monitored file")
			changed = true
			continue
		}
		if !had || snapshot.Diff(prev, cur) {
			log.Debug().Str("path", path).Msg("Monitored file changed")
			changed = true
		}
		m.store.Record(path, cur)
	}

	m.metrics.recordTick(changed)
	if !changed {
		m.passMu.Unlock()
		log.Debug().Int("files", len(m.paths)).Msg("No changes detected")
		return
	}

	report, err := m.passLocked(ctx, triggerTick)
	if err != nil {
		m.passMu.Unlock()
		return
	}
	m.deliver(report)
}

// passLocked scans, classifies and reseeds snapshots. passMu must be held.
// On failure the last good report and monitored set are kept.
func (m *Monitor) passLocked(ctx context.Context, trigger string) (Report, error) {
	started := time.Now()
	active, profiles, err := m.scanner.Scan(ctx)
	if err != nil {
		n := m.consecutive.Add(1)
		m.metrics.recordPass(trigger, started, err, 0, n)
		log.Warn().Err(err).Int64("consecutive_errors", n).Str("trigger", trigger).Msg("Scan failed")
		return Report{}, err
	}
	m.consecutive.Store(0)

	report := buildReport(m.layout.Dir, m.comparator, active, profiles, time.Now())

	paths := make([]string, 0, len(profiles)+1)
	paths = append(paths, filepath.Clean(active.Path))
	for _, p := range profiles {
		paths = append(paths, filepath.Clean(p.Path))
	}
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}

	m.paths = paths
	m.profiles = profiles
	m.monitored.Store(&set)
	m.store.Retain(paths)

	if err := m.store.Seed(paths[0], active.Content, active.Loaded()); err != nil {
		log.Warn().Err(err).Str("path", paths[0]).Msg("Failed to snapshot active configuration")
	}
	for i, p := range profiles {
		if err := m.store.Seed(paths[i+1], p.Content, p.Loaded()); err != nil {
			log.Warn().Err(err).Str("path", paths[i+1]).Msg("Failed to snapshot profile")
		}
	}

	m.report.Store(&report)
	m.metrics.recordPass(trigger, started, nil, len(paths), 0)

	name, ok := report.Active()
	log.Debug().
		Int("profiles", report.Count()).
		Str("active", name).
		Bool("matched", ok).
		Msg("Full pass complete")
	return report, nil
}

// deliver hands report to onChange. It is entered with passMu held and
// releases it only after taking notifyMu, so reports arrive in pass order.
func (m *Monitor) deliver(report Report) {
	m.notifyMu.Lock()
	m.passMu.Unlock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb(report)
	}
}

// switchResult labels a switch failure by kind
func switchResult(err error) string {
	var serr *profile.SwitchError
	if errors.As(err, &serr) {
		return strings.ReplaceAll(serr.Kind.String(), " ", "_")
	}
	return "error"
}

func (m *Monitor) findLocked(name string) (profile.Profile, bool) {
	for _, p := range m.profiles {
		if p.Name == name {
			return p, true
		}
	}
	return profile.Profile{}, false
}

func stopped(stopCh <-chan struct{}) bool {
	select {
	case <-stopCh:
		return true
	default:
		return false
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

func drain(ch chan struct{}) {
	select {
	case <-ch:
	default:
	}
}
