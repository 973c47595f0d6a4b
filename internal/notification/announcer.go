package notification

import (
	"errors"
	"sync"

	"github.com/barff/cccs/internal/config"
	"github.com/barff/cccs/internal/monitor"
	"github.com/barff/cccs/internal/profile"
	"github.com/rs/zerolog/log"
)

// Announcer turns monitor reports and switch results into desktop notifications
type Announcer struct {
	notifier Notifier
	cooldown *CooldownManager
	messages Messages
	cfg      config.NotificationConfig

	mu   sync.Mutex
	last *monitor.Report
}

// NewAnnouncer creates an announcer; a nil notifier uses beeep
func NewAnnouncer(notifier Notifier, cfg config.NotificationConfig, language string) *Announcer {
	if notifier == nil {
		notifier = NewBeeepNotifier()
	}
	return &Announcer{
		notifier: notifier,
		cooldown: NewCooldownManager(cfg.Cooldown),
		messages: NewMessages(language),
		cfg:      cfg,
	}
}

// OnReport notifies about differences from the previous report. The first
// report only establishes the baseline.
func (a *Announcer) OnReport(r monitor.Report) []Change {
	a.mu.Lock()
	prev := a.last
	a.last = &r
	a.mu.Unlock()

	changes := DetectChanges(prev, r)
	for _, c := range changes {
		a.announce(c.Kind.String()+":"+c.Profile, a.describe(c))
	}
	return changes
}

// Switched announces a successful switch
func (a *Announcer) Switched(name string) {
	a.announce("switched:"+name, a.messages.get(msgSwitched, name))
}

// SwitchFailed announces a failed switch, naming the failure kind
func (a *Announcer) SwitchFailed(name string, err error) {
	kind := "error"
	var serr *profile.SwitchError
	switch {
	case errors.As(err, &serr):
		kind = serr.Kind.String()
	case errors.Is(err, profile.ErrProfileNotSelectable):
		kind = "not selectable"
	case errors.Is(err, monitor.ErrProfileNotFound):
		kind = "not found"
	case errors.Is(err, profile.ErrDirectoryUnavailable):
		kind = "directory unavailable"
	}
	// failures are never rate-limited
	a.send(a.messages.get(msgSwitchFailed, name, kind))
}

func (a *Announcer) describe(c Change) string {
	switch c.Kind {
	case ActiveChanged:
		if c.Profile == "" {
			return a.messages.get(msgNoActive)
		}
		return a.messages.get(msgActiveChanged, c.Profile)
	case ProfileAdded:
		return a.messages.get(msgProfileAdded, c.Profile)
	case ProfileRemoved:
		return a.messages.get(msgProfileRemoved, c.Profile)
	default:
		return a.messages.get(msgUnreadable)
	}
}

func (a *Announcer) announce(key, message string) {
	if !a.cfg.Enabled || !a.cooldown.Allow(key) {
		return
	}
	a.send(message)
}

func (a *Announcer) send(message string) {
	if !a.cfg.Enabled {
		return
	}

	if err := a.notifier.Notify(a.messages.get(msgTitle), message, a.cfg.Sound); err != nil {
		log.Warn().Err(err).Msg("Failed to send notification")
	}
}
