package notification

import (
	"github.com/gen2brain/beeep"
)

// Notifier delivers a desktop notification, optionally with an alert sound
type Notifier interface {
	Notify(title, message string, sound bool) error
}

// BeeepNotifier shows notifications through the platform notification service
type BeeepNotifier struct{}

// NewBeeepNotifier creates a beeep-backed notifier
func NewBeeepNotifier() *BeeepNotifier {
	return &BeeepNotifier{}
}

// Notify shows the notification; sound uses beeep's alert variant
func (BeeepNotifier) Notify(title, message string, sound bool) error {
	if sound {
		return beeep.Alert(title, message, "")
	}
	return beeep.Notify(title, message, "")
}
