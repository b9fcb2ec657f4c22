package notifications

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gobmr/gobmr/internal/model"
)

// Sender lets tests capture notifications instead of posting to ntfy.
type Sender interface {
	Send(title, message string) error
}

type packageSender struct{}

func (packageSender) Send(title, message string) error { return Send(title, message) }

// Watcher turns poll results into notifications: a circuit warning code
// going from zero to nonzero (and clearing again), and the controller
// becoming unreachable after a streak of failed refreshes (and coming
// back). The first sighting of a circuit is a baseline, not a transition.
type Watcher struct {
	sender      Sender
	streakLimit int

	failureStreak int
	down          bool
	warnings      map[int]int
}

func NewWatcher(streakLimit int) *Watcher {
	return &Watcher{
		sender:      packageSender{},
		streakLimit: streakLimit,
		warnings:    make(map[int]int),
	}
}

// NewWatcherForTest creates a watcher with an injectable sender.
func NewWatcherForTest(streakLimit int, sender Sender) *Watcher {
	w := NewWatcher(streakLimit)
	w.sender = sender
	return w
}

// ObserveFailure records one failed full refresh.
func (w *Watcher) ObserveFailure() {
	w.failureStreak++
	if w.failureStreak == w.streakLimit && !w.down {
		w.down = true
		w.notify("BMR controller unreachable",
			fmt.Sprintf("%d refreshes in a row have failed", w.failureStreak))
	}
}

// ObserveSnapshot records one successful full refresh.
func (w *Watcher) ObserveSnapshot(data *model.AllData) {
	if w.down {
		w.down = false
		w.notify("BMR controller recovered", "Polling the controller succeeds again")
	}
	w.failureStreak = 0

	for _, c := range data.Circuits {
		prev, seen := w.warnings[c.ID]
		w.warnings[c.ID] = c.Warning
		if !seen {
			continue
		}
		if prev == 0 && c.Warning != 0 {
			w.notify("Heating circuit warning",
				fmt.Sprintf("%s (circuit %d) reports warning code %d", c.Name, c.ID, c.Warning))
		}
		if prev != 0 && c.Warning == 0 {
			w.notify("Heating circuit recovered",
				fmt.Sprintf("%s (circuit %d) cleared its warning", c.Name, c.ID))
		}
	}
}

func (w *Watcher) notify(title, message string) {
	if err := w.sender.Send(title, message); err != nil {
		log.Warn().Err(err).Str("title", title).Msg("Failed to send notification")
	}
}
