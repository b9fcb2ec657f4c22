// Package override holds the client-side intent records for manual
// temperature holds and the state machine that reconciles them against the
// slow-moving device on every circuit read.
package override

import (
	"time"
)

// CheckDelay is the default wait between reconciliation command attempts
// for one circuit, and the grace period a disabled override keeps enforcing
// zero offset before it is dropped. The controller takes minutes to settle
// on a new offset; re-issuing the command every poll would fight its own
// catch-up.
const CheckDelay = 300 * time.Second

// Override is one circuit's manual-hold intent. LastSet only rate-limits
// re-issued commands and does not need to survive a restart.
type Override struct {
	Temperature float64
	CreatedAt   time.Time
	StopAt      *time.Time // nil = hold until explicitly removed
	LastSet     time.Time
	DisabledAt  *time.Time // set once expiry has been acted on
}

// New builds an override created at now. A duration of zero or less means
// the hold has no expiry.
func New(temperature float64, now time.Time, duration time.Duration) *Override {
	o := &Override{
		Temperature: temperature,
		CreatedAt:   now,
		LastSet:     now,
	}
	if duration > 0 {
		stop := now.Add(duration)
		o.StopAt = &stop
	}
	return o
}

// Map holds a client's overrides keyed by circuit id. It is not safe for
// concurrent use on its own; the owning client serializes all access.
type Map struct {
	m map[int]*Override
}

func NewMap() *Map {
	return &Map{m: make(map[int]*Override)}
}

func (m *Map) Get(circuitID int) (*Override, bool) {
	o, ok := m.m[circuitID]
	return o, ok
}

func (m *Map) Set(circuitID int, o *Override) {
	m.m[circuitID] = o
}

func (m *Map) Delete(circuitID int) {
	delete(m.m, circuitID)
}

func (m *Map) Len() int {
	return len(m.m)
}
