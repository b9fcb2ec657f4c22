package poller

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gobmr/gobmr/internal/datadog"
	"github.com/gobmr/gobmr/internal/model"
)

// Source is the slice of the device client the poller needs.
type Source interface {
	AllData() (model.AllData, error)
}

// Sink receives each successful snapshot, in poll order.
type Sink func(*model.AllData)

// Poller refreshes the full device snapshot on a fixed interval and keeps
// the latest one for readers. The device is slow, so reads served from
// here never block on it.
type Poller struct {
	source     Source
	interval   time.Duration
	staleAfter time.Duration

	mu        sync.RWMutex
	latest    *model.AllData
	fetchedAt time.Time

	sinks     []Sink
	onFailure []func()

	quit chan struct{}
	now  func() time.Time
}

func New(source Source, interval, staleAfter time.Duration) *Poller {
	return &Poller{
		source:     source,
		interval:   interval,
		staleAfter: staleAfter,
		quit:       make(chan struct{}),
		now:        time.Now,
	}
}

// OnSnapshot registers a callback for every successful refresh. Register
// before Start.
func (p *Poller) OnSnapshot(s Sink) {
	p.sinks = append(p.sinks, s)
}

// OnFailure registers a callback for every failed refresh. Register
// before Start.
func (p *Poller) OnFailure(f func()) {
	p.onFailure = append(p.onFailure, f)
}

func (p *Poller) Start() {
	go func() {
		log.Info().Dur("interval", p.interval).Msg("Starting device poller")
		for {
			p.refresh()
			select {
			case <-p.quit:
				log.Info().Msg("Device poller stopped")
				return
			case <-time.After(p.interval):
			}
		}
	}()
}

func (p *Poller) Stop() {
	close(p.quit)
}

// refresh performs one full snapshot fetch. Refreshes run strictly one
// after another; the loop does not tick again while a fetch is in flight.
func (p *Poller) refresh() {
	start := p.now()
	data, err := p.source.AllData()
	datadog.Timing("poll.duration", p.now().Sub(start))

	if err != nil {
		datadog.Count("poll.errors", 1)
		log.Error().Err(err).Msg("Device refresh failed, keeping previous snapshot")
		for _, f := range p.onFailure {
			f()
		}
		return
	}

	p.mu.Lock()
	p.latest = &data
	p.fetchedAt = start
	p.mu.Unlock()

	log.Debug().Int("circuits", len(data.Circuits)).Msg("Device refresh complete")
	for _, s := range p.sinks {
		s(&data)
	}
}

// Latest returns the most recent snapshot, its age, and whether any
// snapshot exists yet.
func (p *Poller) Latest() (*model.AllData, time.Duration, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return nil, 0, false
	}
	return p.latest, p.now().Sub(p.fetchedAt), true
}

// Stale reports whether the latest snapshot is older than the staleness
// bound, or missing entirely.
func (p *Poller) Stale() bool {
	_, age, ok := p.Latest()
	return !ok || age > p.staleAfter
}
