package poller

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobmr/gobmr/internal/model"
)

type fakeSource struct {
	data  model.AllData
	err   error
	calls int
}

func (f *fakeSource) AllData() (model.AllData, error) {
	f.calls++
	return f.data, f.err
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func snapshot(names ...string) model.AllData {
	var data model.AllData
	for i, n := range names {
		data.Circuits = append(data.Circuits, model.Circuit{ID: i, Name: n})
	}
	return data
}

func testPoller(src Source) (*Poller, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)}
	p := New(src, time.Minute, 5*time.Minute)
	p.now = clock.Now
	return p, clock
}

func TestLatestEmptyBeforeFirstRefresh(t *testing.T) {
	p, _ := testPoller(&fakeSource{})

	_, _, ok := p.Latest()
	assert.False(t, ok)
	assert.True(t, p.Stale())
}

func TestRefreshStoresSnapshot(t *testing.T) {
	src := &fakeSource{data: snapshot("Byt", "Pokoj")}
	p, clock := testPoller(src)

	p.refresh()
	clock.Advance(30 * time.Second)

	data, age, ok := p.Latest()
	require.True(t, ok)
	assert.Len(t, data.Circuits, 2)
	assert.Equal(t, 30*time.Second, age)
	assert.False(t, p.Stale())
}

func TestFailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	src := &fakeSource{data: snapshot("Byt")}
	p, _ := testPoller(src)

	failures := 0
	p.OnFailure(func() { failures++ })

	p.refresh()
	src.err = errors.New("connection refused")
	p.refresh()

	data, _, ok := p.Latest()
	require.True(t, ok)
	assert.Equal(t, "Byt", data.Circuits[0].Name)
	assert.Equal(t, 1, failures)
	assert.Equal(t, 2, src.calls)
}

func TestSnapshotGoesStale(t *testing.T) {
	src := &fakeSource{data: snapshot("Byt")}
	p, clock := testPoller(src)

	p.refresh()
	assert.False(t, p.Stale())

	clock.Advance(5*time.Minute + time.Second)
	assert.True(t, p.Stale())

	// A fresh refresh clears staleness.
	p.refresh()
	assert.False(t, p.Stale())
}

func TestSinksReceiveEachSnapshot(t *testing.T) {
	src := &fakeSource{data: snapshot("Byt")}
	p, _ := testPoller(src)

	var got []string
	p.OnSnapshot(func(d *model.AllData) { got = append(got, d.Circuits[0].Name) })
	p.OnSnapshot(func(d *model.AllData) { got = append(got, "second sink") })

	p.refresh()
	assert.Equal(t, []string{"Byt", "second sink"}, got)

	// Failed refreshes do not fan out.
	src.err = errors.New("boom")
	p.refresh()
	assert.Len(t, got, 2)
}
