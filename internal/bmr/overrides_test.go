package bmr

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobmr/gobmr/internal/store"
)

// TestOverrideLifecycle walks one override from creation through drift
// re-apply, expiry, the post-expiry grace period and final removal, checking
// the commands sent to the device at every stage.
func TestOverrideLifecycle(t *testing.T) {
	f := newFakeDevice(t)
	f.set("/wholeRoom", circuitBody("Pokoj", 20.1, 20, 20.0, 0, 5.0))
	clock := newFakeClock()
	j := &journalRecorder{}
	st := &recordingStore{}
	c := testClient(t, f, func(o *Options) {
		o.Now = clock.Now
		o.Journal = j.record
		o.Store = st
	})

	// Creation persists the intent and points the device at 23.0: scheduled
	// base is 20.0, so the offset command carries 3.0.
	require.NoError(t, c.SetTemperatureOverride(3, 23.0, 2*time.Hour))
	assert.Equal(t, 1, f.count("/saveManualTemp"))
	assert.Equal(t, "030030", f.lastValue("/saveManualTemp", "manualTemp"))
	require.Len(t, st.saves, 1)

	// The device has not caught up yet. The read reports the override target
	// but stays quiet: the last command is fresher than the check delay.
	clock.Advance(10 * time.Second)
	circ, err := c.Circuit(3)
	require.NoError(t, err)
	require.NotNil(t, circ.TargetTemperature)
	assert.InDelta(t, 23.0, *circ.TargetTemperature, 0.001)
	require.NotNil(t, circ.TargetTemperatureRaw)
	assert.InDelta(t, 20.0, *circ.TargetTemperatureRaw, 0.001)
	assert.Equal(t, 1, f.count("/saveManualTemp"))

	// Still drifted after the check delay: the command is re-issued once.
	clock.Advance(6 * time.Minute)
	_, err = c.Circuit(3)
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("/saveManualTemp"))
	assert.Equal(t, "030030", f.lastValue("/saveManualTemp", "manualTemp"))

	// The device caught up; nothing further to send.
	f.set("/wholeRoom", circuitBody("Pokoj", 22.8, 20, 23.0, 3.0, 5.0))
	clock.Advance(6 * time.Minute)
	circ, err = c.Circuit(3)
	require.NoError(t, err)
	assert.InDelta(t, 23.0, *circ.TargetTemperature, 0.001)
	assert.Equal(t, 2, f.count("/saveManualTemp"))

	// Past the stop time: one zero-offset command hands the circuit back to
	// its schedule, the read already reports the scheduled state, and the
	// disabled override is persisted.
	clock.Advance(2 * time.Hour)
	circ, err = c.Circuit(3)
	require.NoError(t, err)
	assert.Equal(t, 3, f.count("/saveManualTemp"))
	assert.Equal(t, "030000", f.lastValue("/saveManualTemp", "manualTemp"))
	require.NotNil(t, circ.UserOffset)
	assert.Zero(t, *circ.UserOffset)
	require.Len(t, st.saves, 2)
	require.Contains(t, st.saves[1], "3")
	assert.NotNil(t, st.saves[1]["3"].DisabledAt)

	// Within the grace period the zero offset is not repeated.
	clock.Advance(time.Minute)
	_, err = c.Circuit(3)
	require.NoError(t, err)
	assert.Equal(t, 3, f.count("/saveManualTemp"))

	// Grace over: the entry is dropped and the empty set persisted.
	clock.Advance(6 * time.Minute)
	_, err = c.Circuit(3)
	require.NoError(t, err)
	require.Len(t, st.saves, 3)
	assert.Empty(t, st.last())

	// Subsequent reads pass the device state through untouched.
	circ, err = c.Circuit(3)
	require.NoError(t, err)
	assert.InDelta(t, 23.0, *circ.TargetTemperature, 0.001)
	assert.InDelta(t, 3.0, *circ.UserOffset, 0.001)
	assert.Equal(t, 3, f.count("/saveManualTemp"))

	assert.Equal(t, []string{"set_target", "set_target", "zero_offset"}, j.kinds())
}

func TestIndefiniteOverrideKeepsEnforcing(t *testing.T) {
	f := newFakeDevice(t)
	f.set("/wholeRoom", circuitBody("Pokoj", 20.1, 20, 20.0, 0, 5.0))
	clock := newFakeClock()
	c := testClient(t, f, func(o *Options) { o.Now = clock.Now })

	require.NoError(t, c.SetTemperatureOverride(3, 24.0, 0))

	// Days later the device has rebooted back to its schedule; every read
	// past the check delay re-applies the hold.
	clock.Advance(72 * time.Hour)
	circ, err := c.Circuit(3)
	require.NoError(t, err)
	assert.InDelta(t, 24.0, *circ.TargetTemperature, 0.001)
	assert.Equal(t, 2, f.count("/saveManualTemp"))
}

func TestRemoveOverrideExpiresEntry(t *testing.T) {
	f := newFakeDevice(t)
	f.set("/wholeRoom", circuitBody("Pokoj", 20.1, 20, 20.0, 0, 5.0))
	clock := newFakeClock()
	j := &journalRecorder{}
	c := testClient(t, f, func(o *Options) {
		o.Now = clock.Now
		o.Journal = j.record
	})
	require.NoError(t, c.SetTemperatureOverride(3, 23.0, 0))
	f.set("/wholeRoom", circuitBody("Pokoj", 22.8, 20, 23.0, 3.0, 5.0))

	require.NoError(t, c.RemoveTemperatureOverride(3))

	// Removing drives the normal expiry path: one zero-offset command.
	assert.Equal(t, 2, f.count("/saveManualTemp"))
	assert.Equal(t, "030000", f.lastValue("/saveManualTemp", "manualTemp"))
	assert.Equal(t, []string{"set_target", "zero_offset"}, j.kinds())

	// The removed override must not resurrect later.
	clock.Advance(12 * time.Hour)
	circ, err := c.Circuit(3)
	require.NoError(t, err)
	assert.InDelta(t, 23.0, *circ.TargetTemperature, 0.001) // device still settling
	assert.Equal(t, 2, f.count("/saveManualTemp"))
}

func TestRemoveOverrideWithoutEntrySendsZeroOffset(t *testing.T) {
	f := newFakeDevice(t)
	j := &journalRecorder{}
	c := testClient(t, f, func(o *Options) { o.Journal = j.record })

	// No client-side record: the offset came from the panel or the BMR web
	// UI, so a zero offset goes straight out.
	require.NoError(t, c.RemoveTemperatureOverride(5))

	assert.Equal(t, 1, f.count("/saveManualTemp"))
	assert.Equal(t, "050000", f.lastValue("/saveManualTemp", "manualTemp"))
	assert.Equal(t, []string{"zero_offset"}, j.kinds())
}

func TestOverrideSkipsReconcileWhenTargetUnreadable(t *testing.T) {
	f := newFakeDevice(t)
	f.set("/wholeRoom", "1Pokoj        021.7020?????000.005.0000000000")
	clock := newFakeClock()
	c := testClient(t, f, func(o *Options) { o.Now = clock.Now })
	require.NoError(t, c.SetTemperatureOverride(3, 23.0, 0))
	sends := f.count("/saveManualTemp")

	clock.Advance(time.Hour)
	circ, err := c.Circuit(3)
	require.NoError(t, err)

	// With no readable target there is nothing to reconcile against: no
	// decoration, no commands.
	assert.Nil(t, circ.TargetTemperature)
	assert.Equal(t, sends, f.count("/saveManualTemp"))
}

func TestOverrideCommandFailureDoesNotFailRead(t *testing.T) {
	f := newFakeDevice(t)
	f.set("/wholeRoom", circuitBody("Pokoj", 20.1, 20, 20.0, 0, 5.0))
	clock := newFakeClock()
	c := testClient(t, f, func(o *Options) { o.Now = clock.Now })
	require.NoError(t, c.SetTemperatureOverride(3, 23.0, 0))

	f.set("/saveManualTemp", "false")
	clock.Advance(6 * time.Minute)
	circ, err := c.Circuit(3)

	// The re-apply was refused but the read still answers with the override
	// decoration; the next read past the check delay tries again.
	require.NoError(t, err)
	assert.InDelta(t, 23.0, *circ.TargetTemperature, 0.001)
	assert.Equal(t, 2, f.count("/saveManualTemp"))

	clock.Advance(6 * time.Minute)
	_, err = c.Circuit(3)
	require.NoError(t, err)
	assert.Equal(t, 3, f.count("/saveManualTemp"))
}

func TestOverridesSurviveRestart(t *testing.T) {
	f := newFakeDevice(t)
	f.set("/wholeRoom", circuitBody("Pokoj", 20.1, 20, 20.0, 0, 5.0))
	path := filepath.Join(t.TempDir(), "overrides.json")

	c1 := testClient(t, f, func(o *Options) { o.Store = store.NewFileStore(path) })
	require.NoError(t, c1.SetTemperatureOverride(0, 24.0, 0))
	sends := f.count("/saveManualTemp")

	// A fresh client against the same store picks the hold up again.
	c2 := testClient(t, f, func(o *Options) { o.Store = store.NewFileStore(path) })
	circ, err := c2.Circuit(0)
	require.NoError(t, err)

	require.NotNil(t, circ.TargetTemperature)
	assert.InDelta(t, 24.0, *circ.TargetTemperature, 0.001)
	// Freshly loaded, within the check delay: reading must not re-send.
	assert.Equal(t, sends, f.count("/saveManualTemp"))
}
