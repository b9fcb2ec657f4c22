package bmr

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gobmr/gobmr/internal/model"
	"github.com/gobmr/gobmr/internal/override"
)

// SetTemperatureOverride holds a circuit at temperature until duration
// elapses, or indefinitely when duration is zero. The intent is stored and
// persisted first, then the device is pointed at the override target.
func (c *Client) SetTemperatureOverride(circuitID int, temperature float64, duration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	log.Debug().Int("circuit", circuitID).Float64("temperature", temperature).Dur("duration", duration).Msg("Setting temperature override")
	c.overrides.Set(circuitID, override.New(temperature, c.now(), duration))
	c.persistOverrides()
	return c.sendManualTemp(circuitID, temperature, nil, "set_target")
}

// RemoveTemperatureOverride lifts an override. An existing entry is
// expired and the circuit re-read immediately, which drives the normal
// zero-offset path. With no entry the offset must have come from the
// physical panel or the BMR web UI, so a zero offset is sent directly.
func (c *Client) RemoveTemperatureOverride(circuitID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if o, ok := c.overrides.Get(circuitID); ok {
		stop := c.now().Add(-time.Second)
		o.StopAt = &stop
		_, err := c.circuitLocked(circuitID)
		return err
	}
	zero := 0.0
	return c.sendManualTemp(circuitID, 0, &zero, "zero_offset")
}

// reconcile applies the override state machine to a freshly read circuit.
// Commands the device refuses are logged and never fail the read; the next
// read tries again.
func (c *Client) reconcile(circ *model.Circuit) {
	o, ok := c.overrides.Get(circ.ID)
	if !ok {
		return
	}
	now := c.now()
	d := override.Decide(o, circ.TargetTemperatureRaw, now, override.CheckDelay)

	if d.ShowOverride {
		t := o.Temperature
		circ.TargetTemperature = &t
	}
	if d.ShowScheduled {
		// The device may still be applying the zero offset; report the
		// state it is converging to rather than the stale offset.
		zero := 0.0
		circ.UserOffset = &zero
		if circ.TargetTemperatureRaw != nil {
			t := *circ.TargetTemperatureRaw
			circ.TargetTemperature = &t
		}
	}

	switch d.Command {
	case override.CommandSetTarget:
		if d.StampLastSet {
			// Stamped before sending: the unit is slow and a failed send
			// must not cause a rapid re-send loop. Not persisted, losing
			// it on restart only costs one extra command.
			o.LastSet = now
		}
		if circ.UserOffset == nil {
			log.Debug().Int("circuit", circ.ID).Msg("User offset unreadable, skipping override re-apply")
			break
		}
		current := *circ.TargetTemperatureRaw - *circ.UserOffset
		log.Debug().Int("circuit", circ.ID).Float64("want", o.Temperature).Float64("reported", *circ.TargetTemperatureRaw).Msg("Override target drifted, re-applying")
		if err := c.sendManualTemp(circ.ID, o.Temperature, &current, "set_target"); err != nil {
			log.Warn().Err(err).Int("circuit", circ.ID).Msg("Could not re-apply override")
		}
	case override.CommandZeroOffset:
		log.Debug().Int("circuit", circ.ID).Msg("Override expired, setting zero offset")
		zero := 0.0
		if err := c.sendManualTemp(circ.ID, 0, &zero, "zero_offset"); err != nil {
			log.Warn().Err(err).Int("circuit", circ.ID).Msg("Could not zero offset for expired override")
			break
		}
		if d.MarkDisabled {
			t := now
			o.DisabledAt = &t
			c.persistOverrides()
		}
	}

	if d.Delete {
		c.overrides.Delete(circ.ID)
		c.persistOverrides()
	}
}

// persistOverrides writes the override map through the store. Failures are
// logged and never corrupt the in-memory state.
func (c *Client) persistOverrides() {
	if c.store == nil {
		log.Warn().Msg("No override store configured, overrides will not survive a restart")
		return
	}
	if err := c.store.Save(c.overrides.Records()); err != nil {
		log.Warn().Err(err).Msg("Could not persist overrides")
	}
}
