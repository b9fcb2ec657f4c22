package bmr

import (
	"fmt"
	"time"

	"github.com/gobmr/gobmr/internal/model"
	"github.com/gobmr/gobmr/internal/wire"
)

// SummerMode reports whether summer mode is active. The wire value is
// inverted ("0" means on); the codec keeps that quirk internal.
func (c *Client) SummerMode() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summerModeLocked()
}

func (c *Client) summerModeLocked() (bool, error) {
	return readCached(c, "loadSummerMode", "/loadSummerMode", paramPlus(), func(text string) (bool, error) {
		return wire.DecodeSummerMode(text)
	})
}

// SetSummerMode enables or disables summer mode for the whole unit.
func (c *Client) SetSummerMode(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.postCommand("/saveSummerMode", "summerMode", wire.EncodeSummerMode(on))
	c.journalCommand("summer_mode", -1, boolValue(on), err == nil)
	return err
}

// SummerModeAssignments reports which circuits summer mode affects, in
// circuit id order.
func (c *Client) SummerModeAssignments() ([]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.summerAssignmentsLocked()
}

func (c *Client) summerAssignmentsLocked() ([]bool, error) {
	return readCached(c, "letoLoadRooms", "/letoLoadRooms", paramPlus(), wire.DecodeAssignments)
}

// SetSummerModeAssignments assigns or removes the listed circuits to/from
// summer mode, leaving all other circuits as they are. Returns the full
// vector as written.
func (c *Client) SetSummerModeAssignments(circuitIDs []int, assigned bool) ([]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, err := c.summerAssignmentsLocked()
	if err != nil {
		return nil, err
	}
	return c.writeAssignments("/letoSaveRooms", "summer_assignments", current, circuitIDs, assigned)
}

// LowModeAssignments reports which circuits low mode affects.
func (c *Client) LowModeAssignments() ([]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lowAssignmentsLocked()
}

func (c *Client) lowAssignmentsLocked() ([]bool, error) {
	return readCached(c, "lowLoadRooms", "/lowLoadRooms", paramPlus(), wire.DecodeAssignments)
}

// SetLowModeAssignments assigns or removes the listed circuits to/from low
// mode, leaving all other circuits as they are.
func (c *Client) SetLowModeAssignments(circuitIDs []int, assigned bool) ([]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	current, err := c.lowAssignmentsLocked()
	if err != nil {
		return nil, err
	}
	return c.writeAssignments("/lowSaveRooms", "low_assignments", current, circuitIDs, assigned)
}

func (c *Client) writeAssignments(endpoint, kind string, current []bool, circuitIDs []int, assigned bool) ([]bool, error) {
	for _, id := range circuitIDs {
		if id < 0 || id >= len(current) {
			return nil, &wire.ValidationError{Reason: fmt.Sprintf("circuit id %d outside assignment vector of length %d", id, len(current))}
		}
		current[id] = assigned
	}
	err := c.postCommand(endpoint, "value", wire.EncodeAssignments(current))
	c.journalCommand(kind, -1, boolValue(assigned), err == nil)
	if err != nil {
		return nil, err
	}
	return current, nil
}

// LowMode returns the unit-wide low mode state.
func (c *Client) LowMode() (model.LowMode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lowModeLocked()
}

func (c *Client) lowModeLocked() (model.LowMode, error) {
	return readCached(c, "loadLows", "/loadLows", paramPlus(), func(text string) (model.LowMode, error) {
		return wire.DecodeLowMode(text)
	})
}

// SetLowMode enables or disables low mode. A nil temperature keeps the
// device's current low temperature, a nil start means now, and a non-nil
// end schedules the mode to lift itself.
func (c *Client) SetLowMode(enabled bool, temperature *int, start, end *time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var temp int
	if temperature != nil {
		temp = *temperature
	} else {
		lm, err := c.lowModeLocked()
		if err != nil {
			return err
		}
		temp = lm.Temperature
	}
	if start == nil {
		now := c.now()
		start = &now
	}
	err := c.postCommand("/lowSave", "lowData", wire.EncodeLowMode(enabled, temp, start, end))
	c.journalCommand("low_mode", -1, float64(temp), err == nil)
	return err
}

// HDO reports whether the low-tariff grid signal is currently active.
func (c *Client) HDO() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hdoLocked()
}

func (c *Client) hdoLocked() (bool, error) {
	return readCached(c, "loadHDO", "/loadHDO", paramPlus(), func(text string) (bool, error) {
		return wire.DecodeHDO(text), nil
	})
}
