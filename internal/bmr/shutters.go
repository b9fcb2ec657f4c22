package bmr

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gobmr/gobmr/internal/model"
	"github.com/gobmr/gobmr/internal/wire"
)

// Ventilation returns the recuperation unit's power and CO2 reading.
func (c *Client) Ventilation() (model.Ventilation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ventilationLocked()
}

func (c *Client) ventilationLocked() (model.Ventilation, error) {
	return readCached(c, "rekuperaceStatus", "/rekuperaceStatus", paramPlus(), func(text string) (model.Ventilation, error) {
		return wire.DecodeVentilation(text)
	})
}

// NumShutters returns the number of installed roller shutters.
func (c *Client) NumShutters() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readCached(c, "numOfRollerShutters", "/numOfRollerShutters", paramPlus(), wire.DecodeCount)
}

// ShutterNames returns the roller shutter names in id order.
func (c *Client) ShutterNames() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readCached(c, "listOfRollerShutters", "/listOfRollerShutters", paramPlus(), func(text string) ([]string, error) {
		return wire.DecodeNameList(text), nil
	})
}

// WindSensors returns the per-sensor wind alarm flags.
func (c *Client) WindSensors() ([]bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readCached(c, "windSensorStatus", "/windSensorStatus", paramPlus(), wire.DecodeAssignments)
}

// Shutter reads one roller shutter's position and tilt.
func (c *Client) Shutter(id int) (model.Shutter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id < 0 || id > 32 {
		return model.Shutter{}, &wire.ValidationError{Reason: fmt.Sprintf("shutter id %d out of range [0, 32]", id)}
	}
	form := url.Values{}
	form.Set("rollerShutter", strconv.Itoa(id))
	return readCached(c, "wholeRollerShutter/"+strconv.Itoa(id), "/wholeRollerShutter", form, func(text string) (model.Shutter, error) {
		return wire.DecodeShutter(id, text)
	})
}

// SetShutterPosition drives one shutter to a percent-open position and
// tilt. Out-of-range arguments are rejected before touching the device.
func (c *Client) SetShutterPosition(id, position, tilt int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, err := wire.EncodeShutterChange(id, position, tilt)
	if err != nil {
		return err
	}
	err = c.postCommand("/saveManualChange", "manualChange", payload)
	c.journalCommand("shutter", id, float64(position), err == nil)
	return err
}
