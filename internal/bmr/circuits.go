package bmr

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gobmr/gobmr/internal/model"
	"github.com/gobmr/gobmr/internal/wire"
)

// NumCircuits returns the number of heating circuits. Cached without
// expiry; the count cannot change while talking to one controller.
func (c *Client) NumCircuits() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.numCircuitsLocked()
}

func (c *Client) numCircuitsLocked() (int, error) {
	if n, ok := c.numCircuits.Get(); ok {
		return n, nil
	}
	var n int
	err := c.policy.Do(func() error {
		text, err := c.post("/numOfRooms", paramPlus())
		if err != nil {
			return err
		}
		n, err = wire.DecodeCount(text)
		return err
	})
	if err != nil {
		return 0, err
	}
	c.numCircuits.Set(n)
	return n, nil
}

// CircuitNames returns the names of all circuits in id order.
func (c *Client) CircuitNames() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.circuitNamesLocked()
}

func (c *Client) circuitNamesLocked() ([]string, error) {
	if names, ok := c.circuitNames.Get(); ok {
		return names, nil
	}
	var names []string
	err := c.policy.Do(func() error {
		text, err := c.post("/listOfRooms", paramPlus())
		if err != nil {
			return err
		}
		names = wire.DecodeNameList(text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	c.circuitNames.Set(names)
	return names, nil
}

// UniqueID derives a stable identifier for the controller. The device
// exposes nothing like a serial number, so it is a hash over the circuit
// names, which do not usually change.
func (c *Client) UniqueID() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.uniqueID.Get(); ok {
		return id, nil
	}
	names, err := c.circuitNamesLocked()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(strings.Join(names, "\x00")))
	id := hex.EncodeToString(sum[:])[:8]
	c.uniqueID.Set(id)
	return id, nil
}

// Circuit reads one circuit's status and reconciles any temperature
// override against it. While an override is active the returned target
// temperature is the override's; reconciliation may issue commands to the
// device as a side effect.
func (c *Client) Circuit(id int) (model.Circuit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.circuitLocked(id)
}

func (c *Client) circuitLocked(id int) (model.Circuit, error) {
	circ, err := c.circuitRaw(id)
	if err != nil {
		return model.Circuit{}, err
	}
	c.reconcile(&circ)
	return circ, nil
}

// circuitRaw reads and decodes a circuit without touching overrides.
func (c *Client) circuitRaw(id int) (model.Circuit, error) {
	form := url.Values{}
	form.Set("param", strconv.Itoa(id))
	return readCached(c, "wholeRoom/"+strconv.Itoa(id), "/wholeRoom", form, func(text string) (model.Circuit, error) {
		return wire.DecodeCircuit(id, text)
	})
}

// SetManualTemp points a circuit at a new target temperature by sending
// the offset between the new target and the scheduled one. When
// currentTarget is nil the scheduled temperature is read from the device
// first; if its fields are unreadable the offset falls back to zero.
func (c *Client) SetManualTemp(circuitID int, newTarget float64, currentTarget *float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendManualTemp(circuitID, newTarget, currentTarget, "set_target")
}

func (c *Client) sendManualTemp(circuitID int, newTarget float64, currentTarget *float64, kind string) error {
	var current float64
	if currentTarget != nil {
		current = *currentTarget
	} else {
		circ, err := c.circuitRaw(circuitID)
		if err != nil {
			return err
		}
		if circ.TargetTemperatureRaw != nil && circ.UserOffset != nil {
			// The reported target already contains the user offset.
			current = *circ.TargetTemperatureRaw - *circ.UserOffset
		} else {
			current = newTarget
		}
	}
	offset := newTarget - current
	log.Debug().Int("circuit", circuitID).Float64("target", newTarget).Float64("from", current).Float64("offset", offset).Msg("Setting manual temperature")
	err := c.postCommand("/saveManualTemp", "manualTemp", wire.EncodeManualTemp(circuitID, offset))
	c.journalCommand(kind, circuitID, newTarget, err == nil)
	return err
}
