package bmr

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gobmr/gobmr/internal/model"
	"github.com/gobmr/gobmr/internal/wire"
)

// ScheduleNames returns the schedule name slots in id order.
func (c *Client) ScheduleNames() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return readCached(c, "listOfModes", "/listOfModes", paramPlus(), func(text string) ([]string, error) {
		return wire.DecodeNameList(text), nil
	})
}

// Schedule loads one schedule definition.
func (c *Client) Schedule(id int) (model.Schedule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	form := url.Values{}
	form.Set("modeID", fmt.Sprintf("%02d", id))
	return readCached(c, "loadMode/"+strconv.Itoa(id), "/loadMode", form, func(text string) (model.Schedule, error) {
		return wire.DecodeSchedule(id, text)
	})
}

// SaveSchedule writes a schedule definition. The timetable must start at
// 00:00 and hold at most eight entries; anything else is rejected before
// touching the device.
func (c *Client) SaveSchedule(s model.Schedule) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, err := wire.EncodeSchedule(s.ID, s.Name, s.Timetable)
	if err != nil {
		return err
	}
	err = c.postCommand("/saveMode", "modeSettings", payload)
	c.journalCommand("save_schedule", -1, float64(s.ID), err == nil)
	return err
}

// DeleteSchedule removes a schedule definition from the controller.
func (c *Client) DeleteSchedule(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.postCommand("/deleteMode", "modeID", fmt.Sprintf("%02d", id))
	c.journalCommand("delete_schedule", -1, float64(id), err == nil)
	return err
}

// CircuitSchedules loads which schedule runs on which day for a circuit.
func (c *Client) CircuitSchedules(circuitID int) (model.CircuitSchedules, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.circuitSchedulesLocked(circuitID)
}

func (c *Client) circuitSchedulesLocked(circuitID int) (model.CircuitSchedules, error) {
	form := url.Values{}
	form.Set("roomID", fmt.Sprintf("%02d", circuitID))
	return readCached(c, "roomSettings/"+strconv.Itoa(circuitID), "/roomSettings", form, func(text string) (model.CircuitSchedules, error) {
		return wire.DecodeCircuitSchedules(text)
	})
}

// SetCircuitSchedules assigns day schedules to a circuit, up to 21 days.
// Gaps may only trail, never sit between assigned days.
func (c *Client) SetCircuitSchedules(circuitID int, daySchedules []int, startingDay int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, err := wire.EncodeCircuitSchedules(circuitID, daySchedules, startingDay)
	if err != nil {
		return err
	}
	err = c.postCommand("/saveAssignmentModes", "roomSettings", payload)
	c.journalCommand("circuit_schedules", circuitID, float64(startingDay), err == nil)
	return err
}
