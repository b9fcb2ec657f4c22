package bmr

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gobmr/gobmr/internal/model"
)

// AllData assembles one full snapshot of the unit. Circuits are read first
// and a circuit failure fails the snapshot; every sub-fetch after them
// degrades to a nil field on error, so one flaky endpoint cannot blank the
// rest. Summer and low mode assignments are merged into the circuit
// records by index.
func (c *Client) AllData() (model.AllData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, err := c.numCircuitsLocked()
	if err != nil {
		return model.AllData{}, err
	}
	all := model.AllData{Circuits: make([]model.Circuit, 0, n)}
	for id := 0; id < n; id++ {
		circ, err := c.circuitLocked(id)
		if err != nil {
			return model.AllData{}, fmt.Errorf("circuit %d: %w", id, err)
		}
		all.Circuits = append(all.Circuits, circ)
	}

	if hdo, err := c.hdoLocked(); err == nil {
		all.HDO = &hdo
	} else {
		log.Warn().Err(err).Msg("Could not read HDO status")
	}
	if vent, err := c.ventilationLocked(); err == nil {
		all.Ventilation = &vent
	} else {
		log.Warn().Err(err).Msg("Could not read ventilation status")
	}
	if summer, err := c.summerModeLocked(); err == nil {
		all.SummerMode = &summer
	} else {
		log.Warn().Err(err).Msg("Could not read summer mode")
	}
	if lm, err := c.lowModeLocked(); err == nil {
		all.LowMode = &lm
	} else {
		log.Warn().Err(err).Msg("Could not read low mode")
	}

	if assignments, err := c.summerAssignmentsLocked(); err == nil {
		for i := range all.Circuits {
			if i < len(assignments) {
				v := assignments[i]
				all.Circuits[i].SummerAssigned = &v
			}
		}
	} else {
		log.Warn().Err(err).Msg("Could not read summer mode assignments")
	}
	if assignments, err := c.lowAssignmentsLocked(); err == nil {
		for i := range all.Circuits {
			if i < len(assignments) {
				v := assignments[i]
				all.Circuits[i].LowAssigned = &v
			}
		}
	} else {
		log.Warn().Err(err).Msg("Could not read low mode assignments")
	}

	return all, nil
}
