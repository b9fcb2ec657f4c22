package wire

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// circuitText builds a /wholeRoom response from its fields so tests don't
// have to hand-count byte offsets.
func circuitText(enabled, name, temp, sched, target, offset, maxOffset, heating, window, card, warning, low, summer, cooling string) string {
	return fmt.Sprintf("%1s%-13s%5s%3s%5s%5s%4s%1s%1s%1s%3s%1s%1s%1s",
		enabled, name, temp, sched, target, offset, maxOffset, heating, window, card, warning, low, summer, cooling)
}

func TestDecodeCircuit(t *testing.T) {
	// Sample taken from a real controller response.
	raw := "1Pokoj        021.7202012.0000.000.0000000000"
	require.Len(t, raw, 45)

	c, err := DecodeCircuit(3, raw)
	require.NoError(t, err)

	assert.Equal(t, 3, c.ID)
	assert.True(t, c.Enabled)
	assert.Equal(t, "Pokoj", c.Name)
	require.NotNil(t, c.Temperature)
	assert.Equal(t, 21.7, *c.Temperature)
	require.NotNil(t, c.ScheduledTemperature)
	assert.Equal(t, 202.0, *c.ScheduledTemperature)
	require.NotNil(t, c.TargetTemperature)
	assert.Equal(t, 12.0, *c.TargetTemperature)
	require.NotNil(t, c.TargetTemperatureRaw)
	assert.Equal(t, 12.0, *c.TargetTemperatureRaw)
	require.NotNil(t, c.UserOffset)
	assert.Equal(t, 0.0, *c.UserOffset)
	require.NotNil(t, c.MaxOffset)
	assert.Equal(t, 0.0, *c.MaxOffset)
	assert.False(t, c.Heating)
	assert.False(t, c.Cooling)
	assert.Equal(t, 0, c.Warning)
}

func TestDecodeCircuitFlags(t *testing.T) {
	raw := circuitText("1", "Koupelna", "022.5", "022", "024.0", "001.5", "05.0", "1", "1", "1", "004", "1", "1", "1")
	c, err := DecodeCircuit(0, raw)
	require.NoError(t, err)

	assert.True(t, c.Heating)
	assert.True(t, c.WindowHeating)
	assert.True(t, c.Card)
	assert.True(t, c.LowMode)
	assert.True(t, c.SummerMode)
	assert.True(t, c.Cooling)
	assert.Equal(t, 4, c.Warning)
	require.NotNil(t, c.UserOffset)
	assert.Equal(t, 1.5, *c.UserOffset)
}

func TestDecodeCircuitGarbageFields(t *testing.T) {
	// The controller sometimes fills single fields with NULs or dashes while
	// it is mid-update. Those fields come back unset; the rest still decode.
	raw := circuitText("1", "Loznice", "00\x00\x00\x00", "021", "023.0", "-1-1-", "\x00\x00\x00\x00", "1", "0", "0", "0\x000", "0", "0", "x")
	c, err := DecodeCircuit(2, raw)
	require.NoError(t, err)

	assert.Nil(t, c.Temperature)
	assert.Nil(t, c.UserOffset)
	assert.Nil(t, c.MaxOffset)
	require.NotNil(t, c.TargetTemperature)
	assert.Equal(t, 23.0, *c.TargetTemperature)
	assert.True(t, c.Heating)
	assert.Equal(t, 0, c.Warning)
	assert.False(t, c.Cooling)
}

func TestDecodeCircuitMalformed(t *testing.T) {
	var perr *ProtocolError

	_, err := DecodeCircuit(0, "too short")
	require.Error(t, err)
	assert.ErrorAs(t, err, &perr)

	// Enabled column must be numeric; a non-circuit payload fails outright.
	_, err = DecodeCircuit(0, circuitText("x", "Pokoj", "021.7", "202", "012.0", "000.0", "00.0", "0", "0", "0", "000", "0", "0", "0"))
	require.Error(t, err)
	assert.ErrorAs(t, err, &perr)
}

func TestDecodeCircuitRawTargetIndependent(t *testing.T) {
	raw := circuitText("1", "Byt", "021.0", "021", "021.0", "000.0", "05.0", "0", "0", "0", "000", "0", "0", "0")
	c, err := DecodeCircuit(0, raw)
	require.NoError(t, err)

	// Raw target must be a separate value so override decoration of
	// TargetTemperature cannot leak into it.
	*c.TargetTemperature = 99.0
	assert.Equal(t, 21.0, *c.TargetTemperatureRaw)
}

func TestEncodeManualTemp(t *testing.T) {
	tests := []struct {
		name      string
		circuitID int
		offset    float64
		want      string
	}{
		{"positive offset", 1, 1.5, "010015"},
		{"negative offset", 2, -2.35, "02-023"},
		{"zero offset", 12, 0, "120000"},
		{"truncates beyond tenths", 0, 1.99, "000019"},
		{"negative truncation", 7, -0.05, "07-000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EncodeManualTemp(tt.circuitID, tt.offset))
		})
	}
}
