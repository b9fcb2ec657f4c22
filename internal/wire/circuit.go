package wire

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/gobmr/gobmr/internal/model"
)

// Byte offsets inside a /wholeRoom response.
const (
	posEnabled   = 0
	posName      = 1
	posTemp      = 14
	posScheduled = 19
	posTargetRaw = 22
	posOffset    = 27
	posMaxOffset = 32
	posHeating   = 36
	posWindow    = 37
	posCard      = 38
	posWarning   = 39
	posLow       = 42
	posSummer    = 43
	posCooling   = 44
	circuitLen   = 45
)

// DecodeCircuit parses a /wholeRoom response. The overall shape must match;
// individual numeric fields are allowed to be garbage (the controller
// occasionally emits NULs or truncated numbers mid-update) and decode to
// nil/false/zero instead of failing the read.
func DecodeCircuit(id int, text string) (model.Circuit, error) {
	if len(text) < circuitLen {
		return model.Circuit{}, protocolErr(text)
	}
	enabled, err := strconv.Atoi(text[posEnabled:posName])
	if err != nil {
		return model.Circuit{}, protocolErr(text)
	}

	c := model.Circuit{
		ID:      id,
		Enabled: enabled != 0,
		Name:    strings.TrimRight(text[posName:posTemp], " "),
	}

	c.Temperature = optFloat(id, "temperature", text[posTemp:posScheduled])
	c.ScheduledTemperature = optFloat(id, "scheduled_temperature", text[posScheduled:posTargetRaw])
	c.TargetTemperature = optFloat(id, "target_temperature", text[posTargetRaw:posOffset])
	c.UserOffset = optFloat(id, "user_offset", text[posOffset:posMaxOffset])
	c.MaxOffset = optFloat(id, "max_offset", text[posMaxOffset:posHeating])
	if c.TargetTemperature != nil {
		raw := *c.TargetTemperature
		c.TargetTemperatureRaw = &raw
	}

	c.Heating = optBool(id, "heating", text[posHeating:posWindow])
	c.WindowHeating = optBool(id, "window_heating", text[posWindow:posCard])
	c.Card = optBool(id, "card", text[posCard:posWarning])
	if w, err := strconv.Atoi(strings.TrimSpace(text[posWarning:posLow])); err == nil {
		c.Warning = w
	} else {
		fieldWarn(id, "warning", text[posWarning:posLow])
	}
	c.LowMode = optBool(id, "low_mode", text[posLow:posSummer])
	c.SummerMode = optBool(id, "summer_mode", text[posSummer:posCooling])
	c.Cooling = optBool(id, "cooling", text[posCooling:circuitLen])

	return c, nil
}

// EncodeManualTemp renders the /saveManualTemp payload. The device takes the
// offset in tenths of a degree with a sign column: "-" when negative, "0"
// otherwise. Fractions beyond tenths are truncated, not rounded.
func EncodeManualTemp(circuitID int, offset float64) string {
	sign := "0"
	if offset < 0 {
		sign = "-"
	}
	return fmt.Sprintf("%02d%s%03d", circuitID, sign, int(math.Abs(offset)*10))
}

func optFloat(id int, field, raw string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		fieldWarn(id, field, raw)
		return nil
	}
	return &v
}

func optBool(id int, field, raw string) bool {
	v, err := strconv.Atoi(raw)
	if err != nil {
		fieldWarn(id, field, raw)
		return false
	}
	return v != 0
}

func fieldWarn(id int, field, raw string) {
	log.Debug().Int("circuit", id).Str("field", field).Str("raw", raw).Msg("Unparseable field in circuit status, leaving unset")
}
