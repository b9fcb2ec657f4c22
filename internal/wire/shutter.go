package wire

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gobmr/gobmr/internal/model"
)

// DecodeVentilation parses a /rekuperaceStatus response: 3-digit power
// percentage, two padding bytes, 4-digit CO2 ppm.
func DecodeVentilation(text string) (model.Ventilation, error) {
	if len(text) < 9 {
		return model.Ventilation{}, protocolErr(text)
	}
	power, err1 := strconv.Atoi(strings.TrimSpace(text[0:3]))
	ppm, err2 := strconv.Atoi(strings.TrimSpace(text[5:9]))
	if err1 != nil || err2 != nil {
		return model.Ventilation{}, protocolErr(text)
	}
	return model.Ventilation{Power: power, PPM: ppm}, nil
}

// DecodeShutter parses a /wholeRollerShutter response: an enabled byte
// (unused), a 13-byte name, a single position digit and a 2-digit tilt.
func DecodeShutter(id int, text string) (model.Shutter, error) {
	if len(text) < 17 {
		return model.Shutter{}, protocolErr(text)
	}
	pos, err1 := strconv.Atoi(text[14:15])
	tilt, err2 := strconv.Atoi(strings.TrimSpace(text[15:17]))
	if err1 != nil || err2 != nil {
		return model.Shutter{}, protocolErr(text)
	}
	s := model.Shutter{
		ID:   id,
		Name: strings.TrimSpace(text[1:14]),
		Tilt: tilt,
	}
	switch pos {
	case 0:
		s.Position = model.ShutterOpen
	case 1:
		s.Position = model.ShutterClosed
	case 2:
		s.Position = model.ShutterSits
	case 3:
		s.Position = model.ShutterHalf
	default:
		return model.Shutter{}, protocolErr(text)
	}
	return s, nil
}

// EncodeShutterChange renders the /saveManualChange payload from
// percent-open position and tilt. The device's position column is a coarse
// 4-state digit (0 open, 1 closed, 2 sits, 3 half); tilt maps inverted onto
// 0..10 motor steps.
func EncodeShutterChange(id, position, tilt int) (string, error) {
	if id < 0 || id > 32 {
		return "", validationErr("shutter id %d out of range [0, 32]", id)
	}
	if position < 0 || position > 100 {
		return "", validationErr("shutter position %d out of range [0, 100]", position)
	}
	if tilt < 0 || tilt > 100 {
		return "", validationErr("shutter tilt %d out of range [0, 100]", tilt)
	}
	pos := 1
	switch {
	case position > 90:
		pos = 0
	case position > 45:
		pos = 3
	case position > 15:
		pos = 2
	}
	return fmt.Sprintf("%02d%1d%02d", id, pos, (100-tilt)/10), nil
}
