package wire

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gobmr/gobmr/internal/model"
)

// Low mode datetimes travel without a separator between date and time.
const lowModeTimeLayout = "2006-01-0215:04"

// DecodeSummerMode parses a /loadSummerMode response. The wire sense is
// inverted for historical firmware reasons: "0" means summer mode is on.
func DecodeSummerMode(text string) (bool, error) {
	v, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return false, protocolErr(text)
	}
	return v == 0, nil
}

// EncodeSummerMode renders the /saveSummerMode payload, keeping the wire
// inversion: on is sent as "0".
func EncodeSummerMode(on bool) string {
	if on {
		return "0"
	}
	return "1"
}

// DecodeLowMode parses a /loadLows response: a 3-digit temperature followed
// by optional 15-char start and end datetimes. Low mode is enabled exactly
// when the start datetime is present.
func DecodeLowMode(text string) (model.LowMode, error) {
	if len(text) < 3 || !isDigits(text[0:3]) {
		return model.LowMode{}, protocolErr(text)
	}
	temp, _ := strconv.Atoi(text[0:3])
	lm := model.LowMode{Temperature: temp}
	if len(text) >= 18 {
		if t, err := time.Parse(lowModeTimeLayout, text[3:18]); err == nil {
			lm.Enabled = true
			lm.StartDate = &t
		}
	}
	if lm.Enabled && len(text) >= 33 {
		if t, err := time.Parse(lowModeTimeLayout, text[18:33]); err == nil {
			lm.EndDate = &t
		}
	}
	return lm, nil
}

// EncodeLowMode renders the /lowSave payload. Disabling keeps the
// temperature column but blanks both datetime columns.
func EncodeLowMode(enabled bool, temperature int, start, end *time.Time) string {
	blank := strings.Repeat(" ", 15)
	s, e := blank, blank
	if enabled && start != nil {
		s = start.Format(lowModeTimeLayout)
	}
	if enabled && end != nil {
		e = end.Format(lowModeTimeLayout)
	}
	return fmt.Sprintf("%03d%s%s", temperature, s, e)
}

// DecodeHDO reports whether the low-tariff grid signal is active.
func DecodeHDO(text string) bool {
	return text == "1"
}
