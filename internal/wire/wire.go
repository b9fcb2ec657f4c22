// Package wire encodes command parameters into the HC64 controller's
// fixed-width ASCII payloads and decodes its fixed-offset responses into
// typed records. Nothing here touches the network.
package wire

import (
	"strconv"
	"strings"
)

// Names travel in fixed 13-byte slots padded with spaces.
const nameSlot = 13

// DecodeCount parses the plain decimal responses of /numOfRooms and
// /numOfRollerShutters.
func DecodeCount(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, protocolErr(text)
	}
	return n, nil
}

// DecodeNameList splits a flat response into 13-byte name slots, one per
// circuit/shutter/schedule, trimmed of padding.
func DecodeNameList(text string) []string {
	var names []string
	for i := 0; i < len(text); i += nameSlot {
		end := i + nameSlot
		if end > len(text) {
			end = len(text)
		}
		names = append(names, strings.TrimSpace(text[i:end]))
	}
	return names
}

// DecodeAssignments parses the one-digit-per-circuit vectors returned by
// /letoLoadRooms, /lowLoadRooms and /windSensorStatus.
func DecodeAssignments(text string) ([]bool, error) {
	out := make([]bool, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < '0' || c > '9' {
			return nil, protocolErr(text)
		}
		out = append(out, c != '0')
	}
	return out, nil
}

// EncodeAssignments renders an assignment vector back to its wire form.
func EncodeAssignments(v []bool) string {
	var b strings.Builder
	for _, on := range v {
		if on {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
