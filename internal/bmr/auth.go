package bmr

import (
	"fmt"
	"strings"
)

// LoginHash obfuscates a credential the way the controller's login form
// does: each character's code point XORed with the day of month shifted
// left twice, rendered as two uppercase hex digits. The result changes
// every day, which is the closest thing the device has to a challenge.
func LoginHash(value string, day int) string {
	var b strings.Builder
	for _, c := range value {
		fmt.Fprintf(&b, "%02X", int(c)^(day<<2))
	}
	return b.String()
}
