package wire

import "fmt"

// ProtocolError means a device response did not match the expected shape at
// all. Individual unparseable numeric fields inside an otherwise well-formed
// response are tolerated and never produce this error.
type ProtocolError struct {
	Raw string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("malformed device response: %q", e.Raw)
}

// ValidationError rejects caller-supplied values outside the protocol's
// encodable range, before anything is sent to the device.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid argument: " + e.Reason
}

func protocolErr(raw string) error {
	return &ProtocolError{Raw: raw}
}

func validationErr(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
