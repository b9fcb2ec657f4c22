package bmr

import "fmt"

// AuthError means the controller rejected the hashed credentials. Callers
// can match it to prompt for new credentials instead of retrying blindly.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Reason
}

// TransportError covers a failed HTTP exchange with the controller:
// connection errors, timeouts and unexpected status codes.
type TransportError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: controller returned status %d", e.Endpoint, e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }
