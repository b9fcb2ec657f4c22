package override

import "time"

// CommandKind says what, if anything, the client must send to the device as
// the result of one reconciliation step.
type CommandKind int

const (
	CommandNone CommandKind = iota
	// CommandSetTarget re-issues the offset command for the override's
	// target temperature.
	CommandSetTarget
	// CommandZeroOffset hands the circuit back to its schedule.
	CommandZeroOffset
)

// Decision is the outcome of one reconciliation step for one circuit.
//
// Decide only decides; the caller executes Command, stamps LastSet before
// issuing a set-target command, stamps DisabledAt after a successful
// zero-offset command, and persists on MarkDisabled and Delete. Keeping
// execution out of here keeps the state machine testable without a device.
type Decision struct {
	Command CommandKind
	// StampLastSet: record the attempt time before issuing the command, so
	// a dropped command is not retried until the check delay has passed.
	StampLastSet bool
	// MarkDisabled: after the zero-offset command succeeds, set DisabledAt
	// and persist.
	MarkDisabled bool
	// Delete: the grace period is over, remove the entry and persist.
	Delete bool
	// ShowOverride: report the override temperature as the circuit's target
	// regardless of what the lagging device says.
	ShowOverride bool
	// ShowScheduled: report zero offset and the raw scheduled target, the
	// state the device is converging to after expiry.
	ShowScheduled bool
}

// Decide computes the transition for one circuit read. rawTarget is the
// device-reported target, nil when that field failed to decode; with no
// usable target there is nothing to reconcile against and the read is left
// untouched. Decide never mutates o.
func Decide(o *Override, rawTarget *float64, now time.Time, checkDelay time.Duration) Decision {
	var d Decision
	if rawTarget == nil {
		return d
	}

	if o.StopAt == nil || o.StopAt.After(now) {
		// Active: the caller sees the override's value even while the
		// device is still catching up.
		d.ShowOverride = true
		if *rawTarget != o.Temperature && now.Sub(o.LastSet) > checkDelay {
			d.Command = CommandSetTarget
			d.StampLastSet = true
		}
		return d
	}

	// Expired: reporting flips to the schedule immediately, the device
	// follows once the zero-offset command lands.
	d.ShowScheduled = true
	if o.DisabledAt == nil {
		d.Command = CommandZeroOffset
		d.MarkDisabled = true
	} else if now.Sub(*o.DisabledAt) > checkDelay {
		d.Delete = true
	}
	return d
}
