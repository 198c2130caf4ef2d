package gsmp

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InvalidModelError signals a malformed model at construction time:
// alarm overlap, malformed distribution parameters, or an empty
// event active set.
type InvalidModelError struct {
	Reason string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("invalid ACTMC model: %s", e.Reason)
}

// UnsupportedDistributionError signals an alarm event using a
// distribution family the reduction path does not support (Weibull, or
// any future unsupported family).
type UnsupportedDistributionError struct {
	Family  Family
	EventID string
}

func (e *UnsupportedDistributionError) Error() string {
	return fmt.Sprintf("event %q uses unsupported alarm distribution %s", e.EventID, e.Family)
}

// InvalidPotatoDistributionError signals that an Exponential event was
// passed where a non-exponential alarm was expected - exponential
// events are ordinary CTMC transitions, not potatoes.
type InvalidPotatoDistributionError struct {
	EventID string
}

func (e *InvalidPotatoDistributionError) Error() string {
	return fmt.Sprintf("event %q is Exponential and cannot be treated as a potato alarm", e.EventID)
}

// NumericOverflowError signals that Fox-Glynn truncation could not be
// determined within the configured [underflow, overflow] guards. It
// carries enough context for the caller to widen precision and retry.
type NumericOverflowError struct {
	EventID  string
	Entrance int
	Kappa    decimal.Decimal
	Cause    error
}

func (e *NumericOverflowError) Error() string {
	return fmt.Sprintf("numeric overflow in Fox-Glynn for event %q (entrance=%d, kappa=%s): %v",
		e.EventID, e.Entrance, e.Kappa, e.Cause)
}

func (e *NumericOverflowError) Unwrap() error { return e.Cause }

// UnsolvableError signals that the downstream DTMC solver failed to
// converge.
type UnsolvableError struct {
	Reason string
}

func (e *UnsolvableError) Error() string {
	return fmt.Sprintf("DTMC solver did not converge: %s", e.Reason)
}
