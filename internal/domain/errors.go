package domain

import (
	"errors"
	"fmt"
)

// Failure kinds. Callers test with errors.Is; the wrapped Fault carries the
// user-displayable text.
var (
	ErrProductNotFound        = errors.New("product not found")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrItemNotInCart          = errors.New("item not in cart")
	ErrEmptyCart              = errors.New("empty cart")
	ErrInventoryInconsistency = errors.New("inventory inconsistency")
	ErrOrderNotFound          = errors.New("order not found")
	ErrNoCancellableOrder     = errors.New("no cancellable order")
	ErrIllegalTransition      = errors.New("illegal status transition")
)

// Fault is an expected, recoverable domain failure. Its message is safe to show
// to the end user verbatim; anything that is not a Fault is an infrastructure
// error and must be masked before it crosses an external boundary.
type Fault struct {
	kind error
	msg  string
}

func (f *Fault) Error() string { return f.msg }
func (f *Fault) Unwrap() error { return f.kind }

// Faultf builds a Fault of the given kind with a formatted user message.
func Faultf(kind error, format string, args ...any) error {
	return &Fault{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// IsFault reports whether err is a domain failure whose message may be shown
// to the user.
func IsFault(err error) bool {
	var f *Fault
	return errors.As(err, &f)
}
