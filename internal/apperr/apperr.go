package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error at the point of failure so that callers never
// have to inspect message text.
type Kind int

const (
	Internal Kind = iota
	InvalidInput
	NotFound
	Unauthenticated
	Forbidden
	Conflict
	InsufficientStock
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "invalid_input"
	case NotFound:
		return "not_found"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case Conflict:
		return "conflict"
	case InsufficientStock:
		return "insufficient_stock"
	default:
		return "internal"
	}
}

// Error is a kind-tagged error. Field names the form field the failure
// belongs to, when there is one.
type Error struct {
	Kind  Kind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WithField tags a validation failure with the field it belongs to.
func WithField(kind Kind, field, msg string) *Error {
	return &Error{Kind: kind, Field: field, Msg: msg}
}

func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// StockViolation is one checkout line whose requested quantity exceeds the
// live stock.
type StockViolation struct {
	Title     string `json:"title"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockError carries every violated line of a checkout, not just the first.
type StockError struct {
	Violations []StockViolation
}

func (e *StockError) Error() string {
	var b strings.Builder
	b.WriteString("insufficient stock for the following items:")
	for _, v := range e.Violations {
		fmt.Fprintf(&b, " %s: requested %d, available %d;", v.Title, v.Requested, v.Available)
	}
	return strings.TrimSuffix(b.String(), ";")
}

// CartStockError reports a cart add that would exceed live stock.
type CartStockError struct {
	Available int `json:"available"`
	InCart    int `json:"already_in_cart"`
}

func (e *CartStockError) Error() string {
	if e.InCart > 0 {
		return fmt.Sprintf("only %d items available, you have %d in cart", e.Available, e.InCart)
	}
	return fmt.Sprintf("only %d items available in stock", e.Available)
}

// KindOf reports the kind of err, Internal when it carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var se *StockError
	if errors.As(err, &se) {
		return InsufficientStock
	}
	var ce *CartStockError
	if errors.As(err, &ce) {
		return InsufficientStock
	}
	return Internal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
