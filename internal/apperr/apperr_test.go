package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, NotFound, KindOf(New(NotFound, "missing")))
	require.Equal(t, Conflict, KindOf(WithField(Conflict, "email", "taken")))
	require.Equal(t, Internal, KindOf(errors.New("plain")))
	require.Equal(t, Internal, KindOf(Wrap(Internal, "db down", errors.New("dial"))))
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(Forbidden, "nope"))
	require.Equal(t, Forbidden, KindOf(err))
	require.True(t, IsKind(err, Forbidden))
	require.False(t, IsKind(nil, Forbidden))
}

func TestStockErrorKindAndMessage(t *testing.T) {
	err := &StockError{Violations: []StockViolation{
		{Title: "boots", Requested: 3, Available: 1},
		{Title: "cap", Requested: 1, Available: 0},
	}}
	require.Equal(t, InsufficientStock, KindOf(err))
	require.Contains(t, err.Error(), "boots: requested 3, available 1")
	require.Contains(t, err.Error(), "cap: requested 1, available 0")

	wrapped := fmt.Errorf("checkout: %w", err)
	var se *StockError
	require.ErrorAs(t, wrapped, &se)
	require.Len(t, se.Violations, 2)
}

func TestCartStockErrorMessages(t *testing.T) {
	require.Equal(t, "only 2 items available, you have 2 in cart",
		(&CartStockError{Available: 2, InCart: 2}).Error())
	require.Equal(t, "only 5 items available in stock",
		(&CartStockError{Available: 5}).Error())
	require.Equal(t, InsufficientStock, KindOf(&CartStockError{}))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("dial tcp")
	err := Wrap(Internal, "db down", cause)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "db down", err.Error())
}
