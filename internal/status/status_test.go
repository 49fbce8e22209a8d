package status

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyStatusIsOK(t *testing.T) {
	var s Status
	assert.True(t, s.OK())
	assert.NoError(t, s.Err())
	assert.Equal(t, "ok", s.String())
}

func TestCombineIdentityAndAssociativity(t *testing.T) {
	a := New(ShapeMismatch, "a", "rows")
	b := New(UnsupportedLayout, "b", "")
	c := New(MissingRequiredInput, "c", "")

	assert.Equal(t, a, a.Combine(OK))
	assert.Equal(t, a, OK.Combine(a))

	left := a.Combine(b).Combine(c)
	right := a.Combine(b.Combine(c))
	assert.Equal(t, left.Errors(), right.Errors())
	assert.Len(t, left.Errors(), 3)
}

func TestCombineDoesNotAlias(t *testing.T) {
	a := New(ShapeMismatch, "a", "")
	ab := a.Combine(New(ShapeMismatch, "b", ""))
	ac := a.Combine(New(ShapeMismatch, "c", ""))

	require.Len(t, ab.Errors(), 2)
	require.Len(t, ac.Errors(), 2)
	assert.Equal(t, "b", ab.Errors()[1].Argument)
	assert.Equal(t, "c", ac.Errors()[1].Argument)
}

func TestAdd(t *testing.T) {
	var s Status
	s.Add(New(ShapeMismatch, "q", "expected %d rows, got %d", 3, 4))
	s.Add(OK)
	s.Add(New(UnsupportedLayout, "r", ""))

	require.False(t, s.OK())
	assert.True(t, s.Has(ShapeMismatch))
	assert.True(t, s.Has(UnsupportedLayout))
	assert.False(t, s.Has(MissingRequiredInput))
	assert.Equal(t, "expected 3 rows, got 4", s.Errors()[0].Details)
}

func TestErrMatchesKinds(t *testing.T) {
	s := New(ShapeMismatch, "q", "").Combine(New(MissingRequiredInput, "data", ""))
	err := s.Err()
	require.Error(t, err)

	assert.True(t, errors.Is(err, ShapeMismatch))
	assert.True(t, errors.Is(err, MissingRequiredInput))
	assert.False(t, errors.Is(err, AllocationFailure))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "q", e.Argument)
}

func TestFromErrorRoundTrip(t *testing.T) {
	s := New(IncorrectArgumentCount, "partial", "")
	assert.Equal(t, s.Errors(), Of(s.Err()).Errors())

	plain := Of(errors.New("singular matrix"))
	require.Len(t, plain.Errors(), 1)
	assert.Equal(t, KernelComputationFailure, plain.Errors()[0].Kind)

	assert.True(t, FromError(AllocationFailure, "x", nil).OK())
}
