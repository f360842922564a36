package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewf(t *testing.T) {
	err := Newf("unit %s: %d symbols", "goog:a.b", 3)
	require.NotNil(t, err)
	assert.Equal(t, "unit goog:a.b: 3 symbols", err.Error())
}

func TestWrapPreservesIdentity(t *testing.T) {
	wrapped := Wrapf(ErrInvalidOracle, "decode %s", "dump.yaml")

	assert.Contains(t, wrapped.Error(), "decode dump.yaml")
	assert.True(t, Is(wrapped, ErrInvalidOracle))
	assert.False(t, Is(wrapped, ErrUnsupportedVersion))
}

type unitError struct {
	unit string
}

func (e *unitError) Error() string {
	return "unit " + e.unit
}

func TestAs(t *testing.T) {
	wrapped := Wrap(&unitError{unit: "a.b"}, "emit")

	var target *unitError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "a.b", target.unit)
}

func TestWithHint(t *testing.T) {
	err := WithHint(ErrUnsupportedVersion, "regenerate the dump with oracle 1.x")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "regenerate the dump with oracle 1.x", hints[0])
	assert.True(t, Is(err, ErrUnsupportedVersion))
}

func TestSentinelHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound bool
		fatal    bool
	}{
		{name: "nil", err: nil},
		{name: "not found", err: NewNotFoundError("unit %s", "goog:x"), notFound: true},
		{name: "fatal graph", err: NewFatalGraphError("module %s has no exports", "m"), fatal: true},
		{name: "wrapped fatal", err: Wrap(NewFatalGraphError("x"), "emit"), fatal: true},
		{name: "unrelated", err: New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsNotFoundError(tt.err))
			assert.Equal(t, tt.fatal, IsFatalGraphError(tt.err))
		})
	}
}

func TestNewInvalidOracleError(t *testing.T) {
	err := NewInvalidOracleError("symbol %q has no kind", "a.B")
	assert.True(t, Is(err, ErrInvalidOracle))
	assert.Contains(t, err.Error(), `symbol "a.B" has no kind`)
}

func TestCombineErrors(t *testing.T) {
	first := New("first")
	second := New("second")
	combined := CombineErrors(first, second)

	assert.True(t, Is(combined, first))
	assert.Equal(t, first, CombineErrors(first, nil))
}
