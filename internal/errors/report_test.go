package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvid-lang/corvidc/internal/token"
)

func TestReportRoundTripsThroughError(t *testing.T) {
	rep := New(PAR001, "parser", "unexpected token").
		WithSpan(token.Span{Start: token.Pos{File: "a.cv", Line: 1, Column: 1}}).
		WithData(map[string]any{"found": "}"})

	err := WrapReport(rep)
	require.Error(t, err)

	got, ok := AsReport(err)
	require.True(t, ok)
	assert.Equal(t, PAR001, got.Code)
	assert.Equal(t, "a.cv", got.Span.Start.File)
}

func TestWrapReportNilIsNilError(t *testing.T) {
	assert.NoError(t, WrapReport(nil))
}

func TestAsReportFalseForPlainError(t *testing.T) {
	_, ok := AsReport(assertErr{})
	assert.False(t, ok)
}

type assertErr struct{}

func (assertErr) Error() string { return "plain" }

func TestToJSONDeterministicKeyOrder(t *testing.T) {
	rep := New(LOW005, "lower", "conflicting repr").
		WithData(map[string]any{"z": 1, "a": 2})
	s, err := rep.ToJSON(false)
	require.NoError(t, err)
	assert.Contains(t, s, `"a":2`)
	assert.Less(t, indexOf(s, `"a":2`), indexOf(s, `"z":1`))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
