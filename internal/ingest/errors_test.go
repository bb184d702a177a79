package ingest

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Is(t *testing.T) {
	err := formatError(FieldGenotype, "1", "cannot be parsed")
	assert.ErrorIs(t, err, ErrFormat)
	assert.NotErrorIs(t, err, ErrLogic)
	assert.Equal(t, `format error (value "1"): FORMAT/GT: cannot be parsed`, err.Error())

	wrapped := fmt.Errorf("outer: %w", err)
	assert.ErrorIs(t, wrapped, ErrFormat)
}

func TestWithPhase(t *testing.T) {
	assert.NoError(t, WithPhase("reading input", KindIO, nil))

	err := WithPhase("transforming record 1:100 A>G", KindIO, formatError(FieldGenotype, "x", "cannot be parsed"))
	assert.ErrorIs(t, err, ErrFormat, "existing kind kept")
	assert.Contains(t, err.Error(), "transforming record 1:100 A>G: format error")

	// An existing phase is not overwritten.
	again := WithPhase("other", KindIO, err)
	assert.Equal(t, err.Error(), again.Error())

	plain := WithPhase("writing record", KindIO, errors.New("disk full"))
	assert.ErrorIs(t, plain, ErrIO)
	assert.Equal(t, "writing record: i/o error: disk full", plain.Error())

	var ie *Error
	require.ErrorAs(t, plain, &ie)
	assert.Equal(t, "disk full", errors.Unwrap(ie).Error())
}
