package image2pce

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatsKindAndMessage(t *testing.T) {
	err := newError(InvalidInput, "bad width %d", 3)
	assert.Equal(t, "image2pce: InvalidInput: bad width 3", err.Error())
}

func TestWrapErrorUnwraps(t *testing.T) {
	inner := errors.New("boom")
	err := wrapError(Decode, inner, "decode failed")
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "boom")
}

func TestKindStringCoversAllValues(t *testing.T) {
	for _, k := range []Kind{InvalidInput, Decode, VramOverflow, Cancelled, Internal} {
		assert.NotEqual(t, "Unknown", k.String())
	}
}
