package exifdate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTakenAtWithoutExif(t *testing.T) {
	assert.Nil(t, TakenAt(nil))
	assert.Nil(t, TakenAt([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}))
	assert.Nil(t, TakenAt([]byte{0xff, 0xd8, 0xff, 0xd9}))
}
