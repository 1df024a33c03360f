package byteslice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetRoundsCapacityToPowerOfTwo(t *testing.T) {
	assert.Nil(t, Get(0))

	buf := Get(100)
	assert.Len(t, buf, 100)
	assert.Equal(t, 128, cap(buf))
	Put(buf)

	buf = Get(128)
	assert.Len(t, buf, 128)
	assert.Equal(t, 128, cap(buf))
	Put(buf)
}

func TestPutForeignSlice(t *testing.T) {
	var p Pool
	// capacity 100 is not a power of two, it lands in the 64 bucket.
	p.Put(make([]byte, 100))
	buf := p.Get(60)
	assert.Len(t, buf, 60)
	assert.GreaterOrEqual(t, cap(buf), 60)
}
