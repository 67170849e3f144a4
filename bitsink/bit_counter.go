package bitsink

import (
	"github.com/chronos-tachyon/assert"
)

// BitCounter reproduces the writer's stuffing-aware byte accounting without
// a destination, so a planned sequence of codes can be sized before any
// buffer exists. The zero value is ready to use
type BitCounter struct {
	bits   uint32 // accumulator mirroring BitWriter, MSB-aligned
	bitPos int    // pending bit count, below 8 between calls
	size   int    // completed output bytes, stuffing included
}

// AddBits counts the nbits low-order bits of bits exactly as
// BitWriter.PutBits would emit them, stuffing included. Same contract:
// nbits in 1..24 and no set bit at or above position nbits
func (c *BitCounter) AddBits(bits uint32, nbits int) {
	assert.Assertf(nbits >= 1 && nbits <= 24, "bit count %d out of range 1..24", nbits)
	assert.Assertf(bits>>nbits == 0, "value %#x wider than %d bits", bits, nbits)
	c.bitPos += nbits
	c.bits |= bits << (32 - c.bitPos)
	for c.bitPos >= 8 {
		if byte(c.bits>>24) == markerByte {
			c.size += 2
		} else {
			c.size++
		}
		c.bits <<= 8
		c.bitPos -= 8
	}
}

// AddPackedCode counts a packed code: bit pattern in the high bits, bit
// length in the low 8 bits
func (c *BitCounter) AddPackedCode(code uint32) {
	c.AddBits(code>>16, int(code&0xff))
}

// Size returns the exact number of bytes a BitWriter fed the same call
// sequence would emit once flushed and finalized: completed bytes count
// their stuffing, and a partial final byte counts as its 1-padded
// completion, which itself stuffs when the padding turns it into 0xff
func (c *BitCounter) Size() int {
	n := c.size
	if c.bitPos > 0 {
		padded := byte(c.bits>>24) | markerByte>>c.bitPos
		if padded == markerByte {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// Reset returns the counter to zero so another sequence can be replayed
func (c *BitCounter) Reset() {
	c.bits = 0
	c.bitPos = 0
	c.size = 0
}
