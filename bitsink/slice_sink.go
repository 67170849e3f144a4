package bitsink

import (
	"github.com/chronos-tachyon/assert"
)

// SliceSink is a ByteSink that writes into a caller-owned slice through a
// pointer, so there is no ownership transfer step: the caller already holds
// the destination. The sink manages the slice length; whatever the slice
// held before is overwritten from the start
type SliceSink struct {
	target    *[]byte
	pos       int // bytes committed so far
	finalized bool
}

var _ ByteSink = (*SliceSink)(nil)

// NewSliceSink creates a SliceSink assembling its stream in *target
func NewSliceSink(target *[]byte) *SliceSink {
	assert.Assertf(target != nil, "nil target slice pointer")
	return &SliceSink{target: target}
}

// Commit acknowledges used bytes and resizes *target so a region of exactly
// extra bytes is writable at the cursor. Capacity grows by the same
// max(double, exact need) policy as MemorySink and committed bytes are
// preserved
func (s *SliceSink) Commit(used, extra int) ([]byte, error) {
	assert.Assertf(used >= 0 && extra >= 0, "negative commit sizes (%d, %d)", used, extra)
	if s.finalized {
		return nil, ErrSinkFinalized
	}
	s.pos += used
	assert.Assertf(s.pos <= len(*s.target), "committed %d bytes into a container of %d", s.pos, len(*s.target))
	need := s.pos + extra
	buf := *s.target
	if need > cap(buf) {
		newCap := 2 * cap(buf)
		if newCap < need {
			newCap = need
		}
		grown := make([]byte, need, newCap)
		copy(grown, buf[:s.pos])
		buf = grown
	} else {
		buf = buf[:need]
	}
	*s.target = buf
	return buf[s.pos:need:need], nil
}

// Finalize truncates *target to the exact number of bytes used, not the
// reserved length, and freezes the sink
func (s *SliceSink) Finalize() error {
	if s.finalized {
		return ErrSinkFinalized
	}
	*s.target = (*s.target)[:s.pos]
	s.finalized = true
	return nil
}

// Reset truncates *target to zero length and makes the sink reusable
func (s *SliceSink) Reset() {
	*s.target = (*s.target)[:0]
	s.pos = 0
	s.finalized = false
}
