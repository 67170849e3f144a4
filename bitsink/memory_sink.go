package bitsink

import (
	"github.com/chronos-tachyon/assert"
)

// MemorySink is a ByteSink that owns a growable heap buffer. The zero value
// is empty and ready to use; NewMemorySink pre-sizes the buffer when the
// final stream size can be guessed
type MemorySink struct {
	buf       []byte // backing storage, len(buf) is the capacity
	pos       int    // bytes committed so far
	finalized bool
	released  bool
}

var _ ByteSink = (*MemorySink)(nil)

// NewMemorySink creates a MemorySink whose buffer starts at expectedSize
// bytes. A hint of 0 defers allocation to the first Commit
func NewMemorySink(expectedSize int) *MemorySink {
	assert.Assertf(expectedSize >= 0, "expected size %d is negative", expectedSize)
	s := &MemorySink{}
	if expectedSize > 0 {
		s.buf = make([]byte, expectedSize)
	}
	return s
}

// Commit acknowledges used bytes and returns a region of exactly extra
// writable bytes. When the remaining capacity is too small the buffer is
// reallocated to max(twice the capacity, the exact need) and every
// committed byte is copied forward unchanged
func (s *MemorySink) Commit(used, extra int) ([]byte, error) {
	assert.Assertf(used >= 0 && extra >= 0, "negative commit sizes (%d, %d)", used, extra)
	if s.released {
		return nil, ErrSinkReleased
	}
	if s.finalized {
		return nil, ErrSinkFinalized
	}
	s.pos += used
	assert.Assertf(s.pos <= len(s.buf), "committed %d bytes into a buffer of %d", s.pos, len(s.buf))
	need := s.pos + extra
	if need > len(s.buf) {
		newCap := 2 * len(s.buf)
		if newCap < need {
			newCap = need
		}
		grown := make([]byte, newCap)
		copy(grown, s.buf[:s.pos])
		s.buf = grown
	}
	return s.buf[s.pos:need:need], nil
}

// Finalize freezes the sink; the assembled bytes stay available to Release
func (s *MemorySink) Finalize() error {
	if s.released {
		return ErrSinkReleased
	}
	if s.finalized {
		return ErrSinkFinalized
	}
	s.finalized = true
	return nil
}

// Reset discards the held buffer and makes the sink reusable from empty
func (s *MemorySink) Reset() {
	s.buf = nil
	s.pos = 0
	s.finalized = false
	s.released = false
}

// Release transfers ownership of the assembled stream, trimmed to the exact
// number of bytes used. The sink is consumed afterwards: Commit and
// Finalize fail until Reset is called
func (s *MemorySink) Release() []byte {
	out := s.buf[:s.pos]
	s.buf = nil
	s.pos = 0
	s.released = true
	return out
}
