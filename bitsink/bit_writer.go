package bitsink

import (
	"github.com/chronos-tachyon/assert"
)

// BitWriter packs variable-length codes into stuffed bytes, requesting
// space from a borrowed ByteSink as it goes. A writer is bound to one sink
// for its whole life and discarded after its single Finalize
type BitWriter struct {
	sink ByteSink

	nbBits  int    // number of unwritten bits, 0..31
	bits    uint32 // accumulator for unwritten bits, MSB-aligned
	bytePos int    // write position in buf
	buf     []byte // region from the last Commit; replaced on every Reserve
}

// NewBitWriter creates a BitWriter bound to sink
func NewBitWriter(sink ByteSink) *BitWriter {
	assert.Assertf(sink != nil, "nil sink")
	return &BitWriter{sink: sink}
}

// Reserve commits the bytes written since the last Reserve and requests
// size more writable bytes from the sink. It must be called before any
// write whose worst case could exceed the space already reserved; stuffing
// can double a byte, so reserve twice the raw size to be safe. A failed
// Reserve is terminal: the writer holds no buffer afterwards and the stream
// must be abandoned (Reset the sink)
func (w *BitWriter) Reserve(size int) error {
	buf, err := w.sink.Commit(w.bytePos, size)
	w.bytePos = 0
	if err != nil {
		w.buf = nil
		return err
	}
	w.buf = buf
	return nil
}

// FlushBits drains every complete byte from the accumulator into the
// reserved region, inserting the stuffing byte after each 0xff, and leaves
// fewer than 8 bits pending. There is no capacity check beyond the region
// bounds; Reserve first
func (w *BitWriter) FlushBits() {
	// worst case per call: 3 escaped bytes = 6 written
	for w.nbBits >= 8 {
		b := byte(w.bits >> 24)
		w.buf[w.bytePos] = b
		w.bytePos++
		if b == markerByte {
			w.buf[w.bytePos] = stuffByte
			w.bytePos++
		}
		w.bits <<= 8
		w.nbBits -= 8
	}
}

// PutBits appends the nbits low-order bits of bits, most significant bit
// first. nbits must be in 1..24 and bits must have no set bit at or above
// position nbits
func (w *BitWriter) PutBits(bits uint32, nbits int) {
	assert.Assertf(nbits >= 1 && nbits <= 24, "bit count %d out of range 1..24", nbits)
	assert.Assertf(bits>>nbits == 0, "value %#x wider than %d bits", bits, nbits)
	w.FlushBits() // make room for at least 24 bits
	w.nbBits += nbits
	w.bits |= bits << (32 - w.nbBits)
}

// PutByte appends one raw byte with no stuffing and no accumulator
// interaction. The accumulator must be empty: Flush or FlushBits first
func (w *BitWriter) PutByte(value byte) {
	assert.Assertf(w.nbBits == 0, "%d bits pending before raw byte write", w.nbBits)
	w.buf[w.bytePos] = value
	w.bytePos++
}

// PutBytes appends raw bytes with no stuffing, same contract as PutByte
func (w *BitWriter) PutBytes(p []byte) {
	assert.Assertf(w.nbBits == 0, "%d bits pending before raw byte write", w.nbBits)
	copy(w.buf[w.bytePos:w.bytePos+len(p)], p)
	w.bytePos += len(p)
}

// PutPackedCode appends a packed code: bit pattern in the high bits, bit
// length in the low 8 bits
func (w *BitWriter) PutPackedCode(code uint32) {
	w.PutBits(code>>16, int(code&0xff))
}

// Flush pads any pending bits with 1s up to the next byte boundary and
// drains them, leaving the stream byte-aligned
func (w *BitWriter) Flush() {
	if pad := -w.nbBits & 7; pad > 0 {
		w.PutBits((1<<pad)-1, pad)
	}
	w.FlushBits()
}

// PendingBits returns how many bits are waiting in the accumulator
func (w *BitWriter) PendingBits() int {
	return w.nbBits
}

// Finalize commits the trailing bytes and finalizes the sink
func (w *BitWriter) Finalize() error {
	if err := w.Reserve(0); err != nil {
		return err
	}
	return w.sink.Finalize()
}
