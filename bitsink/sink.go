// Package bitsink packs variable-length bit codes into a JPEG-style
// entropy-coded byte stream. Every 0xff byte that lands in the output is
// followed by an inserted 0x00 so the stream never aliases a marker
// sequence. A ByteSink owns the destination bytes, BitWriter does the
// packing, and BitCounter predicts the exact output size without writing
// anything, so two-pass encoders can size buffers or pick code lengths
// before the real pass
package bitsink

// markerByte is the reserved marker prefix; stuffByte is inserted after
// every markerByte emitted as entropy data
const (
	markerByte = 0xff
	stuffByte  = 0x00
)

// ByteSink hands out contiguous writable regions and assembles the bytes
// committed into them
//
// Protocol:
//   - Commit(used, extra): 'used' bytes of the last region were actually
//     consumed; reserve 'extra' more bytes for the next cycle. 'extra' may
//     be 0, and outside of header-sized bursts it is typically small
//   - Finalize(): no Commit will follow; trim the stream to the used size
//   - Reset(): drop everything and return to the initial empty state
//
// A sink serves one stream: created, driven through Commits, then exactly
// one Finalize (or a Reset on abandonment). Bytes acknowledged as used are
// never invalidated by a later Commit; growth preserves them
type ByteSink interface {
	// Commit returns a writable region of exactly extra bytes, or an error
	// when the sink cannot serve the request. The region is only valid
	// until the next Commit call
	Commit(used, extra int) ([]byte, error)
	// Finalize is the last call made on a sink; it trims the stream to the
	// bytes actually used and freezes the sink against further writes
	Finalize() error
	// Reset unconditionally discards held state and makes the sink
	// reusable from empty. Idempotent, usable on any error path
	Reset()
}
