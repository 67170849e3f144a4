package bitsink

import (
	"math/rand"
	"testing"
)

// TestCounterMatchesWriterRandom replays random code sequences through a
// BitCounter and through a real writer and expects byte-identical sizing,
// stuffing and final padding included
func TestCounterMatchesWriterRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 50; trial++ {
		var calls []putCall
		n := rng.Intn(400) + 1
		for i := 0; i < n; i++ {
			nbits := rng.Intn(24) + 1
			bits := uint32(rng.Intn(1 << nbits))
			if rng.Intn(4) == 0 {
				bits = 1<<nbits - 1 // all-ones codes provoke stuffing
			}
			calls = append(calls, putCall{bits, nbits})
		}

		var counter BitCounter
		for _, c := range calls {
			counter.AddBits(c.bits, c.nbits)
		}

		out := writeAll(t, NewMemorySink(0), calls)
		if counter.Size() != len(out) {
			t.Fatalf("trial %d: counter predicts %d bytes, writer emitted %d",
				trial, counter.Size(), len(out))
		}
	}
}

// TestCounterPendingCompletion pins the partial-byte accounting: a pending
// byte counts as its 1-padded completion, stuffed when the completion is
// 0xff
func TestCounterPendingCompletion(t *testing.T) {
	cases := []struct {
		name string
		adds []putCall
		want int
	}{
		{"empty", nil, 0},
		{"one set bit pads to marker", []putCall{{1, 1}}, 2},
		{"one clear bit", []putCall{{0, 1}}, 1},
		{"seven ones pad to marker", []putCall{{0x7F, 7}}, 2},
		{"seven bits below marker", []putCall{{0x7E, 7}}, 1},
		{"three bits", []putCall{{0b101, 3}}, 1},
		{"three bits then marker byte", []putCall{{0b101, 3}, {0xFF, 8}}, 3},
		{"whole marker byte", []putCall{{0xFF, 8}}, 2},
		{"two plain bytes", []putCall{{0xAB, 8}, {0xCD, 8}}, 2},
		{"marker run", []putCall{{0xFF, 8}, {0xFF, 8}, {0xFF, 8}}, 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var counter BitCounter
			for _, c := range tc.adds {
				counter.AddBits(c.bits, c.nbits)
			}
			if got := counter.Size(); got != tc.want {
				t.Errorf("Size() = %d, want %d", got, tc.want)
			}
		})
	}
}

// TestCounterSizeIsPure checks querying Size mid-byte does not disturb the
// accumulator
func TestCounterSizeIsPure(t *testing.T) {
	var counter BitCounter
	counter.AddBits(1, 1)
	if counter.Size() != 2 || counter.Size() != 2 {
		t.Fatalf("repeated Size() on pending bits = %d, want 2", counter.Size())
	}
	counter.AddBits(0, 7) // completes 0x80
	if got := counter.Size(); got != 1 {
		t.Errorf("Size() after completion = %d, want 1", got)
	}
}

// TestAddPackedCodeMatchesAddBits checks the packed form
func TestAddPackedCodeMatchesAddBits(t *testing.T) {
	codes := []putCall{{0b101, 3}, {0xFF, 8}, {0x1ABC, 13}, {1, 1}}

	var plain, packed BitCounter
	for _, c := range codes {
		plain.AddBits(c.bits, c.nbits)
		packed.AddPackedCode(c.bits<<16 | uint32(c.nbits))
	}
	if plain.Size() != packed.Size() {
		t.Errorf("packed Size() = %d, plain Size() = %d", packed.Size(), plain.Size())
	}
}

// TestCounterReset checks a counter can replay from zero
func TestCounterReset(t *testing.T) {
	var counter BitCounter
	counter.AddBits(0xFF, 8)
	counter.AddBits(1, 1)
	counter.Reset()
	if got := counter.Size(); got != 0 {
		t.Fatalf("Size() after Reset = %d, want 0", got)
	}
	counter.AddBits(0xAB, 8)
	if got := counter.Size(); got != 1 {
		t.Errorf("Size() after reuse = %d, want 1", got)
	}
}

// TestCounterContractViolations checks the width preconditions fail fast
func TestCounterContractViolations(t *testing.T) {
	cases := []struct {
		name string
		fn   func(c *BitCounter)
	}{
		{"zero width", func(c *BitCounter) { c.AddBits(0, 0) }},
		{"width over 24", func(c *BitCounter) { c.AddBits(0, 25) }},
		{"dirty high bits", func(c *BitCounter) { c.AddBits(0x10, 4) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("contract violation did not panic")
				}
			}()
			var counter BitCounter
			tc.fn(&counter)
		})
	}
}
