package main

import (
	"bytes"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"jpeg-bitsink/bitsink"
)

// verify drives randomized code sequences through the counting pass and
// through real writers on both sink backends, checking that all three
// agree and that every 0xff in the output is followed by a stuffed 0x00

type code struct {
	bits  uint32
	nbits int
}

type trialResult struct {
	ok     bool
	errMsg string
}

func main() {
	trials := flag.Int("n", 20000, "Number of randomized trials")
	seed := flag.Int64("seed", 1, "Base seed for trial generation")
	maxCodes := flag.Int("maxcodes", 4096, "Maximum codes per trial")
	workers := flag.Int("workers", 8, "Number of parallel workers")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	fmt.Printf("Running %d trials with %d workers (seed %d, up to %d codes per trial)...\n",
		*trials, *workers, *seed, *maxCodes)

	var pass, fail, processed int64
	var mu sync.Mutex
	var failures []string

	jobs := make(chan int, *trials)
	var wg sync.WaitGroup

	done := make(chan struct{})
	var statusWg sync.WaitGroup
	statusWg.Add(1)
	go func() {
		defer statusWg.Done()
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				n := atomic.LoadInt64(&processed)
				p := atomic.LoadInt64(&pass)
				f := atomic.LoadInt64(&fail)
				fmt.Printf("Progress: %d/%d processed (%d passed, %d failed)\n",
					n, *trials, p, f)
			case <-done:
				return
			}
		}
	}()

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for trial := range jobs {
				result := runTrial(*seed, trial, *maxCodes, *verbose)
				atomic.AddInt64(&processed, 1)

				if result.ok {
					atomic.AddInt64(&pass, 1)
				} else {
					atomic.AddInt64(&fail, 1)
					mu.Lock()
					failures = append(failures, result.errMsg)
					mu.Unlock()
				}
			}
		}()
	}

	for trial := 0; trial < *trials; trial++ {
		jobs <- trial
	}
	close(jobs)
	wg.Wait()
	close(done)
	statusWg.Wait()

	fmt.Println()
	fmt.Printf("Results: %d passed, %d failed\n", pass, fail)

	if fail > 0 {
		limit := len(failures)
		if limit > 20 {
			limit = 20
		}
		fmt.Println("\nFailed trials:")
		for _, f := range failures[:limit] {
			fmt.Println("  " + f)
		}
		os.Exit(1)
	}
}

func runTrial(seed int64, trial, maxCodes int, verbose bool) trialResult {
	rng := rand.New(rand.NewSource(seed + int64(trial)))

	n := rng.Intn(maxCodes) + 1
	codes := make([]code, n)
	for i := range codes {
		nbits := rng.Intn(24) + 1
		bits := uint32(rng.Intn(1 << nbits))
		if rng.Intn(4) == 0 {
			bits = 1<<nbits - 1 // all-ones codes provoke stuffing
		}
		codes[i] = code{bits, nbits}
	}

	// Pass 1: predict the exact stream size
	var counter bitsink.BitCounter
	for _, c := range codes {
		counter.AddBits(c.bits, c.nbits)
	}
	predicted := counter.Size()

	// Pass 2: write for real, once per backend. The deliberately small
	// hint forces the owning sink through its growth path
	memSink := bitsink.NewMemorySink(rng.Intn(64))
	if err := writeStream(memSink, codes); err != nil {
		return trialResult{errMsg: fmt.Sprintf("trial %d: memory sink: %v", trial, err)}
	}
	fromMem := memSink.Release()

	var target []byte
	sliceSink := bitsink.NewSliceSink(&target)
	if err := writeStream(sliceSink, codes); err != nil {
		return trialResult{errMsg: fmt.Sprintf("trial %d: slice sink: %v", trial, err)}
	}

	if len(fromMem) != predicted {
		return trialResult{errMsg: fmt.Sprintf("trial %d: counter predicted %d bytes, writer emitted %d",
			trial, predicted, len(fromMem))}
	}
	if !bytes.Equal(fromMem, target) {
		return trialResult{errMsg: fmt.Sprintf("trial %d: memory and slice streams differ (%d vs %d bytes)",
			trial, len(fromMem), len(target))}
	}
	if msg := checkStuffing(fromMem); msg != "" {
		return trialResult{errMsg: fmt.Sprintf("trial %d: %s", trial, msg)}
	}

	if verbose {
		fmt.Printf("PASS: trial %d (%d codes, %d bytes)\n", trial, len(codes), len(fromMem))
	}

	return trialResult{ok: true}
}

// writeStream replays the codes on a fresh writer, reserving in small
// slices so the sink sees many commit cycles. A window absorbs at most 31
// carried bits plus 32*24 code bits, 100 bytes once padded, 200 stuffed
func writeStream(sink bitsink.ByteSink, codes []code) error {
	w := bitsink.NewBitWriter(sink)
	for i, c := range codes {
		if i%32 == 0 {
			if err := w.Reserve(200); err != nil {
				return err
			}
		}
		w.PutBits(c.bits, c.nbits)
	}
	w.Flush()
	if w.PendingBits() != 0 {
		return fmt.Errorf("%d bits pending after flush", w.PendingBits())
	}
	return w.Finalize()
}

// checkStuffing scans a finished stream for bare marker bytes
func checkStuffing(stream []byte) string {
	for i := 0; i < len(stream); i++ {
		if stream[i] == 0xFF {
			if i+1 >= len(stream) {
				return fmt.Sprintf("stream ends with a bare 0xff at byte %d", i)
			}
			if stream[i+1] != 0x00 {
				return fmt.Sprintf("0xff at byte %d followed by 0x%02x", i, stream[i+1])
			}
			i++
		}
	}
	return ""
}
