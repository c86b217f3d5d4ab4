// Package ring provides the bounded sample queue sitting between the
// decode/mix producer and the audio output consumer. Exactly one writer
// and one reader may use a Buffer concurrently; anything else is
// outside the contract.
package ring

import (
	"errors"
	"fmt"
	"sync"
)

// ErrFull is returned by Push when the buffer cannot accept the whole
// slice. Nothing is written in that case.
var ErrFull = errors.New("ring: buffer full")

// ErrClosed is returned by Push after Close.
var ErrClosed = errors.New("ring: buffer closed")

// Stats are cumulative diagnostics counters. They only ever increase.
type Stats struct {
	Pushed    uint64 // samples accepted by Push
	Popped    uint64 // samples returned by Pop
	FullDrops uint64 // Push calls rejected with ErrFull
	Underruns uint64 // Pop calls that returned fewer samples than requested
}

// Buffer is a fixed-capacity circular queue of interleaved int16
// samples. The write and read cursors increase monotonically and are
// masked by capacity-1 on access, so capacity must be a power of two.
type Buffer struct {
	mu       sync.Mutex
	writable *sync.Cond

	buf  []int16
	mask uint64

	w uint64
	r uint64

	intr     uint64
	intrSeen uint64
	closed   bool
	stats    Stats
}

// New allocates a Buffer holding capacity int16 samples. The capacity
// must be a power of two so cursor masking replaces a modulo.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("ring: capacity %d is not a power of two", capacity)
	}
	b := &Buffer{
		buf:  make([]int16, capacity),
		mask: uint64(capacity - 1),
	}
	b.writable = sync.NewCond(&b.mu)
	return b, nil
}

// Cap returns the buffer capacity in samples.
func (b *Buffer) Cap() int { return len(b.buf) }

// Len returns the number of unread samples.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.w - b.r)
}

// Free returns the number of samples that can be pushed without
// overwriting unread data.
func (b *Buffer) Free() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf) - int(b.w-b.r)
}

// Push copies src into the buffer. It never blocks: if src does not
// fit in the free space the call returns ErrFull and writes nothing.
// Writer-side only.
func (b *Buffer) Push(src []int16) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	n := uint64(len(src))
	if n > uint64(len(b.buf))-(b.w-b.r) {
		b.stats.FullDrops++
		return ErrFull
	}

	pos := b.w & b.mask
	first := uint64(len(b.buf)) - pos
	if first >= n {
		copy(b.buf[pos:pos+n], src)
	} else {
		copy(b.buf[pos:], src[:first])
		copy(b.buf[:n-first], src[first:])
	}
	b.w += n
	b.stats.Pushed += n
	return nil
}

// WaitWritable parks the caller until at least n samples are free, the
// buffer is closed, or Interrupt is called. It returns true only when
// the space is actually available. A pending interrupt is consumed
// before parking, so an Interrupt delivered between two calls is never
// lost. Writer-side only.
func (b *Buffer) WaitWritable(n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for !b.closed && b.intr == b.intrSeen && len(b.buf)-int(b.w-b.r) < n {
		b.writable.Wait()
	}
	if b.intr != b.intrSeen {
		b.intrSeen = b.intr
		return false
	}
	return !b.closed && len(b.buf)-int(b.w-b.r) >= n
}

// Interrupt makes the current or next WaitWritable call return false
// without satisfying it, so the writer re-checks its own run
// condition. The interrupt stays pending until a WaitWritable call
// consumes it.
func (b *Buffer) Interrupt() {
	b.mu.Lock()
	b.intr++
	b.writable.Broadcast()
	b.mu.Unlock()
}

// Pop copies up to len(dst) samples out of the buffer and returns the
// number copied, which is zero when the buffer is empty. A short read
// is counted as an underrun; the caller substitutes silence for the
// missing samples. Reader-side only.
func (b *Buffer) Pop(dst []int16) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	avail := b.w - b.r
	n := uint64(len(dst))
	if n > avail {
		n = avail
		b.stats.Underruns++
	}
	if n == 0 {
		b.writable.Broadcast()
		return 0
	}

	pos := b.r & b.mask
	first := uint64(len(b.buf)) - pos
	if first >= n {
		copy(dst[:n], b.buf[pos:pos+n])
	} else {
		copy(dst[:first], b.buf[pos:])
		copy(dst[first:n], b.buf[:n-first])
	}
	b.r += n
	b.stats.Popped += n
	b.writable.Broadcast()
	return int(n)
}

// Close wakes any parked writer and makes subsequent pushes fail with
// ErrClosed. Unread samples remain poppable.
func (b *Buffer) Close() {
	b.mu.Lock()
	b.closed = true
	b.writable.Broadcast()
	b.mu.Unlock()
}

// Stats returns a copy of the diagnostics counters.
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}
