package ring

import (
	"testing"
	"time"
)

func TestNewRejectsBadCapacity(t *testing.T) {
	for _, capacity := range []int{0, -8, 3, 1000, 6000} {
		if _, err := New(capacity); err == nil {
			t.Errorf("New(%d) should have failed", capacity)
		}
	}
	b, err := New(8)
	if err != nil {
		t.Fatalf("New(8) failed: %v", err)
	}
	if b.Cap() != 8 {
		t.Errorf("Cap() = %d, want 8", b.Cap())
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	b, _ := New(128)

	src := make([]int16, 100)
	for i := range src {
		src[i] = int16(i + 1)
	}
	if err := b.Push(src); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	dst := make([]int16, 100)
	if n := b.Pop(dst); n != 100 {
		t.Fatalf("Pop returned %d, want 100", n)
	}
	for i := range dst {
		if dst[i] != int16(i+1) {
			t.Fatalf("dst[%d] = %d, want %d", i, dst[i], i+1)
		}
	}
}

func TestPopEmptyReturnsNothing(t *testing.T) {
	b, _ := New(64)

	done := make(chan int, 1)
	go func() {
		done <- b.Pop(make([]int16, 256))
	}()

	select {
	case n := <-done:
		if n != 0 {
			t.Errorf("Pop on empty buffer returned %d samples", n)
		}
	case <-time.After(time.Second):
		t.Fatal("Pop on empty buffer blocked")
	}

	if st := b.Stats(); st.Underruns != 1 {
		t.Errorf("Underruns = %d, want 1", st.Underruns)
	}
}

func TestPushFullRejectsWholeSlice(t *testing.T) {
	b, _ := New(8)

	if err := b.Push(make([]int16, 6)); err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if err := b.Push([]int16{1, 2, 3, 4}); err != ErrFull {
		t.Fatalf("Push = %v, want ErrFull", err)
	}
	if got := b.Len(); got != 6 {
		t.Errorf("Len() = %d after rejected push, want 6", got)
	}
	if st := b.Stats(); st.FullDrops != 1 {
		t.Errorf("FullDrops = %d, want 1", st.FullDrops)
	}
}

func TestWraparoundPreservesOrder(t *testing.T) {
	b, _ := New(8)

	b.Push([]int16{1, 2, 3, 4, 5, 6})
	b.Pop(make([]int16, 6))

	// This push wraps around the end of the backing array.
	src := []int16{10, 11, 12, 13, 14, 15, 16, 17}
	if err := b.Push(src); err != nil {
		t.Fatalf("wrapping Push failed: %v", err)
	}

	dst := make([]int16, 8)
	if n := b.Pop(dst); n != 8 {
		t.Fatalf("Pop returned %d, want 8", n)
	}
	for i := range dst {
		if dst[i] != src[i] {
			t.Fatalf("dst[%d] = %d, want %d", i, dst[i], src[i])
		}
	}
}

func TestPoppedNeverExceedsPushed(t *testing.T) {
	b, _ := New(16)

	var pushed, popped uint64
	chunk := []int16{1, 2, 3, 4, 5}
	dst := make([]int16, 7)
	for i := 0; i < 50; i++ {
		if err := b.Push(chunk); err == nil {
			pushed += uint64(len(chunk))
		}
		popped += uint64(b.Pop(dst))

		if popped > pushed {
			t.Fatalf("popped %d > pushed %d", popped, pushed)
		}
		if b.Len() > b.Cap() {
			t.Fatalf("Len %d exceeds Cap %d", b.Len(), b.Cap())
		}
	}

	st := b.Stats()
	if st.Pushed != pushed || st.Popped != popped {
		t.Errorf("Stats = %+v, want pushed %d popped %d", st, pushed, popped)
	}
}

func TestCloseWakesParkedWriter(t *testing.T) {
	b, _ := New(8)
	b.Push(make([]int16, 8))

	result := make(chan bool, 1)
	go func() {
		result <- b.WaitWritable(4)
	}()

	time.Sleep(10 * time.Millisecond)
	b.Close()

	select {
	case ok := <-result:
		if ok {
			t.Error("WaitWritable returned true on a closed buffer")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitWritable still parked after Close")
	}

	if err := b.Push([]int16{1}); err != ErrClosed {
		t.Errorf("Push after Close = %v, want ErrClosed", err)
	}
}

func TestInterruptWakesParkedWriter(t *testing.T) {
	b, _ := New(8)
	b.Push(make([]int16, 8))

	result := make(chan bool, 1)
	go func() {
		result <- b.WaitWritable(4)
	}()

	time.Sleep(10 * time.Millisecond)
	b.Interrupt()

	select {
	case ok := <-result:
		if ok {
			t.Error("WaitWritable reported space that is not there")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitWritable still parked after Interrupt")
	}

	// The buffer stays usable after an interrupt.
	b.Pop(make([]int16, 8))
	if err := b.Push([]int16{1}); err != nil {
		t.Errorf("Push after Interrupt failed: %v", err)
	}
}

func TestInterruptBeforeWaitIsNotLost(t *testing.T) {
	b, _ := New(8)
	b.Push(make([]int16, 8))

	// The interrupt lands before the writer reaches its wait. It must
	// still take effect or the writer parks forever on a full buffer.
	b.Interrupt()

	result := make(chan bool, 1)
	go func() {
		result <- b.WaitWritable(4)
	}()

	select {
	case ok := <-result:
		if ok {
			t.Error("WaitWritable reported space that is not there")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitWritable parked over an interrupt delivered earlier")
	}

	// The interrupt is consumed; later waits behave normally again.
	b.Pop(make([]int16, 8))
	if !b.WaitWritable(4) {
		t.Error("consumed interrupt still failing waits")
	}
}

func TestPopUnblocksWaitingWriter(t *testing.T) {
	b, _ := New(8)
	b.Push(make([]int16, 8))

	result := make(chan bool, 1)
	go func() {
		result <- b.WaitWritable(4)
	}()

	time.Sleep(10 * time.Millisecond)
	b.Pop(make([]int16, 4))

	select {
	case ok := <-result:
		if !ok {
			t.Error("WaitWritable returned false with space available")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitWritable still parked after Pop freed space")
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	const total = 10000
	b, _ := New(64)

	go func() {
		chunk := make([]int16, 16)
		next := int16(0)
		for sent := 0; sent < total; {
			n := total - sent
			if n > len(chunk) {
				n = len(chunk)
			}
			for i := 0; i < n; i++ {
				chunk[i] = next
				next++
			}
			for !b.WaitWritable(n) {
			}
			if err := b.Push(chunk[:n]); err != nil {
				t.Errorf("Push failed: %v", err)
				return
			}
			sent += n
		}
	}()

	received := 0
	expect := int16(0)
	dst := make([]int16, 24)
	deadline := time.Now().Add(10 * time.Second)
	for received < total {
		if time.Now().After(deadline) {
			t.Fatalf("consumer stalled at %d/%d samples", received, total)
		}
		n := b.Pop(dst)
		for i := 0; i < n; i++ {
			if dst[i] != expect {
				t.Fatalf("sample %d = %d, want %d", received+i, dst[i], expect)
			}
			expect++
		}
		received += n
	}
}
