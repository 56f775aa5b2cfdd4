package freelist

import (
	"testing"
)

func checkFrameLen(t *testing.T, frame []byte, want int) {
	if len(frame) != want {
		t.Errorf("len(frame) = %d, want %d", len(frame), want)
	}
	if cap(frame) != want {
		t.Errorf("cap(frame) = %d, want %d", cap(frame), want)
	}
}

func checkPooled(t *testing.T, l *List, want int) {
	if len(l.ch) != want {
		t.Errorf("len(l.ch) = %d, want %d", len(l.ch), want)
	}
}

func TestFreelistReusesFrameBuffers(t *testing.T) {
	const frameSize = 32
	l := New(frameSize)
	checkPooled(t, l, 0)

	// A fresh buffer comes from allocation, not the pool.
	frame := l.Get()
	checkFrameLen(t, frame, frameSize)
	checkPooled(t, l, 0)

	// Returned buffers go back into the pool.
	frame[0] = 42
	l.Put(frame)
	checkPooled(t, l, 1)

	// Buffers handed back out of the pool come zeroed.
	frame = l.Get()
	checkFrameLen(t, frame, frameSize)
	checkPooled(t, l, 0)
	if frame[0] != 0 {
		t.Errorf("frame[0] = %#v, should have been zeroed", frame[0])
	}

	// A shorter slice into the same backing array still has the right
	// capacity and is still pooled.
	l.Put(frame[:5])
	checkPooled(t, l, 1)

	// Buffers of the wrong capacity (reallocated, or re-sliced so their
	// capacity no longer matches) are dropped instead of pooled.
	l.Put(make([]byte, 2*frameSize))
	l.Put(make([]byte, frameSize)[5:])
	checkPooled(t, l, 1)
}
