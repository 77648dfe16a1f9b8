package core

import (
	"math/rand"
	"testing"
)

func randomBuffer(t testing.TB, w, h int, seed int64) *PixelBuffer {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	buf := NewPixelBuffer(w, h)
	for i := range buf.Pix {
		buf.Pix[i] = uint8(rng.Intn(256))
	}
	return buf
}

func TestHistory_LIFO(t *testing.T) {
	h := NewHistory(0)
	first := randomBuffer(t, 4, 4, 1)
	second := randomBuffer(t, 4, 4, 2)

	h.Push(first)
	h.Push(second)
	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}

	got, ok := h.Pop()
	if !ok || !got.Equal(second) {
		t.Error("first pop did not return the newest snapshot")
	}
	got, ok = h.Pop()
	if !ok || !got.Equal(first) {
		t.Error("second pop did not return the older snapshot")
	}
	if _, ok := h.Pop(); ok {
		t.Error("pop on empty history reported ok")
	}
	if h.Len() != 0 {
		t.Errorf("Len after draining = %d, want 0", h.Len())
	}
}

func TestHistory_PushStoresDeepCopy(t *testing.T) {
	h := NewHistory(0)
	live := randomBuffer(t, 3, 3, 7)
	want := live.Clone()

	h.Push(live)
	// Mutating the live buffer must not reach the stored snapshot.
	for i := range live.Pix {
		live.Pix[i] = 0
	}

	got, ok := h.Pop()
	if !ok {
		t.Fatal("pop failed")
	}
	if !got.Equal(want) {
		t.Error("snapshot shares storage with the pushed buffer")
	}
}

func TestHistory_LimitEvictsOldest(t *testing.T) {
	h := NewHistory(2)
	a := randomBuffer(t, 2, 2, 10)
	b := randomBuffer(t, 2, 2, 11)
	c := randomBuffer(t, 2, 2, 12)

	h.Push(a)
	h.Push(b)
	h.Push(c)
	if h.Len() != 2 {
		t.Fatalf("Len = %d, want 2", h.Len())
	}

	got, _ := h.Pop()
	if !got.Equal(c) {
		t.Error("newest snapshot missing after eviction")
	}
	got, _ = h.Pop()
	if !got.Equal(b) {
		t.Error("middle snapshot missing; eviction dropped the wrong end")
	}
}

func TestHistory_UnlimitedGrowth(t *testing.T) {
	h := NewHistory(0)
	for i := 0; i < 100; i++ {
		h.Push(randomBuffer(t, 1, 1, int64(i)))
	}
	if h.Len() != 100 {
		t.Errorf("Len = %d, want 100", h.Len())
	}
}
