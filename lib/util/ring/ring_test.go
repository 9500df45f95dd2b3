package ring

import (
	"testing"
)

func assertSome[T comparable](t *testing.T, f func() (T, bool), value T) {
	v, ok := f()
	if !ok {
		t.Error("expected items but go nothing")
		return
	}
	if v != value {
		t.Error("expected", value, "but got", v)
		return
	}
}

func assertNone[T any](t *testing.T, f func() (T, bool)) {
	v, ok := f()
	if ok {
		t.Error("expected no items but found", v)
		return
	}
}

func assertLength[T any](t *testing.T, ring *Ring[T], length int) {
	l := ring.Length()
	if length != l {
		t.Error("expected length to be", length, "but got", l)
	}
}

func assertCapacity[T any](t *testing.T, ring *Ring[T], capacity int) {
	c := ring.Capacity()
	if capacity != c {
		t.Error("expected capacity to be", capacity, "but got", c)
	}
}

func TestRing_Zero(t *testing.T) {
	var r Ring[string]
	assertNone(t, r.PopFront)
	r.PushBack("a")
	r.PushBack("b")
	r.PushBack("c")

	assertLength(t, &r, 3)
	assertSome(t, r.PeekFront, "a")
	assertSome(t, r.PopFront, "a")
	assertSome(t, r.PopFront, "b")
	assertSome(t, r.PopFront, "c")
	assertNone(t, r.PopFront)
	assertNone(t, r.PeekFront)
}

// ensure no resizing when we put the exact amount in the ring
func TestRing_Glove(t *testing.T) {
	r := MakeRing[int](4)
	r.PushBack(1)
	r.PushBack(2)
	r.PushBack(3)
	r.PushBack(4)

	assertLength(t, &r, 4)

	assertSome(t, r.PopFront, 1)
	assertSome(t, r.PopFront, 2)
	assertSome(t, r.PopFront, 3)
	assertSome(t, r.PopFront, 4)
	assertNone(t, r.PopFront)

	assertLength(t, &r, 0)
	assertCapacity(t, &r, 4)
}

// tail wraps around and then smashes into head
func TestRing_Wrap(t *testing.T) {
	r := NewRing[int](4)
	r.PushBack(1)
	r.PushBack(2)
	r.PushBack(3)
	assertSome(t, r.PopFront, 1)
	assertSome(t, r.PopFront, 2)
	r.PushBack(4)
	r.PushBack(5)
	r.PushBack(6)
	r.PushBack(7) // SMASH

	assertLength(t, r, 5)
	if r.Get(4) != 7 {
		t.Error("expected 7 but got", r.Get(4))
	}

	for i := 3; i <= 7; i++ {
		assertSome(t, r.PopFront, i)
	}
	assertNone(t, r.PopFront)
}
