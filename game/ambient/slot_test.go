package ambient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlot_NestedScopes(t *testing.T) {
	s := NewSlot[int]()
	assert.Equal(t, 0, s.Current())
	assert.False(t, s.Active())

	a := s.Enter(1)
	assert.Equal(t, 1, s.Current())

	b := s.Enter(2)
	assert.Equal(t, 2, s.Current())
	assert.Equal(t, 2, s.Depth())

	b.Exit()
	assert.Equal(t, 1, s.Current())

	a.Exit()
	assert.Equal(t, 0, s.Current())
	assert.False(t, s.Active())
}

func TestSlot_DoubleExitIsNoop(t *testing.T) {
	s := NewSlot[string]()
	outer := s.Enter("outer")
	inner := s.Enter("inner")
	inner.Exit()
	inner.Exit()

	assert.Equal(t, "outer", s.Current())
	assert.Equal(t, 1, s.Depth())
	outer.Exit()
	assert.Equal(t, "", s.Current())
}

func TestDo_RestoresOnPanic(t *testing.T) {
	s := NewSlot[*int]()
	v := 7

	assert.Panics(t, func() {
		Do(s, &v, func() {
			assert.Equal(t, &v, s.Current())
			panic("boom")
		})
	})
	assert.Nil(t, s.Current())
	assert.False(t, s.Active())
}

func TestDo_Nested(t *testing.T) {
	s := NewSlot[int]()
	var seen []int
	Do(s, 1, func() {
		seen = append(seen, s.Current())
		Do(s, 2, func() {
			seen = append(seen, s.Current())
		})
		seen = append(seen, s.Current())
	})
	seen = append(seen, s.Current())
	assert.Equal(t, []int{1, 2, 1, 0}, seen)
}

func TestSlot_ResetReportsLeak(t *testing.T) {
	s := NewSlot[int]()
	assert.False(t, s.Reset())

	s.Enter(5)
	assert.True(t, s.Reset())
	assert.Equal(t, 0, s.Current())
	assert.False(t, s.Active())
}

func TestSlot_IndependentSlots(t *testing.T) {
	a := NewSlot[int]()
	b := NewSlot[int]()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			Do(b, i, func() {
				if b.Current() != i {
					panic("slot b corrupted")
				}
			})
		}
	}()
	for i := 0; i < 1000; i++ {
		Do(a, -i, func() {
			assert.Equal(t, -i, a.Current())
		})
	}
	<-done
	assert.False(t, b.Active())
}
