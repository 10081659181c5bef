package deque

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plasmaheat/model"
)

func snapshot(step int) *model.Snapshot {
	return &model.Snapshot{Step: step, Time: float64(step)}
}

func TestArrDequeCapacity(t *testing.T) {
	assert.Equal(t, 8, NewArrDeque(3).Capacity())
	assert.Equal(t, 16, NewArrDeque(16).Capacity())
	assert.Equal(t, 8, NewArrDeque(0).Capacity())
}

func TestArrDequeOrder(t *testing.T) {
	d := NewArrDeque(8)
	assert.True(t, d.IsEmpty())
	assert.Nil(t, d.Last())

	for i := 0; i < 5; i++ {
		d.AddLast(snapshot(i))
	}
	d.AddFirst(snapshot(-1))
	require.Equal(t, 6, d.Size())
	assert.Equal(t, -1, d.Get(0).Step)
	assert.Equal(t, 4, d.Get(5).Step)
	assert.Equal(t, 4, d.Last().Step)

	steps := make([]int, 0)
	d.Traverse(func(index int, item *model.Snapshot) {
		assert.Equal(t, index-1, item.Step)
		steps = append(steps, item.Step)
	})
	assert.Equal(t, []int{-1, 0, 1, 2, 3, 4}, steps)

	assert.Equal(t, -1, d.RemoveFirst().Step)
	assert.Equal(t, 4, d.RemoveLast().Step)
	assert.Equal(t, 4, d.Size())
	assert.Len(t, d.Slice(), 4)
}

func TestArrDequeWrapAround(t *testing.T) {
	d := NewArrDeque(8)
	for i := 0; i < 8; i++ {
		d.AddLast(snapshot(i))
	}
	assert.True(t, d.IsFull())
	assert.Panics(t, func() { d.AddLast(snapshot(8)) })

	// 丢弃最早的快照后继续写入
	for i := 8; i < 20; i++ {
		d.RemoveFirst()
		d.AddLast(snapshot(i))
	}
	assert.Equal(t, 12, d.Get(0).Step)
	assert.Equal(t, 19, d.Get(7).Step)
	assert.Panics(t, func() { d.Get(8) })

	for !d.IsEmpty() {
		d.RemoveLast()
	}
	assert.Panics(t, func() { d.RemoveFirst() })
}

func BenchmarkArrDeque_AddLast(b *testing.B) {
	d := NewArrDeque(4000)
	s := snapshot(0)
	for i := 0; i < b.N; i++ {
		d.AddLast(s)
		d.RemoveFirst()
	}
}
