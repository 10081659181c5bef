package deque

import (
	"plasmaheat/model"
)

// 数组大小基数
const base = 8

// 环形数组实现
type ArrDeque struct {
	arr []*model.Snapshot
	// 头部元素的下标
	start int
	// 元素个数
	size int
	// 容量
	capacity int
}

var _ Deque = (*ArrDeque)(nil)

// 工厂方法，容量向上取整到 base 的倍数
func NewArrDeque(capacity int) *ArrDeque {
	if capacity < 1 {
		capacity = 1
	}
	if remainder := capacity % base; remainder != 0 {
		capacity = capacity - remainder + base
	}
	return &ArrDeque{
		arr:      make([]*model.Snapshot, capacity),
		capacity: capacity,
	}
}

func (ad *ArrDeque) Size() int {
	return ad.size
}

func (ad *ArrDeque) Capacity() int {
	return ad.capacity
}

func (ad *ArrDeque) index(i int) int {
	return (ad.start + i) % ad.capacity
}

func (ad *ArrDeque) Get(index int) *model.Snapshot {
	if index < 0 || index >= ad.size {
		panic("index out of length")
	}
	return ad.arr[ad.index(index)]
}

func (ad *ArrDeque) Traverse(f func(index int, item *model.Snapshot)) {
	for i := 0; i < ad.size; i++ {
		f(i, ad.arr[ad.index(i)])
	}
}

func (ad *ArrDeque) AddLast(item *model.Snapshot) {
	if ad.IsFull() {
		panic("deque is full")
	}
	ad.arr[ad.index(ad.size)] = item
	ad.size++
}

func (ad *ArrDeque) RemoveLast() *model.Snapshot {
	if ad.IsEmpty() {
		panic("deque is empty")
	}
	k := ad.index(ad.size - 1)
	item := ad.arr[k]
	ad.arr[k] = nil
	ad.size--
	return item
}

func (ad *ArrDeque) AddFirst(item *model.Snapshot) {
	if ad.IsFull() {
		panic("deque is full")
	}
	ad.start = (ad.start - 1 + ad.capacity) % ad.capacity
	ad.arr[ad.start] = item
	ad.size++
}

func (ad *ArrDeque) RemoveFirst() *model.Snapshot {
	if ad.IsEmpty() {
		panic("deque is empty")
	}
	item := ad.arr[ad.start]
	ad.arr[ad.start] = nil
	ad.start = (ad.start + 1) % ad.capacity
	ad.size--
	return item
}

func (ad *ArrDeque) Last() *model.Snapshot {
	if ad.IsEmpty() {
		return nil
	}
	return ad.arr[ad.index(ad.size-1)]
}

// 按时间顺序复制出所有快照
func (ad *ArrDeque) Slice() []*model.Snapshot {
	res := make([]*model.Snapshot, 0, ad.size)
	ad.Traverse(func(_ int, item *model.Snapshot) {
		res = append(res, item)
	})
	return res
}

func (ad *ArrDeque) IsFull() bool {
	return ad.size == ad.capacity
}

func (ad *ArrDeque) IsEmpty() bool {
	return ad.size == 0
}
