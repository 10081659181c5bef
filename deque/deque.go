/**
 *
 * 利用数组实现双端队列，用于保存仿真过程中的温度场快照
 * 容量固定，连续的内存便于按时间顺序遍历
 *
 */

package deque

import "plasmaheat/model"

type Deque interface {
	// 队列的长度
	Size() int

	// 获取队列中对应下标的快照，0 为最早的一个
	Get(index int) *model.Snapshot

	// 正向遍历
	Traverse(f func(index int, item *model.Snapshot))

	// 在队列结尾增加一个元素
	AddLast(item *model.Snapshot)

	// 在队列结尾删除一个元素
	RemoveLast() *model.Snapshot

	// 在队列头部增加一个元素
	AddFirst(item *model.Snapshot)

	// 在队列头部删除一个元素
	RemoveFirst() *model.Snapshot

	IsFull() bool

	IsEmpty() bool
}
