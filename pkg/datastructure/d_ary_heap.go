package datastructure

import (
	"errors"

	"golang.org/x/exp/constraints"
)

var ErrEmptyHeap = errors.New("heap is empty")

type PriorityQueueNode[T constraints.Ordered] struct {
	rank    float64
	item    T
	itemPos int
}

func (p *PriorityQueueNode[T]) GetItem() T {
	return p.item
}

func (p *PriorityQueueNode[T]) GetRank() float64 {
	return p.rank
}

func (p *PriorityQueueNode[T]) SetRank(rank float64) {
	p.rank = rank
}

func (p *PriorityQueueNode[T]) SetPos(i int) {
	p.itemPos = i
}

func (p *PriorityQueueNode[T]) GetPos() int {
	return p.itemPos
}

func NewPriorityQueueNode[T constraints.Ordered](rank float64, item T) *PriorityQueueNode[T] {
	return &PriorityQueueNode[T]{rank: rank, item: item}
}

// MinHeap d-ary heap priority queue keyed by item. every item is stored at most once, pushing an
// item that is already queued replaces its rank (decrease-key or increase-key).
// ranks are compared with EPS tolerance, ranks within EPS of each other are ordered by item ascending.
type MinHeap[T constraints.Ordered] struct {
	heap  []*PriorityQueueNode[T]
	index map[T]*PriorityQueueNode[T]
	d     int
}

func NewBinaryHeap[T constraints.Ordered]() *MinHeap[T] {
	return NewdAryHeap[T](2)
}

func NewFourAryHeap[T constraints.Ordered]() *MinHeap[T] {
	return NewdAryHeap[T](4)
}

func NewdAryHeap[T constraints.Ordered](d int) *MinHeap[T] {
	if d < 2 {
		d = 2
	}
	return &MinHeap[T]{
		heap:  make([]*PriorityQueueNode[T], 0),
		index: make(map[T]*PriorityQueueNode[T]),
		d:     d,
	}
}

// Preallocate sizes the heap for maxSearchSize items. Clear keeps the capacity.
func (h *MinHeap[T]) Preallocate(maxSearchSize int) {
	h.heap = make([]*PriorityQueueNode[T], 0, maxSearchSize)
	h.index = make(map[T]*PriorityQueueNode[T], maxSearchSize)
}

func (h *MinHeap[T]) less(i, j int) bool {
	a, b := h.heap[i], h.heap[j]
	if Lt(a.rank, b.rank) {
		return true
	}
	if Lt(b.rank, a.rank) {
		return false
	}
	return a.item < b.item
}

// parent get index of the parent
func (h *MinHeap[T]) parent(index int) int {
	return (index - 1) / h.d
}

// heapifyUp restores the heap property by swapping index with its parent while it ranks lower. O(logN).
func (h *MinHeap[T]) heapifyUp(index int) {
	for index != 0 && h.less(index, h.parent(index)) {
		h.Swap(index, h.parent(index))
		index = h.parent(index)
	}
}

// heapifyDown restores the heap property by swapping index with its smallest child. O(d*logN).
func (h *MinHeap[T]) heapifyDown(index int) {
	for {
		leftMostChild := index*h.d + 1
		if leftMostChild >= len(h.heap) {
			return
		}

		sentinel := leftMostChild + h.d
		if sentinel > len(h.heap) {
			sentinel = len(h.heap)
		}

		smallest := leftMostChild
		for i := leftMostChild + 1; i < sentinel; i++ {
			if h.less(i, smallest) {
				smallest = i
			}
		}

		if !h.less(smallest, index) {
			return
		}
		h.Swap(index, smallest)
		index = smallest
	}
}

func (h *MinHeap[T]) Swap(i, j int) {
	h.heap[i], h.heap[j] = h.heap[j], h.heap[i]

	h.heap[i].SetPos(i)
	h.heap[j].SetPos(j)
}

func (h *MinHeap[T]) IsEmpty() bool {
	return len(h.heap) == 0
}

func (h *MinHeap[T]) Size() int {
	return len(h.heap)
}

func (h *MinHeap[T]) Clear() {
	clear(h.heap)
	h.heap = h.heap[:0]
	clear(h.index)
}

// Contains reports whether item is queued.
func (h *MinHeap[T]) Contains(item T) bool {
	_, ok := h.index[item]
	return ok
}

// GetRank returns the last pushed rank of item.
func (h *MinHeap[T]) GetRank(item T) (float64, bool) {
	node, ok := h.index[item]
	if !ok {
		return 0, false
	}
	return node.rank, true
}

// GetMin returns the minimum node (index 0) without removing it.
func (h *MinHeap[T]) GetMin() (*PriorityQueueNode[T], error) {
	if h.IsEmpty() {
		return &PriorityQueueNode[T]{}, ErrEmptyHeap
	}
	return h.heap[0], nil
}

// Push inserts item with rank, or replaces the rank of an already queued item.
func (h *MinHeap[T]) Push(item T, rank float64) {
	if node, ok := h.index[item]; ok {
		node.SetRank(rank)
		h.heapifyUp(node.GetPos())
		h.heapifyDown(node.GetPos())
		return
	}
	node := NewPriorityQueueNode(rank, item)
	h.heap = append(h.heap, node)
	index := h.Size() - 1
	node.SetPos(index)
	h.index[item] = node
	h.heapifyUp(index)
}

// ExtractMin removes and returns the minimum node. O(d*logN).
func (h *MinHeap[T]) ExtractMin() (*PriorityQueueNode[T], error) {
	if h.IsEmpty() {
		return &PriorityQueueNode[T]{}, ErrEmptyHeap
	}
	root := h.heap[0]
	h.removeAt(0)
	return root, nil
}

// Remove drops item from the queue, it is a no-op when item is not queued.
func (h *MinHeap[T]) Remove(item T) bool {
	node, ok := h.index[item]
	if !ok {
		return false
	}
	h.removeAt(node.GetPos())
	return true
}

func (h *MinHeap[T]) removeAt(pos int) {
	node := h.heap[pos]
	last := h.Size() - 1
	if pos != last {
		h.Swap(pos, last)
	}
	h.heap = h.heap[:last]
	delete(h.index, node.item)
	node.SetPos(-1)

	if pos < len(h.heap) {
		h.heapifyDown(pos)
		h.heapifyUp(pos)
	}
}
