package scheduler

import "container/heap"

// TaskQueue is a min-heap of tasks ordered by sort index, then by insertion
// sequence so that equal deadlines run first-in first-out. Queued entries are
// never mutated in place: cancellation only sets a tombstone that the loop
// checks when the task reaches the top.
type TaskQueue struct {
	items taskHeap
}

func NewTaskQueue() *TaskQueue {
	return &TaskQueue{items: make(taskHeap, 0, 16)}
}

// Push inserts t in O(log n).
func (q *TaskQueue) Push(t *Task) {
	heap.Push(&q.items, t)
}

// Peek returns the minimum task without removing it, or nil.
func (q *TaskQueue) Peek() *Task {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

// Pop removes and returns the minimum task in O(log n), or nil.
func (q *TaskQueue) Pop() *Task {
	if len(q.items) == 0 {
		return nil
	}
	return heap.Pop(&q.items).(*Task)
}

func (q *TaskQueue) Len() int      { return len(q.items) }
func (q *TaskQueue) IsEmpty() bool { return len(q.items) == 0 }

type taskHeap []*Task

var _ heap.Interface = (*taskHeap)(nil)

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].sortIndex != h[j].sortIndex {
		return h[i].sortIndex < h[j].sortIndex
	}
	return h[i].seq < h[j].seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*Task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}
