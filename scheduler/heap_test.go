package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskQueue(t *testing.T) {
	t.Run("orders by sort index then sequence", func(t *testing.T) {
		q := NewTaskQueue()

		q.Push(&Task{id: 1, seq: 1, sortIndex: 30 * time.Millisecond})
		q.Push(&Task{id: 2, seq: 2, sortIndex: 10 * time.Millisecond})
		q.Push(&Task{id: 3, seq: 3, sortIndex: 10 * time.Millisecond})
		q.Push(&Task{id: 4, seq: 4, sortIndex: 20 * time.Millisecond})

		assert.Equal(t, uint64(2), q.Peek().ID())

		var ids []uint64
		for !q.IsEmpty() {
			ids = append(ids, q.Pop().ID())
		}

		assert.Equal(t, []uint64{2, 3, 4, 1}, ids)
	})

	t.Run("empty queue", func(t *testing.T) {
		q := NewTaskQueue()

		assert.Nil(t, q.Peek())
		assert.Nil(t, q.Pop())
		assert.True(t, q.IsEmpty())
	})

	t.Run("popped tasks forget their index", func(t *testing.T) {
		q := NewTaskQueue()
		task := &Task{id: 1, seq: 1}

		q.Push(task)
		assert.Equal(t, 0, task.index)

		q.Pop()
		assert.Equal(t, -1, task.index)
	})

	t.Run("keeps fifo among many equal deadlines", func(t *testing.T) {
		q := NewTaskQueue()
		for i := 1; i <= 100; i++ {
			q.Push(&Task{id: uint64(i), seq: uint64(i), sortIndex: time.Second})
		}

		for i := 1; i <= 100; i++ {
			assert.Equal(t, uint64(i), q.Pop().ID())
		}
	})
}
