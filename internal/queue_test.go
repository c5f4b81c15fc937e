package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func appendReducer(state, action any) any {
	prev, _ := state.([]string)
	return append(append([]string(nil), prev...), action.(string))
}

func newStateHook(initial any) *hook {
	return &hook{kind: stateHook, memoizedState: initial, baseState: initial, queue: &UpdateQueue{}}
}

func TestProcessUpdates(t *testing.T) {
	t.Run("applies same-lane updates in enqueue order", func(t *testing.T) {
		current := newStateHook([]string{})
		current.queue.enqueue(&update{lane: DefaultLane, action: "a"})
		current.queue.enqueue(&update{lane: DefaultLane, action: "b"})
		current.queue.enqueue(&update{lane: DefaultLane, action: "c"})

		next := current.clone()
		skipped := processUpdates(current, next, DefaultLane, appendReducer)

		assert.Equal(t, NoLanes, skipped)
		assert.Equal(t, []string{"a", "b", "c"}, next.memoizedState)
		assert.Nil(t, next.baseQueue)
		assert.Nil(t, current.queue.pending)
	})

	t.Run("rebases updates after a skipped one", func(t *testing.T) {
		current := newStateHook([]string{})
		current.queue.enqueue(&update{lane: TransitionLane1, action: "a"})
		current.queue.enqueue(&update{lane: DefaultLane, action: "b"})

		urgent := current.clone()
		skipped := processUpdates(current, urgent, DefaultLane, appendReducer)

		assert.Equal(t, TransitionLane1, skipped)
		assert.Equal(t, []string{"b"}, urgent.memoizedState)
		assert.Equal(t, []string{}, urgent.baseState)

		// the urgent render committed, the transition replays on top of its base
		later := urgent.clone()
		skipped = processUpdates(urgent, later, TransitionLane1, appendReducer)

		assert.Equal(t, NoLanes, skipped)
		assert.Equal(t, []string{"a", "b"}, later.memoizedState)
		assert.Nil(t, later.baseQueue)
	})

	t.Run("keeps updates of a discarded render", func(t *testing.T) {
		current := newStateHook([]string{})
		current.queue.enqueue(&update{lane: DefaultLane, action: "a"})

		discarded := current.clone()
		processUpdates(current, discarded, DefaultLane, appendReducer)
		assert.Equal(t, []string{"a"}, discarded.memoizedState)

		current.queue.enqueue(&update{lane: DefaultLane, action: "b"})

		next := current.clone()
		processUpdates(current, next, DefaultLane, appendReducer)
		assert.Equal(t, []string{"a", "b"}, next.memoizedState)
	})

	t.Run("uses the latest reducer", func(t *testing.T) {
		current := newStateHook(1)
		current.queue.enqueue(&update{lane: DefaultLane, action: 2})

		next := current.clone()
		processUpdates(current, next, DefaultLane, func(state, action any) any {
			return state.(int) * action.(int)
		})
		assert.Equal(t, 2, next.memoizedState)
	})
}

func TestBasicStateReducer(t *testing.T) {
	assert.Equal(t, 3, basicStateReducer(1, 3))
	assert.Equal(t, 2, basicStateReducer(1, func(prev any) any { return prev.(int) + 1 }))
}
