package internal

import (
	"math/bits"
	"time"

	"github.com/AnatoleLucet/fiber/scheduler"
)

// Lanes is a set of update classes. A single-bit value is a Lane; lower bits
// are more urgent.
type Lanes uint32

// Lane is a Lanes value with exactly one bit set.
type Lane = Lanes

const TotalLanes = 31

const (
	NoLanes Lanes = 0
	NoLane  Lane  = 0

	SyncLane            Lane = 1 << 0
	InputContinuousLane Lane = 1 << 1
	DefaultLane         Lane = 1 << 2

	TransitionLanes Lanes = 0xffff << 3
	TransitionLane1 Lane  = 1 << 3

	RetryLanes Lanes = 0x1f << 19
	RetryLane1 Lane  = 1 << 19

	IdleLane      Lane = 1 << 24
	OffscreenLane Lane = 1 << 25

	NonIdleLanes = SyncLane | InputContinuousLane | DefaultLane | TransitionLanes | RetryLanes
)

// NoTimestamp marks a lane without an expiration time.
const NoTimestamp time.Duration = -1

func MergeLanes(a, b Lanes) Lanes { return a | b }

func RemoveLanes(set, subset Lanes) Lanes { return set &^ subset }

func IntersectLanes(a, b Lanes) Lanes { return a & b }

func IncludesSomeLane(a, b Lanes) bool { return a&b != 0 }

func IsSubsetOfLanes(set, subset Lanes) bool { return set&subset == subset }

// HighestPriorityLane isolates the most urgent lane of l.
func HighestPriorityLane(l Lanes) Lane { return l & -l }

func laneToIndex(l Lane) int { return bits.TrailingZeros32(uint32(l)) }

func (l Lanes) String() string {
	switch HighestPriorityLane(l) {
	case NoLane:
		return "none"
	case SyncLane:
		return "sync"
	case InputContinuousLane:
		return "input"
	case DefaultLane:
		return "default"
	case IdleLane:
		return "idle"
	case OffscreenLane:
		return "offscreen"
	}
	switch {
	case l&TransitionLanes != 0:
		return "transition"
	case l&RetryLanes != 0:
		return "retry"
	}
	return "unknown"
}

// getHighestPriorityLanes returns the most urgent group in lanes. Pending
// transitions and pending retries each form a single group.
func getHighestPriorityLanes(lanes Lanes) Lanes {
	switch l := HighestPriorityLane(lanes); {
	case l == SyncLane, l == InputContinuousLane, l == DefaultLane:
		return l
	case l&TransitionLanes != 0:
		return lanes & TransitionLanes
	case l&RetryLanes != 0:
		return lanes & RetryLanes
	default:
		return l
	}
}

// PickNextLanes decides what the next build works on. An in-flight build for
// wip is kept unless the best candidate is strictly more urgent than it.
func PickNextLanes(pending, wip, suspended, pinged Lanes) Lanes {
	if pending == NoLanes {
		return NoLanes
	}

	pick := func(candidates Lanes) Lanes {
		if unblocked := candidates &^ suspended; unblocked != NoLanes {
			return getHighestPriorityLanes(unblocked)
		}
		if p := candidates & pinged; p != NoLanes {
			return getHighestPriorityLanes(p)
		}
		return NoLanes
	}

	var next Lanes
	if nonIdle := pending & NonIdleLanes; nonIdle != NoLanes {
		next = pick(nonIdle)
	} else {
		next = pick(pending)
	}

	if next == NoLanes {
		return NoLanes
	}

	if wip != NoLanes && wip != next && wip&suspended == NoLanes {
		if HighestPriorityLane(next) >= HighestPriorityLane(wip) {
			return wip
		}
	}

	return next
}

// LanesToPriority maps the most urgent lane to the scheduler priority its
// work runs at.
func LanesToPriority(lanes Lanes) scheduler.Priority {
	switch l := HighestPriorityLane(lanes); {
	case l == NoLane:
		return scheduler.NormalPriority
	case l == SyncLane:
		return scheduler.ImmediatePriority
	case l == InputContinuousLane:
		return scheduler.UserBlockingPriority
	case l&NonIdleLanes != 0:
		return scheduler.NormalPriority
	default:
		return scheduler.IdlePriority
	}
}

func includesBlockingLane(lanes Lanes) bool {
	return lanes&SyncLane != 0
}

func computeExpirationTime(lane Lane, now time.Duration) time.Duration {
	switch {
	case lane == SyncLane, lane == InputContinuousLane:
		return now + 250*time.Millisecond
	case lane == DefaultLane, lane&TransitionLanes != 0:
		return now + 5*time.Second
	default:
		// retries wait on data, idle and offscreen work may starve
		return NoTimestamp
	}
}

// laneAllocator hands out transition and retry lanes round-robin so that
// independent transitions do not share a lane.
type laneAllocator struct {
	nextTransition Lane
	nextRetry      Lane
}

func newLaneAllocator() laneAllocator {
	return laneAllocator{nextTransition: TransitionLane1, nextRetry: RetryLane1}
}

func (a *laneAllocator) claimTransition() Lane {
	l := a.nextTransition
	a.nextTransition <<= 1
	if a.nextTransition&TransitionLanes == 0 {
		a.nextTransition = TransitionLane1
	}
	return l
}

func (a *laneAllocator) claimRetry() Lane {
	l := a.nextRetry
	a.nextRetry <<= 1
	if a.nextRetry&RetryLanes == 0 {
		a.nextRetry = RetryLane1
	}
	return l
}
