package scheduler

import "time"

// Priority is the urgency class of a scheduled task.
type Priority int

const (
	NoPriority Priority = iota
	ImmediatePriority
	UserBlockingPriority
	NormalPriority
	LowPriority
	IdlePriority
)

// maxSigned31BitInt ms, the idle timeout: effectively never expires.
const idleTimeout = 1073741823 * time.Millisecond

func (p Priority) String() string {
	switch p {
	case ImmediatePriority:
		return "immediate"
	case UserBlockingPriority:
		return "user-blocking"
	case NormalPriority:
		return "normal"
	case LowPriority:
		return "low"
	case IdlePriority:
		return "idle"
	default:
		return "none"
	}
}

// ParsePriority is the inverse of Priority.String.
func ParsePriority(s string) (Priority, bool) {
	for p := ImmediatePriority; p <= IdlePriority; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return NoPriority, false
}

// Timeouts maps each priority to the delay after which a queued task is
// considered expired. Higher urgency means a sooner deadline.
type Timeouts struct {
	Immediate    time.Duration `yaml:"immediate"`
	UserBlocking time.Duration `yaml:"userBlocking"`
	Normal       time.Duration `yaml:"normal"`
	Low          time.Duration `yaml:"low"`
	Idle         time.Duration `yaml:"idle"`
}

// DefaultTimeouts mirrors the classic browser scheduler constants.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Immediate:    -time.Millisecond,
		UserBlocking: 250 * time.Millisecond,
		Normal:       5000 * time.Millisecond,
		Low:          10000 * time.Millisecond,
		Idle:         idleTimeout,
	}
}

func (t Timeouts) timeout(p Priority) time.Duration {
	switch p {
	case ImmediatePriority:
		return t.Immediate
	case UserBlockingPriority:
		return t.UserBlocking
	case LowPriority:
		return t.Low
	case IdlePriority:
		return t.Idle
	default:
		return t.Normal
	}
}
