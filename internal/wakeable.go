package internal

import "sync"

// Wakeable is anything a render can suspend on. Then registers fn to run
// once it settles; fn may be called from any goroutine.
type Wakeable interface {
	Then(fn func())
}

type resourceStatus int

const (
	resourcePending resourceStatus = iota
	resourceResolved
	resourceRejected
)

// Resource is a value settled at most once, possibly from another
// goroutine. Reading it while pending suspends the render.
type Resource struct {
	mu        sync.Mutex
	status    resourceStatus
	value     any
	err       error
	listeners []func()
}

func NewResource() *Resource {
	return &Resource{}
}

func (res *Resource) Then(fn func()) {
	res.mu.Lock()
	if res.status == resourcePending {
		res.listeners = append(res.listeners, fn)
		res.mu.Unlock()
		return
	}
	res.mu.Unlock()

	fn()
}

func (res *Resource) Resolve(v any) bool {
	return res.settle(resourceResolved, v, nil)
}

func (res *Resource) Reject(err error) bool {
	return res.settle(resourceRejected, nil, err)
}

func (res *Resource) settle(status resourceStatus, v any, err error) bool {
	res.mu.Lock()
	if res.status != resourcePending {
		res.mu.Unlock()
		return false
	}
	res.status, res.value, res.err = status, v, err
	listeners := res.listeners
	res.listeners = nil
	res.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
	return true
}

// Read returns the resolved value. It suspends the calling render while the
// resource is pending and throws the error of a rejected one.
func (res *Resource) Read() any {
	res.mu.Lock()
	status, v, err := res.status, res.value, res.err
	res.mu.Unlock()

	switch status {
	case resourceResolved:
		return v
	case resourceRejected:
		panic(err)
	default:
		panic(suspendSignal{wakeable: res})
	}
}

// Settled reports whether Resolve or Reject was called.
func (res *Resource) Settled() bool {
	res.mu.Lock()
	defer res.mu.Unlock()
	return res.status != resourcePending
}
