//go:build !wasm

package fiber

import (
	"sync"

	"github.com/petermattis/goid"
)

var runtimes sync.Map

// Default returns the runtime of the calling goroutine, rendering into an
// in-memory host. Each goroutine gets its own, created on first use.
func Default() *Runtime {
	gid := goid.Get()

	if rt, ok := runtimes.Load(gid); ok {
		return rt.(*Runtime)
	}

	rt := newDefaultRuntime()
	runtimes.Store(gid, rt)
	return rt
}
