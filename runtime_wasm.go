//go:build wasm

package fiber

import "sync"

var (
	once          sync.Once
	globalRuntime *Runtime
)

// Default returns the runtime shared by the whole program, rendering into an
// in-memory host.
func Default() *Runtime {
	once.Do(func() {
		globalRuntime = newDefaultRuntime()
	})

	return globalRuntime
}
