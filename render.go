package fiber

import (
	"github.com/AnatoleLucet/fiber/memhost"
	"github.com/AnatoleLucet/fiber/scheduler"
)

func newDefaultRuntime() *Runtime {
	return New(memhost.New())
}

// Render mounts el with the Default runtime into a new in-memory container
// and returns the container once the tree is committed. Passive effects
// have run by then.
func Render(el *Element) (*memhost.Node, error) {
	rt := Default()
	container := memhost.NewContainer()
	root := rt.CreateRoot(container)

	if err := root.RenderSync(el); err != nil {
		return container, err
	}
	rt.RunUntilIdle()
	return container, nil
}

// RunUntilIdle runs every posted func and scheduled task, timers excluded,
// when the scheduler is driven by a scheduler.ManualHost. It returns the
// number of host ticks.
func (rt *Runtime) RunUntilIdle() int {
	host, ok := rt.Scheduler().Host().(*scheduler.ManualHost)
	if !ok {
		return 0
	}
	return host.RunUntilIdle()
}
