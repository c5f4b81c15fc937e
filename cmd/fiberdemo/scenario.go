package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AnatoleLucet/fiber"
	"github.com/AnatoleLucet/fiber/memhost"
	"github.com/AnatoleLucet/fiber/scheduler"
)

var ErrInvalidScenario = errors.New("fiberdemo: invalid scenario")

// Scenario is a scripted session against a list app, replayed on a manual
// clock so that slicing is reproducible.
type Scenario struct {
	Name      string           `yaml:"name"`
	Scheduler *SchedulerConfig `yaml:"scheduler"`

	// ItemCost is the clock time each list item takes to render.
	ItemCost time.Duration `yaml:"itemCost"`

	Steps []Step `yaml:"steps"`
}

// SchedulerConfig decodes on top of scheduler.DefaultConfig, so a scenario
// only lists the tunables it changes.
type SchedulerConfig struct {
	scheduler.Config
}

func (c *SchedulerConfig) UnmarshalYAML(value *yaml.Node) error {
	cfg := scheduler.DefaultConfig()
	if err := value.Decode(&cfg); err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// Step does exactly one thing.
type Step struct {
	Render  *RenderStep   `yaml:"render"`
	Advance time.Duration `yaml:"advance"`
	Tick    int           `yaml:"tick"`
	Flush   bool          `yaml:"flush"`
}

type RenderStep struct {
	Lane    string `yaml:"lane"`
	Items   int    `yaml:"items"`
	Label   string `yaml:"label"`
	Reverse bool   `yaml:"reverse"`
}

func LoadScenario(r io.Reader) (*Scenario, error) {
	var s Scenario

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Scheduler != nil {
		if err := s.Scheduler.Validate(); err != nil {
			return err
		}
	}

	for i, step := range s.Steps {
		actions := 0
		if step.Render != nil {
			actions++
			if _, err := parseLane(step.Render.Lane); err != nil {
				return fmt.Errorf("%w: step %d: %w", ErrInvalidScenario, i, err)
			}
			if step.Render.Items < 0 {
				return fmt.Errorf("%w: step %d: negative item count", ErrInvalidScenario, i)
			}
		}
		if step.Advance != 0 {
			actions++
		}
		if step.Tick != 0 {
			actions++
		}
		if step.Flush {
			actions++
		}
		if actions != 1 {
			return fmt.Errorf("%w: step %d must do exactly one thing, does %d", ErrInvalidScenario, i, actions)
		}
	}

	return nil
}

func parseLane(name string) (fiber.Lane, error) {
	switch name {
	case "sync":
		return fiber.SyncLane, nil
	case "input":
		return fiber.InputLane, nil
	case "", "default":
		return fiber.DefaultLane, nil
	case "transition":
		// claimed by StartTransition
		return fiber.NoLane, nil
	case "idle":
		return fiber.IdleLane, nil
	}
	return fiber.NoLane, fmt.Errorf("unknown lane %q", name)
}

// StepResult is the state observed right after a step.
type StepResult struct {
	Step    int
	Action  string
	Clock   time.Duration
	Slices  int
	Pending fiber.Lanes
	Tree    string
}

type Report struct {
	Name    string
	Steps   []StepResult
	Marks   []fiber.Mark
	Ops     []memhost.Op
	Tree    string
	Slices  int
	Commits int
	Errors  []error
}

type player struct {
	clock    *scheduler.ManualClock
	host     *scheduler.ManualHost
	mem      *memhost.Host
	profiler *fiber.Recorder

	rt        *fiber.Runtime
	root      *fiber.Root
	container *memhost.Node

	list *fiber.Component
	item *fiber.Component

	errs []error
}

func newPlayer(s *Scenario, opts ...scheduler.Option) *player {
	p := &player{
		clock:     scheduler.NewManualClock(),
		host:      scheduler.NewManualHost(),
		mem:       memhost.New(),
		profiler:  fiber.NewRecorder(),
		container: memhost.NewContainer(),
	}

	schedOpts := []scheduler.Option{
		scheduler.WithClock(p.clock),
		scheduler.WithHost(p.host),
		scheduler.WithErrorHandler(func(err error) { p.errs = append(p.errs, err) }),
	}
	if s.Scheduler != nil {
		schedOpts = append(schedOpts, scheduler.WithConfig(s.Scheduler.Config))
	}
	schedOpts = append(schedOpts, opts...)

	p.rt = fiber.New(p.mem,
		fiber.WithScheduler(scheduler.New(schedOpts...)),
		fiber.WithProfiler(p.profiler),
		fiber.WithUncaughtErrorHandler(func(err error) { p.errs = append(p.errs, err) }),
	)
	p.root = p.rt.CreateRoot(p.container)

	cost := s.ItemCost
	p.item = fiber.NewComponent("Item", func(_ *fiber.Hooks, props fiber.Props, _ []*fiber.Element) *fiber.Element {
		p.clock.Advance(cost)
		return fiber.H("li", fiber.Props{"id": props["id"]}, fiber.Text(props["text"].(string)))
	})
	p.list = fiber.NewComponent("List", func(_ *fiber.Hooks, props fiber.Props, _ []*fiber.Element) *fiber.Element {
		step := props["step"].(*RenderStep)

		items := make([]*fiber.Element, step.Items)
		for i := range items {
			n := i
			if step.Reverse {
				n = step.Items - 1 - i
			}
			id := fmt.Sprint(n)
			items[i] = fiber.Keyed(id, fiber.C(p.item, fiber.Props{
				"id":   id,
				"text": fmt.Sprintf("%s %d", step.Label, n),
			}))
		}
		return fiber.H("ul", nil, items...)
	})

	return p
}

func (p *player) render(step *RenderStep) error {
	el := fiber.C(p.list, fiber.Props{"step": step})

	switch step.Lane {
	case "sync":
		return p.root.RenderSync(el)
	case "transition":
		var err error
		p.rt.StartTransition(func() { err = p.root.Render(el) })
		return err
	}

	lane, err := parseLane(step.Lane)
	if err != nil {
		return err
	}
	p.rt.WithLane(lane, func() { err = p.root.Render(el) })
	return err
}

func (p *player) play(step Step) (string, error) {
	switch {
	case step.Render != nil:
		lane := step.Render.Lane
		if lane == "" {
			lane = "default"
		}
		return fmt.Sprintf("render %d %q at %s", step.Render.Items, step.Render.Label, lane), p.render(step.Render)

	case step.Advance != 0:
		p.clock.Advance(step.Advance)
		p.host.FireTimeout()
		return fmt.Sprintf("advance %s", step.Advance), nil

	case step.Tick != 0:
		for i := 0; i < step.Tick; i++ {
			if !p.host.Tick() {
				break
			}
		}
		return fmt.Sprintf("tick %d", step.Tick), nil

	default:
		p.host.RunUntilIdle()
		return "flush", nil
	}
}

// Play replays s from an empty tree.
func Play(s *Scenario, opts ...scheduler.Option) (*Report, error) {
	p := newPlayer(s, opts...)
	report := &Report{Name: s.Name}

	for i, step := range s.Steps {
		action, err := p.play(step)
		if err != nil {
			return report, fmt.Errorf("step %d (%s): %w", i, action, err)
		}

		report.Steps = append(report.Steps, StepResult{
			Step:    i,
			Action:  action,
			Clock:   p.clock.Now(),
			Slices:  p.host.Slices(),
			Pending: p.root.PendingLanes(),
			Tree:    p.container.String(),
		})
	}

	report.Marks = p.profiler.Marks()
	report.Ops = p.mem.Ops()
	report.Tree = p.container.String()
	report.Slices = p.host.Slices()
	report.Commits = p.profiler.Count(fiber.CommitStopped)
	report.Errors = p.errs

	return report, nil
}
