package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"

	"github.com/AnatoleLucet/fiber"
	"github.com/AnatoleLucet/fiber/memhost"
)

type benchCase struct {
	name string

	// setup renders the starting tree, step the measured update
	setup func(rt *fiber.Runtime, root *fiber.Root, n int) error
	step  func(rt *fiber.Runtime, root *fiber.Root, n, i int) error
}

var benchRow = fiber.NewComponent("Row", func(_ *fiber.Hooks, props fiber.Props, _ []*fiber.Element) *fiber.Element {
	return fiber.H("li", fiber.Props{"id": props["id"], "class": props["class"]}, fiber.Text(props["id"].(string)))
})

func benchList(n int, class string, order func(i int) int) *fiber.Element {
	rows := make([]*fiber.Element, n)
	for i := range rows {
		id := fmt.Sprint(order(i))
		rows[i] = fiber.Keyed(id, fiber.C(benchRow, fiber.Props{"id": id, "class": class}))
	}
	return fiber.H("ul", nil, rows...)
}

func identity(i int) int { return i }

func renderSync(rt *fiber.Runtime, root *fiber.Root, el *fiber.Element) error {
	return root.RenderSync(el)
}

var benchCases = []benchCase{
	{
		name: "mount",
		setup: func(rt *fiber.Runtime, root *fiber.Root, n int) error {
			return renderSync(rt, root, nil)
		},
		step: func(rt *fiber.Runtime, root *fiber.Root, n, i int) error {
			if err := renderSync(rt, root, benchList(n, "a", identity)); err != nil {
				return err
			}
			return renderSync(rt, root, nil)
		},
	},
	{
		name: "update every row",
		setup: func(rt *fiber.Runtime, root *fiber.Root, n int) error {
			return renderSync(rt, root, benchList(n, "even", identity))
		},
		step: func(rt *fiber.Runtime, root *fiber.Root, n, i int) error {
			class := "even"
			if i%2 == 0 {
				class = "odd"
			}
			return renderSync(rt, root, benchList(n, class, identity))
		},
	},
	{
		name: "reverse keyed rows",
		setup: func(rt *fiber.Runtime, root *fiber.Root, n int) error {
			return renderSync(rt, root, benchList(n, "a", identity))
		},
		step: func(rt *fiber.Runtime, root *fiber.Root, n, i int) error {
			order := identity
			if i%2 == 0 {
				order = func(j int) int { return n - 1 - j }
			}
			return renderSync(rt, root, benchList(n, "a", order))
		},
	},
	{
		name: "sliced default render",
		setup: func(rt *fiber.Runtime, root *fiber.Root, n int) error {
			return renderSync(rt, root, nil)
		},
		step: func(rt *fiber.Runtime, root *fiber.Root, n, i int) error {
			if err := root.Render(benchList(n, fmt.Sprint(i), identity)); err != nil {
				return err
			}
			rt.RunUntilIdle()
			return nil
		},
	},
}

func bench(ctx context.Context, cmd *cli.Command) error {
	n := int(cmd.Uint(itemsKey))
	iters := int(cmd.Uint(itersKey))

	tbl := table.NewWriter()
	tbl.SetTitle(fmt.Sprintf("%d rows, %d iterations", n, iters))
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, bc := range benchCases {
		rt := fiber.New(memhost.New())
		root := rt.CreateRoot(memhost.NewContainer())
		if err := bc.setup(rt, root, n); err != nil {
			return fmt.Errorf("%s: %w", bc.name, err)
		}

		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		for i := 0; i < iters; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			if err := bc.step(rt, root, n, i); err != nil {
				return fmt.Errorf("%s: %w", bc.name, err)
			}
			tach.AddTime(time.Since(start))
		}

		calc := tach.Calc()
		tbl.AppendRows([]table.Row{
			{
				bc.name,
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			},
		})
	}

	tbl.Render()
	return nil
}
