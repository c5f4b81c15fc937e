package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/joeycumines/logiface"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/AnatoleLucet/fiber"
	"github.com/AnatoleLucet/fiber/scheduler"
)

const (
	configKey  = "config"
	verboseKey = "verbose"
	opsKey     = "ops"
	itemsKey   = "items"
	itersKey   = "iterations"
)

func main() {
	cmd := &cli.Command{
		Name:  "fiberdemo",
		Usage: "Replay render scenarios and benchmark the reconciler",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Replay a YAML scenario on a manual clock",
				ArgsUsage: "<scenario.yaml>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  configKey,
						Usage: "YAML scheduler config, overridden by the scenario's own",
					},
					&cli.BoolFlag{
						Name:  verboseKey,
						Usage: "Log scheduler and reconciler events to stderr",
					},
					&cli.BoolFlag{
						Name:  opsKey,
						Usage: "Print every host operation",
					},
				},
				Action: run,
			},
			{
				Name:  "bench",
				Usage: "Time mount, update and reorder of a keyed list",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  itemsKey,
						Usage: "Number of list items",
						Value: 1000,
					},
					&cli.UintFlag{
						Name:  itersKey,
						Usage: "Iterations per benchmark",
						Value: 100,
					},
				},
				Action: bench,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("%w: missing scenario file", ErrInvalidScenario)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := LoadScenario(f)
	if err != nil {
		return err
	}

	var opts []scheduler.Option
	if cfgPath := cmd.String(configKey); cfgPath != "" && s.Scheduler == nil {
		cfg, err := loadConfig(cfgPath)
		if err != nil {
			return err
		}
		opts = append(opts, scheduler.WithConfig(cfg))
	}
	if cmd.Bool(verboseKey) {
		opts = append(opts, scheduler.WithLogger(fiber.NewLogger(os.Stderr, logiface.LevelTrace)))
	}

	report, err := Play(s, opts...)
	if err != nil {
		return err
	}

	printReport(report, cmd.Bool(opsKey))
	return nil
}

func loadConfig(path string) (scheduler.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return scheduler.Config{}, err
	}
	defer f.Close()

	return scheduler.LoadConfig(f)
}

func printReport(r *Report, ops bool) {
	name := r.Name
	if name == "" {
		name = "scenario"
	}
	fmt.Printf("%s: %s steps, %s slices, %s commits, %s host operations\n",
		name,
		humanize.Comma(int64(len(r.Steps))),
		humanize.Comma(int64(r.Slices)),
		humanize.Comma(int64(r.Commits)),
		humanize.Comma(int64(len(r.Ops))),
	)

	steps := tablewriter.NewWriter(os.Stdout)
	steps.SetHeader([]string{"step", "action", "clock", "slices", "pending", "tree"})
	for _, s := range r.Steps {
		steps.Append([]string{
			fmt.Sprint(s.Step),
			s.Action,
			s.Clock.String(),
			humanize.Comma(int64(s.Slices)),
			s.Pending.String(),
			summarize(s.Tree, 40),
		})
	}
	steps.Render()

	marks := tablewriter.NewWriter(os.Stdout)
	marks.SetHeader([]string{"at", "mark", "lanes"})
	for _, m := range r.Marks {
		marks.Append([]string{m.At.String(), m.Kind.String(), m.Lanes.String()})
	}
	marks.Render()

	if ops {
		opLog := tablewriter.NewWriter(os.Stdout)
		opLog.SetHeader([]string{"op", "node", "parent", "detail"})
		for _, op := range r.Ops {
			opLog.Append([]string{string(op.Kind), op.Node, op.Parent, op.Detail})
		}
		opLog.Render()
	}

	for _, err := range r.Errors {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
}

func summarize(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
