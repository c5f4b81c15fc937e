package main

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnatoleLucet/fiber"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	f, err := os.Open("testdata/" + name)
	require.NoError(t, err)
	defer f.Close()

	s, err := LoadScenario(f)
	require.NoError(t, err)
	return s
}

func TestLoadScenario(t *testing.T) {
	t.Run("keeps scheduler defaults for omitted tunables", func(t *testing.T) {
		s := loadTestScenario(t, "typeahead.yaml")

		require.NotNil(t, s.Scheduler)
		assert.Equal(t, "typeahead", s.Name)
		assert.Len(t, s.Steps, 5)
		assert.NotZero(t, s.Scheduler.Timeouts.Normal)
	})

	for name, doc := range map[string]string{
		"two actions in one step": "steps:\n  - {tick: 1, flush: true}\n",
		"an unknown lane":         "steps:\n  - render: {lane: later}\n",
		"an unknown field":        "steps:\n  - {wait: 1}\n",
		"an invalid frame budget": "scheduler: {frameBudget: 0s}\n",
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := LoadScenario(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestPlay(t *testing.T) {
	t.Run("an urgent render interrupts a sliced transition", func(t *testing.T) {
		report, err := Play(loadTestScenario(t, "typeahead.yaml"))
		require.NoError(t, err)
		require.Len(t, report.Steps, 5)
		assert.Empty(t, report.Errors)

		initial := report.Steps[0].Tree
		assert.Contains(t, initial, "initial 2")

		// the transition yielded after its first slice without touching the tree
		yielded := report.Steps[2]
		assert.Equal(t, 1, yielded.Slices)
		assert.Equal(t, initial, yielded.Tree)
		assert.NotZero(t, yielded.Pending)

		assert.Contains(t, report.Steps[3].Tree, "typed 0")
		assert.Contains(t, report.Tree, "typed 2")
		assert.NotContains(t, report.Tree, "results")
		assert.Equal(t, fiber.Lanes(fiber.NoLane), report.Steps[4].Pending)

		discarded := 0
		for _, m := range report.Marks {
			if m.Kind == fiber.BuildDiscarded {
				discarded++
			}
		}
		assert.Equal(t, 1, discarded)
	})

	t.Run("a transition alone commits once flushed", func(t *testing.T) {
		s := &Scenario{Steps: []Step{
			{Render: &RenderStep{Lane: "transition", Items: 4, Label: "row"}},
			{Flush: true},
		}}

		report, err := Play(s)
		require.NoError(t, err)

		assert.Empty(t, report.Steps[0].Tree)
		assert.Equal(t, `<ul><li id="0">row 0</li><li id="1">row 1</li><li id="2">row 2</li><li id="3">row 3</li></ul>`, report.Tree)
		assert.Equal(t, 1, report.Commits)
	})

	t.Run("reversing keyed rows moves them", func(t *testing.T) {
		s := &Scenario{Steps: []Step{
			{Render: &RenderStep{Lane: "sync", Items: 3, Label: "r"}},
			{Render: &RenderStep{Lane: "sync", Items: 3, Label: "r", Reverse: true}},
		}}

		report, err := Play(s)
		require.NoError(t, err)

		assert.Equal(t, `<ul><li id="2">r 2</li><li id="1">r 1</li><li id="0">r 0</li></ul>`, report.Tree)
	})
}
