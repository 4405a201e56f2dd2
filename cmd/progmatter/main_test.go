package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/elektrokombinacija/progmatter/internal/sim"
)

func TestPlaceScenarioRejectsOverfullGrid(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.GridSize = 5

	// 25 cells cannot hold 15 walls plus 6 agents plus 6 random goals.
	err := placeScenario(&cfg, 6, 15, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "distinct cells")
}

func TestPlaceScenarioFillsExactCapacity(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.GridSize = 5
	cfg.Seed = 7

	// 13 walls + 6 agents + 6 goals = 25, every cell used exactly once.
	require.NoError(t, placeScenario(&cfg, 6, 13, ""))
	require.Len(t, cfg.Walls, 13)
	require.Len(t, cfg.Agents, 6)
	require.Len(t, cfg.Goals, 6)
}
