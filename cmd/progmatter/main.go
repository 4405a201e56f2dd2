// Command progmatter runs multi-agent grid coordination experiments.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/elektrokombinacija/progmatter/internal/core"
	"github.com/elektrokombinacija/progmatter/internal/events"
	"github.com/elektrokombinacija/progmatter/internal/recorder"
	"github.com/elektrokombinacija/progmatter/internal/search"
	"github.com/elektrokombinacija/progmatter/internal/sim"
)

func main() {
	var (
		size     = flag.Int("size", 15, "grid dimension N (5-50)")
		agents   = flag.Int("agents", 6, "number of agents")
		walls    = flag.Int("walls", 20, "number of random wall cells")
		topo     = flag.String("topology", "vonneumann", "vonneumann | moore")
		movement = flag.String("movement", "parallel", "parallel | sequential")
		decision = flag.String("decision", "centralized", "centralized | distributed")
		radius   = flag.Int("radius", 3, "visibility radius in distributed mode")
		ticks    = flag.Int("ticks", 500, "tick budget per run")
		seed     = flag.Int64("seed", 42, "random seed")
		shape    = flag.String("shape", "", "goal formation: square | diamond | triangle | line")
		dbPath   = flag.String("db", "", "record runs to this SQLite file")
		verbose  = flag.Bool("v", false, "log every event")
	)
	flag.Parse()

	cfg := sim.DefaultConfig()
	cfg.GridSize = *size
	cfg.VisibilityRadius = *radius
	cfg.Seed = *seed
	switch *topo {
	case "moore":
		cfg.Topology = core.Moore
	default:
		cfg.Topology = core.VonNeumann
	}
	if *movement == "sequential" {
		cfg.Movement = core.Sequential
	}
	if *decision == "distributed" {
		cfg.Decision = core.Distributed
	}
	if err := placeScenario(&cfg, *agents, *walls, *shape); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var store *recorder.Store
	if *dbPath != "" {
		var err error
		store, err = recorder.New(*dbPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open recorder:", err)
			os.Exit(1)
		}
		defer store.Close()
	}

	fmt.Printf("=== progmatter: %dx%d grid, %d agents, %d walls, %s/%s/%s ===\n",
		cfg.GridSize, cfg.GridSize, len(cfg.Agents), len(cfg.Walls),
		cfg.Topology, cfg.Movement, cfg.Decision)

	for _, strategy := range search.Strategies() {
		cfg.Strategy = strategy
		fmt.Printf("\n  %s: ", strategy)
		runOne(cfg, store, *ticks, *verbose)
	}
	fmt.Println()
}

// runOne runs a single configured simulation and prints a summary line.
func runOne(cfg sim.Config, store *recorder.Store, ticks int, verbose bool) {
	var sinks events.Multi
	if verbose {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().
			Timestamp().Str("strategy", cfg.Strategy.String()).Logger()
		sinks = append(sinks, events.NewLogSink(log))
	}

	sessionID := uuid.NewString()
	var recSink *recorder.SessionSink
	if store != nil {
		err := store.BeginSession(recorder.Session{
			ID:         sessionID,
			GridSize:   cfg.GridSize,
			AgentCount: len(cfg.Agents),
			GoalCount:  len(cfg.Goals),
			Topology:   cfg.Topology.String(),
			Strategy:   cfg.Strategy.String(),
			Movement:   cfg.Movement.String(),
			Decision:   cfg.Decision.String(),
			Seed:       cfg.Seed,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "begin session:", err)
			return
		}
		recSink = store.Sink(sessionID)
		sinks = append(sinks, recSink)
	}

	var sink events.Sink = events.Discard{}
	if len(sinks) > 0 {
		sink = sinks
	}
	s, err := sim.New(cfg, sim.WithSink(sink))
	if err != nil {
		fmt.Println("config error:", err)
		return
	}

	if err := s.Start(); err != nil {
		fmt.Println("start failed:", err)
		return
	}
	start := time.Now()
	r, err := s.Run(ticks)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Println("run failed:", err)
		return
	}

	fmt.Printf("State=%s, Ticks=%d, Moves=%d, Deadlocks=%d, Time=%v",
		r.State, s.Tick(), s.Moves(), s.Deadlocks(), elapsed)

	if store != nil && recSink != nil {
		if err := recSink.Err(); err != nil {
			fmt.Fprintln(os.Stderr, "record events:", err)
		}
		if err := store.EndSession(sessionID, r.State.String(),
			s.Tick(), s.Moves(), s.Deadlocks()); err != nil {
			fmt.Fprintln(os.Stderr, "end session:", err)
		}
	}
}

// placeScenario fills the config with a reproducible random layout: walls
// first, then agents and goals on distinct cells. A shape name replaces the
// random goals with a centered formation, one agent per formation cell.
func placeScenario(cfg *sim.Config, agents, walls int, shape string) error {
	rng := rand.New(rand.NewSource(cfg.Seed))
	taken := make(map[core.Pos]bool)
	pick := func() core.Pos {
		for {
			p := core.Pos{Row: rng.Intn(cfg.GridSize), Col: rng.Intn(cfg.GridSize)}
			if !taken[p] {
				taken[p] = true
				return p
			}
		}
	}

	if shape != "" {
		st, ok := core.Shapes[shape]
		if !ok {
			return fmt.Errorf("unknown shape %q", shape)
		}
		origin := core.Pos{Row: cfg.GridSize/2 - len(st)/2, Col: cfg.GridSize/2 - len(st[0])/2}

		for _, p := range st.Cells(origin) {
			taken[p] = true
			cfg.Goals = append(cfg.Goals, p)
		}
		agents = len(cfg.Goals)
	}

	cells := cfg.GridSize * cfg.GridSize
	need := len(taken) + walls + agents
	if shape == "" {
		need += agents // random goals take their own cells
	}
	if need > cells {
		return fmt.Errorf("scenario needs %d distinct cells, grid has %d", need, cells)
	}

	for i := 0; i < walls; i++ {
		cfg.Walls = append(cfg.Walls, pick())
	}
	for i := 0; i < agents; i++ {
		cfg.Agents = append(cfg.Agents, pick())
	}
	if shape == "" {
		for i := 0; i < agents; i++ {
			cfg.Goals = append(cfg.Goals, pick())
		}
	}
	return nil
}
