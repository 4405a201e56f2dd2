// Package sim orchestrates the tick-based multi-agent simulation: tracking,
// deadlock handling, movement priority, conflict-resolved commits, and
// termination detection.
package sim

import (
	"errors"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/progmatter/internal/assign"
	"github.com/elektrokombinacija/progmatter/internal/core"
	"github.com/elektrokombinacija/progmatter/internal/deadlock"
	"github.com/elektrokombinacija/progmatter/internal/events"
	"github.com/elektrokombinacija/progmatter/internal/search"
)

// State is the simulation lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSuccess // every agent reached its goal
	StateStuck   // every escalation tactic failed in one tick
)

func (s State) String() string {
	return [...]string{"Idle", "Running", "Success", "Stuck"}[s]
}

var (
	// ErrNotRunning is returned by Step when the simulation is idle or
	// already terminal.
	ErrNotRunning = errors.New("sim: simulation is not running")
)

const (
	// maxFailedTicks is the number of consecutive no-movement ticks
	// tolerated before a forced restart in Sequential mode.
	maxFailedTicks = 5

	// waitReplanTicks is how long an agent waits on the same occupied
	// cell before replanning regardless of the blocker's goal status.
	waitReplanTicks = 2

	// boostTicks is how long a temporary visibility widening lasts.
	boostTicks = 5
)

// TickReport summarizes one committed tick.
type TickReport struct {
	Tick              int
	Moved             []int // IDs in commit order
	DeadlocksResolved int
	State             State
}

// Simulation owns all mutable state: the grid, the agent list, and the mode
// flags. Every operation goes through the handle; there are no ambient
// globals. All mutation happens inside Step; planners only read views.
type Simulation struct {
	mu sync.Mutex

	// ID identifies this simulation instance to sinks and recorders.
	ID uuid.UUID

	cfg      Config
	grid     *core.Grid
	agents   []*core.Agent
	planner  search.Planner
	tracker  *deadlock.Tracker
	resolver *deadlock.Resolver
	rng      *rand.Rand
	sink     events.Sink

	state    State
	movement core.MovementMode // forced Sequential after a restart
	assigned bool

	tick        int
	seq         int
	moves       int
	deadlocks   int // monotonic, survives internal restarts
	failedTicks int

	// blockedFor counts consecutive ticks each agent spent waiting on an
	// occupied next cell.
	blockedFor map[int]int
}

// Option configures optional simulation knobs.
type Option func(*Simulation)

// WithSink attaches an event sink; without it events are discarded.
func WithSink(sink events.Sink) Option {
	return func(s *Simulation) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// New validates the configuration and builds an initialized, idle
// simulation. Walls, agents, and goals are placed; assignment runs at Start.
func New(cfg Config, opts ...Option) (*Simulation, error) {
	g, err := cfg.buildGrid()
	if err != nil {
		return nil, err
	}

	agents := make([]*core.Agent, len(cfg.Agents))
	for i, p := range cfg.Agents {
		a := core.NewAgent(i, p)
		if cfg.Decision == core.Distributed {
			a.Radius = cfg.VisibilityRadius
		}
		agents[i] = a
		if err := g.SetOccupied(p); err != nil {
			return nil, err
		}
	}

	s := &Simulation{
		ID:         uuid.New(),
		cfg:        cfg,
		grid:       g,
		agents:     agents,
		planner:    search.ForStrategy(cfg.Strategy, cfg.MinimaxDepth),
		tracker:    deadlock.NewTracker(),
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		sink:       events.Discard{},
		movement:   cfg.Movement,
		blockedFor: make(map[int]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolver = deadlock.NewResolver(g, cfg.Topology)
	if cfg.Decision == core.Distributed {
		s.resolver.Radius = func(a *core.Agent) int {
			return a.EffectiveRadius(s.tick)
		}
	}
	return s, nil
}

// Start runs goal assignment and begins ticking. Fails with
// ErrInsufficientGoals when there are fewer goals than agents; no tick ever
// runs in that case. Starting a paused simulation resumes it without
// reassigning.
func (s *Simulation) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return nil
	}
	if s.state != StateIdle {
		return ErrNotRunning
	}
	if !s.assigned {
		if err := s.assignAll(); err != nil {
			return err
		}
		s.emit(events.Event{Type: events.TypeStarted, Agent: -1, Detail: s.ID.String()})
	}
	s.state = StateRunning
	return nil
}

// Pause stops ticking; Start resumes.
func (s *Simulation) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		s.state = StateIdle
	}
}

// Reset restores the initial configuration: positions, goals, counters, and
// the configured movement mode.
func (s *Simulation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.placeAgentsAtStart()
	s.tracker.Reset()
	s.blockedFor = make(map[int]int)
	s.rng = rand.New(rand.NewSource(s.cfg.Seed))
	s.movement = s.cfg.Movement
	s.state = StateIdle
	s.assigned = false
	s.tick, s.moves, s.deadlocks, s.failedTicks = 0, 0, 0, 0
	s.emit(events.Event{Type: events.TypeReset, Agent: -1})
}

// Step advances the simulation one tick. Callable directly by a host that
// drives ticking itself instead of a timer.
func (s *Simulation) Step() (TickReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return TickReport{Tick: s.tick, State: s.state}, ErrNotRunning
	}
	s.tick++

	for _, a := range s.agents {
		a.ExpireBoost(s.tick)
	}
	s.tracker.Update(s.agents)

	if s.allAtGoal() {
		s.finish(events.TypeTerminated, StateSuccess, "all goals reached")
		return s.report(nil, 0), nil
	}

	resolved := s.detectAndResolve()
	if resolved > 0 {
		s.deadlocks++
	}

	moved := s.movePhase()
	s.moves += len(moved)

	if len(moved) == 0 {
		s.failedTicks++
		if s.failedTicks >= maxFailedTicks {
			s.restart()
		} else if !s.escalate() {
			s.finish(events.TypeTerminated, StateStuck, "escalation exhausted")
		}
	} else {
		s.failedTicks = 0
	}

	if s.state == StateRunning && s.allAtGoal() {
		s.finish(events.TypeTerminated, StateSuccess, "all goals reached")
	}
	return s.report(moved, resolved), nil
}

// Run steps until a terminal state or maxTicks, whichever first.
func (s *Simulation) Run(maxTicks int) (TickReport, error) {
	var last TickReport
	for i := 0; i < maxTicks; i++ {
		r, err := s.Step()
		if err != nil {
			return r, err
		}
		last = r
		if r.State == StateSuccess || r.State == StateStuck {
			break
		}
	}
	return last, nil
}

// State returns the lifecycle state.
func (s *Simulation) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Tick returns the number of committed ticks.
func (s *Simulation) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Moves returns the cumulative committed move count.
func (s *Simulation) Moves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moves
}

// Deadlocks returns the cumulative deadlock counter. It never decreases
// within a run, including across internal restarts.
func (s *Simulation) Deadlocks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deadlocks
}

// Snapshot returns a deep copy of the current grid.
func (s *Simulation) Snapshot() *core.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Clone()
}

// Agents returns copies of the per-agent state.
func (s *Simulation) Agents() []core.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Agent, len(s.agents))
	for i, a := range s.agents {
		out[i] = *a
		out[i].Path = append([]core.Pos(nil), a.Path...)
		if a.Goal != nil {
			g := *a.Goal
			out[i].Goal = &g
		}
		if a.ReturnGoal != nil {
			g := *a.ReturnGoal
			out[i].ReturnGoal = &g
		}
	}
	return out
}

// Movement returns the movement mode in force, which may differ from the
// configured one after a forced restart.
func (s *Simulation) Movement() core.MovementMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.movement
}

func (s *Simulation) report(moved []int, resolved int) TickReport {
	return TickReport{
		Tick:              s.tick,
		Moved:             moved,
		DeadlocksResolved: resolved,
		State:             s.state,
	}
}

func (s *Simulation) emit(e events.Event) {
	e.Seq = s.seq
	e.Tick = s.tick
	s.seq++
	s.sink.Emit(e)
}

func (s *Simulation) finish(t events.Type, st State, detail string) {
	s.state = st
	s.emit(events.Event{Type: t, Agent: -1, Detail: detail})
}

func (s *Simulation) allAtGoal() bool {
	for _, a := range s.agents {
		if !a.AtGoal() {
			return false
		}
	}
	return len(s.agents) > 0
}

// assignAll maps every agent to a goal and plans initial paths.
func (s *Simulation) assignAll() error {
	goals := s.grid.Goals()
	result, err := assign.Assign(s.grid, s.cfg.Topology, s.agents, goals, s.cfg.Assignment)
	if err != nil {
		return err
	}
	for _, pair := range result.AgentsByIndex() {
		a := s.agents[pair[0]]
		s.emit(events.Event{
			Type:  events.TypeAssigned,
			Agent: a.ID,
			From:  a.Pos,
			To:    goals[pair[1]],
		})
	}
	s.assigned = true
	return nil
}

// placeAgentsAtStart clears occupancy and returns agents to their
// configured positions with all transient state wiped.
func (s *Simulation) placeAgentsAtStart() {
	for _, a := range s.agents {
		s.grid.Clear(a.Pos)
	}
	for i, a := range s.agents {
		a.Pos = s.cfg.Agents[i]
		a.Goal = nil
		a.Path = nil
		a.Retreating = false
		a.PendingReturn = false
		a.ReturnGoal = nil
		a.GoalCooldown = 0
		a.ExpireBoost(s.tick + boostTicks) // any active widening has expired
		_ = s.grid.SetOccupied(a.Pos)
	}
}

// restart breaks persistent gridlock: agents return to their starting
// cells, movement is serialized, and assignment reruns. The deadlock and
// move counters carry over.
func (s *Simulation) restart() {
	s.emit(events.Event{Type: events.TypeRestarted, Agent: -1, Detail: "forced sequential"})
	s.placeAgentsAtStart()
	s.tracker.Reset()
	s.blockedFor = make(map[int]int)
	s.movement = core.Sequential
	s.failedTicks = 0
	s.assigned = false
	_ = s.assignAll() // goals unchanged, cannot newly fail
}

// detectAndResolve finds deadlocked agents by timeout and wait-for cycle
// and runs the per-agent resolution ladder. Returns how many agents got a
// fresh plan.
func (s *Simulation) detectAndResolve() int {
	ids := s.tracker.TimedOut(s.agents, deadlock.IdleThreshold)
	ids = append(ids, deadlock.WaitForCycles(s.agents)...)
	ids = dedupSorted(ids)
	if len(ids) == 0 {
		return 0
	}

	repeated := s.tracker.ObserveDeadlock(deadlock.Signature(s.agents))
	for _, id := range ids {
		s.emit(events.Event{Type: events.TypeDeadlockDetected, Agent: id})
	}

	resolved := 0
	for _, id := range ids {
		a := s.agents[id]
		tactic := s.resolver.Resolve(a)
		if tactic == deadlock.TacticNone {
			continue
		}
		resolved++
		s.emit(events.Event{
			Type:   events.TypeDeadlockResolved,
			Agent:  id,
			Detail: tactic.String(),
		})
		// A repeating or last-resort deadlock in distributed mode gets a
		// temporarily widened view of the grid.
		if s.cfg.Decision == core.Distributed && a.Radius > 0 &&
			(repeated || tactic == deadlock.TacticLastResort) {
			a.BoostVisibility(a.Radius*2, s.tick+boostTicks)
		}
	}
	return resolved
}

// priorityOrder sorts agents for the move phase: off-goal before at-goal,
// off-goal by ascending Manhattan distance to goal, ties by original order.
func (s *Simulation) priorityOrder() []*core.Agent {
	order := make([]*core.Agent, len(s.agents))
	copy(order, s.agents)
	sort.SliceStable(order, func(i, j int) bool {
		ai, aj := order[i], order[j]
		di, dj := ai.AtGoal() || ai.Goal == nil, aj.AtGoal() || aj.Goal == nil
		if di != dj {
			return !di
		}
		if di {
			return false
		}
		return ai.Pos.Manhattan(*ai.Goal) < aj.Pos.Manhattan(*aj.Goal)
	})
	return order
}

// movePhase proposes and commits moves in priority order. Occupancy is
// checked against the current, already-partially-updated grid so earlier
// movers can unblock later ones within the same tick.
func (s *Simulation) movePhase() []int {
	var moved []int
	for _, a := range s.priorityOrder() {
		if a.AtGoal() {
			s.handleAtGoal(a)
			continue
		}
		if a.Goal == nil {
			continue
		}

		next, ok := a.NextCell()
		if !ok {
			if !s.replan(a) {
				continue
			}
			next, ok = a.NextCell()
			if !ok {
				continue
			}
		}

		if s.grid.Kind(next) == core.Occupied {
			s.blockedFor[a.ID]++
			blocker := s.agentAt(next)
			blockerAtGoal := blocker != nil && blocker.AtGoal()
			waitedOut := s.blockedFor[a.ID] > waitReplanTicks
			if !blockerAtGoal && !waitedOut {
				continue
			}
			// Route around a settled or long-held blocker.
			if !s.replan(a) {
				continue
			}
			next, ok = a.NextCell()
			if !ok || s.grid.Kind(next) != core.Empty {
				continue
			}
		}

		from := a.Pos
		s.grid.Clear(a.Pos)
		a.Advance()
		_ = s.grid.SetOccupied(a.Pos)
		s.blockedFor[a.ID] = 0
		moved = append(moved, a.ID)
		s.emit(events.Event{Type: events.TypeMoved, Agent: a.ID, From: from, To: a.Pos})

		if a.Retreating && len(a.Path) < 2 {
			a.Retreating = false
			s.replan(a) // resume toward the original goal
		}

		if s.movement == core.Sequential {
			break
		}
	}
	return moved
}

// handleAtGoal counts down a displaced agent's hold on its temporary goal
// and restores the original goal when the cooldown elapses.
func (s *Simulation) handleAtGoal(a *core.Agent) {
	if !a.PendingReturn {
		return
	}
	if a.GoalCooldown > 0 {
		a.GoalCooldown--
		return
	}
	orig := *a.ReturnGoal
	a.PendingReturn = false
	a.ReturnGoal = nil
	a.SetGoal(orig)
	s.replan(a)
	s.emit(events.Event{Type: events.TypeReassigned, Agent: a.ID, To: orig, Detail: "return"})
}

// replan computes a fresh path on the agent's view of the grid: hard
// occupancy, own cell excluded, goal always visible, distributed-mode
// visibility mask applied.
func (s *Simulation) replan(a *core.Agent) bool {
	if a.Goal == nil {
		return false
	}
	path := s.planner.FindPath(s.planView(a), a.Pos, *a.Goal)
	if len(path) < 2 {
		return false
	}
	a.SetPath(path)
	a.Retreating = false
	s.emit(events.Event{Type: events.TypePathPlanned, Agent: a.ID, From: a.Pos, To: *a.Goal})
	return true
}

func (s *Simulation) planView(a *core.Agent) *core.View {
	v := core.NewView(s.grid, s.cfg.Topology).ExceptSelf(a.Pos)
	if a.Goal != nil {
		v.ForGoal(*a.Goal)
	}
	if s.cfg.Decision == core.Distributed {
		v.Masked(a.Pos, a.EffectiveRadius(s.tick))
	}
	return v
}

func (s *Simulation) agentAt(p core.Pos) *core.Agent {
	for _, a := range s.agents {
		if a.Pos == p {
			return a
		}
	}
	return nil
}

func dedupSorted(ids []int) []int {
	if len(ids) == 0 {
		return ids
	}
	sort.Ints(ids)
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
