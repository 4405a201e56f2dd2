// Package recorder persists simulation runs to SQLite. It implements
// events.Sink, so a host wires it into the simulation like any other sink;
// the core itself never touches disk.
package recorder

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/elektrokombinacija/progmatter/internal/core"
)

// Store handles SQLite operations for simulation run logging.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path and ensures the schema.
// Use ":memory:" for an ephemeral store.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		ended_at DATETIME,
		grid_size INTEGER NOT NULL,
		agent_count INTEGER NOT NULL,
		goal_count INTEGER NOT NULL,
		topology TEXT NOT NULL,
		strategy TEXT NOT NULL,
		movement TEXT NOT NULL,
		decision TEXT NOT NULL,
		seed INTEGER NOT NULL,
		final_state TEXT,
		total_ticks INTEGER DEFAULT 0,
		total_moves INTEGER DEFAULT 0,
		total_deadlocks INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		type TEXT NOT NULL,
		agent INTEGER NOT NULL,
		from_row INTEGER, from_col INTEGER,
		to_row INTEGER, to_col INTEGER,
		detail TEXT,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id);
	CREATE INDEX IF NOT EXISTS idx_events_session_tick ON events(session_id, tick);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Session describes one recorded simulation run.
type Session struct {
	ID         string
	StartedAt  time.Time
	EndedAt    *time.Time
	GridSize   int
	AgentCount int
	GoalCount  int
	Topology   string
	Strategy   string
	Movement   string
	Decision   string
	Seed       int64
	FinalState string
	Ticks      int
	Moves      int
	Deadlocks  int
}

// BeginSession inserts a session row at run start.
func (s *Store) BeginSession(sess Session) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions
			(id, started_at, grid_size, agent_count, goal_count,
			 topology, strategy, movement, decision, seed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, time.Now().UTC(), sess.GridSize, sess.AgentCount,
		sess.GoalCount, sess.Topology, sess.Strategy, sess.Movement,
		sess.Decision, sess.Seed)
	return err
}

// EndSession records the outcome of a finished run.
func (s *Store) EndSession(id, finalState string, ticks, moves, deadlocks int) error {
	_, err := s.db.Exec(`
		UPDATE sessions
		SET ended_at = ?, final_state = ?, total_ticks = ?,
		    total_moves = ?, total_deadlocks = ?
		WHERE id = ?`,
		time.Now().UTC(), finalState, ticks, moves, deadlocks, id)
	return err
}

// GetSession reads one session row back.
func (s *Store) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, ended_at, grid_size, agent_count, goal_count,
		       topology, strategy, movement, decision, seed,
		       COALESCE(final_state, ''), total_ticks, total_moves, total_deadlocks
		FROM sessions WHERE id = ?`, id)

	var sess Session
	err := row.Scan(&sess.ID, &sess.StartedAt, &sess.EndedAt, &sess.GridSize,
		&sess.AgentCount, &sess.GoalCount, &sess.Topology, &sess.Strategy,
		&sess.Movement, &sess.Decision, &sess.Seed, &sess.FinalState,
		&sess.Ticks, &sess.Moves, &sess.Deadlocks)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// EventCount returns the number of recorded events for a session.
func (s *Store) EventCount(sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM events WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}

// StoredEvent is one replayed event row. Type comes back as the string
// form written by SessionSink.
type StoredEvent struct {
	Seq    int
	Tick   int
	Type   string
	Agent  int
	From   core.Pos
	To     core.Pos
	Detail string
}

// Events returns every recorded event of a session in seq order, for
// replaying a run tick by tick.
func (s *Store) Events(sessionID string) ([]StoredEvent, error) {
	rows, err := s.db.Query(`
		SELECT seq, tick, type, agent,
		       from_row, from_col, to_row, to_col, COALESCE(detail, '')
		FROM events WHERE session_id = ?
		ORDER BY seq`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredEvent
	for rows.Next() {
		var e StoredEvent
		if err := rows.Scan(&e.Seq, &e.Tick, &e.Type, &e.Agent,
			&e.From.Row, &e.From.Col, &e.To.Row, &e.To.Col, &e.Detail); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// EventsByTick returns "type" counts per tick for a session, for quick
// run summaries.
func (s *Store) EventsByTick(sessionID string, tick int) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT type, COUNT(*) FROM events
		WHERE session_id = ? AND tick = ?
		GROUP BY type`, sessionID, tick)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[typ] = n
	}
	return out, rows.Err()
}
