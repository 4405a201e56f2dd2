package recorder

import (
	"github.com/elektrokombinacija/progmatter/internal/events"
)

// SessionSink writes every event of one simulation run to the store.
// Insert errors are kept, not surfaced per event; recording must never
// disturb the tick loop.
type SessionSink struct {
	store     *Store
	sessionID string
	err       error
}

// Sink creates an events.Sink bound to a recorded session.
func (s *Store) Sink(sessionID string) *SessionSink {
	return &SessionSink{store: s, sessionID: sessionID}
}

func (k *SessionSink) Emit(e events.Event) {
	if k.err != nil {
		return
	}
	_, k.err = k.store.db.Exec(`
		INSERT INTO events
			(session_id, seq, tick, type, agent,
			 from_row, from_col, to_row, to_col, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		k.sessionID, e.Seq, e.Tick, e.Type.String(), e.Agent,
		e.From.Row, e.From.Col, e.To.Row, e.To.Col, e.Detail)
}

// Err returns the first insert error, if any.
func (k *SessionSink) Err() error {
	return k.err
}
