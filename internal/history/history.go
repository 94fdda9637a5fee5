// Package history provides SQLite-based persistence for chat messages as a
// durable audit log. Sessions stay authoritative in memory; if opening the
// DB or executing queries fails the store degrades to in-memory only.
// Pending actions are never written here.
package history

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/paisapal/paisapal-go/internal/chat"
	"github.com/paisapal/paisapal-go/internal/logger"
)

// Record is one persisted message row.
type Record struct {
	ID        int64
	SessionID string
	MessageID string
	Role      string
	Kind      string
	Content   string
	CreatedAt time.Time
}

// Store is a per-process message log. The zero value is not usable; create
// it with Open.
type Store struct {
	mu       sync.Mutex
	fallback []Record // in-memory fallback

	db      *sql.DB
	dbReady bool
}

// Open opens the SQLite log at path and creates the messages table if it
// doesn't exist. Failures are logged and leave the store in memory-only
// mode rather than failing the caller.
func Open(path string) *Store {
	s := &Store{}
	if path == "" {
		path = "history.db"
	}
	db, err := sql.Open("sqlite", "file:"+path+"?_busy_timeout=10000&_fk=1")
	if err != nil {
		logger.L.Warn("sqlite open failed; using in-memory history", "error", err)
		return s
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		message_id TEXT,
		role TEXT,
		kind TEXT,
		content TEXT,
		created_at DATETIME
	);`); err != nil {
		logger.L.Warn("sqlite table creation failed; using in-memory history", "error", err)
		return s
	}
	s.db = db
	s.dbReady = true
	logger.L.Info("sqlite history store initialized", "path", path)
	return s
}

// Save persists a message. The in-memory copy is always kept so reads keep
// working when sqlite degrades mid-session.
func (s *Store) Save(sessionID string, msg chat.Message) {
	rec := Record{
		SessionID: sessionID,
		MessageID: msg.ID,
		Role:      string(msg.Role),
		Kind:      string(msg.Kind),
		Content:   msg.Text,
		CreatedAt: msg.Timestamp,
	}

	if s.dbReady {
		_, err := s.db.Exec(
			`INSERT INTO messages (session_id, message_id, role, kind, content, created_at) VALUES (?,?,?,?,?,?);`,
			rec.SessionID, rec.MessageID, rec.Role, rec.Kind, rec.Content, rec.CreatedAt,
		)
		if err != nil {
			logger.L.Error("failed to store message in sqlite; falling back to memory", "error", err)
		}
	}

	s.mu.Lock()
	s.fallback = append(s.fallback, rec)
	s.mu.Unlock()
}

// List returns all messages of a session in chronological order.
func (s *Store) List(sessionID string) []Record {
	var out []Record
	if s.dbReady {
		rows, err := s.db.Query(
			`SELECT id, session_id, message_id, role, kind, content, created_at FROM messages WHERE session_id = ? ORDER BY id ASC;`,
			sessionID,
		)
		if err == nil {
			defer rows.Close()
			for rows.Next() {
				var r Record
				if err := rows.Scan(&r.ID, &r.SessionID, &r.MessageID, &r.Role, &r.Kind, &r.Content, &r.CreatedAt); err == nil {
					out = append(out, r)
				}
			}
			return out
		}
		logger.L.Warn("sqlite query failed; reading in-memory history", "error", err)
	}
	s.mu.Lock()
	for _, r := range s.fallback {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	s.mu.Unlock()
	return out
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
