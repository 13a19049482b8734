package pipeline

import (
	"context"
	"time"

	"github.com/amolnak/GuidanceMind/internal/entity"
)

// SessionStore persists session progress between runs.
type SessionStore interface {
	Load(ctx context.Context, name string) (entity.SessionSnapshot, bool, error)
	Save(ctx context.Context, snap entity.SessionSnapshot) error
	Delete(ctx context.Context, name string) error
}

// Session is the progress state of one processing run: the index of the next
// row to process and the results appended so far.
type Session struct {
	Name    string
	Cursor  int
	Results []entity.ExtractionResult
}

func NewSession(name string) *Session {
	return &Session{Name: name}
}

// FromSnapshot restores a persisted session.
func FromSnapshot(snap entity.SessionSnapshot) *Session {
	return &Session{Name: snap.Name, Cursor: snap.Cursor, Results: snap.Results}
}

func (s *Session) Snapshot() entity.SessionSnapshot {
	return entity.SessionSnapshot{
		Name:      s.Name,
		Cursor:    s.Cursor,
		Results:   s.Results,
		UpdatedAt: time.Now().UTC(),
	}
}

// Done reports whether every one of total rows has been visited.
func (s *Session) Done(total int) bool { return s.Cursor >= total }

// clear zeroes the cursor and drops all results.
func (s *Session) clear() {
	s.Cursor = 0
	s.Results = nil
}
