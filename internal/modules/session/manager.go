package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/reusedev/draw-mcp/internal/modules/logs"
)

// ErrNotFound reports an unknown or expired session id.
var ErrNotFound = errors.New("session not found")

// Session is the per-client state created by initialize. Everything a
// request needs beyond this lives in shared stores, so the struct stays
// small and copies are cheap.
type Session struct {
	ID              string
	CreatedAt       time.Time
	ProtocolVersion string
	ClientName      string
	ClientVersion   string
}

// Manager keeps live sessions in a go-cache table with idle-TTL
// semantics: every touched entry is re-set, restarting its expiry clock.
// Entries that outlive the timeout are dropped lazily on access and in
// bulk by the sweep loop.
type Manager struct {
	table   *gocache.Cache
	timeout time.Duration
	sweep   time.Duration
	onEvict func(id string)
}

// NewManager builds a session table with the given idle timeout and
// sweep interval. onEvict runs for every removed session, explicit or
// expired; the stream hub uses it to close the session's channel.
func NewManager(timeout, sweep time.Duration, onEvict func(id string)) *Manager {
	m := &Manager{
		table:   gocache.New(timeout, 0),
		timeout: timeout,
		sweep:   sweep,
		onEvict: onEvict,
	}
	m.table.OnEvicted(func(id string, _ interface{}) {
		if m.onEvict != nil {
			m.onEvict(id)
		}
	})
	return m
}

// Create registers a new session and returns it. The id is an opaque
// uuid handed to the client in the Mcp-Session-Id header.
func (m *Manager) Create(protocolVersion, clientName, clientVersion string) *Session {
	s := &Session{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now(),
		ProtocolVersion: protocolVersion,
		ClientName:      clientName,
		ClientVersion:   clientVersion,
	}
	m.table.Set(s.ID, s, m.timeout)
	logs.Logger.Info().
		Str("session_id", s.ID).
		Str("client", clientName).
		Int("active", m.table.ItemCount()).
		Msg("session created")
	return s
}

// Touch looks up a session and restarts its idle clock. Unknown and
// lazily-expired ids both return ErrNotFound.
func (m *Manager) Touch(id string) (*Session, error) {
	v, ok := m.table.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	s := v.(*Session)
	m.table.Set(id, s, m.timeout)
	return s, nil
}

// Get returns the session without refreshing its clock.
func (m *Manager) Get(id string) (*Session, error) {
	v, ok := m.table.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return v.(*Session), nil
}

// Delete removes a session immediately, firing the evict hook.
func (m *Manager) Delete(id string) error {
	if _, ok := m.table.Get(id); !ok {
		return ErrNotFound
	}
	m.table.Delete(id)
	logs.Logger.Info().Str("session_id", id).Int("active", m.table.ItemCount()).Msg("session deleted")
	return nil
}

// Count reports the number of table entries, expired-but-unswept
// included.
func (m *Manager) Count() int {
	return m.table.ItemCount()
}

// Run sweeps expired sessions every sweep interval until ctx is
// cancelled. Evict hooks fire from this goroutine for swept entries.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := m.table.ItemCount()
			m.table.DeleteExpired()
			if removed := before - m.table.ItemCount(); removed > 0 {
				logs.Logger.Info().
					Int("removed", removed).
					Int("active", m.table.ItemCount()).
					Msg("expired sessions swept")
			}
		}
	}
}
