package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alberti/alberti/backend-go/internal/layers"
)

const saveTimeout = 10 * time.Second

// Hub tracks the open sessions, one per drawing, and saves them when their
// client leaves, on the autosave ticker and on shutdown.
type Hub struct {
	mu         sync.Mutex
	sessions   map[string]*Session // drawingID -> session; guards Session.attached too
	store      DocumentStore
	opts       []layers.Option
	autosave   time.Duration
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

// NewHub returns a hub loading documents from store. A non-positive
// autosave interval disables periodic saving.
func NewHub(store DocumentStore, autosave time.Duration, opts ...layers.Option) *Hub {
	return &Hub{
		sessions:   make(map[string]*Session),
		store:      store,
		opts:       opts,
		autosave:   autosave,
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	var tick <-chan time.Time
	if h.autosave > 0 {
		ticker := time.NewTicker(h.autosave)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case client := <-h.unregister:
			h.Leave(client.session)
			slog.Info("client left", "user", client.UserID, "drawing", client.session.drawingID)
		case <-tick:
			h.saveAll(ctx)
		case <-h.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Open returns the session for a drawing, loading it on first use. A drawing
// can only be edited by one client at a time: opening an attached session
// fails with ErrSessionBusy.
func (h *Hub) Open(ctx context.Context, drawingID string) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		return nil, ErrClosed
	default:
	}

	if s, ok := h.sessions[drawingID]; ok {
		if s.attached {
			return nil, ErrSessionBusy
		}
		s.attached = true
		return s, nil
	}

	doc, err := h.store.LoadDocument(ctx, drawingID)
	if err != nil {
		return nil, fmt.Errorf("load drawing %s: %w", drawingID, err)
	}
	s, err := New(drawingID, doc, h.store, h.opts...)
	if err != nil {
		return nil, fmt.Errorf("open drawing %s: %w", drawingID, err)
	}
	s.attached = true
	h.sessions[drawingID] = s

	slog.Info("session opened", "drawing", drawingID, "shapes", s.manager.ShapeCount())
	return s, nil
}

// Leave detaches the session's client and saves unsaved changes. The
// session stays registered until the save returns, so a client reopening
// the drawing meanwhile gets the live session back. A session whose save
// failed is kept, detached, for the autosave ticker to retry.
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	s.attached = false
	h.mu.Unlock()

	err := h.save(context.Background(), s)
	if err != nil {
		slog.Error("save on leave", "drawing", s.drawingID, "error", err)
	}

	h.mu.Lock()
	registered := h.sessions[s.drawingID] == s
	switch {
	case s.attached:
		h.mu.Unlock()
		slog.Info("session reopened while saving", "drawing", s.drawingID)
		return
	case err != nil && registered:
		h.mu.Unlock()
		return
	case registered:
		delete(h.sessions, s.drawingID)
	}
	h.mu.Unlock()

	s.close()
}

// Len returns the number of open sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Stop ends Run and saves and closes every open session.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		h.mu.Lock()
		close(h.done)
		sessions := make([]*Session, 0, len(h.sessions))
		for id, s := range h.sessions {
			sessions = append(sessions, s)
			delete(h.sessions, id)
		}
		h.mu.Unlock()

		for _, s := range sessions {
			h.close(s)
		}
	})
}

func (h *Hub) unregisterClient(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
		h.Leave(c.session)
	}
}

func (h *Hub) close(s *Session) {
	if err := h.save(context.Background(), s); err != nil {
		slog.Error("save on close", "drawing", s.drawingID, "error", err)
	}
	s.close()
}

func (h *Hub) save(ctx context.Context, s *Session) error {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()
	return s.SaveIfDirty(ctx)
}

// saveAll saves every dirty session and drops detached ones once they are
// saved.
func (h *Hub) saveAll(ctx context.Context) {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		if err := h.save(ctx, s); err != nil {
			slog.Error("autosave", "drawing", s.drawingID, "error", err)
			continue
		}
		h.evictDetached(s)
	}
}

func (h *Hub) evictDetached(s *Session) {
	// Nobody edits a detached session, so it stays clean until reopened.
	if !s.IsClean() {
		return
	}

	h.mu.Lock()
	if s.attached || h.sessions[s.drawingID] != s {
		h.mu.Unlock()
		return
	}
	delete(h.sessions, s.drawingID)
	h.mu.Unlock()

	s.close()
	slog.Info("session evicted", "drawing", s.drawingID)
}
