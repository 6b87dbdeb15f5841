package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"apparel-designer/models"
	"apparel-designer/repository"
)

// ErrSessionNotFound is returned for unknown or expired session ids
var ErrSessionNotFound = errors.New("design session not found")

// Mutation changes a selection; returning an error leaves the session unchanged
type Mutation func(models.Selection) (models.Selection, error)

// session is the live state of one id. A deleted session stays in the map
// as a tombstone until the janitor prunes it, so a stale lookup cannot
// re-attach it from the store.
type session struct {
	mu       sync.Mutex
	lastSeen time.Time
	dialog   *CaptureDialog
	deleted  atomic.Bool
}

// SessionService owns the design sessions: their selection, capture dialog and lifetime
type SessionService struct {
	selections *repository.SelectionRepository
	chats      *repository.ChatRepository
	designer   *SelectionService
	capture    *CaptureService
	ttl        time.Duration
	now        func() time.Time
	logger     *zap.Logger

	mu       sync.Mutex
	sessions map[string]*session

	stop      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Ensure SessionService implements SessionGuard
var _ SessionGuard = (*SessionService)(nil)

// NewSessionService creates a new SessionService. With a positive ttl a
// janitor goroutine expires idle sessions until Close is called.
func NewSessionService(
	selections *repository.SelectionRepository,
	chats *repository.ChatRepository,
	designer *SelectionService,
	capture *CaptureService,
	ttl time.Duration,
	logger *zap.Logger,
) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SessionService{
		selections: selections,
		chats:      chats,
		designer:   designer,
		capture:    capture,
		ttl:        ttl,
		now:        time.Now,
		logger:     logger,
		sessions:   make(map[string]*session),
		stop:       make(chan struct{}),
	}
	if ttl > 0 {
		s.wg.Add(1)
		go s.janitor(janitorInterval(ttl))
	}
	return s
}

// Create starts a session with the default selection
func (s *SessionService) Create(ctx context.Context) (string, models.Selection, error) {
	id := uuid.NewString()
	sel := s.designer.Default()
	if err := s.selections.Save(ctx, id, sel); err != nil {
		return "", models.Selection{}, fmt.Errorf("failed to create session: %w", err)
	}

	s.mu.Lock()
	s.sessions[id] = &session{lastSeen: s.now(), dialog: s.capture.NewDialog()}
	s.mu.Unlock()

	s.logger.Info("✓ Design session created", zap.String("session_id", id))
	return id, sel, nil
}

// Get returns the current selection of a session
func (s *SessionService) Get(ctx context.Context, id string) (models.Selection, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return models.Selection{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.deleted.Load() {
		return models.Selection{}, ErrSessionNotFound
	}
	return s.load(ctx, id)
}

// Apply runs fn on the current selection and persists the result.
// Mutations of one session never interleave.
func (s *SessionService) Apply(ctx context.Context, id string, fn Mutation) (models.Selection, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return models.Selection{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.deleted.Load() {
		return models.Selection{}, ErrSessionNotFound
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return models.Selection{}, err
	}
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	if err := s.selections.Save(ctx, id, next); err != nil {
		return current, fmt.Errorf("failed to save selection: %w", err)
	}
	return next, nil
}

// WithSession runs fn while holding the session, so fn's writes cannot
// outlive a concurrent Delete.
func (s *SessionService) WithSession(ctx context.Context, id string, fn func() error) error {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.deleted.Load() {
		return ErrSessionNotFound
	}
	return fn()
}

// Dialog returns the webcam dialog of a session
func (s *SessionService) Dialog(ctx context.Context, id string) (*CaptureDialog, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.dialog, nil
}

// AcceptCapture commits the pending photo of the dialog into the selection
func (s *SessionService) AcceptCapture(ctx context.Context, id string) (models.Selection, error) {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return models.Selection{}, err
	}
	return s.Apply(ctx, id, func(sel models.Selection) (models.Selection, error) {
		photo, err := sess.dialog.Accept()
		if err != nil {
			return sel, err
		}
		return s.designer.SetImage(sel, photo), nil
	})
}

// Delete releases the camera and removes the selection and chat log
func (s *SessionService) Delete(ctx context.Context, id string) error {
	sess, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.deleted.Load() {
		return ErrSessionNotFound
	}
	sess.dialog.Close()

	if err := s.selections.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete selection: %w", err)
	}
	if err := s.chats.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete chat log: %w", err)
	}
	sess.deleted.Store(true)
	sess.lastSeen = s.now()

	s.logger.Info("🗑️ Design session deleted", zap.String("session_id", id))
	return nil
}

// ExpireIdle deletes sessions not used within the ttl and returns how many
func (s *SessionService) ExpireIdle(ctx context.Context) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var idle []string
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue // busy, so not idle
		}
		stale := sess.lastSeen.Before(cutoff)
		if stale && sess.deleted.Load() {
			delete(s.sessions, id)
		} else if stale {
			idle = append(idle, id)
		}
		sess.mu.Unlock()
	}
	s.mu.Unlock()

	expired := 0
	for _, id := range idle {
		if err := s.Delete(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			s.logger.Warn("⚠️ Failed to expire session", zap.String("session_id", id), zap.Error(err))
			continue
		}
		expired++
	}
	if expired > 0 {
		s.logger.Info("🧹 Expired idle sessions", zap.Int("count", expired))
	}
	return expired
}

// Len returns the number of live sessions
func (s *SessionService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, sess := range s.sessions {
		if !sess.deleted.Load() {
			n++
		}
	}
	return n
}

// Close stops the janitor and releases every open camera
func (s *SessionService) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()

		s.mu.Lock()
		defer s.mu.Unlock()
		for _, sess := range s.sessions {
			sess.dialog.Close()
		}
	})
}

// lookup finds a live session, re-attaching one that only exists in the store
func (s *SessionService) lookup(ctx context.Context, id string) (*session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		if _, err := s.selections.Load(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrSessionNotFound
			}
			return nil, err
		}
		s.mu.Lock()
		if sess, ok = s.sessions[id]; !ok {
			sess = &session{dialog: s.capture.NewDialog()}
			s.sessions[id] = sess
		}
		s.mu.Unlock()
	}

	if sess.deleted.Load() {
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.lastSeen = s.now()
	sess.mu.Unlock()
	return sess, nil
}

func (s *SessionService) load(ctx context.Context, id string) (models.Selection, error) {
	sel, err := s.selections.Load(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Selection{}, ErrSessionNotFound
	}
	return sel, err
}

func (s *SessionService) janitor(interval time.Duration) {
	defer s.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.ExpireIdle(context.Background())
		}
	}
}

func janitorInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	return interval
}
