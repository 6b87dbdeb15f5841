package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"apparel-designer/models"
)

var (
	// ErrStreamStopped is returned when reading from a stopped stream
	ErrStreamStopped = errors.New("media stream stopped")
	// ErrStreamNotFound is returned when pushing frames to an unknown or stopped stream
	ErrStreamNotFound = errors.New("media stream not found")
)

// MediaStream is a live video source. Stop releases it and is idempotent.
type MediaStream interface {
	ID() string
	// Frame samples the current frame, waiting for the first one if needed
	Frame(ctx context.Context) (image.Image, error)
	Stop()
	Active() bool
}

// MediaDevices acquires video streams
type MediaDevices interface {
	GetUserMedia(ctx context.Context, constraints models.MediaConstraints) (MediaStream, error)
}

// RelayDevices hands out streams fed by frames the browser uploads.
// A stream that receives nothing for idleTimeout stops itself.
type RelayDevices struct {
	idleTimeout time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	streams map[string]*relayStream
}

// Ensure RelayDevices implements MediaDevices
var _ MediaDevices = (*RelayDevices)(nil)

// NewRelayDevices creates a new RelayDevices
func NewRelayDevices(idleTimeout time.Duration, logger *zap.Logger) *RelayDevices {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelayDevices{
		idleTimeout: idleTimeout,
		logger:      logger,
		streams:     make(map[string]*relayStream),
	}
}

// GetUserMedia opens a new relay stream
func (d *RelayDevices) GetUserMedia(ctx context.Context, constraints models.MediaConstraints) (MediaStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &relayStream{
		id:           uuid.NewString(),
		constraints:  constraints,
		idleTimeout:  d.idleTimeout,
		lastActivity: time.Now(),
		ready:        make(chan struct{}),
		done:         make(chan struct{}),
		onStop:       d.forget,
	}

	d.mu.Lock()
	d.streams[s.id] = s
	d.mu.Unlock()

	if s.idleTimeout > 0 {
		s.wg.Add(1)
		go s.watch(d.logger)
	}
	d.logger.Info("🎥 Media stream started", zap.String("stream_id", s.id),
		zap.String("facing_mode", string(constraints.FacingMode)))
	return s, nil
}

// Push delivers a frame to an active stream
func (d *RelayDevices) Push(streamID string, frame image.Image) error {
	d.mu.Lock()
	s, ok := d.streams[streamID]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrStreamNotFound, streamID)
	}
	return s.push(frame)
}

// ActiveStreams returns the number of streams not yet stopped
func (d *RelayDevices) ActiveStreams() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.streams)
}

func (d *RelayDevices) forget(id string) {
	d.mu.Lock()
	delete(d.streams, id)
	d.mu.Unlock()
	d.logger.Info("🛑 Media stream stopped", zap.String("stream_id", id))
}

type relayStream struct {
	id          string
	constraints models.MediaConstraints
	idleTimeout time.Duration
	onStop      func(id string)

	mu           sync.Mutex
	latest       image.Image
	lastActivity time.Time
	readyOnce    sync.Once
	ready        chan struct{}

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

func (s *relayStream) ID() string { return s.id }

func (s *relayStream) Active() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

func (s *relayStream) Frame(ctx context.Context) (image.Image, error) {
	select {
	case <-s.done:
		return nil, ErrStreamStopped
	default:
	}
	select {
	case <-s.ready:
	case <-s.done:
		return nil, ErrStreamStopped
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for first frame: %w", ctx.Err())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = time.Now()
	return s.latest, nil
}

// Stop halts the stream and waits for its watchdog to exit
func (s *relayStream) Stop() {
	s.halt()
	s.wg.Wait()
}

func (s *relayStream) halt() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.onStop != nil {
			s.onStop(s.id)
		}
	})
}

func (s *relayStream) push(frame image.Image) error {
	if !s.Active() {
		return fmt.Errorf("%w: %s", ErrStreamNotFound, s.id)
	}
	w, h := s.constraints.IdealWidth, s.constraints.IdealHeight
	if w > 0 && h > 0 {
		frame = fitImage(frame, w, h)
	} else {
		frame = imaging.Clone(frame)
	}

	s.mu.Lock()
	s.latest = frame
	s.lastActivity = time.Now()
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })
	return nil
}

// watch stops the stream once it has been idle for idleTimeout
func (s *relayStream) watch(logger *zap.Logger) {
	defer s.wg.Done()

	interval := s.idleTimeout / 4
	if interval < 5*time.Millisecond {
		interval = 5 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			idle := now.Sub(s.lastActivity)
			s.mu.Unlock()
			if idle >= s.idleTimeout {
				logger.Warn("⚠️ Media stream idle, releasing", zap.String("stream_id", s.id), zap.Duration("idle", idle))
				s.halt()
				return
			}
		}
	}
}
