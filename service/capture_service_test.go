package service

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"apparel-designer/models"
)

var opencensusWorker = goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start")

// fakeDevices records every stream it hands out
type fakeDevices struct {
	mu      sync.Mutex
	err     error
	streams []*fakeStream
	last    models.MediaConstraints
}

func (d *fakeDevices) GetUserMedia(ctx context.Context, c models.MediaConstraints) (MediaStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = c
	if d.err != nil {
		return nil, d.err
	}
	s := &fakeStream{id: "stream-" + string(rune('a'+len(d.streams))), active: true}
	d.streams = append(d.streams, s)
	return s, nil
}

func (d *fakeDevices) activeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, s := range d.streams {
		if s.Active() {
			n++
		}
	}
	return n
}

type fakeStream struct {
	mu     sync.Mutex
	id     string
	active bool
	stops  int
}

func (s *fakeStream) ID() string { return s.id }

func (s *fakeStream) Frame(ctx context.Context) (image.Image, error) {
	if !s.Active() {
		return nil, ErrStreamStopped
	}
	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.Set(0, 0, color.White)
	return img, nil
}

func (s *fakeStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
	s.stops++
}

func (s *fakeStream) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func newTestDialog(devices MediaDevices) *CaptureDialog {
	return NewCaptureService(devices, NewImageService(nil), nil).NewDialog()
}

func TestOpenRequestsFrontCamera(t *testing.T) {
	devices := &fakeDevices{}
	d := newTestDialog(devices)

	status := d.Open(context.Background())
	assert.True(t, status.Open)
	assert.True(t, status.StreamActive)
	assert.Equal(t, models.MediaConstraints{FacingMode: models.FacingUser, IdealWidth: 640, IdealHeight: 480}, devices.last)

	d.Close()
	assert.Equal(t, 0, devices.activeCount())
}

func TestOpenFailureIsNotFatal(t *testing.T) {
	devices := &fakeDevices{err: errors.New("permission denied")}
	d := newTestDialog(devices)

	status := d.Open(context.Background())
	assert.True(t, status.Open)
	assert.False(t, status.StreamActive)

	_, err := d.Capture(context.Background())
	assert.ErrorIs(t, err, ErrNoStream)

	d.Close()
	assert.False(t, d.Status().Open)
}

func TestCaptureRetakeAccept(t *testing.T) {
	devices := &fakeDevices{}
	d := newTestDialog(devices)
	ctx := context.Background()

	_, err := d.Accept()
	assert.ErrorIs(t, err, ErrDialogClosed)

	d.Open(ctx)
	_, err = d.Accept()
	assert.ErrorIs(t, err, ErrNothingCaptured)

	photo, err := d.Capture(ctx)
	require.NoError(t, err)
	assert.Contains(t, photo, "data:image/png;base64,")
	assert.Equal(t, photo, d.Status().CapturedImage)

	require.NoError(t, d.Retake())
	assert.Empty(t, d.Status().CapturedImage)
	assert.True(t, d.Status().StreamActive, "retake keeps the stream running")

	photo, err = d.Capture(ctx)
	require.NoError(t, err)

	accepted, err := d.Accept()
	require.NoError(t, err)
	assert.Equal(t, photo, accepted)
	assert.False(t, d.Status().Open)
	assert.Equal(t, 0, devices.activeCount())
}

func TestEveryExitPathStopsTheStream(t *testing.T) {
	ctx := context.Background()
	paths := map[string]func(t *testing.T, d *CaptureDialog){
		"cancel": func(t *testing.T, d *CaptureDialog) { d.Close() },
		"retake then close": func(t *testing.T, d *CaptureDialog) {
			_, err := d.Capture(ctx)
			require.NoError(t, err)
			require.NoError(t, d.Retake())
			d.Close()
		},
		"accept": func(t *testing.T, d *CaptureDialog) {
			_, err := d.Capture(ctx)
			require.NoError(t, err)
			_, err = d.Accept()
			require.NoError(t, err)
		},
		"double close": func(t *testing.T, d *CaptureDialog) {
			d.Close()
			d.Close()
		},
	}
	for name, exit := range paths {
		t.Run(name, func(t *testing.T) {
			devices := &fakeDevices{}
			d := newTestDialog(devices)
			status := d.Open(ctx)
			require.True(t, status.StreamActive)
			exit(t, d)
			assert.Equal(t, 0, devices.activeCount())
			assert.False(t, d.Status().StreamActive)
		})
	}
}

func TestReopenReusesLiveStream(t *testing.T) {
	devices := &fakeDevices{}
	d := newTestDialog(devices)
	ctx := context.Background()

	d.Open(ctx)
	_, err := d.Capture(ctx)
	require.NoError(t, err)

	status := d.Open(ctx)
	assert.Empty(t, status.CapturedImage)
	assert.Len(t, devices.streams, 1)

	d.Close()
}

func TestRelayStreamLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t, opencensusWorker)

	relay := NewRelayDevices(time.Minute, nil)
	d := newTestDialog(relay)
	ctx := context.Background()

	status := d.Open(ctx)
	require.True(t, status.StreamActive)
	assert.Equal(t, 1, relay.ActiveStreams())

	// no frame yet: capture waits, then gives up
	shortCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	_, err := d.Capture(shortCtx)
	cancel()
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, relay.Push(status.StreamID, solidImage(1280, 960, color.NRGBA{R: 255, A: 255})))
	photo, err := d.Capture(ctx)
	require.NoError(t, err)

	_, img := decodeDataURIImage(t, photo)
	assert.Equal(t, image.Rect(0, 0, 640, 480), img.Bounds())

	d.Close()
	assert.Equal(t, 0, relay.ActiveStreams())
	assert.ErrorIs(t, relay.Push(status.StreamID, solidImage(2, 2, color.Black)), ErrStreamNotFound)
}

func TestRelayWatchdogStopsIdleStream(t *testing.T) {
	defer goleak.VerifyNone(t, opencensusWorker)

	relay := NewRelayDevices(30*time.Millisecond, nil)
	stream, err := relay.GetUserMedia(context.Background(), models.DefaultCaptureConstraints)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return !stream.Active() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, relay.ActiveStreams())

	_, err = stream.Frame(context.Background())
	assert.ErrorIs(t, err, ErrStreamStopped)

	// Stop after the watchdog fired is a no-op that still joins the goroutine
	stream.Stop()
}

func TestRelayFramesKeepStreamAlive(t *testing.T) {
	defer goleak.VerifyNone(t, opencensusWorker)

	relay := NewRelayDevices(200*time.Millisecond, nil)
	stream, err := relay.GetUserMedia(context.Background(), models.MediaConstraints{})
	require.NoError(t, err)
	defer stream.Stop()

	for i := 0; i < 6; i++ {
		require.NoError(t, relay.Push(stream.ID(), solidImage(3, 3, color.White)))
		time.Sleep(20 * time.Millisecond)
	}
	assert.True(t, stream.Active())

	frame, err := stream.Frame(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, frame.Bounds().Dx(), "no constraints keeps the frame size")
}

func TestGetUserMediaHonorsCancelledContext(t *testing.T) {
	relay := NewRelayDevices(time.Minute, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := relay.GetUserMedia(ctx, models.DefaultCaptureConstraints)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, relay.ActiveStreams())
}
