// Package app runs the camera pipeline that feeds hand poses into the scan
// session.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayusman/holoscan/internal/capture"
	"github.com/ayusman/holoscan/internal/detector"
	"github.com/ayusman/holoscan/internal/metrics"
	"github.com/ayusman/holoscan/internal/overlay"
	"github.com/ayusman/holoscan/internal/scan"
)

// Sink receives frame events. *scan.Session satisfies it.
type Sink interface {
	Post(ev scan.Event) bool
}

// FramePublisher receives the encoded preview frame after each tick.
type FramePublisher interface {
	Publish(jpeg []byte)
}

// Config holds configuration options for the pipeline.
type Config struct {
	CameraID        int
	MotionThreshold float64
	// IdleTimeout is how long without motion before capture drops to idle
	// rate. Zero means capture.DefaultIdleTimeout.
	IdleTimeout time.Duration
}

// Option configures an App.
type Option func(*App)

// WithCamera replaces the device camera.
func WithCamera(c capture.Camera) Option {
	return func(a *App) { a.camera = c }
}

// WithDetector replaces the MediaPipe detector started by Start.
func WithDetector(d detector.Detector) Option {
	return func(a *App) { a.detector = d }
}

// WithSkeleton draws the tracked hand onto preview frames.
func WithSkeleton(s *overlay.Skeleton) Option {
	return func(a *App) { a.skeleton = s }
}

// WithFeed publishes mirrored preview frames.
func WithFeed(f FramePublisher) Option {
	return func(a *App) { a.feed = f }
}

// WithMetrics counts frames and detection errors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// App owns the camera and hand detector and turns every captured frame into
// a scan.FrameEvent.
type App struct {
	config   Config
	sink     Sink
	camera   capture.Camera
	motion   *capture.MotionDetector
	pacer    *capture.Pacer
	detector detector.Detector
	skeleton *overlay.Skeleton
	feed     FramePublisher
	metrics  *metrics.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an App posting to sink.
func New(config Config, sink Sink, opts ...Option) *App {
	pacer := capture.NewPacer()
	if config.IdleTimeout > 0 {
		pacer.IdleTimeout = config.IdleTimeout
	}

	a := &App{
		config: config,
		sink:   sink,
		motion: capture.NewMotionDetector(config.MotionThreshold),
		pacer:  pacer,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.camera == nil {
		a.camera = capture.NewCamera(config.CameraID)
	}
	return a
}

// Start opens the camera and detector and begins the pipeline. Any failure
// is wrapped in scan.ErrPoseSourceUnavailable; nothing is retried.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("%w: open camera %d: %w", scan.ErrPoseSourceUnavailable, a.config.CameraID, err)
	}

	if a.detector == nil {
		d, err := startMediaPipe()
		if err != nil {
			a.camera.Close()
			return fmt.Errorf("%w: hand detector: %w", scan.ErrPoseSourceUnavailable, err)
		}
		a.detector = d
	}

	a.camera.SetFPS(a.pacer.FPS())

	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.runPipeline(ctx, a.done)

	log.Info().Int("camera", a.config.CameraID).Int("fps", a.pacer.FPS()).Msg("detection pipeline started")
	return nil
}

// Stop halts the pipeline and releases the camera and detector.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
	a.cancel = nil

	if err := a.camera.Close(); err != nil {
		log.Warn().Err(err).Msg("close camera")
	}
	a.motion.Close()
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Warn().Err(err).Msg("close detector")
		}
	}

	log.Info().Msg("detection pipeline stopped")
}

// Running reports whether the pipeline goroutine is active.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Pacer returns the capture rate controller.
func (a *App) Pacer() *capture.Pacer {
	return a.pacer
}

func startMediaPipe() (detector.Detector, error) {
	mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		return nil, err
	}
	if err := mp.Start(); err != nil {
		mp.Close()
		return nil, err
	}
	return mp, nil
}
