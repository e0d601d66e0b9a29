package app

import (
	"bytes"
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/ayusman/holoscan/internal/overlay"
	"github.com/ayusman/holoscan/internal/scan"
)

// runPipeline reads frames until ctx is done.
//
// Motion only picks the capture rate (idle or active); hand detection runs on
// every tick so a hand held perfectly still keeps feeding the session.
func (a *App) runPipeline(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval(a.pacer.FPS()))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if fps, changed := a.step(); changed {
				ticker.Reset(interval(fps))
			}
		}
	}
}

// step processes one frame and returns the capture rate to use next and
// whether it changed.
func (a *App) step() (int, bool) {
	frame, err := a.camera.ReadFrame()
	if err != nil {
		log.Debug().Err(err).Msg("read frame")
		return a.pacer.FPS(), false
	}
	defer frame.Close()

	motion, _ := a.motion.Detect(&frame.Mat)
	fps, changed := a.pacer.Observe(motion, frame.CapturedAt)
	if changed {
		a.camera.SetFPS(fps)
		log.Debug().Int("fps", fps).Bool("active", a.pacer.Active()).Msg("capture rate changed")
	}

	// Detection sees the camera's own orientation; only the preview is mirrored.
	pose, err := a.detector.Detect(&frame.Mat)
	if err != nil {
		log.Warn().Err(err).Msg("hand detection failed")
		if a.metrics != nil {
			a.metrics.IncDetectErrors()
		}
	} else {
		accepted := a.sink.Post(scan.FrameEvent{Pose: pose, At: frame.CapturedAt})
		if a.metrics != nil {
			a.metrics.ObserveFrame(pose != nil, accepted)
		}
	}

	a.publish(&frame.Mat)
	return fps, changed
}

// publish mirrors the frame, draws the skeleton and hands the JPEG to the feed.
func (a *App) publish(frame *gocv.Mat) {
	if a.feed == nil || frame.Empty() {
		return
	}

	overlay.Mirror(frame)
	if a.skeleton != nil {
		a.skeleton.Draw(frame)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		log.Warn().Err(err).Msg("encode preview frame")
		return
	}
	defer buf.Close()
	a.feed.Publish(bytes.Clone(buf.GetBytes()))
}

func interval(fps int) time.Duration {
	if fps <= 0 {
		fps = 1
	}
	return time.Second / time.Duration(fps)
}
