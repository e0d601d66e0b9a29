package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
)

// FrameFeed holds the newest encoded JPEG frame and wakes readers when a new
// one arrives.
type FrameFeed struct {
	mu     sync.Mutex
	frame  []byte
	seq    uint64
	notify chan struct{}
}

// NewFrameFeed creates an empty feed.
func NewFrameFeed() *FrameFeed {
	return &FrameFeed{notify: make(chan struct{})}
}

// Publish replaces the current frame. The feed keeps jpeg; callers must not
// modify it afterwards.
func (f *FrameFeed) Publish(jpeg []byte) {
	f.mu.Lock()
	f.frame = jpeg
	f.seq++
	close(f.notify)
	f.notify = make(chan struct{})
	f.mu.Unlock()
}

// Next blocks until a frame newer than after exists and returns it with its
// sequence number.
func (f *FrameFeed) Next(ctx context.Context, after uint64) ([]byte, uint64, error) {
	for {
		f.mu.Lock()
		if f.seq > after {
			frame, seq := f.frame, f.seq
			f.mu.Unlock()
			return frame, seq, nil
		}
		wait := f.notify
		f.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, after, ctx.Err()
		case <-wait:
		}
	}
}

// StreamHandler serves the feed as MJPEG.
type StreamHandler struct {
	feed *FrameFeed
}

// NewStreamHandler creates a StreamHandler for feed.
func NewStreamHandler(feed *FrameFeed) *StreamHandler {
	return &StreamHandler{feed: feed}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	var seq uint64
	for {
		frame, next, err := h.feed.Next(r.Context(), seq)
		if err != nil {
			return
		}
		seq = next

		fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(frame))
		if _, err := w.Write(frame); err != nil {
			return
		}
		fmt.Fprint(w, "\r\n")
		if flusher != nil {
			flusher.Flush()
		}
	}
}
