package overlay

import "github.com/ayusman/holoscan/internal/detector"

// Multi fans every call out to each renderer in order.
type Multi []Renderer

// Render implements Renderer.
func (m Multi) Render(pose *detector.Pose) {
	for _, r := range m {
		if r != nil {
			r.Render(pose)
		}
	}
}

// Clear implements Renderer.
func (m Multi) Clear() {
	for _, r := range m {
		if r != nil {
			r.Clear()
		}
	}
}
