package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/holoscan/internal/detector"
)

func TestNewEvaluator_Defaults(t *testing.T) {
	e := NewEvaluator(nil, 0)
	assert.Equal(t, DefaultWindow, e.Window())
	assert.Equal(t, DefaultDriftThreshold, e.Threshold())

	custom := NewEvaluator([]int{detector.Wrist}, 0.05)
	assert.Equal(t, []int{detector.Wrist}, custom.Window())
	assert.Equal(t, 0.05, custom.Threshold())
}

func TestEvaluator_IsStable(t *testing.T) {
	e := NewEvaluator(nil, 0)
	palm := detector.OpenPalm()

	tests := []struct {
		name     string
		current  *detector.Pose
		previous *detector.Pose
		want     bool
	}{
		{"identical poses", palm, palm.Clone(), true},
		{"small jitter", detector.Shifted(palm, 0.003, 0.004), palm, true},
		{"whole hand moved", detector.Shifted(palm, 0.02, 0), palm, false},
		{"current missing", nil, palm, false},
		{"previous missing", palm, nil, false},
		{"both missing", nil, nil, false},
		{"current truncated", &detector.Pose{Landmarks: palm.Landmarks[:detector.RingMCP]}, palm, false},
		{"previous truncated", palm, &detector.Pose{Landmarks: palm.Landmarks[:detector.IndexMCP]}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.IsStable(tt.current, tt.previous))
		})
	}
}

func TestEvaluator_FingertipsIgnored(t *testing.T) {
	e := NewEvaluator(nil, 0)
	palm := detector.OpenPalm()

	curled := palm.Clone()
	for _, tip := range []int{detector.ThumbTip, detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip} {
		curled.Landmarks[tip].Y += 0.2
	}

	assert.True(t, e.IsStable(curled, palm), "finger articulation must not break stability")
}

func TestEvaluator_ThresholdIsStrict(t *testing.T) {
	e := NewEvaluator([]int{detector.Wrist}, 0.25)
	a := &detector.Pose{Landmarks: []detector.Point3D{{X: 0, Y: 0}}}
	b := &detector.Pose{Landmarks: []detector.Point3D{{X: 0.25, Y: 0}}}

	drift, ok := e.Drift(b, a)
	require.True(t, ok)
	assert.Equal(t, 0.25, drift)
	assert.False(t, e.IsStable(b, a), "drift equal to threshold is not stable")
}

func TestEvaluator_DriftAveragesWindow(t *testing.T) {
	e := NewEvaluator(nil, 0)
	palm := detector.OpenPalm()

	jumped := palm.Clone()
	jumped.Landmarks[detector.Wrist].X += 0.05

	drift, ok := e.Drift(jumped, palm)
	require.True(t, ok)
	assert.InDelta(t, 0.01, drift, 1e-9)
	assert.False(t, e.IsStable(jumped, palm))
}
