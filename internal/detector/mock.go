package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It can either return a fixed hand list or play back a scripted sequence
// of frames, advancing one entry per Detect call.
type MockDetector struct {
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	pos      int
	err      error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by every Detect call.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
	m.sequence = nil
	m.pos = 0
}

// SetSequence sets a per-frame script. Each Detect call returns the next
// entry; after the last entry Detect keeps returning it.
func (m *MockDetector) SetSequence(frames [][]HandLandmarks) {
	m.sequence = frames
	m.pos = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands, sequence entry, or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		hands := m.sequence[m.pos]
		if m.pos < len(m.sequence)-1 {
			m.pos++
		}
		return hands, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// fingerTipIndex maps finger ordinal (0=thumb..4=pinky) to tip landmark index.
var fingerTipIndex = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// fingerBaseIndex maps finger ordinal to the base (MCP) landmark index.
var fingerBaseIndex = [5]int{ThumbMCP, IndexMCP, MiddleMCP, RingMCP, PinkyMCP}

// RestingHand returns a preset hand at the given wrist position with every
// finger curled: tips sit close to and slightly below their knuckles, so no
// finger passes the extension or raise checks.
func RestingHand(handedness string, wristX, wristY float64) HandLandmarks {
	lm := HandLandmarks{
		Handedness: handedness,
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: wristX, Y: wristY}

	for f := 0; f < 5; f++ {
		baseX := wristX + 0.03*float64(f-2)
		baseY := wristY - 0.08
		lm.Points[fingerBaseIndex[f]] = Point3D{X: baseX, Y: baseY}
		// Curled: tip barely away from the base and not raised.
		lm.Points[fingerTipIndex[f]] = Point3D{X: baseX + 0.01, Y: baseY + 0.02, Z: -0.02}
	}

	// Intermediate joints near their bases; the extension geometry only
	// reads tips, bases and the wrist.
	lm.Points[ThumbCMC] = Point3D{X: wristX + 0.02, Y: wristY - 0.03}
	lm.Points[ThumbIP] = lm.Points[ThumbMCP]
	for f := 1; f < 5; f++ {
		base := fingerBaseIndex[f]
		lm.Points[base+1] = lm.Points[base] // PIP
		lm.Points[base+2] = lm.Points[base] // DIP
	}

	return lm
}

// RaisedFingersHand returns a preset hand where the listed fingers
// (0=thumb..4=pinky) are fully extended straight up and the rest are curled.
// Raised tips are placed well above their bases (and the wrist, for the
// thumb) so they pass both the length ratio and the raise margin with room
// to spare. tipX fixes the horizontal position of every raised tip, which
// the pitch quantizer reads.
func RaisedFingersHand(handedness string, wristX, wristY, tipX float64, fingers ...int) HandLandmarks {
	lm := RestingHand(handedness, wristX, wristY)

	for _, f := range fingers {
		if f < 0 || f > 4 {
			continue
		}
		base := lm.Points[fingerBaseIndex[f]]
		// Far enough above the base that the planar tip-to-base distance
		// saturates the per-finger expected length.
		lm.Points[fingerTipIndex[f]] = Point3D{X: tipX, Y: base.Y - 0.40}
	}

	return lm
}
