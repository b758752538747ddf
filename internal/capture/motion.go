package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Motion gate constants
const (
	// GaussianBlurSize is the kernel size for Gaussian blur (21x21)
	GaussianBlurSize = 21
	// DiffThreshold is the binary threshold for difference detection
	DiffThreshold = 25
	// DefaultLingerFrames is how many frames the gate stays open after
	// motion stops. Sustained notes release when the hand retracts or
	// leaves the frame, and that transition happens on a still frame,
	// so detection must keep running briefly past the last movement.
	DefaultLingerFrames = 45
)

// MotionGate decides whether a frame is worth running hand detection on.
// It uses frame differencing with Gaussian blur for noise reduction, and
// keeps the gate open for a linger window after motion stops.
type MotionGate struct {
	threshold   float64
	linger      int
	remaining   int
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

// NewMotionGate creates a MotionGate. The threshold is the percentage of
// pixels that must change between frames to count as motion; a threshold
// of 1.0 means 1% of pixels.
func NewMotionGate(threshold float64) *MotionGate {
	return &MotionGate{
		threshold: threshold,
		linger:    DefaultLingerFrames,
		prevGray:  gocv.NewMat(),
	}
}

// ShouldProcess reports whether the frame should go through detection,
// along with the percentage of pixels that changed. The first frame
// establishes the baseline and opens the gate so startup is not silent.
func (m *MotionGate) ShouldProcess(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: GaussianBlurSize, Y: GaussianBlurSize}, 0, 0, gocv.BorderDefault)

	if !m.initialized {
		blurred.CopyTo(&m.prevGray)
		m.initialized = true
		m.remaining = m.linger
		return true, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, DiffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	totalPixels := thresh.Rows() * thresh.Cols()
	changePercent := float64(nonZero) / float64(totalPixels) * 100.0

	blurred.CopyTo(&m.prevGray)

	if changePercent > m.threshold {
		m.remaining = m.linger
		return true, changePercent
	}

	if m.remaining > 0 {
		m.remaining--
		return true, changePercent
	}

	return false, changePercent
}

// Reset clears the gate state, allowing it to be reused with a new baseline.
func (m *MotionGate) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.prevGray.Empty() {
		m.prevGray.Close()
		m.prevGray = gocv.NewMat()
	}
	m.initialized = false
	m.remaining = 0
}

// Close releases resources used by the gate.
func (m *MotionGate) Close() {
	m.Reset()
}

// SetThreshold sets the motion threshold.
// Values less than or equal to 0 are ignored.
func (m *MotionGate) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.threshold = threshold
}

// SetLingerFrames sets how long the gate stays open after motion stops.
// Negative values are ignored.
func (m *MotionGate) SetLingerFrames(n int) {
	if n < 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.linger = n
}
