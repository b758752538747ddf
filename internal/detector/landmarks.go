// Package detector provides hand landmark acquisition for the Taala performance engine.
package detector

import "math"

// Hand landmark indices following the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a 3D point in normalized camera coordinates.
// X and Y are in [0,1] relative to the frame; Y grows downward.
// Z is relative depth whose sign and scale are camera dependent.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected for one hand.
// When a HandLandmarks value exists it always carries exactly 21 points;
// shorter detector output is rejected or padded before it gets here
// (see Config.PadShortHands).
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left", "Right" or ""
	Score      float64               `json:"score"`
}

// WristPoint returns the wrist landmark.
func (h *HandLandmarks) WristPoint() Point3D {
	return h.Points[Wrist]
}

// PlanarDistance calculates the Euclidean distance between two points in the
// camera plane, ignoring depth. Extension geometry works on x/y only because
// z from single-camera trackers is too noisy to gate triggers on.
func PlanarDistance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Distance3D calculates the full Euclidean distance between two 3D points.
func Distance3D(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
