package gesture

import (
	"github.com/ayusman/taala/internal/detector"
)

// ExtensionResult is the per-frame verdict for one finger.
type ExtensionResult struct {
	// Extended reports whether the finger passes both the length ratio and
	// the raise check this frame. Raw, pre-hysteresis.
	Extended bool
	// Confidence is the clamped [0,1] ratio of observed planar tip-to-base
	// distance over the finger's expected length.
	Confidence float64
}

// ExtensionConfig holds the tunable geometry thresholds. Stricter values
// trade missed triggers for fewer false positives.
type ExtensionConfig struct {
	// ActivationThreshold is the minimum confidence for a raw extended
	// verdict.
	ActivationThreshold float64

	// FingerLength is the expected planar tip-to-base distance of a fully
	// extended non-thumb finger, in normalized frame units.
	FingerLength float64

	// ThumbLength is the expected planar tip-to-base distance of a fully
	// extended thumb. Smaller than FingerLength: the thumb chain is shorter
	// and its base sits closer to the tip.
	ThumbLength float64

	// RaiseMargin is how far (in normalized y) a fingertip must sit above
	// its base to count as raised rather than merely spread.
	RaiseMargin float64

	// ThumbRaiseMargin is the raise margin for the thumb, measured against
	// the wrist instead of the thumb base, and larger because the thumb tip
	// naturally rides higher than its own base.
	ThumbRaiseMargin float64
}

// DefaultExtensionConfig returns the thresholds tuned against a 640x480
// selfie camera at arm's length.
func DefaultExtensionConfig() ExtensionConfig {
	return ExtensionConfig{
		ActivationThreshold: 0.55,
		FingerLength:        0.18,
		ThumbLength:         0.12,
		RaiseMargin:         0.04,
		ThumbRaiseMargin:    0.08,
	}
}

// tipIndex maps a Finger to its tip landmark.
var tipIndex = [NumFingers]int{
	detector.ThumbTip,
	detector.IndexTip,
	detector.MiddleTip,
	detector.RingTip,
	detector.PinkyTip,
}

// baseIndex maps a Finger to its base (MCP) landmark.
var baseIndex = [NumFingers]int{
	detector.ThumbMCP,
	detector.IndexMCP,
	detector.MiddleMCP,
	detector.RingMCP,
	detector.PinkyMCP,
}

// DetectExtension computes the extension verdict for one finger of a hand.
// Pure function of the landmarks and config.
//
// Confidence is the planar (x/y) tip-to-base distance divided by the
// finger's expected length, clamped to [0,1]. A pure distance threshold
// fires on fingers spread sideways, so Extended additionally requires the
// tip to sit above the base (smaller y) by RaiseMargin. The thumb is
// checked against the wrist with ThumbRaiseMargin instead.
func DetectExtension(hand *detector.HandLandmarks, finger Finger, cfg ExtensionConfig) ExtensionResult {
	if hand == nil || finger < 0 || finger >= NumFingers {
		return ExtensionResult{}
	}

	tip := hand.Points[tipIndex[finger]]
	base := hand.Points[baseIndex[finger]]

	expected := cfg.FingerLength
	if finger == Thumb {
		expected = cfg.ThumbLength
	}

	confidence := 0.0
	if expected > 0 {
		confidence = detector.PlanarDistance(tip, base) / expected
	}
	if confidence > 1 {
		confidence = 1
	}

	raised := false
	if finger == Thumb {
		raised = tip.Y < hand.Points[detector.Wrist].Y-cfg.ThumbRaiseMargin
	} else {
		raised = tip.Y < base.Y-cfg.RaiseMargin
	}

	return ExtensionResult{
		Extended:   confidence > cfg.ActivationThreshold && raised,
		Confidence: confidence,
	}
}

// TipX returns the horizontal position of a finger's tip, the input to
// pitch quantization.
func TipX(hand *detector.HandLandmarks, finger Finger) float64 {
	if hand == nil || finger < 0 || finger >= NumFingers {
		return 0
	}
	return hand.Points[tipIndex[finger]].X
}
