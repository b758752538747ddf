package detector

import (
	"errors"
	"testing"
)

func TestToHandLandmarks_Strict(t *testing.T) {
	h := jsonHand{
		Points:     make([]jsonPoint, 10),
		Handedness: "Left",
		Score:      0.9,
	}

	_, err := h.toHandLandmarks(false)
	if !errors.Is(err, ErrShortHand) {
		t.Fatalf("expected ErrShortHand for 10-point hand, got %v", err)
	}
}

func TestToHandLandmarks_Padding(t *testing.T) {
	points := make([]jsonPoint, 10)
	for i := range points {
		points[i] = jsonPoint{X: float64(i) * 0.01, Y: 0.5}
	}
	h := jsonHand{
		Points:     points,
		Handedness: "Right",
		Score:      0.9,
	}

	lm, err := h.toHandLandmarks(true)
	if err != nil {
		t.Fatalf("unexpected error with padding enabled: %v", err)
	}

	// Missing landmarks repeat the last reported point.
	last := lm.Points[9]
	for i := 10; i < NumLandmarks; i++ {
		if lm.Points[i] != last {
			t.Errorf("landmark %d = %+v, want padded copy of %+v", i, lm.Points[i], last)
		}
	}
	if lm.Handedness != "Right" {
		t.Errorf("handedness = %q, want Right", lm.Handedness)
	}
}

func TestToHandLandmarks_EmptyAlwaysRejected(t *testing.T) {
	h := jsonHand{}
	if _, err := h.toHandLandmarks(true); !errors.Is(err, ErrShortHand) {
		t.Errorf("expected ErrShortHand for empty hand even with padding, got %v", err)
	}
}

func TestToHandLandmarks_Complete(t *testing.T) {
	points := make([]jsonPoint, NumLandmarks)
	for i := range points {
		points[i] = jsonPoint{X: 0.1, Y: 0.2, Z: 0.3}
	}
	h := jsonHand{Points: points, Handedness: "Left", Score: 0.8}

	lm, err := h.toHandLandmarks(false)
	if err != nil {
		t.Fatalf("unexpected error for complete hand: %v", err)
	}
	if lm.Points[PinkyTip] != (Point3D{X: 0.1, Y: 0.2, Z: 0.3}) {
		t.Errorf("unexpected pinky tip: %+v", lm.Points[PinkyTip])
	}
}

func TestPlanarDistance(t *testing.T) {
	a := Point3D{X: 0, Y: 0, Z: 5}
	b := Point3D{X: 3, Y: 4, Z: -5}

	// Depth must not contribute.
	if d := PlanarDistance(a, b); d != 5 {
		t.Errorf("PlanarDistance = %f, want 5", d)
	}
}

func TestMockDetector_Sequence(t *testing.T) {
	m := NewMockDetector()
	m.SetSequence([][]HandLandmarks{
		{RestingHand("Left", 0.3, 0.7)},
		nil,
		{RestingHand("Right", 0.7, 0.7)},
	})

	frame1, _ := m.Detect(nil)
	if len(frame1) != 1 || frame1[0].Handedness != "Left" {
		t.Fatalf("frame 1: got %+v", frame1)
	}
	frame2, _ := m.Detect(nil)
	if len(frame2) != 0 {
		t.Fatalf("frame 2: expected no hands, got %d", len(frame2))
	}
	frame3, _ := m.Detect(nil)
	if len(frame3) != 1 || frame3[0].Handedness != "Right" {
		t.Fatalf("frame 3: got %+v", frame3)
	}

	// Past the end the last entry repeats.
	frame4, _ := m.Detect(nil)
	if len(frame4) != 1 || frame4[0].Handedness != "Right" {
		t.Fatalf("frame 4: got %+v", frame4)
	}
}

func TestMockDetector_EmptySequence(t *testing.T) {
	m := NewMockDetector()
	m.SetHands([]HandLandmarks{RestingHand("Left", 0.3, 0.7)})
	m.SetSequence([][]HandLandmarks{})

	hands, err := m.Detect(nil)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if len(hands) != 1 {
		t.Fatalf("empty sequence should fall back to the fixed hands, got %d", len(hands))
	}
}
