package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestNewMotionGate(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
	}{
		{name: "default threshold", threshold: 1.0},
		{name: "high threshold", threshold: 5.0},
		{name: "low threshold", threshold: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mg := NewMotionGate(tt.threshold)
			if mg == nil {
				t.Fatal("NewMotionGate returned nil")
			}
			defer mg.Close()

			if mg.threshold != tt.threshold {
				t.Errorf("threshold = %f, want %f", mg.threshold, tt.threshold)
			}

			if mg.initialized {
				t.Error("gate should not be initialized initially")
			}

			if mg.linger != DefaultLingerFrames {
				t.Errorf("linger = %d, want %d", mg.linger, DefaultLingerFrames)
			}
		})
	}
}

func TestMotionGate_FirstFrameOpensGate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mg := NewMotionGate(1.0)
	defer mg.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	// The baseline frame opens the gate so the first visible hand
	// is not dropped while waiting for motion.
	process, changePercent := mg.ShouldProcess(&frame)
	if !process {
		t.Error("first frame should open the gate")
	}
	if changePercent != 0 {
		t.Errorf("first frame changePercent = %f, want 0", changePercent)
	}
}

func TestMotionGate_LingerAfterMotionStops(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mg := NewMotionGate(1.0)
	defer mg.Close()
	mg.SetLingerFrames(3)

	blackFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blackFrame.Close()

	whiteFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer whiteFrame.Close()
	whiteFrame.SetTo(gocv.NewScalar(255, 255, 255, 0))

	mg.ShouldProcess(&blackFrame)

	process, changePercent := mg.ShouldProcess(&whiteFrame)
	if !process {
		t.Errorf("black to white should count as motion, changePercent = %f", changePercent)
	}
	if changePercent < 50.0 {
		t.Errorf("changePercent = %f, expected > 50%% for black to white", changePercent)
	}

	// Still frames: the gate stays open for the linger window, then closes.
	for i := 0; i < 3; i++ {
		process, _ = mg.ShouldProcess(&whiteFrame)
		if !process {
			t.Errorf("linger frame %d should still be processed", i)
		}
	}

	process, _ = mg.ShouldProcess(&whiteFrame)
	if process {
		t.Error("gate should close after the linger window is exhausted")
	}
}

func TestMotionGate_MotionReopensGate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mg := NewMotionGate(1.0)
	defer mg.Close()
	mg.SetLingerFrames(0)

	blackFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blackFrame.Close()

	whiteFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer whiteFrame.Close()
	whiteFrame.SetTo(gocv.NewScalar(255, 255, 255, 0))

	mg.ShouldProcess(&blackFrame)

	// With zero linger a still frame closes the gate immediately.
	if process, _ := mg.ShouldProcess(&blackFrame); process {
		t.Error("still frame with zero linger should be skipped")
	}

	if process, _ := mg.ShouldProcess(&whiteFrame); !process {
		t.Error("motion should reopen the gate")
	}
}

func TestMotionGate_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	mg := NewMotionGate(1.0)
	defer mg.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	mg.ShouldProcess(&frame)

	if !mg.initialized {
		t.Error("gate should be initialized after first frame")
	}

	mg.Reset()

	if mg.initialized {
		t.Error("gate should not be initialized after Reset")
	}
	if !mg.prevGray.Empty() {
		t.Error("prevGray should be empty after Reset")
	}
}

func TestMotionGate_SetThreshold(t *testing.T) {
	mg := NewMotionGate(1.0)
	defer mg.Close()

	mg.SetThreshold(5.0)
	if mg.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0 after SetThreshold", mg.threshold)
	}

	// Non-positive values are ignored
	mg.SetThreshold(-1.0)
	if mg.threshold != 5.0 {
		t.Errorf("negative threshold should be ignored, got %f", mg.threshold)
	}
}

func TestMotionGate_SetLingerFrames_Negative(t *testing.T) {
	mg := NewMotionGate(1.0)
	defer mg.Close()

	mg.SetLingerFrames(-5)
	if mg.linger != DefaultLingerFrames {
		t.Errorf("negative linger should be ignored, got %d", mg.linger)
	}
}

func TestMotionGate_Close_Multiple(t *testing.T) {
	mg := NewMotionGate(1.0)

	mg.Close()
	mg.Close()
}
