package app

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/taala/internal/detector"
	"github.com/ayusman/taala/internal/engine"
	"github.com/ayusman/taala/internal/store"
)

// frameCollector gathers frame results from the app's listener hook.
type frameCollector struct {
	mu      sync.Mutex
	results []engine.FrameResult
}

func (c *frameCollector) listen(result engine.FrameResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, result)
}

func (c *frameCollector) strikes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var notes []string
	for _, r := range c.results {
		for _, e := range r.Events {
			if e.Active && !e.Sustained {
				notes = append(notes, e.Instrument+":"+e.Note)
			}
		}
	}
	return notes
}

func (c *frameCollector) releases() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, r := range c.results {
		for _, e := range r.Events {
			if !e.Active {
				count++
			}
		}
	}
	return count
}

func TestApp_HoldAndReleasePipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	a := New(Config{
		Store:     s,
		PluginDir: filepath.Join(tmpDir, "plugins"),
	})

	mock := detector.NewMockDetector()
	a.SetDetector(mock)

	collector := &frameCollector{}
	a.AddFrameListener(collector.listen)

	// Record manually; Start() would open a real camera
	a.recording = &store.Session{ID: "test-session", StartedAt: time.Now()}
	a.recordStart = a.recording.StartedAt
	if err := s.Sessions().Create(a.recording); err != nil {
		t.Fatalf("failed to create recording session: %v", err)
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	now := time.Now()
	tick := func() {
		a.step(&frame, now)
		now = now.Add(33 * time.Millisecond)
	}

	// Left index finger raised and held: stability needs MinRunFrames
	raised := detector.RaisedFingersHand("Left", 0.3, 0.6, 0.3, 1)
	mock.SetHands([]detector.HandLandmarks{raised})
	for i := 0; i < 6; i++ {
		tick()
	}

	strikes := collector.strikes()
	if len(strikes) != 1 {
		t.Fatalf("expected exactly 1 strike, got %v", strikes)
	}
	if strikes[0][:5] != "Bass:" {
		t.Errorf("left index should play Bass, got %s", strikes[0])
	}

	// Retract the finger: one release
	mock.SetHands([]detector.HandLandmarks{detector.RestingHand("Left", 0.3, 0.6)})
	for i := 0; i < 4; i++ {
		tick()
	}

	if collector.releases() != 1 {
		t.Errorf("expected exactly 1 release, got %d", collector.releases())
	}

	// The recording captured both transitions
	events, err := s.Sessions().Events(a.recording.ID)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 recorded events, got %d", len(events))
	}
	if !events[0].Active || events[0].Slot != "left_index" {
		t.Errorf("first recorded event mismatch: %+v", events[0])
	}
	if events[1].Active {
		t.Errorf("second recorded event should be the release: %+v", events[1])
	}
	if events[1].TimestampMs <= events[0].TimestampMs {
		t.Errorf("timestamps not increasing: %d then %d", events[0].TimestampMs, events[1].TimestampMs)
	}
}

func TestApp_MuteReleasesSustainedNotes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	a := New(Config{PluginDir: t.TempDir()})

	mock := detector.NewMockDetector()
	a.SetDetector(mock)

	collector := &frameCollector{}
	a.AddFrameListener(collector.listen)

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	now := time.Now()
	mock.SetHands([]detector.HandLandmarks{
		detector.RaisedFingersHand("Right", 0.7, 0.6, 0.7, 1),
	})
	for i := 0; i < 6; i++ {
		a.step(&frame, now)
		now = now.Add(33 * time.Millisecond)
	}

	if len(collector.strikes()) != 1 {
		t.Fatalf("expected 1 strike before muting, got %v", collector.strikes())
	}

	a.SetEnabled(false)

	if collector.releases() != 1 {
		t.Errorf("muting should release the sustained note, got %d releases", collector.releases())
	}
	if a.IsEnabled() {
		t.Error("app should report muted")
	}
}

func TestApp_ConfigRoundTrip(t *testing.T) {
	a := New(Config{PluginDir: t.TempDir()})

	cfg := a.Config()
	cfg.Stability.MinRunFrames = 7
	a.SetConfig(cfg)

	if got := a.Config().Stability.MinRunFrames; got != 7 {
		t.Errorf("MinRunFrames = %d, want 7", got)
	}
}
