// Package engine runs the per-frame pipeline that turns detected hand
// landmarks into note events, tempo and volume. All mutable gesture state
// lives in an explicit Session owned by the caller's frame loop; nothing
// here is global.
package engine

import (
	"time"

	"github.com/ayusman/taala/internal/detector"
	"github.com/ayusman/taala/internal/gesture"
	"github.com/ayusman/taala/internal/music"
)

// Config bundles every tunable of the pipeline.
type Config struct {
	Extension gesture.ExtensionConfig
	Stability gesture.StabilityConfig

	// DefaultVolume is reported when no hands are present.
	DefaultVolume float64
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		Extension:     gesture.DefaultExtensionConfig(),
		Stability:     gesture.DefaultStabilityConfig(),
		DefaultVolume: 0.8,
	}
}

// HandInput is the explicit present/absent state of one hand for a frame.
// Consumers must handle Absent; there is no nil hand.
type HandInput struct {
	Present bool
	Hand    detector.HandLandmarks
}

// FrameResult is everything one frame of processing produced.
type FrameResult struct {
	// Events is the ordered per-frame event list: left-hand slots before
	// right, thumb through pinky within a hand. Deterministic for
	// reproducible testing.
	Events []music.NoteEvent `json:"events"`

	// BPM is the conducting tempo estimate; valid only when HasBPM.
	BPM    float64 `json:"bpm"`
	HasBPM bool    `json:"has_bpm"`

	// Volume is the derived control value in [0,1], from hand height.
	Volume float64 `json:"volume"`

	// HandsPresent is the number of hands seen this frame, for status UI.
	HandsPresent int `json:"hands_present"`
}

// Session holds all mutable pipeline state: the 10 stability records, the
// sustained-note registry and the tempo estimator. Created once per
// performance; not safe for concurrent use. The frame loop must fully
// process one frame before starting the next.
type Session struct {
	cfg      Config
	tracker  *gesture.Tracker
	registry *music.Registry
	tempo    *music.TempoEstimator
}

// NewSession creates a Session with fresh state.
func NewSession(cfg Config) *Session {
	return &Session{
		cfg:      cfg,
		tracker:  gesture.NewTracker(cfg.Stability),
		registry: music.NewRegistry(),
		tempo:    music.NewTempoEstimator(),
	}
}

// Config returns the session's current tunables.
func (s *Session) Config() Config {
	return s.cfg
}

// SetConfig applies new tunables between frames. Sustained notes and tempo
// history are kept; only future judgments change.
func (s *Session) SetConfig(cfg Config) {
	s.cfg = cfg
	s.tracker.SetConfig(cfg.Stability)
}

// ProcessFrame runs one frame of the pipeline and returns the event list
// plus derived signals. hands carries zero, one or two entries; anything
// past two is ignored.
func (s *Session) ProcessFrame(hands []detector.HandLandmarks, now time.Time) FrameResult {
	left, right := AssignSides(hands)

	result := FrameResult{
		Volume: s.deriveVolume(left, right),
	}
	if left.Present {
		result.HandsPresent++
	}
	if right.Present {
		result.HandsPresent++
	}

	// The right hand conducts: its wrist trajectory feeds the tempo
	// estimator independently of the finger pipeline. An absent hand
	// leaves tempo state untouched, but a BPM is only reported on frames
	// where the conducting hand is actually seen.
	if right.Present {
		s.tempo.Observe(right.Hand.WristPoint().Y, now)
		result.BPM, result.HasBPM = s.tempo.BPM()
	}

	result.Events = append(result.Events, s.processSide(gesture.SideLeft, left, now)...)
	result.Events = append(result.Events, s.processSide(gesture.SideRight, right, now)...)

	return result
}

// processSide updates the five slots of one hand and returns their events in
// thumb-to-pinky order.
func (s *Session) processSide(side gesture.Side, input HandInput, now time.Time) []music.NoteEvent {
	if !input.Present {
		// Lost tracking is a forced release, not a suspend: every sounding
		// slot stops now, and stability counters are zeroed so a
		// reappearing hand cannot be instantly stable on stale counts.
		events := s.registry.ReleaseSide(side)
		s.tracker.ResetSide(side)
		return events
	}

	var events []music.NoteEvent
	for f := gesture.Thumb; f < gesture.NumFingers; f++ {
		slot := gesture.SlotOf(side, f)

		res := gesture.DetectExtension(&input.Hand, f, s.cfg.Extension)
		active := s.tracker.Update(slot, res)

		if active {
			inst := music.InstrumentFor(slot)
			note := music.Quantize(gesture.TipX(&input.Hand, f), inst, f)
			velocity := music.StrikeVelocity(res.Confidence)
			events = append(events, s.registry.NoteOn(slot, note, velocity, now)...)
		} else {
			events = append(events, s.registry.NoteOff(slot)...)
		}
	}
	return events
}

// deriveVolume maps average wrist height of the present hands to [0,1].
// Higher hands (smaller y) play louder. No hands yields the default.
func (s *Session) deriveVolume(left, right HandInput) float64 {
	sum := 0.0
	n := 0
	if left.Present {
		sum += left.Hand.WristPoint().Y
		n++
	}
	if right.Present {
		sum += right.Hand.WristPoint().Y
		n++
	}
	if n == 0 {
		return s.cfg.DefaultVolume
	}

	v := 1 - sum/float64(n)
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// Sustained exposes the registry's view of a slot, for status endpoints.
func (s *Session) Sustained(slot gesture.Slot) *music.SustainedNote {
	return s.registry.Sustained(slot)
}

// AssignSides splits the frame's hand list into explicit left/right inputs.
// The detector's handedness label wins when set; an unlabeled hand falls
// back to the horizontal midpoint heuristic (wrist x < 0.5 is the left
// side). The heuristic has no debouncing, so hands crossing near the
// midpoint can flicker sides; a known limitation of the reference behavior.
// With more than two hands only the first two are considered.
func AssignSides(hands []detector.HandLandmarks) (left, right HandInput) {
	if len(hands) > 2 {
		hands = hands[:2]
	}

	for i := range hands {
		h := hands[i]
		switch h.Handedness {
		case "Left":
			if !left.Present {
				left = HandInput{Present: true, Hand: h}
				continue
			}
		case "Right":
			if !right.Present {
				right = HandInput{Present: true, Hand: h}
				continue
			}
		}

		// Unlabeled, or the labeled side is already taken.
		if h.WristPoint().X < 0.5 {
			if !left.Present {
				left = HandInput{Present: true, Hand: h}
			} else if !right.Present {
				right = HandInput{Present: true, Hand: h}
			}
		} else {
			if !right.Present {
				right = HandInput{Present: true, Hand: h}
			} else if !left.Present {
				left = HandInput{Present: true, Hand: h}
			}
		}
	}

	return left, right
}
