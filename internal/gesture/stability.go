package gesture

// StabilityConfig holds the hysteresis tunables for the tracker.
type StabilityConfig struct {
	// HoldThreshold is the confidence a finger must exceed, on top of a raw
	// extended verdict, for its run to keep counting. Must be at least the
	// extension activation threshold; it is the stricter of the two.
	HoldThreshold float64

	// MinRunFrames is how many consecutive qualifying frames a slot needs
	// before it is trusted as active. Small values keep input lag under
	// ~50ms at 30-60Hz while still rejecting single-frame spikes.
	MinRunFrames int

	// ReleaseRunFrames is the counter value below which an active slot is
	// released. Lower than MinRunFrames: easy on, slightly sticky off.
	ReleaseRunFrames int
}

// DefaultStabilityConfig returns hysteresis defaults for 30-60Hz input.
func DefaultStabilityConfig() StabilityConfig {
	return StabilityConfig{
		HoldThreshold:    0.60,
		MinRunFrames:     3,
		ReleaseRunFrames: 2,
	}
}

// SlotState is the per-slot tracking record. One exists per slot for the
// lifetime of a session; it is zeroed, never destroyed.
type SlotState struct {
	// ConsecutiveFrames counts qualifying frames since the last failure.
	ConsecutiveFrames int
	// LastConfidence is the most recent raw confidence, kept for velocity
	// derivation and diagnostics.
	LastConfidence float64
	// active is the current stable decision.
	active bool
}

// Tracker applies temporal hysteresis over raw extension results for all 10
// slots. This is the central noise-rejection mechanism: per-frame landmark
// jitter produces single-frame confidence spikes and dips, and requiring a
// run of qualifying frames before trusting a transition is what keeps the
// audio from chattering.
//
// Tracker is not safe for concurrent use; it is owned by the session's
// frame-processing loop.
type Tracker struct {
	cfg    StabilityConfig
	states [NumSlots]SlotState
}

// NewTracker creates a Tracker with all slots inactive.
func NewTracker(cfg StabilityConfig) *Tracker {
	return &Tracker{cfg: cfg}
}

// Update feeds one frame's extension result for a slot and returns the
// stable active decision.
//
// The counter increments while the finger is extended with confidence above
// HoldThreshold and resets to zero the moment either fails. An inactive slot
// becomes active once the counter reaches MinRunFrames; an active slot is
// released once the counter drops below ReleaseRunFrames. Always
// deterministic, no failure mode: absent hands are handled upstream via
// ResetSide.
func (t *Tracker) Update(slot Slot, res ExtensionResult) bool {
	if slot < 0 || slot >= NumSlots {
		return false
	}

	st := &t.states[slot]
	st.LastConfidence = res.Confidence

	if res.Extended && res.Confidence > t.cfg.HoldThreshold {
		st.ConsecutiveFrames++
	} else {
		st.ConsecutiveFrames = 0
	}

	if !st.active {
		if st.ConsecutiveFrames >= t.cfg.MinRunFrames {
			st.active = true
		}
	} else if st.ConsecutiveFrames < t.cfg.ReleaseRunFrames {
		st.active = false
	}

	return st.active
}

// Active returns the current stable decision for a slot without updating it.
func (t *Tracker) Active(slot Slot) bool {
	if slot < 0 || slot >= NumSlots {
		return false
	}
	return t.states[slot].active
}

// State returns a copy of the slot's tracking record.
func (t *Tracker) State(slot Slot) SlotState {
	if slot < 0 || slot >= NumSlots {
		return SlotState{}
	}
	return t.states[slot]
}

// ResetSide zeroes the five slots of one hand. Called when that hand drops
// out of tracking: counts from before the dropout are stale, and leaving
// them in place would make a reappearing hand instantly stable.
func (t *Tracker) ResetSide(side Side) {
	for _, slot := range SideSlots(side) {
		t.states[slot] = SlotState{}
	}
}

// SetConfig swaps the hysteresis tunables. Existing counters are kept; live
// calibration only changes how future frames are judged.
func (t *Tracker) SetConfig(cfg StabilityConfig) {
	t.cfg = cfg
}
