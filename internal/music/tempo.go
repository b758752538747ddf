package music

import "time"

// maxBeatIntervals bounds the sliding window of inter-beat durations.
const maxBeatIntervals = 6

// TempoEstimator infers a conducting tempo from one hand's vertical wrist
// motion. A beat fires on a down-to-up direction reversal: the upward
// rebound after a conductor's downbeat has a much more consistent timing
// than the downward stroke, which stretches while the player prepares.
//
// Frames where the tracked hand is missing simply do not call Observe; the
// estimator keeps its state so brief tracking dropouts do not force a tempo
// recalculation from scratch.
type TempoEstimator struct {
	lastY   float64
	hasLast bool

	// direction of the previous stroke: +1 down (y grows downward),
	// -1 up, 0 unknown.
	direction int

	lastBeat  time.Time
	hasBeat   bool
	intervals []time.Duration
}

// NewTempoEstimator creates an estimator with no history.
func NewTempoEstimator() *TempoEstimator {
	return &TempoEstimator{}
}

// Observe feeds one frame's wrist y position. Returns true when this frame
// completed a beat.
func (e *TempoEstimator) Observe(y float64, now time.Time) bool {
	if !e.hasLast {
		e.lastY = y
		e.hasLast = true
		return false
	}

	dy := y - e.lastY
	e.lastY = y
	if dy == 0 {
		return false
	}

	dir := -1
	if dy > 0 {
		dir = 1
	}

	beat := e.direction == 1 && dir == -1
	e.direction = dir
	if !beat {
		return false
	}

	if e.hasBeat {
		interval := now.Sub(e.lastBeat)
		e.intervals = append(e.intervals, interval)
		if len(e.intervals) > maxBeatIntervals {
			e.intervals = e.intervals[1:]
		}
	}
	e.lastBeat = now
	e.hasBeat = true
	return true
}

// BPM returns the estimated tempo and whether enough history exists.
// At least two beats (one interval) are needed before a tempo is reported.
func (e *TempoEstimator) BPM() (float64, bool) {
	if len(e.intervals) == 0 {
		return 0, false
	}

	var total time.Duration
	for _, iv := range e.intervals {
		total += iv
	}
	meanMs := float64(total.Milliseconds()) / float64(len(e.intervals))
	if meanMs <= 0 {
		return 0, false
	}
	return 60000.0 / meanMs, true
}

// BeatCount returns how many intervals are currently in the window.
func (e *TempoEstimator) BeatCount() int {
	return len(e.intervals)
}
