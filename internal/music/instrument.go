// Package music maps stable finger gestures to musical output: pitch
// quantization onto per-instrument scales, sustained-note bookkeeping, strike
// velocity shaping and conducting-tempo estimation.
package music

import (
	"math"
	"strconv"

	"github.com/ayusman/taala/internal/gesture"
)

// Instrument is the static description of one finger slot's voice.
type Instrument struct {
	// Name is the display name, e.g. "Drums".
	Name string
	// Scale is the ordered pitch classes the instrument quantizes onto.
	// Rhythm voices use a single repeated pitch.
	Scale []string
	// BaseOctave anchors the instrument's register before the per-finger
	// offset is applied.
	BaseOctave int
	// Channel is the MIDI channel the instrument plays on (0-15).
	Channel uint8
}

// Common scales. Pentatonic and blues degrees keep simultaneous fingers
// consonant even when the player sweeps at random.
var (
	scaleMajor      = []string{"C", "D", "E", "F", "G", "A", "B"}
	scalePentatonic = []string{"C", "D", "E", "G", "A"}
	scaleMinorPenta = []string{"C", "D#", "F", "G", "A#"}
	scaleBlues      = []string{"C", "D#", "F", "F#", "G", "A#"}
	scaleSingleC    = []string{"C"}
)

// instruments is the fixed slot binding: slots 0-4 are the left hand (rhythm
// section, lower registers), 5-9 the right hand (melodic voices, higher).
// This is configuration, not runtime state.
var instruments = [gesture.NumSlots]Instrument{
	{Name: "Drums", Scale: scaleSingleC, BaseOctave: 2, Channel: 9},
	{Name: "Bass", Scale: scaleMinorPenta, BaseOctave: 2, Channel: 0},
	{Name: "Organ", Scale: scaleMajor, BaseOctave: 3, Channel: 1},
	{Name: "Pads", Scale: scalePentatonic, BaseOctave: 3, Channel: 2},
	{Name: "Pluck", Scale: scalePentatonic, BaseOctave: 4, Channel: 3},
	{Name: "Piano", Scale: scaleMajor, BaseOctave: 4, Channel: 4},
	{Name: "Lead", Scale: scaleBlues, BaseOctave: 5, Channel: 5},
	{Name: "Flute", Scale: scalePentatonic, BaseOctave: 5, Channel: 6},
	{Name: "Strings", Scale: scalePentatonic, BaseOctave: 3, Channel: 7},
	{Name: "Bells", Scale: scalePentatonic, BaseOctave: 6, Channel: 8},
}

// InstrumentFor returns the instrument permanently bound to a slot.
func InstrumentFor(slot gesture.Slot) Instrument {
	if slot < 0 || slot >= gesture.NumSlots {
		return instruments[0]
	}
	return instruments[slot]
}

// fingerOctaveOffset spreads the five fingers of a hand across registers so
// a five-finger chord lands as a voiced spread instead of unison: thumb a
// octave down, ring and pinky an octave up.
var fingerOctaveOffset = [gesture.NumFingers]int{-1, 0, 0, 1, 1}

// FingerOctaveOffset returns the octave perturbation for a finger.
func FingerOctaveOffset(f gesture.Finger) int {
	if f < 0 || f >= gesture.NumFingers {
		return 0
	}
	return fingerOctaveOffset[f]
}

// Quantize snaps a horizontal position x in [0,1] onto the instrument's
// scale and returns a note string such as "C4" or "D#5". The scale degree is
// floor(x*len) clamped into range, so x=1.0 maps to the top degree instead
// of running off the end. Always returns a valid note.
func Quantize(x float64, inst Instrument, finger gesture.Finger) string {
	n := len(inst.Scale)
	if n == 0 {
		return "C4"
	}

	idx := int(math.Floor(x * float64(n)))
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}

	octave := inst.BaseOctave + FingerOctaveOffset(finger)
	return inst.Scale[idx] + strconv.Itoa(octave)
}

// semitones maps a pitch class letter to its semitone within the octave.
var semitones = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// NoteKey converts a note string like "C4" or "A#2" to a MIDI key number,
// with C4 = 60. Out-of-range keys are clamped to [0,127]; malformed notes
// report ok=false.
func NoteKey(note string) (uint8, bool) {
	if len(note) < 2 {
		return 0, false
	}

	semi, found := semitones[note[0]]
	if !found {
		return 0, false
	}

	rest := note[1:]
	if rest[0] == '#' {
		semi++
		rest = rest[1:]
	}

	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}

	key := (octave+1)*12 + semi
	if key < 0 {
		key = 0
	}
	if key > 127 {
		key = 127
	}
	return uint8(key), true
}
