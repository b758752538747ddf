package music

import (
	"time"

	"github.com/ayusman/taala/internal/gesture"
)

// NoteEvent is one entry of the per-frame event list handed to downstream
// consumers (synth sinks, websocket clients, session recorder).
//
// Active=true, Sustained=false: strike this note now.
// Active=true, Sustained=true: the note is still held; no retrigger.
// Active=false: release whatever the slot was sounding.
type NoteEvent struct {
	Slot       gesture.Slot `json:"slot"`
	Instrument string       `json:"instrument"`
	Active     bool         `json:"active"`
	Note       string       `json:"note,omitempty"`
	Velocity   float64      `json:"velocity"`
	Sustained  bool         `json:"sustained"`
}

// SustainedNote records what a slot is currently sounding.
type SustainedNote struct {
	Note      string
	Velocity  float64
	StartedAt time.Time
}

// Registry tracks the at-most-one sustained note per slot and turns
// gesture-state transitions into a clean note on/off event stream: holding a
// note never retriggers it, changing pitch within a hold swaps it, and a
// lost hand releases everything on its side.
//
// Not safe for concurrent use; owned by the session's frame loop.
type Registry struct {
	notes [gesture.NumSlots]*SustainedNote
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NoteOn reports that a slot's gesture is stably active at the given pitch.
//
// If the slot already sustains the same pitch this is a continuation: one
// Sustained event, no retrigger. A different pitch releases the old note and
// strikes the new one (monophonic per slot). A silent slot gets a fresh
// strike.
func (r *Registry) NoteOn(slot gesture.Slot, note string, velocity float64, now time.Time) []NoteEvent {
	if slot < 0 || slot >= gesture.NumSlots {
		return nil
	}
	inst := InstrumentFor(slot).Name

	current := r.notes[slot]
	if current != nil && current.Note == note {
		return []NoteEvent{{
			Slot:       slot,
			Instrument: inst,
			Active:     true,
			Note:       note,
			Velocity:   current.Velocity,
			Sustained:  true,
		}}
	}

	var events []NoteEvent
	if current != nil {
		events = append(events, NoteEvent{
			Slot:       slot,
			Instrument: inst,
			Active:     false,
			Note:       current.Note,
		})
	}

	r.notes[slot] = &SustainedNote{Note: note, Velocity: velocity, StartedAt: now}
	events = append(events, NoteEvent{
		Slot:       slot,
		Instrument: inst,
		Active:     true,
		Note:       note,
		Velocity:   velocity,
	})
	return events
}

// NoteOff releases a slot's sustained note, if any. No-op on a silent slot:
// exactly one off event per transition, never duplicated.
func (r *Registry) NoteOff(slot gesture.Slot) []NoteEvent {
	if slot < 0 || slot >= gesture.NumSlots {
		return nil
	}

	current := r.notes[slot]
	if current == nil {
		return nil
	}

	r.notes[slot] = nil
	return []NoteEvent{{
		Slot:       slot,
		Instrument: InstrumentFor(slot).Name,
		Active:     false,
		Note:       current.Note,
	}}
}

// ReleaseSide force-releases every slot of one hand. This is the
// cancellation path for lost tracking: the hand is gone, so everything it
// held stops this frame.
func (r *Registry) ReleaseSide(side gesture.Side) []NoteEvent {
	var events []NoteEvent
	for _, slot := range gesture.SideSlots(side) {
		events = append(events, r.NoteOff(slot)...)
	}
	return events
}

// Sustained returns the slot's current note, or nil.
func (r *Registry) Sustained(slot gesture.Slot) *SustainedNote {
	if slot < 0 || slot >= gesture.NumSlots {
		return nil
	}
	return r.notes[slot]
}

// ActiveCount returns how many slots currently sustain a note.
func (r *Registry) ActiveCount() int {
	count := 0
	for _, n := range r.notes {
		if n != nil {
			count++
		}
	}
	return count
}
