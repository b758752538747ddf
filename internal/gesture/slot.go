// Package gesture turns per-frame hand landmarks into stable per-finger
// trigger decisions. It owns the extension geometry and the hysteresis that
// keeps landmark jitter from retriggering notes.
package gesture

// Side identifies which hand a slot belongs to.
type Side int

const (
	// SideLeft is the player's left hand.
	SideLeft Side = iota
	// SideRight is the player's right hand.
	SideRight
)

// String returns "left" or "right".
func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Finger identifies one finger of a hand, thumb first.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky

	// NumFingers is the number of fingers per hand.
	NumFingers = 5
)

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

// String returns the lowercase finger name.
func (f Finger) String() string {
	if f < 0 || f >= NumFingers {
		return "unknown"
	}
	return fingerNames[f]
}

// Slot is one of the 10 fixed (side, finger) combinations. Slots 0-4 are the
// left hand thumb through pinky, 5-9 the right hand. Each slot is permanently
// bound to one instrument (see internal/music).
type Slot int

// NumSlots is the total number of finger slots.
const NumSlots = 2 * NumFingers

// SlotOf returns the slot for a side and finger.
func SlotOf(side Side, finger Finger) Slot {
	return Slot(int(side)*NumFingers + int(finger))
}

// Side returns the hand side of the slot.
func (s Slot) Side() Side {
	if int(s) < NumFingers {
		return SideLeft
	}
	return SideRight
}

// Finger returns the finger of the slot.
func (s Slot) Finger() Finger {
	return Finger(int(s) % NumFingers)
}

// String returns names like "left_thumb" and "right_pinky".
func (s Slot) String() string {
	return s.Side().String() + "_" + s.Finger().String()
}

// Slots returns all 10 slots in deterministic processing order:
// left hand first, thumb through pinky, then the right hand.
func Slots() [NumSlots]Slot {
	var all [NumSlots]Slot
	for i := range all {
		all[i] = Slot(i)
	}
	return all
}

// SideSlots returns the five slots belonging to one hand, thumb first.
func SideSlots(side Side) [NumFingers]Slot {
	var slots [NumFingers]Slot
	for f := 0; f < NumFingers; f++ {
		slots[f] = SlotOf(side, Finger(f))
	}
	return slots
}
