// Package midiout renders note events as wire-format MIDI messages for
// external synthesizers.
package midiout

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/ayusman/taala/internal/music"
)

// Sink receives rendered MIDI messages. Implementations must be fast; they
// are called from the frame loop.
type Sink interface {
	Send(msg midi.Message) error
}

// FuncSink adapts a function to the Sink interface.
type FuncSink func(msg midi.Message) error

// Send calls the wrapped function.
func (f FuncSink) Send(msg midi.Message) error {
	return f(msg)
}

// Messages renders a frame's note events as MIDI messages. Sustained
// continuation events produce nothing: a held note is silence on the wire.
// Events whose note fails to parse are skipped; the registry only emits
// quantizer output, so that path is defensive only in tests.
func Messages(events []music.NoteEvent) []midi.Message {
	var msgs []midi.Message
	for _, e := range events {
		if e.Sustained {
			continue
		}

		key, ok := music.NoteKey(e.Note)
		if !ok {
			continue
		}
		channel := music.InstrumentFor(e.Slot).Channel

		if e.Active {
			msgs = append(msgs, midi.NoteOn(channel, key, Velocity(e.Velocity)))
		} else {
			msgs = append(msgs, midi.NoteOff(channel, key))
		}
	}
	return msgs
}

// Velocity converts a [0,1] strike velocity to the MIDI 1-127 range.
// Zero-velocity note-ons double as note-offs in MIDI, so the floor is 1.
func Velocity(v float64) uint8 {
	if v <= 0 {
		return 1
	}
	if v >= 1 {
		return 127
	}
	out := uint8(v * 127)
	if out < 1 {
		out = 1
	}
	return out
}

// Dispatch renders events and sends them to the sink, stopping at the first
// send error.
func Dispatch(sink Sink, events []music.NoteEvent) error {
	for _, msg := range Messages(events) {
		if err := sink.Send(msg); err != nil {
			return err
		}
	}
	return nil
}
