// Package synth manages external synthesizer plugins: small executables that
// receive note transitions on stdin and render them however they like, from
// console beeps to full softsynth bridges.
package synth

import (
	"encoding/json"

	"github.com/ayusman/taala/internal/music"
)

// Manifest describes a synth plugin's metadata and capabilities.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Executable  string `json:"executable"`
	// Voices limits the plugin to the named instruments. Empty means the
	// plugin wants every voice.
	Voices       []string        `json:"voices,omitempty"`
	ConfigSchema json.RawMessage `json:"configSchema,omitempty"`
}

// Request is one batch of note transitions sent to a plugin, together with
// the performance context the plugin may want for rendering.
type Request struct {
	Events []music.NoteEvent `json:"events"`
	BPM    float64           `json:"bpm,omitempty"`
	Volume float64           `json:"volume"`
	Config json.RawMessage   `json:"config,omitempty"`
}

// Response represents the response from a plugin execution.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// wantsVoice reports whether the plugin renders the named instrument.
func (p *Plugin) wantsVoice(instrument string) bool {
	if len(p.Manifest.Voices) == 0 {
		return true
	}
	for _, v := range p.Manifest.Voices {
		if v == instrument {
			return true
		}
	}
	return false
}
