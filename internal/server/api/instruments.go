package api

import (
	"net/http"

	"github.com/ayusman/taala/internal/gesture"
	"github.com/ayusman/taala/internal/music"
)

// InstrumentsHandler serves the fixed slot-to-instrument bindings.
type InstrumentsHandler struct{}

// NewInstrumentsHandler creates a new InstrumentsHandler.
func NewInstrumentsHandler() *InstrumentsHandler {
	return &InstrumentsHandler{}
}

type instrumentResponse struct {
	Slot         int      `json:"slot"`
	Name         string   `json:"name"`
	Side         string   `json:"side"`
	Finger       string   `json:"finger"`
	Instrument   string   `json:"instrument"`
	Channel      uint8    `json:"channel"`
	BaseOctave   int      `json:"base_octave"`
	OctaveOffset int      `json:"octave_offset"`
	Scale        []string `json:"scale"`
}

type listInstrumentsResponse struct {
	Instruments []instrumentResponse `json:"instruments"`
}

// ServeHTTP handles GET /api/instruments.
func (h *InstrumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := listInstrumentsResponse{
		Instruments: make([]instrumentResponse, 0, gesture.NumSlots),
	}

	for _, slot := range gesture.Slots() {
		inst := music.InstrumentFor(slot)
		response.Instruments = append(response.Instruments, instrumentResponse{
			Slot:         int(slot),
			Name:         slot.String(),
			Side:         slot.Side().String(),
			Finger:       slot.Finger().String(),
			Instrument:   inst.Name,
			Channel:      inst.Channel,
			BaseOctave:   inst.BaseOctave,
			OctaveOffset: music.FingerOctaveOffset(slot.Finger()),
			Scale:        inst.Scale,
		})
	}

	writeJSON(w, http.StatusOK, response)
}
