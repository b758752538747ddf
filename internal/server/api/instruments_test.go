package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ayusman/taala/internal/gesture"
)

func TestInstrumentsHandler_List(t *testing.T) {
	handler := NewInstrumentsHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/instruments", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response listInstrumentsResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Instruments) != gesture.NumSlots {
		t.Fatalf("expected %d instruments, got %d", gesture.NumSlots, len(response.Instruments))
	}

	// Slots come back in processing order with stable names
	if response.Instruments[0].Name != "left_thumb" {
		t.Errorf("first slot = %q, want left_thumb", response.Instruments[0].Name)
	}
	if response.Instruments[9].Name != "right_pinky" {
		t.Errorf("last slot = %q, want right_pinky", response.Instruments[9].Name)
	}

	// Every slot has its own MIDI channel
	channels := make(map[uint8]string)
	for _, inst := range response.Instruments {
		if prev, taken := channels[inst.Channel]; taken {
			t.Errorf("channel %d shared by %s and %s", inst.Channel, prev, inst.Instrument)
		}
		channels[inst.Channel] = inst.Instrument

		if len(inst.Scale) == 0 {
			t.Errorf("instrument %s has an empty scale", inst.Instrument)
		}
	}
}

func TestInstrumentsHandler_MethodNotAllowed(t *testing.T) {
	handler := NewInstrumentsHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/instruments", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}
