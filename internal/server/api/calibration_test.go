package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ayusman/taala/internal/engine"
)

// fakeCalibrator is a thread-safe Calibrator for handler tests.
type fakeCalibrator struct {
	mu  sync.Mutex
	cfg engine.Config
}

func newFakeCalibrator() *fakeCalibrator {
	return &fakeCalibrator{cfg: engine.DefaultConfig()}
}

func (f *fakeCalibrator) Config() engine.Config {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg
}

func (f *fakeCalibrator) SetConfig(cfg engine.Config) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cfg = cfg
}

func TestCalibrationHandler_Get(t *testing.T) {
	cal := newFakeCalibrator()
	handler := NewCalibrationHandler(cal, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/calibration", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var response calibrationPayload
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	defaults := engine.DefaultConfig()
	if response.HoldThreshold != defaults.Stability.HoldThreshold {
		t.Errorf("hold_threshold = %f, want %f", response.HoldThreshold, defaults.Stability.HoldThreshold)
	}
	if response.MinRunFrames != defaults.Stability.MinRunFrames {
		t.Errorf("min_run_frames = %d, want %d", response.MinRunFrames, defaults.Stability.MinRunFrames)
	}
}

func TestCalibrationHandler_PartialUpdate(t *testing.T) {
	cal := newFakeCalibrator()
	handler := NewCalibrationHandler(cal, nil)

	body := bytes.NewBufferString(`{"hold_threshold": 0.7, "min_run_frames": 5}`)
	req := httptest.NewRequest(http.MethodPut, "/api/calibration", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	cfg := cal.Config()
	if cfg.Stability.HoldThreshold != 0.7 {
		t.Errorf("HoldThreshold = %f, want 0.7", cfg.Stability.HoldThreshold)
	}
	if cfg.Stability.MinRunFrames != 5 {
		t.Errorf("MinRunFrames = %d, want 5", cfg.Stability.MinRunFrames)
	}

	// Omitted fields keep their defaults
	defaults := engine.DefaultConfig()
	if cfg.Extension.ActivationThreshold != defaults.Extension.ActivationThreshold {
		t.Errorf("ActivationThreshold changed unexpectedly: %f", cfg.Extension.ActivationThreshold)
	}
	if cfg.Stability.ReleaseRunFrames != defaults.Stability.ReleaseRunFrames {
		t.Errorf("ReleaseRunFrames changed unexpectedly: %d", cfg.Stability.ReleaseRunFrames)
	}
}

func TestCalibrationHandler_InvalidJSON(t *testing.T) {
	handler := NewCalibrationHandler(newFakeCalibrator(), nil)

	req := httptest.NewRequest(http.MethodPut, "/api/calibration", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCalibrationHandler_OutOfRange(t *testing.T) {
	cal := newFakeCalibrator()
	handler := NewCalibrationHandler(cal, nil)

	tests := []struct {
		name string
		body string
	}{
		{name: "threshold above one", body: `{"hold_threshold": 1.5}`},
		{name: "negative threshold", body: `{"activation_threshold": -0.2}`},
		{name: "negative frames", body: `{"min_run_frames": -1}`},
		{name: "volume above one", body: `{"default_volume": 2.0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/calibration", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
		})
	}

	// Rejected updates must not touch the live config
	defaults := engine.DefaultConfig()
	if cal.Config().Stability.HoldThreshold != defaults.Stability.HoldThreshold {
		t.Error("rejected update modified the live config")
	}
}

func TestCalibrationHandler_MethodNotAllowed(t *testing.T) {
	handler := NewCalibrationHandler(newFakeCalibrator(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/calibration", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestLoadCalibration(t *testing.T) {
	s := newTestStore(t)
	base := engine.DefaultConfig()

	t.Run("missing setting returns base config", func(t *testing.T) {
		cfg, err := LoadCalibration(s, base)
		if err != nil {
			t.Fatalf("LoadCalibration: %v", err)
		}
		if cfg != base {
			t.Errorf("expected base config, got %+v", cfg)
		}
	})

	t.Run("persisted values overlay the base", func(t *testing.T) {
		if err := s.Settings().Set(CalibrationSettingsKey, `{"hold_threshold":0.72,"release_run_frames":4}`); err != nil {
			t.Fatalf("Set: %v", err)
		}

		cfg, err := LoadCalibration(s, base)
		if err != nil {
			t.Fatalf("LoadCalibration: %v", err)
		}
		if cfg.Stability.HoldThreshold != 0.72 {
			t.Errorf("HoldThreshold = %f, want 0.72", cfg.Stability.HoldThreshold)
		}
		if cfg.Stability.ReleaseRunFrames != 4 {
			t.Errorf("ReleaseRunFrames = %d, want 4", cfg.Stability.ReleaseRunFrames)
		}
		if cfg.Extension.FingerLength != base.Extension.FingerLength {
			t.Errorf("FingerLength should keep base value, got %f", cfg.Extension.FingerLength)
		}
	})
}
