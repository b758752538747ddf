// Package api provides HTTP API handlers for the Taala finger instrument.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/bep/debounce"

	"github.com/ayusman/taala/internal/engine"
	"github.com/ayusman/taala/internal/store"
)

// Calibrator exposes the live pipeline tunables to the HTTP API. The
// implementation must be safe for concurrent use; the raw engine session
// is not.
type Calibrator interface {
	Config() engine.Config
	SetConfig(engine.Config)
}

// CalibrationSettingsKey is the settings-table key the active calibration
// is persisted under.
const CalibrationSettingsKey = "calibration"

// persistDelay batches rapid slider-style PUTs into one database write.
const persistDelay = 2 * time.Second

// CalibrationHandler handles HTTP requests for live calibration tuning.
type CalibrationHandler struct {
	calibrator Calibrator
	store      *store.Store
	debounced  func(f func())
}

// NewCalibrationHandler creates a CalibrationHandler. The store may be nil,
// in which case calibration changes are applied but not persisted.
func NewCalibrationHandler(c Calibrator, s *store.Store) *CalibrationHandler {
	return &CalibrationHandler{
		calibrator: c,
		store:      s,
		debounced:  debounce.New(persistDelay),
	}
}

// calibrationPayload is the flat wire form of engine.Config.
type calibrationPayload struct {
	ActivationThreshold float64 `json:"activation_threshold"`
	HoldThreshold       float64 `json:"hold_threshold"`
	MinRunFrames        int     `json:"min_run_frames"`
	ReleaseRunFrames    int     `json:"release_run_frames"`
	FingerLength        float64 `json:"finger_length"`
	ThumbLength         float64 `json:"thumb_length"`
	RaiseMargin         float64 `json:"raise_margin"`
	ThumbRaiseMargin    float64 `json:"thumb_raise_margin"`
	DefaultVolume       float64 `json:"default_volume"`
}

func toPayload(cfg engine.Config) calibrationPayload {
	return calibrationPayload{
		ActivationThreshold: cfg.Extension.ActivationThreshold,
		HoldThreshold:       cfg.Stability.HoldThreshold,
		MinRunFrames:        cfg.Stability.MinRunFrames,
		ReleaseRunFrames:    cfg.Stability.ReleaseRunFrames,
		FingerLength:        cfg.Extension.FingerLength,
		ThumbLength:         cfg.Extension.ThumbLength,
		RaiseMargin:         cfg.Extension.RaiseMargin,
		ThumbRaiseMargin:    cfg.Extension.ThumbRaiseMargin,
		DefaultVolume:       cfg.DefaultVolume,
	}
}

// apply merges the nonzero fields of the payload into cfg. Zero is not a
// meaningful value for any tunable, so absent and zero are treated alike.
func (p calibrationPayload) apply(cfg engine.Config) engine.Config {
	if p.ActivationThreshold != 0 {
		cfg.Extension.ActivationThreshold = p.ActivationThreshold
	}
	if p.HoldThreshold != 0 {
		cfg.Stability.HoldThreshold = p.HoldThreshold
	}
	if p.MinRunFrames != 0 {
		cfg.Stability.MinRunFrames = p.MinRunFrames
	}
	if p.ReleaseRunFrames != 0 {
		cfg.Stability.ReleaseRunFrames = p.ReleaseRunFrames
	}
	if p.FingerLength != 0 {
		cfg.Extension.FingerLength = p.FingerLength
	}
	if p.ThumbLength != 0 {
		cfg.Extension.ThumbLength = p.ThumbLength
	}
	if p.RaiseMargin != 0 {
		cfg.Extension.RaiseMargin = p.RaiseMargin
	}
	if p.ThumbRaiseMargin != 0 {
		cfg.Extension.ThumbRaiseMargin = p.ThumbRaiseMargin
	}
	if p.DefaultVolume != 0 {
		cfg.DefaultVolume = p.DefaultVolume
	}
	return cfg
}

func (p calibrationPayload) validate() error {
	if p.ActivationThreshold < 0 || p.ActivationThreshold > 1 {
		return errors.New("activation_threshold must be in [0,1]")
	}
	if p.HoldThreshold < 0 || p.HoldThreshold > 1 {
		return errors.New("hold_threshold must be in [0,1]")
	}
	if p.MinRunFrames < 0 || p.ReleaseRunFrames < 0 {
		return errors.New("frame counts must not be negative")
	}
	if p.FingerLength < 0 || p.ThumbLength < 0 {
		return errors.New("finger lengths must not be negative")
	}
	if p.DefaultVolume < 0 || p.DefaultVolume > 1 {
		return errors.New("default_volume must be in [0,1]")
	}
	return nil
}

// ServeHTTP implements the http.Handler interface.
func (h *CalibrationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// get handles GET /api/calibration and returns the live tunables.
func (h *CalibrationHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toPayload(h.calibrator.Config()))
}

// update handles PUT /api/calibration. Fields omitted from the request keep
// their current value. The change applies to the running pipeline at once
// and is persisted after a short debounce, so slider drags cost one write.
func (h *CalibrationHandler) update(w http.ResponseWriter, r *http.Request) {
	var req calibrationPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := req.apply(h.calibrator.Config())
	h.calibrator.SetConfig(cfg)

	if h.store != nil {
		h.debounced(func() {
			if err := h.persist(cfg); err != nil {
				log.Printf("failed to persist calibration: %v", err)
			}
		})
	}

	writeJSON(w, http.StatusOK, toPayload(cfg))
}

func (h *CalibrationHandler) persist(cfg engine.Config) error {
	data, err := json.Marshal(toPayload(cfg))
	if err != nil {
		return err
	}
	return h.store.Settings().Set(CalibrationSettingsKey, string(data))
}

// LoadCalibration returns base overlaid with the persisted calibration, if
// any. A missing setting is not an error; the base config is returned.
func LoadCalibration(s *store.Store, base engine.Config) (engine.Config, error) {
	value, err := s.Settings().Get(CalibrationSettingsKey)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return base, nil
		}
		return base, err
	}

	var p calibrationPayload
	if err := json.Unmarshal([]byte(value), &p); err != nil {
		return base, err
	}

	return p.apply(base), nil
}
