package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/taala/internal/engine"
	"github.com/ayusman/taala/internal/store"
)

// ProfilesHandler handles HTTP requests for named calibration profiles.
// Profiles are saved snapshots of the live tunables; applying one swaps the
// running pipeline's calibration in one step.
type ProfilesHandler struct {
	store      *store.Store
	calibrator Calibrator
}

// NewProfilesHandler creates a ProfilesHandler. The calibrator may be nil,
// in which case the apply endpoint is unavailable.
func NewProfilesHandler(s *store.Store, c Calibrator) *ProfilesHandler {
	return &ProfilesHandler{store: s, calibrator: c}
}

type profileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
	calibrationPayload
}

type profileRequest struct {
	Name string `json:"name"`
	calibrationPayload
}

type listProfilesResponse struct {
	Profiles []profileResponse `json:"profiles"`
}

func toProfileResponse(p *store.Profile) profileResponse {
	return profileResponse{
		ID:        p.ID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.Format(time.RFC3339),
		calibrationPayload: calibrationPayload{
			ActivationThreshold: p.ActivationThreshold,
			HoldThreshold:       p.HoldThreshold,
			MinRunFrames:        p.MinRunFrames,
			ReleaseRunFrames:    p.ReleaseRunFrames,
			FingerLength:        p.FingerLength,
			ThumbLength:         p.ThumbLength,
			RaiseMargin:         p.RaiseMargin,
			ThumbRaiseMargin:    p.ThumbRaiseMargin,
			DefaultVolume:       p.DefaultVolume,
		},
	}
}

// ProfileConfig overlays a stored profile onto base. Zero-valued fields fall
// back to base, same as calibration updates.
func ProfileConfig(p *store.Profile, base engine.Config) engine.Config {
	payload := calibrationPayload{
		ActivationThreshold: p.ActivationThreshold,
		HoldThreshold:       p.HoldThreshold,
		MinRunFrames:        p.MinRunFrames,
		ReleaseRunFrames:    p.ReleaseRunFrames,
		FingerLength:        p.FingerLength,
		ThumbLength:         p.ThumbLength,
		RaiseMargin:         p.RaiseMargin,
		ThumbRaiseMargin:    p.ThumbRaiseMargin,
		DefaultVolume:       p.DefaultVolume,
	}
	return payload.apply(base)
}

// ProfileFromConfig snapshots a live config as a named profile. The ID is
// assigned here.
func ProfileFromConfig(name string, cfg engine.Config) *store.Profile {
	return &store.Profile{
		ID:                  uuid.New().String(),
		Name:                name,
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

// ServeHTTP implements the http.Handler interface. Expected paths:
// /api/profiles, /api/profiles/{id} and /api/profiles/{id}/apply.
func (h *ProfilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/profiles")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if id, found := strings.CutSuffix(path, "/apply"); found {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.apply(w, r, id)
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// list handles GET /api/profiles and returns all saved profiles.
func (h *ProfilesHandler) list(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.store.Profiles().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list profiles")
		return
	}

	response := listProfilesResponse{
		Profiles: make([]profileResponse, 0, len(profiles)),
	}
	for _, p := range profiles {
		response.Profiles = append(response.Profiles, toProfileResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/profiles. Omitted tunables are filled from the
// defaults so a profile is always a complete snapshot.
func (h *ProfilesHandler) create(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Profile name is required")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.store.Profiles().GetByName(req.Name); err == nil {
		writeError(w, http.StatusConflict, "Profile name already exists")
		return
	}

	profile := ProfileFromConfig(req.Name, req.apply(engine.DefaultConfig()))
	if err := h.store.Profiles().Create(profile); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	writeJSON(w, http.StatusCreated, toProfileResponse(profile))
}

// get handles GET /api/profiles/{id}.
func (h *ProfilesHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// update handles PUT /api/profiles/{id}. Omitted fields keep their stored
// value.
func (h *ProfilesHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated := ProfileFromConfig(profile.Name, req.apply(ProfileConfig(profile, engine.DefaultConfig())))
	updated.ID = profile.ID
	updated.CreatedAt = profile.CreatedAt
	if req.Name != "" {
		updated.Name = req.Name
	}

	if err := h.store.Profiles().Update(updated); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(updated))
}

// delete handles DELETE /api/profiles/{id}.
func (h *ProfilesHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Profiles().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// apply handles POST /api/profiles/{id}/apply, swapping the running
// pipeline's calibration for the profile in one step.
func (h *ProfilesHandler) apply(w http.ResponseWriter, r *http.Request, id string) {
	if h.calibrator == nil {
		writeError(w, http.StatusServiceUnavailable, "No running pipeline to apply to")
		return
	}

	profile, err := h.store.Profiles().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Profile not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get profile")
		return
	}

	cfg := ProfileConfig(profile, h.calibrator.Config())
	h.calibrator.SetConfig(cfg)

	writeJSON(w, http.StatusOK, toPayload(cfg))
}
