// Package app wires the Taala pipeline together: camera, motion gate, hand
// detection, the gesture-to-note engine and every output that listens to it.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/taala/internal/capture"
	"github.com/ayusman/taala/internal/detector"
	"github.com/ayusman/taala/internal/engine"
	"github.com/ayusman/taala/internal/midiout"
	"github.com/ayusman/taala/internal/music"
	"github.com/ayusman/taala/internal/server/api"
	"github.com/ayusman/taala/internal/store"
	"github.com/ayusman/taala/internal/synth"
)

// Config holds configuration options for the application.
type Config struct {
	Store        *store.Store
	PluginDir    string
	CameraID     int
	MotionThresh float64
	// Profile names a stored calibration profile to start from. The live
	// calibration overlay still applies on top of it.
	Profile string
	// Record captures every note transition into a stored session.
	Record bool
}

// FrameListener receives every processed frame result. Listeners run on the
// frame loop goroutine and must be quick.
type FrameListener func(result engine.FrameResult)

// App is the main application that orchestrates hand detection and musical
// output.
type App struct {
	config    Config
	camera    capture.Camera
	motion    *capture.MotionGate
	detector  detector.Detector
	session   *engine.Session
	synths    *synth.Dispatcher
	synthMgr  *synth.Manager
	sink      midiout.Sink
	listeners []FrameListener

	enabled   bool
	profileID string
	mu        sync.RWMutex
	stopCh    chan struct{}

	recording   *store.Session
	recordStart time.Time
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	motionThreshold := config.MotionThresh
	if motionThreshold <= 0 {
		motionThreshold = 1.0 // Default threshold: 1% pixel change
	}

	engineCfg := engine.DefaultConfig()
	var profileID string
	if config.Store != nil {
		if config.Profile != "" {
			profile, err := config.Store.Profiles().GetByName(config.Profile)
			if err != nil {
				log.Printf("Calibration profile %q not found, using defaults: %v", config.Profile, err)
			} else {
				engineCfg = api.ProfileConfig(profile, engineCfg)
				profileID = profile.ID
			}
		}
		loaded, err := api.LoadCalibration(config.Store, engineCfg)
		if err != nil {
			log.Printf("Failed to load calibration, using defaults: %v", err)
		} else {
			engineCfg = loaded
		}
	}

	synthMgr := synth.NewManager(config.PluginDir)

	a := &App{
		config:    config,
		profileID: profileID,
		camera:    capture.NewCamera(config.CameraID),
		motion:    capture.NewMotionGate(motionThreshold),
		session:   engine.NewSession(engineCfg),
		synthMgr:  synthMgr,
		synths:    synth.NewDispatcher(synthMgr, synth.NewExecutor(5000)),
		enabled:   true,
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// Config returns the live pipeline tunables. Safe for concurrent use; this
// is the calibration API's read path.
func (a *App) Config() engine.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session.Config()
}

// SetConfig applies new tunables between frames. Safe for concurrent use;
// this is the calibration API's write path.
func (a *App) SetConfig(cfg engine.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session.SetConfig(cfg)
}

// SetEnabled mutes or unmutes the instrument. Muting releases everything
// currently sounding so no note hangs.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	var result engine.FrameResult
	if !enabled {
		result = a.session.ProcessFrame(nil, time.Now())
	}
	a.mu.Unlock()

	if !enabled && len(result.Events) > 0 {
		a.emit(result)
	}
}

// IsEnabled returns whether the instrument is currently playing.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// SetSink sets the MIDI sink note transitions are rendered to.
func (a *App) SetSink(s midiout.Sink) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sink = s
}

// AddFrameListener registers a callback for every processed frame.
// Must be called before Start.
func (a *App) AddFrameListener(fn FrameListener) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

// DiscoverPlugins scans the plugin directory for synth plugins.
func (a *App) DiscoverPlugins() error {
	return a.synthMgr.Discover()
}

// Start begins the performance pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}

	if a.config.Record && a.config.Store != nil {
		a.recording = &store.Session{
			ID:        uuid.New().String(),
			ProfileID: a.profileID,
			StartedAt: time.Now(),
		}
		if err := a.config.Store.Sessions().Create(a.recording); err != nil {
			log.Printf("Failed to start session recording: %v", err)
			a.recording = nil
		} else {
			a.recordStart = a.recording.StartedAt
			log.Printf("Recording session %s", a.recording.ID)
		}
	}

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	log.Println("Performance pipeline started")
	return nil
}

// Stop halts the pipeline and releases resources.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if a.recording != nil {
		if err := a.config.Store.Sessions().End(a.recording.ID, time.Now()); err != nil {
			log.Printf("Failed to end session recording: %v", err)
		}
		a.recording = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	a.motion.Close()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	log.Println("Performance pipeline stopped")
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// MotionGate returns the motion gate instance.
func (a *App) MotionGate() *capture.MotionGate {
	return a.motion
}

// SynthManager returns the synth plugin manager.
func (a *App) SynthManager() *synth.Manager {
	return a.synthMgr
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// record appends the frame's note transitions to the active session
// recording. Timestamps are relative to the recording start.
func (a *App) record(result engine.FrameResult, now time.Time) {
	a.mu.RLock()
	rec := a.recording
	start := a.recordStart
	a.mu.RUnlock()

	if rec == nil {
		return
	}

	var events []store.SessionEvent
	for _, e := range result.Events {
		if e.Sustained {
			continue
		}
		events = append(events, store.SessionEvent{
			Slot:        e.Slot.String(),
			Instrument:  e.Instrument,
			Active:      e.Active,
			Note:        e.Note,
			Velocity:    e.Velocity,
			TimestampMs: now.Sub(start).Milliseconds(),
		})
	}
	if len(events) == 0 {
		return
	}

	if err := a.config.Store.Sessions().AppendEvents(rec.ID, events); err != nil {
		log.Printf("Failed to record events: %v", err)
	}
}

// emit fans a frame result out to the MIDI sink, the synth plugins and all
// registered listeners.
func (a *App) emit(result engine.FrameResult) {
	a.mu.RLock()
	sink := a.sink
	listeners := a.listeners
	a.mu.RUnlock()

	if sink != nil && hasTransitions(result.Events) {
		if err := midiout.Dispatch(sink, result.Events); err != nil {
			log.Printf("MIDI dispatch error: %v", err)
		}
	}

	a.synths.Dispatch(result)

	for _, fn := range listeners {
		fn(result)
	}
}

func hasTransitions(events []music.NoteEvent) bool {
	for _, e := range events {
		if !e.Sustained {
			return true
		}
	}
	return false
}
