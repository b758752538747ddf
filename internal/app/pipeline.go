package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"
)

// runPipeline is the main frame loop. Each tick it reads a frame, lets the
// motion gate decide whether detection is worth running, detects hands and
// feeds them to the engine, then fans the result out to every output.
//
// A closed gate means the scene is still: whatever is sounding keeps
// sounding and whatever is silent stays silent, so skipping detection is
// safe. The gate's linger window covers the still frames right after a
// retraction, where releases are decided.
func (a *App) runPipeline(stopCh chan struct{}) {
	frameInterval := time.Second / time.Duration(a.camera.FPS())

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			process, _ := a.motion.ShouldProcess(frame)
			if !process {
				frame.Close()
				continue
			}

			a.step(frame, time.Now())
			frame.Close()
		}
	}
}

// step runs detection and the engine on one frame and fans the result out.
func (a *App) step(frame *gocv.Mat, now time.Time) {
	hands, err := a.detector.Detect(frame)
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		return
	}

	a.mu.Lock()
	result := a.session.ProcessFrame(hands, now)
	a.mu.Unlock()

	a.record(result, now)
	a.emit(result)
}
