package synth

import (
	"log"

	"github.com/ayusman/taala/internal/engine"
	"github.com/ayusman/taala/internal/music"
)

// Dispatcher fans frame results out to every discovered plugin. Sustained
// continuations are filtered; plugins only hear transitions.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
}

// NewDispatcher creates a Dispatcher over the given manager and executor.
func NewDispatcher(manager *Manager, executor *Executor) *Dispatcher {
	return &Dispatcher{
		manager:  manager,
		executor: executor,
	}
}

// Dispatch sends the frame's note transitions to each plugin that wants
// them. Plugin failures are logged and skipped; one broken plugin must not
// silence the rest.
func (d *Dispatcher) Dispatch(result engine.FrameResult) {
	transitions := make([]music.NoteEvent, 0, len(result.Events))
	for _, e := range result.Events {
		if e.Sustained {
			continue
		}
		transitions = append(transitions, e)
	}
	if len(transitions) == 0 {
		return
	}

	for _, plugin := range d.manager.List() {
		events := transitions
		if len(plugin.Manifest.Voices) > 0 {
			events = nil
			for _, e := range transitions {
				if plugin.wantsVoice(e.Instrument) {
					events = append(events, e)
				}
			}
			if len(events) == 0 {
				continue
			}
		}

		req := &Request{
			Events: events,
			Volume: result.Volume,
		}
		if result.HasBPM {
			req.BPM = result.BPM
		}

		resp, err := d.executor.Execute(plugin, req)
		if err != nil {
			log.Printf("synth plugin %s: %v", plugin.Manifest.Name, err)
			continue
		}
		if !resp.Success {
			log.Printf("synth plugin %s rejected batch: %s", plugin.Manifest.Name, resp.Error)
		}
	}
}
