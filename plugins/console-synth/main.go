// console-synth is a minimal synth plugin: it reads one note batch from
// stdin and prints the transitions to stderr, which is handy for checking
// that the pipeline produces what you expect before wiring a real synth.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ayusman/taala/internal/synth"
)

func main() {
	var req synth.Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		respond(synth.Response{Success: false, Error: "bad request: " + err.Error()})
		os.Exit(1)
	}

	for _, e := range req.Events {
		if e.Active {
			fmt.Fprintf(os.Stderr, "ON  %-12s %-8s %-4s vel=%.2f\n", e.Slot, e.Instrument, e.Note, e.Velocity)
		} else {
			fmt.Fprintf(os.Stderr, "OFF %-12s %-8s %-4s\n", e.Slot, e.Instrument, e.Note)
		}
	}
	if req.BPM > 0 {
		fmt.Fprintf(os.Stderr, "    tempo %.0f bpm, volume %.2f\n", req.BPM, req.Volume)
	}

	respond(synth.Response{Success: true})
}

func respond(resp synth.Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
