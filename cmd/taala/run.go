package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/ayusman/taala/internal/app"
	"github.com/ayusman/taala/internal/engine"
	"github.com/ayusman/taala/internal/midiout"
	"github.com/ayusman/taala/internal/server"
	"github.com/ayusman/taala/internal/store"
	"github.com/ayusman/taala/internal/tray"
)

var runFlags struct {
	addr         string
	cameraID     int
	midiPort     int
	pluginDir    string
	motionThresh float64
	profile      string
	record       bool
	noTray       bool
}

func init() {
	runCmd.Flags().StringVar(&runFlags.addr, "addr", ":8080", "HTTP listen address")
	runCmd.Flags().IntVar(&runFlags.cameraID, "camera", 0, "camera device ID")
	runCmd.Flags().IntVar(&runFlags.midiPort, "midi-port", -1, "MIDI output port number, -1 to disable")
	runCmd.Flags().StringVar(&runFlags.pluginDir, "plugins", "", "synth plugin directory (default ~/.taala/plugins)")
	runCmd.Flags().Float64Var(&runFlags.motionThresh, "motion", 1.0, "motion gate threshold in percent of changed pixels")
	runCmd.Flags().StringVar(&runFlags.profile, "profile", "", "start with a named calibration profile")
	runCmd.Flags().BoolVar(&runFlags.record, "record", false, "record the performance as a session")
	runCmd.Flags().BoolVar(&runFlags.noTray, "no-tray", false, "run headless without the system tray")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Starts the instrument",
	Long:  `Starts the camera pipeline, the HTTP server and the system tray.`,
	Run: func(cmd *cobra.Command, args []string) {
		runInstrument()
	},
}

func runInstrument() {
	fmt.Println("Taala - Finger Instrument")

	st, err := store.New(dbPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	pluginDir := runFlags.pluginDir
	if pluginDir == "" {
		pluginDir = filepath.Join(dataDir(), "plugins")
	}

	a := app.New(app.Config{
		Store:        st,
		PluginDir:    pluginDir,
		CameraID:     runFlags.cameraID,
		MotionThresh: runFlags.motionThresh,
		Profile:      runFlags.profile,
		Record:       runFlags.record,
	})

	if err := a.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	} else if n := len(a.SynthManager().List()); n > 0 {
		log.Printf("Discovered %d synth plugins", n)
	}

	if runFlags.midiPort >= 0 {
		defer midi.CloseDriver()
		out, err := midi.OutPort(runFlags.midiPort)
		if err != nil {
			log.Fatalf("MIDI port %d not available: %v", runFlags.midiPort, err)
		}
		send, err := midi.SendTo(out)
		if err != nil {
			log.Fatalf("Failed to open MIDI output: %v", err)
		}
		a.SetSink(midiout.FuncSink(send))
		log.Printf("Sending MIDI to %s", out.String())
	}

	srv := server.New(server.Config{
		StaticDir:  findWebDir(),
		Store:      st,
		Camera:     a.Camera(),
		Calibrator: a,
	})

	t := tray.New()
	a.AddFrameListener(func(result engine.FrameResult) {
		srv.Events().Broadcast(result)
		if !runFlags.noTray {
			t.SetTempo(result.BPM, result.HasBPM)
		}
	})

	if err := a.Start(); err != nil {
		log.Fatalf("Failed to start pipeline: %v", err)
	}
	defer a.Stop()

	go func() {
		log.Printf("Serving on %s", runFlags.addr)
		if err := srv.ListenAndServe(runFlags.addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	if runFlags.noTray {
		select {} // headless: block on the server
	}

	t.OnToggle(func(enabled bool) {
		a.SetEnabled(enabled)
	})
	t.OnQuit(func() {
		a.Stop()
	})
	t.Run()
}

// findWebDir searches for the web directory in common locations.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".taala", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
