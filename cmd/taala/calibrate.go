package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/ayusman/taala/internal/engine"
	"github.com/ayusman/taala/internal/server/api"
	"github.com/ayusman/taala/internal/store"
)

var (
	calibrateReset bool
	calibrateSave  string
)

func init() {
	calibrateCmd.Flags().BoolVar(&calibrateReset, "reset", false, "restore the default thresholds")
	calibrateCmd.Flags().StringVar(&calibrateSave, "save", "", "save the effective thresholds as a named profile")
	rootCmd.AddCommand(calibrateCmd)
}

var calibrateCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Shows or resets the gesture thresholds",
	Long: `Shows the effective gesture thresholds. Live tuning happens over
PUT /api/calibration while the instrument runs; this command inspects what
is persisted and can reset it.`,
	Run: func(cmd *cobra.Command, args []string) {
		calibrate()
	},
}

func calibrate() {
	st, err := store.New(dbPath())
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	if calibrateReset {
		// An empty overlay means every field falls back to its default
		if err := st.Settings().Set(api.CalibrationSettingsKey, "{}"); err != nil {
			log.Fatalf("Failed to reset calibration: %v", err)
		}
		fmt.Println("Calibration reset to defaults")
		return
	}

	cfg, err := api.LoadCalibration(st, engine.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to load calibration: %v", err)
	}

	if calibrateSave != "" {
		profile := api.ProfileFromConfig(calibrateSave, cfg)
		if err := st.Profiles().Create(profile); err != nil {
			log.Fatalf("Failed to save profile: %v", err)
		}
		fmt.Printf("Saved calibration as profile %q (%s)\n", calibrateSave, profile.ID)
		return
	}

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		log.Fatalf("Failed to render calibration: %v", err)
	}
	fmt.Println(string(out))
}
