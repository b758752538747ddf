package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taala",
	Short: "Taala turns raised fingers into music",
	Long: `Taala watches your hands through a camera and plays music: each
raised finger sustains a note on its own instrument, hand height sets the
volume and bobbing the right hand conducts the tempo.`,
}

// Execute runs the root command.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// dataDir returns ~/.taala, creating it if needed.
func dataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dir := filepath.Join(homeDir, ".taala")
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	return dir
}

// dbPath returns the path of the application database.
func dbPath() string {
	return filepath.Join(dataDir(), "taala.db")
}
