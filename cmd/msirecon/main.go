package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "msirecon",
	Short: "Reconstruct mass spectrometry images from comb raster acquisitions",
	Long: `msirecon reconstructs a spatially resolved image cube from a
time-ordered series of mass spectra acquired while the sample stage
traverses a comb raster path.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "msirecon.yaml", "Path to the YAML configuration file")

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
