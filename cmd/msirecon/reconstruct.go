package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"msirecon/pkg/config"
	"msirecon/pkg/reconstruction"
	"msirecon/pkg/storage"
)

var reconstructFlags struct {
	spectraFile  string
	waypointFile string
	timingFile   string
	outputFile   string
	pixelPitch   float64
	clockOffset  float64
	noCache      bool
}

var reconstructCmd = &cobra.Command{
	Use:   "reconstruct",
	Short: "Run the full reconstruction pipeline and write the cube artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		if !cfg.Output.Verbose {
			logrus.SetLevel(logrus.WarnLevel)
		}

		pitch := cfg.Processing.PixelPitchMicrons
		if cmd.Flags().Changed("pitch") {
			pitch = reconstructFlags.pixelPitch
		}
		offset := cfg.Processing.ClockOffsetSec
		if cmd.Flags().Changed("offset") {
			offset = reconstructFlags.clockOffset
		}

		series, err := storage.LoadSeries(reconstructFlags.spectraFile)
		if err != nil {
			return err
		}

		params := &reconstruction.Params{
			WaypointFile: reconstructFlags.waypointFile,
			TimingFile:   reconstructFlags.timingFile,
			ClockOffset:  offset,
			PixelPitch:   pitch,
			Resolution:   cfg.Processing.Resolution,
			KernelWidth:  cfg.Processing.KernelWidth,
		}
		reconstructor := reconstruction.NewReconstructor(params)

		var cache *storage.Cache
		if cfg.Cache.Enabled && !reconstructFlags.noCache {
			cache, err = storage.NewCache(cfg.Cache.Dir)
			if err != nil {
				return err
			}
		}

		cube, err := reconstructor.Run(series, cache)
		if err != nil {
			return fmt.Errorf("reconstruction failed: %w", err)
		}

		var store storage.ParquetStore
		if err := store.WriteCube(cube, reconstructFlags.outputFile); err != nil {
			return err
		}

		stats := reconstructor.Stats()
		logrus.WithFields(logrus.Fields{
			"output":       reconstructFlags.outputFile,
			"scans_total":  stats.TotalScans,
			"scans_used":   stats.UsedScans,
			"out_of_range": stats.OutOfRangeScans,
			"cache_hit":    stats.CacheHit,
		}).Info("cube written")
		return nil
	},
}

func init() {
	f := reconstructCmd.Flags()
	f.StringVar(&reconstructFlags.spectraFile, "spectra", "", "Spectrum series file (tab-delimited)")
	f.StringVar(&reconstructFlags.waypointFile, "waypoints", "", "Waypoint triples file (micrometers)")
	f.StringVar(&reconstructFlags.timingFile, "timings", "", "Timing triples file (milliseconds)")
	f.StringVar(&reconstructFlags.outputFile, "output", "cube.parquet", "Output cube artifact path")
	f.Float64Var(&reconstructFlags.pixelPitch, "pitch", 0, "Pixel pitch in micrometers (0 = auto)")
	f.Float64Var(&reconstructFlags.clockOffset, "offset", 0, "Clock offset between instrument and stage, seconds")
	f.BoolVar(&reconstructFlags.noCache, "no-cache", false, "Bypass the cube artifact cache")

	for _, name := range []string{"spectra", "waypoints", "timings"} {
		_ = reconstructCmd.MarkFlagRequired(name)
	}
	rootCmd.AddCommand(reconstructCmd)
}
