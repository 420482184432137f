package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"msirecon/pkg/config"
	"msirecon/pkg/storage"
	"msirecon/pkg/visualization"
)

var channelsFlags struct {
	cubeFile  string
	outputDir string
}

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "Render mass channel and TIC images from a stored cube",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		dir := cfg.Output.ChannelImageDir
		if cmd.Flags().Changed("out") {
			dir = channelsFlags.outputDir
		}

		var store storage.ParquetStore
		cube, err := store.ReadCube(channelsFlags.cubeFile)
		if err != nil {
			return err
		}

		viewer := visualization.NewViewer(cube)
		if err := viewer.SaveChannelSequence(dir); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"channels": cube.NumChannels(),
			"dir":      dir,
		}).Info("channel images written")
		return nil
	},
}

func init() {
	f := channelsCmd.Flags()
	f.StringVar(&channelsFlags.cubeFile, "cube", "", "Cube artifact to render")
	f.StringVar(&channelsFlags.outputDir, "out", "", "Directory for rendered images")
	_ = channelsCmd.MarkFlagRequired("cube")
	rootCmd.AddCommand(channelsCmd)
}
