package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"msirecon/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the msirecon configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.CreateDefaultConfigFile(configPath); err != nil {
			return err
		}
		logrus.WithField("path", configPath).Info("default configuration written")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
