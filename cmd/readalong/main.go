// Command readalong serves the reading-assistant API and annotates texts
// from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/readalong/internal/app"
	"github.com/heartmarshall/readalong/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "readalong",
	Short:         "Russian reading assistant with Korean glosses",
	Version:       app.BuildVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default $CONFIG_PATH or ./config.yaml)")
	rootCmd.AddCommand(serveCmd, annotateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}
