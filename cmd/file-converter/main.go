// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the file-converter CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/file-converter/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "file-converter",
	Short: "Convert documents, spreadsheets, images and markup between formats",
	Long: `file-converter routes a conversion to a backend chosen from the source and
target extensions: a layout-aware PDF→DOCX pipeline with OCR and AI
reconstruction, LibreOffice for office formats, a headless browser for
HTML and Markdown printing, and native converters for images and
spreadsheets.

Run "file-converter list" to see every supported conversion.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			log.SetLevel(logrus.DebugLevel)
		}
		s, err := secrets.Load(".secrets/", log)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			log.WithField("keys", s.Keys()).Debug("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./file-converter.yaml or ~/.config/file-converter/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("file-converter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "file-converter"))
		}
	}

	setDefaults()

	viper.SetEnvPrefix("FILE_CONVERTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindLegacyEnv()

	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
