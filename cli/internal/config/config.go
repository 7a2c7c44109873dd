// Package config loads stompcheck's configuration from config files,
// environment variables and .env files.
package config

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// AppFs is the filesystem the CLI goes through; tests swap in a mem fs.
var AppFs = afero.NewOsFs()

// Config holds everything the scan pipeline needs to find its external
// tools and its state.
type Config struct {
	// PcodedmpDir is the pcodedmp install directory (PCODEDMP_DIR).
	PcodedmpDir string
	// Python is the interpreter used to run pcodedmp.py.
	Python string
	// SourceTool is the VBA source decompressor: "olevba" or "sigtool".
	SourceTool string
	// HistoryPath is the SQLite scan history location.
	HistoryPath string
}

// Load reads configuration in priority order: flags are handled by cobra,
// then environment variables, .env files, config files, defaults.
func Load() (*Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(".stompcheck")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "stompcheck"))

	v.SetEnvPrefix("STOMPCHECK")
	v.AutomaticEnv()
	// PCODEDMP_DIR is honored alongside the prefixed form.
	_ = v.BindEnv("pcodedmp_dir", "PCODEDMP_DIR", "STOMPCHECK_PCODEDMP_DIR")

	v.SetDefault("python", "python3")
	v.SetDefault("source_tool", "olevba")
	v.SetDefault("history_path", filepath.Join(home, ".config", "stompcheck", "history.db"))

	// Config file is optional.
	_ = v.ReadInConfig()

	if _, err := AppFs.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
	if _, err := AppFs.Stat(".env.local"); err == nil {
		_ = godotenv.Overload(".env.local")
	}

	return &Config{
		PcodedmpDir: v.GetString("pcodedmp_dir"),
		Python:      v.GetString("python"),
		SourceTool:  v.GetString("source_tool"),
		HistoryPath: v.GetString("history_path"),
	}, nil
}
