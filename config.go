package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"mapmark/internal/logging"
	"mapmark/internal/marker"
)

const configFileName = ".mapmarkrc"

type Config struct {
	SaveDirectory string
	MarkersDir    string
	MarkerSize    int
	StartMenu     bool
	Confirmations bool
	LogFile       string
	LogLevel      string

	// readErr is kept for logging once the logger exists.
	readErr error
}

func loadConfig() *Config {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}
	return loadConfigFrom(homeDir)
}

// loadConfigFrom reads <homeDir>/.mapmarkrc (YAML) and MAPMARK_* environment
// variables on top of the defaults. A missing file is not an error.
func loadConfigFrom(homeDir string) *Config {
	v := viper.New()
	v.SetDefault("save_directory", "")
	v.SetDefault("markers_dir", "markers")
	v.SetDefault("marker_size", marker.DefaultSize)
	v.SetDefault("start_menu", true)
	v.SetDefault("confirmations", true)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix("mapmark")
	v.AutomaticEnv()

	config := &Config{}
	if homeDir != "" {
		v.SetConfigFile(filepath.Join(homeDir, configFileName))
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			config.readErr = err
		}
	}

	config.SaveDirectory = expandPath(v.GetString("save_directory"), homeDir)
	config.MarkersDir = expandPath(v.GetString("markers_dir"), homeDir)
	config.MarkerSize = marker.ClampSize(v.GetInt("marker_size"))
	config.StartMenu = v.GetBool("start_menu")
	config.Confirmations = v.GetBool("confirmations")
	config.LogFile = expandPath(v.GetString("log_file"), homeDir)
	config.LogLevel = v.GetString("log_level")
	return config
}

// expandPath resolves a leading ~ and makes value absolute.
func expandPath(value, homeDir string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if homeDir != "" && (value == "~" || strings.HasPrefix(value, "~/")) {
		value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" || filepath.IsAbs(filename) {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

// SaveDir is the directory map files are listed from.
func (c *Config) SaveDir() string {
	if c.SaveDirectory != "" {
		return c.SaveDirectory
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func (c *Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return logging.LogFilePath(c.SaveDir())
}
