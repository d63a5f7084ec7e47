package config

import (
	"os"
	"path/filepath"
)

const (
	AppDir     = ".bakker"
	ConfigFile = "config.json"
)

// Path returns the location of the user's configuration file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, AppDir, ConfigFile), nil
}
