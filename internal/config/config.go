// Package config locates the notefavicon YAML configuration file. Flag values
// are read from it through cli-altsrc, using the flag name as the key.
package config

import (
	"os"
	"path/filepath"

	"github.com/apex/log"
)

const (
	// EnvPath overrides the config file location.
	EnvPath = "NOTEFAVICON_CONFIG"

	fileName       = "notefavicon.yaml"
	hiddenFileName = ".notefavicon.yaml"
)

// Path returns the config file to use, or "" when there is none.
// Precedence:
//  1. NOTEFAVICON_CONFIG, if set and non-empty (need not exist yet)
//  2. $XDG_CONFIG_HOME/notefavicon.yaml
//  3. $HOME/.notefavicon.yaml
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}

	var candidates []string
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		candidates = append(candidates, filepath.Join(dir, fileName))
	}
	if home := os.Getenv("HOME"); home != "" {
		candidates = append(candidates, filepath.Join(home, hiddenFileName))
	}

	for _, file := range candidates {
		if fileInfo, err := os.Stat(file); err == nil && !fileInfo.IsDir() {
			log.Debugf("using config file: %s", file)
			return file
		}
	}
	return ""
}
