package config

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

const (
	envHome     = "JOURNEY_RUNNER_HOME"
	userHomeDir = ".journey-runner"
)

var (
	homeMu   sync.Mutex
	homeDir  string
	homeInit bool
)

// GetHome returns the directory holding installed drivers. The first match
// wins and is cached:
//
//	$JOURNEY_RUNNER_HOME
//	<prefix> when the binary is installed as <prefix>/bin/journey-runner
//	~/.journey-runner
func GetHome() string {
	homeMu.Lock()
	defer homeMu.Unlock()
	if !homeInit {
		homeDir = lookupHome(os.Getenv, executableDir, os.UserHomeDir)
		homeInit = true
	}
	return homeDir
}

// GetDriversDir returns <home>/drivers.
func GetDriversDir() string {
	return filepath.Join(GetHome(), "drivers")
}

// DefaultDriverPath returns the installed chromedriver, or "" so that
// the webdriver service looks it up on PATH.
func DefaultDriverPath() string {
	path := filepath.Join(GetDriversDir(), driverBinaryName(runtime.GOOS))
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return path
	}
	return ""
}

func driverBinaryName(goos string) string {
	if goos == "windows" {
		return defaultDriverBinary + ".exe"
	}
	return defaultDriverBinary
}

func lookupHome(getenv func(string) string, exeDir func() (string, error), userHome func() (string, error)) string {
	if dir := getenv(envHome); dir != "" {
		return dir
	}
	if dir, err := exeDir(); err == nil && filepath.Base(dir) == "bin" {
		return filepath.Dir(dir)
	}
	if dir, err := userHome(); err == nil {
		return filepath.Join(dir, userHomeDir)
	}
	return userHomeDir
}

func executableDir() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	return filepath.Dir(path), nil
}

// ResetHome clears the cached home directory. Tests only.
func ResetHome() {
	homeMu.Lock()
	defer homeMu.Unlock()
	homeDir, homeInit = "", false
}
