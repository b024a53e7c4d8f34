// Package ffmpegsource implements the video source port by streaming raw
// frames from an ffmpeg subprocess, with container metadata supplied by
// ffprobe (or MP4 box parsing when ffprobe is unavailable).
package ffmpegsource

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpegsource: ffmpeg not found")

	// ErrFFprobeNotFound is returned when no ffprobe binary can be located.
	ErrFFprobeNotFound = errors.New("ffmpegsource: ffprobe not found")

	// ErrSourceExhausted is returned when a one-pass source is reused.
	ErrSourceExhausted = errors.New("ffmpegsource: source already opened")
)

// findBinary locates an external tool. Priority: explicitly configured
// path, environment variable, PATH, then common install locations.
func findBinary(custom, name, envVar string, notFound error) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: configured path %s not found", notFound, custom)
	}

	if envPath := os.Getenv(envVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: %s %s not found", notFound, envVar, envPath)
	}

	execName := name
	if runtime.GOOS == "windows" {
		execName += ".exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	var commonPaths []string
	if runtime.GOOS == "windows" {
		commonPaths = []string{
			`C:\ffmpeg\bin\` + execName,
			`C:\Program Files\ffmpeg\bin\` + execName,
		}
	} else if runtime.GOOS == "darwin" {
		commonPaths = []string{
			"/opt/homebrew/bin/" + name,
			"/usr/local/bin/" + name,
			"/usr/bin/" + name,
		}
	} else {
		commonPaths = []string{
			"/usr/bin/" + name,
			"/usr/local/bin/" + name,
			"/snap/bin/" + name,
		}
	}

	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", notFound
}

// IsFFmpegAvailable reports whether an ffmpeg binary can be located.
func IsFFmpegAvailable() bool {
	_, err := findBinary("", "ffmpeg", "FFMPEG_PATH", ErrFFmpegNotFound)
	return err == nil
}
