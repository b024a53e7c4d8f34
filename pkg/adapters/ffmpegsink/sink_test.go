package ffmpegsink

import (
	"strings"
	"testing"

	"github.com/user/framecheck/pkg/adapters/logger"
	"github.com/user/framecheck/pkg/ports"
)

func argsContain(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestBuildArgsBasics(t *testing.T) {
	args := buildArgs(640, 480, 30, ports.SinkOptions{}, "/tmp/out.mp4")

	if !argsContain(args, "-s", "640x480") {
		t.Errorf("missing frame size in %v", args)
	}
	if !argsContain(args, "-r", "30.0000") {
		t.Errorf("missing frame rate in %v", args)
	}
	if !argsContain(args, "-pix_fmt", "rgba") {
		t.Errorf("missing input pixel format in %v", args)
	}
	if !argsContain(args, "-c:v", "libx264") {
		t.Errorf("missing codec in %v", args)
	}
	if !argsContain(args, "-profile:v", "baseline") {
		t.Errorf("missing profile in %v", args)
	}
	if args[len(args)-1] != "/tmp/out.mp4" {
		t.Errorf("output path should be the last argument, got %v", args)
	}
}

func TestBuildArgsDefaultCRF(t *testing.T) {
	args := buildArgs(640, 480, 30, ports.SinkOptions{}, "out.mp4")

	if !argsContain(args, "-crf", "23") {
		t.Errorf("expected default CRF 23 in %v", args)
	}
}

func TestBuildArgsQualityMapping(t *testing.T) {
	tests := []struct {
		quality int
		wantCRF string
	}{
		{63, "51"}, // top of scale maps to x264 max
		{30, "24"},
		{1, "0"},
	}

	for _, tt := range tests {
		args := buildArgs(640, 480, 30, ports.SinkOptions{Quality: tt.quality}, "out.mp4")
		if !argsContain(args, "-crf", tt.wantCRF) {
			t.Errorf("quality %d: expected CRF %s in %v", tt.quality, tt.wantCRF, args)
		}
	}
}

func TestBuildArgsOutOfRangeQualityFallsBack(t *testing.T) {
	for _, q := range []int{-1, 64, 100} {
		args := buildArgs(640, 480, 30, ports.SinkOptions{Quality: q}, "out.mp4")
		if !argsContain(args, "-crf", "23") {
			t.Errorf("quality %d: expected fallback CRF 23 in %v", q, args)
		}
	}
}

func TestBuildArgsBitrate(t *testing.T) {
	args := buildArgs(640, 480, 30, ports.SinkOptions{Bitrate: 2500}, "out.mp4")

	if !argsContain(args, "-b:v", "2500k") {
		t.Errorf("expected bitrate in %v", args)
	}

	args = buildArgs(640, 480, 30, ports.SinkOptions{}, "out.mp4")
	for _, a := range args {
		if a == "-b:v" {
			t.Error("bitrate flag should be absent when unset")
		}
	}
}

func TestBuildArgsFractionalRate(t *testing.T) {
	args := buildArgs(640, 480, 30000.0/1001.0, ports.SinkOptions{}, "out.mp4")

	found := false
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-r" && strings.HasPrefix(args[i+1], "29.97") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected ~29.97 frame rate in %v", args)
	}
}

func TestWriteFrameBeforeBegin(t *testing.T) {
	s := New("", logger.NewNoop())

	if err := s.WriteFrame(nil); err != ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestEndBeforeBegin(t *testing.T) {
	s := New("", logger.NewNoop())

	if _, err := s.End(); err != ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestAbortBeforeBeginIsSafe(t *testing.T) {
	s := New("", logger.NewNoop())
	s.Abort()
	s.Abort()
}
