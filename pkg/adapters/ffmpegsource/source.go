package ffmpegsource

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/user/framecheck/pkg/adapters/mp4probe"
	"github.com/user/framecheck/pkg/pipeline"
	"github.com/user/framecheck/pkg/ports"
)

// Source implements ports.VideoSource. It holds one ffmpeg subprocess for
// the lifetime of the read loop and streams raw RGBA frames over a pipe,
// so only the frame currently being read is ever resident.
type Source struct {
	ffmpegPath  string
	ffprobePath string
	logger      ports.Logger

	meta   ports.VideoMeta
	pts    []float64 // presentation timestamps in seconds, ascending
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	buf    []byte
	index  int
	opened bool
	done   bool
}

// New creates a Source. ffmpegPath and ffprobePath may be empty, in which
// case the binaries are discovered via environment and PATH.
func New(ffmpegPath, ffprobePath string, logger ports.Logger) *Source {
	return &Source{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		logger:      logger.WithComponent("source"),
	}
}

// Probe captures the container metadata without starting the decode
// stream. It prefers ffprobe and falls back to reading MP4 boxes directly
// when ffprobe is not installed.
func (s *Source) Probe(path string) (ports.VideoMeta, error) {
	if _, err := os.Stat(path); err != nil {
		return ports.VideoMeta{}, fmt.Errorf("%w: %v", pipeline.ErrSourceUnreadable, err)
	}

	ffprobePath, probeErr := findBinary(s.ffprobePath, "ffprobe", "FFPROBE_PATH", ErrFFprobeNotFound)
	if probeErr == nil {
		meta, err := probeMeta(ffprobePath, path)
		if err != nil {
			return ports.VideoMeta{}, fmt.Errorf("%w: %v", pipeline.ErrSourceUnreadable, err)
		}
		return meta, nil
	}

	if strings.HasSuffix(strings.ToLower(path), ".mp4") {
		s.logger.Debug("ffprobe unavailable, reading MP4 boxes directly")
		meta, err := mp4probe.Probe(path)
		if err != nil {
			return ports.VideoMeta{}, fmt.Errorf("%w: %v", pipeline.ErrSourceUnreadable, err)
		}
		return meta, nil
	}

	return ports.VideoMeta{}, fmt.Errorf("%w: %v", pipeline.ErrSourceUnreadable, probeErr)
}

// Open probes the container and starts the streaming decode. A Source is
// one-pass: a second Open fails.
func (s *Source) Open(path string) (ports.VideoMeta, error) {
	if s.opened {
		return ports.VideoMeta{}, ErrSourceExhausted
	}

	meta, err := s.Probe(path)
	if err != nil {
		return ports.VideoMeta{}, err
	}
	if meta.Width <= 0 || meta.Height <= 0 {
		return ports.VideoMeta{}, fmt.Errorf("%w: no readable video stream in %s", pipeline.ErrSourceUnreadable, path)
	}

	if ffprobePath, err := findBinary(s.ffprobePath, "ffprobe", "FFPROBE_PATH", ErrFFprobeNotFound); err == nil {
		if pts, err := packetTimes(ffprobePath, path); err == nil {
			s.pts = pts
		} else {
			s.logger.Warn("Could not read packet timestamps: %s", err)
		}
	}

	ffmpegPath, err := findBinary(s.ffmpegPath, "ffmpeg", "FFMPEG_PATH", ErrFFmpegNotFound)
	if err != nil {
		return ports.VideoMeta{}, fmt.Errorf("%w: %v", pipeline.ErrSourceUnreadable, err)
	}

	cmd := exec.Command(ffmpegPath,
		"-v", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"pipe:1",
	)
	cmd.Stderr = &s.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return ports.VideoMeta{}, fmt.Errorf("%w: stdout pipe: %v", pipeline.ErrSourceUnreadable, err)
	}
	if err := cmd.Start(); err != nil {
		return ports.VideoMeta{}, fmt.Errorf("%w: start ffmpeg: %v", pipeline.ErrSourceUnreadable, err)
	}

	s.cmd = cmd
	s.stdout = stdout
	s.meta = meta
	s.buf = make([]byte, meta.Width*meta.Height*4)
	s.opened = true

	return meta, nil
}

// NextFrame reads the next raw frame off the pipe. A clean end of stream
// returns io.EOF; a partial frame or a nonzero ffmpeg exit is a decode
// failure.
func (s *Source) NextFrame() (ports.Frame, error) {
	if !s.opened || s.done {
		return ports.Frame{}, io.EOF
	}

	_, err := io.ReadFull(s.stdout, s.buf)
	if errors.Is(err, io.EOF) {
		s.done = true
		if werr := s.cmd.Wait(); werr != nil {
			return ports.Frame{}, fmt.Errorf("ffmpeg decode: %w: %s", werr, s.stderrTail())
		}
		return ports.Frame{}, io.EOF
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		s.done = true
		s.cmd.Wait()
		return ports.Frame{}, fmt.Errorf("truncated frame at index %d: %s", s.index, s.stderrTail())
	}
	if err != nil {
		return ports.Frame{}, fmt.Errorf("read frame %d: %w", s.index, err)
	}

	img := image.NewRGBA(image.Rect(0, 0, s.meta.Width, s.meta.Height))
	copy(img.Pix, s.buf)

	frame := ports.Frame{
		Index:       s.index,
		TimestampMs: s.timestampMs(s.index),
		Image:       img,
	}
	s.index++
	return frame, nil
}

// timestampMs returns the presentation timestamp for frame i, synthesizing
// evenly spaced timestamps when the container carried no usable PTS.
func (s *Source) timestampMs(i int) float64 {
	if i < len(s.pts) {
		return s.pts[i] * 1000.0
	}
	return float64(i) * s.meta.ExpectedIntervalMs()
}

// Close releases the decoding context. Idempotent; safe on every exit
// path.
func (s *Source) Close() error {
	if !s.opened {
		return nil
	}
	if !s.done {
		s.done = true
		if s.stdout != nil {
			s.stdout.Close()
		}
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		s.cmd.Wait()
	}
	return nil
}

func (s *Source) stderrTail() string {
	const max = 300
	out := strings.TrimSpace(s.stderr.String())
	if len(out) > max {
		out = "..." + out[len(out)-max:]
	}
	if out == "" {
		out = "no stderr output"
	}
	return out
}

// Ensure Source implements the source ports.
var (
	_ ports.VideoSource    = (*Source)(nil)
	_ ports.FrameExtractor = (*Source)(nil)
)
