// Package ffmpegsink implements the video sink port by piping raw RGBA
// frames into an ffmpeg subprocess that encodes H.264 MP4.
package ffmpegsink

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/user/framecheck/pkg/pipeline"
	"github.com/user/framecheck/pkg/ports"
)

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpegsink: ffmpeg not found")

	// ErrNotInitialized is returned when sink methods are called before
	// Begin.
	ErrNotInitialized = errors.New("ffmpegsink: sink not initialized")
)

// Sink implements ports.VideoSink using an external ffmpeg process.
// Frames are encoded strictly in the order written.
type Sink struct {
	ffmpegPath string
	logger     ports.Logger

	width  int
	height int

	mu         sync.Mutex
	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
	tempPath   string
	frameCount int
	closed     bool
}

// New creates a Sink. ffmpegPath may be empty, in which case the binary is
// discovered via environment and PATH.
func New(ffmpegPath string, logger ports.Logger) *Sink {
	return &Sink{
		ffmpegPath: ffmpegPath,
		logger:     logger.WithComponent("sink"),
	}
}

// Begin initializes the encoder with the source's dimensions and frame
// rate.
func (s *Sink) Begin(width, height int, fps float64, opts ports.SinkOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ffmpegPath, err := findFFmpeg(s.ffmpegPath)
	if err != nil {
		return fmt.Errorf("%w: %v", pipeline.ErrSinkUnwritable, err)
	}

	if fps <= 0 {
		fps = 1000.0 / ports.FallbackIntervalMs
	}

	s.width = width
	s.height = height
	s.frameCount = 0
	s.closed = false

	tmpFile, err := os.CreateTemp("", "framecheck_encode_*.mp4")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", pipeline.ErrSinkUnwritable, err)
	}
	s.tempPath = tmpFile.Name()
	tmpFile.Close()

	args := buildArgs(width, height, fps, opts, s.tempPath)

	s.cmd = exec.Command(ffmpegPath, args...)
	s.cmd.Stderr = &s.stderr

	stdin, err := s.cmd.StdinPipe()
	if err != nil {
		os.Remove(s.tempPath)
		return fmt.Errorf("%w: stdin pipe: %v", pipeline.ErrSinkUnwritable, err)
	}
	s.stdin = stdin

	if err := s.cmd.Start(); err != nil {
		os.Remove(s.tempPath)
		return fmt.Errorf("%w: start ffmpeg: %v", pipeline.ErrSinkUnwritable, err)
	}

	s.logger.Debug("Encoder started: %dx%d at %.2f fps", width, height, fps)
	return nil
}

// buildArgs assembles the ffmpeg invocation for a raw RGBA to H.264 MP4
// encode.
func buildArgs(width, height int, fps float64, opts ports.SinkOptions, outPath string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", fmt.Sprintf("%.4f", fps),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "fast",
		"-pix_fmt", "yuv420p",
	}

	if opts.Quality > 0 && opts.Quality <= 63 {
		// Map the 0-63 quality scale to x264's CRF range (0-51).
		crf := opts.Quality * 51 / 63
		if crf > 51 {
			crf = 51
		}
		args = append(args, "-crf", fmt.Sprintf("%d", crf))
	} else {
		args = append(args, "-crf", "23")
	}

	if opts.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", opts.Bitrate))
	}

	// Baseline profile with faststart keeps the artifact playable in
	// browsers.
	args = append(args,
		"-profile:v", "baseline",
		"-level", "3.1",
		"-movflags", "+faststart",
		outPath,
	)
	return args
}

// WriteFrame encodes a single frame.
func (s *Sink) WriteFrame(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdin == nil || s.closed {
		return ErrNotInitialized
	}

	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Dx() != s.width || rgba.Rect.Dy() != s.height {
		converted := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
		draw.Draw(converted, converted.Bounds(), img, img.Bounds().Min, draw.Src)
		rgba = converted
	}

	if _, err := s.stdin.Write(rgba.Pix); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	s.frameCount++
	return nil
}

// End finalizes encoding and returns the MP4 data.
func (s *Sink) End() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdin == nil || s.closed {
		return nil, ErrNotInitialized
	}

	s.stdin.Close()
	s.stdin = nil
	s.closed = true

	if err := s.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, s.stderr.String())
	}

	data, err := os.ReadFile(s.tempPath)
	if err != nil {
		return nil, fmt.Errorf("read encoded output: %w", err)
	}

	os.Remove(s.tempPath)
	s.tempPath = ""

	s.logger.Debug("Encoded %d frames, %d bytes", s.frameCount, len(data))
	return data, nil
}

// Abort kills a running encode and discards partial output. No-op after a
// successful End.
func (s *Sink) Abort() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed && s.tempPath == "" {
		return
	}

	if s.stdin != nil {
		s.stdin.Close()
		s.stdin = nil
	}
	if s.cmd != nil && s.cmd.Process != nil && !s.closed {
		s.cmd.Process.Kill()
		s.cmd.Wait()
	}
	if s.tempPath != "" {
		os.Remove(s.tempPath)
		s.tempPath = ""
	}
	s.closed = true
}

// findFFmpeg locates the ffmpeg binary. Priority: configured path,
// FFMPEG_PATH, PATH, common install locations.
func findFFmpeg(custom string) (string, error) {
	if custom != "" {
		if _, err := os.Stat(custom); err == nil {
			return custom, nil
		}
		return "", fmt.Errorf("%w: configured path %s not found", ErrFFmpegNotFound, custom)
	}

	if envPath := os.Getenv("FFMPEG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%w: FFMPEG_PATH %s not found", ErrFFmpegNotFound, envPath)
	}

	execName := "ffmpeg"
	if runtime.GOOS == "windows" {
		execName = "ffmpeg.exe"
	}
	if path, err := exec.LookPath(execName); err == nil {
		return path, nil
	}

	for _, p := range []string{
		"/usr/bin/ffmpeg",
		"/usr/local/bin/ffmpeg",
		"/opt/homebrew/bin/ffmpeg",
		"/snap/bin/ffmpeg",
	} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", ErrFFmpegNotFound
}

// Ensure Sink implements ports.VideoSink
var _ ports.VideoSink = (*Sink)(nil)
