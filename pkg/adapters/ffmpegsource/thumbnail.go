package ffmpegsource

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"

	"github.com/user/framecheck/pkg/pipeline"
)

// ExtractFrame decodes a single frame by index into an image, for
// on-demand thumbnails. It runs an independent ffmpeg invocation and does
// not touch the streaming decode state.
func (s *Source) ExtractFrame(path string, index int) (image.Image, error) {
	if index < 0 {
		return nil, fmt.Errorf("negative frame index %d", index)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrSourceUnreadable, err)
	}

	ffmpegPath, err := findBinary(s.ffmpegPath, "ffmpeg", "FFMPEG_PATH", ErrFFmpegNotFound)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrSourceUnreadable, err)
	}

	outFile, err := os.CreateTemp("", "framecheck_thumb_*.png")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	outPath := outFile.Name()
	outFile.Close()
	defer os.Remove(outPath)

	var stderr bytes.Buffer
	cmd := exec.Command(ffmpegPath,
		"-y",
		"-i", path,
		"-vf", fmt.Sprintf("select=eq(n\\,%d)", index),
		"-frames:v", "1",
		"-f", "image2",
		outPath,
	)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("extract frame %d: %w: %s", index, err, stderr.String())
	}

	return readThumb(outPath, index)
}

// readThumb decodes the extracted still. When the select filter matches no
// frame, ffmpeg exits cleanly having written nothing, so an empty or
// missing file means the index was past the end of the stream.
func readThumb(path string, index int) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return nil, fmt.Errorf("frame %d not extracted (index out of range?)", index)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open extracted frame: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode extracted frame: %w", err)
	}
	return img, nil
}
