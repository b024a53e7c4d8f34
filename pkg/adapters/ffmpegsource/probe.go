package ffmpegsource

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/user/framecheck/pkg/ports"
)

// ffprobe stream/format output for -of json.
type probeOutput struct {
	Streams []struct {
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NBFrames   string `json:"nb_frames"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// probeMeta reads the first video stream's metadata with ffprobe.
func probeMeta(ffprobePath, path string) (ports.VideoMeta, error) {
	var stderr bytes.Buffer
	cmd := exec.Command(ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,nb_frames",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return ports.VideoMeta{}, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var probed probeOutput
	if err := json.Unmarshal(out, &probed); err != nil {
		return ports.VideoMeta{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(probed.Streams) == 0 {
		return ports.VideoMeta{}, fmt.Errorf("no video stream in %s", path)
	}

	s := probed.Streams[0]
	meta := ports.VideoMeta{
		FPS:    parseRate(s.RFrameRate),
		Width:  s.Width,
		Height: s.Height,
	}
	if n, err := strconv.Atoi(s.NBFrames); err == nil {
		meta.FrameCount = n
	}
	if d, err := strconv.ParseFloat(probed.Format.Duration, 64); err == nil {
		meta.DurationS = d
	}

	// Some containers omit nb_frames; estimate it from duration.
	if meta.FrameCount == 0 && meta.DurationS > 0 && meta.FPS > 0 {
		meta.FrameCount = int(meta.DurationS*meta.FPS + 0.5)
	}

	return meta, nil
}

// parseRate parses an ffprobe rational like "30000/1001" or "25/1".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}

// packetTimes reads per-packet presentation timestamps (seconds) for the
// video stream. Packets arrive in decode order, so the result is sorted
// into presentation order. This is a demux-only pass; no frames are
// decoded.
func packetTimes(ffprobePath, path string) ([]float64, error) {
	cmd := exec.Command(ffprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "packet=pts_time",
		"-of", "csv=p=0",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe packets: %w", err)
	}

	return parsePacketTimes(bytes.NewReader(out))
}

func parsePacketTimes(r *bytes.Reader) ([]float64, error) {
	var times []float64
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimSuffix(scanner.Text(), ","))
		if line == "" || line == "N/A" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			continue
		}
		times = append(times, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	sort.Float64s(times)
	return times, nil
}
