// Package mp4probe reads container metadata straight out of MP4 boxes.
// It serves as the metadata path when ffprobe is not installed, and backs
// the container mode of the probe command.
package mp4probe

import (
	"errors"
	"fmt"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/framecheck/pkg/ports"
)

// ErrNoVideoTrack is returned when the container has no "vide" track.
var ErrNoVideoTrack = errors.New("mp4probe: no video track found")

// Probe reads dimensions, duration, sample count and frame rate from the
// moov box of an MP4 file.
func Probe(path string) (ports.VideoMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return ports.VideoMeta{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	mp4File, err := mp4.DecodeFile(f)
	if err != nil {
		return ports.VideoMeta{}, fmt.Errorf("decode mp4: %w", err)
	}

	moov := mp4File.Moov
	if moov == nil && mp4File.Init != nil {
		// Fragmented files carry the track description in the init
		// segment.
		moov = mp4File.Init.Moov
	}
	if moov == nil {
		return ports.VideoMeta{}, fmt.Errorf("mp4probe: no moov box in %s", path)
	}

	var videoTrack *mp4.TrakBox
	for _, trak := range moov.Traks {
		if trak.Mdia != nil && trak.Mdia.Hdlr != nil && trak.Mdia.Hdlr.HandlerType == "vide" {
			videoTrack = trak
			break
		}
	}
	if videoTrack == nil {
		return ports.VideoMeta{}, ErrNoVideoTrack
	}

	meta := ports.VideoMeta{
		Width:  fixed16ToInt(uint32(videoTrack.Tkhd.Width)),
		Height: fixed16ToInt(uint32(videoTrack.Tkhd.Height)),
	}

	var timescale uint32
	var duration uint64
	if videoTrack.Mdia.Mdhd != nil {
		timescale = videoTrack.Mdia.Mdhd.Timescale
		duration = videoTrack.Mdia.Mdhd.Duration
	}
	if timescale > 0 {
		meta.DurationS = float64(duration) / float64(timescale)
	}

	if stbl := sampleTable(videoTrack); stbl != nil && stbl.Stsz != nil {
		meta.FrameCount = int(stbl.Stsz.SampleNumber)
	}

	if meta.DurationS > 0 && meta.FrameCount > 0 {
		meta.FPS = float64(meta.FrameCount) / meta.DurationS
	}

	return meta, nil
}

func sampleTable(trak *mp4.TrakBox) *mp4.StblBox {
	if trak.Mdia == nil || trak.Mdia.Minf == nil {
		return nil
	}
	return trak.Mdia.Minf.Stbl
}

// fixed16ToInt converts a 16.16 fixed-point track dimension to pixels.
func fixed16ToInt(v uint32) int {
	return int(v >> 16)
}
