// Package report accumulates per-frame records and derives the aggregate
// statistics persisted at the end of an analysis run.
package report

import (
	"encoding/json"
	"math"
	"time"

	"github.com/user/framecheck/pkg/pipeline"
	"github.com/user/framecheck/pkg/ports"
)

// Report is the persisted analysis result. Field names are a stable
// external contract; consumers parse them by name.
type Report struct {
	VideoInfo  VideoInfo    `json:"video_info"`
	Statistics Statistics   `json:"statistics"`
	Frames     []FrameEntry `json:"frames"`
}

// VideoInfo mirrors the container metadata captured at open time.
type VideoInfo struct {
	FPS        float64 `json:"fps"`
	FrameCount int     `json:"frame_count"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Duration   float64 `json:"duration"`
}

// Statistics aggregates the run. TotalFrames is the number of frames
// actually decoded, which is authoritative over the container's reported
// count.
type Statistics struct {
	TotalFrames    int     `json:"total_frames"`
	DropsDetected  int     `json:"drops_detected"`
	MergesDetected int     `json:"merges_detected"`
	NormalFrames   int     `json:"normal_frames"`
	ProcessingTime float64 `json:"processing_time"`
}

// FrameEntry is one frame's record: identity, metrics and classification.
// Entries are immutable once appended.
type FrameEntry struct {
	FrameIndex int             `json:"frame_index"`
	Status     pipeline.Status `json:"status"`
	Confidence float64         `json:"confidence"`
	Timestamp  float64         `json:"timestamp"`
	Sharpness  float64         `json:"sharpness"`
	FrameDiff  float64         `json:"frame_diff"`
	TSGap      float64         `json:"ts_gap"`
}

// Marshal serializes the report with the 2-space indentation the report
// artifact has always used.
func (r *Report) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// Builder accumulates frame records in index order and finalizes the
// report once the stream ends. A builder serves exactly one run.
type Builder struct {
	meta   ports.VideoMeta
	frames []FrameEntry
	drops  int
	merges int
}

// NewBuilder creates a Builder for a source with the given metadata.
func NewBuilder(meta ports.VideoMeta) *Builder {
	return &Builder{meta: meta}
}

// Add appends the record for the next frame. Float values are rounded to
// two decimals at append time, exactly as they are persisted.
func (b *Builder) Add(frame ports.Frame, m pipeline.FrameMetrics, cls pipeline.Classification) {
	b.frames = append(b.frames, FrameEntry{
		FrameIndex: frame.Index,
		Status:     cls.Status,
		Confidence: round2(cls.Confidence),
		Timestamp:  round2(frame.TimestampMs),
		Sharpness:  round2(m.Sharpness),
		FrameDiff:  round2(m.MotionDiff),
		TSGap:      round2(m.TSGapMs),
	})

	switch cls.Status {
	case pipeline.StatusDrop:
		b.drops++
	case pipeline.StatusMerge:
		b.merges++
	}
}

// Len returns the number of records accumulated so far.
func (b *Builder) Len() int {
	return len(b.frames)
}

// Finalize assembles the full report. processing is the wall-clock elapsed
// time of the whole run, measured by the orchestrator.
func (b *Builder) Finalize(processing time.Duration) *Report {
	duration := 0.0
	if b.meta.FPS > 0 {
		duration = float64(b.meta.FrameCount) / b.meta.FPS
	}

	total := len(b.frames)
	return &Report{
		VideoInfo: VideoInfo{
			FPS:        b.meta.FPS,
			FrameCount: b.meta.FrameCount,
			Width:      b.meta.Width,
			Height:     b.meta.Height,
			Duration:   duration,
		},
		Statistics: Statistics{
			TotalFrames:    total,
			DropsDetected:  b.drops,
			MergesDetected: b.merges,
			NormalFrames:   total - b.drops - b.merges,
			ProcessingTime: round2(processing.Seconds()),
		},
		Frames: b.frames,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
