// Package pipeline defines the value types shared by the frame analysis
// pipeline: statuses, thresholds, metrics and classifications.
package pipeline

import (
	"fmt"
	"math"
)

// Status classifies a frame's temporal health.
type Status int

const (
	// StatusNormal marks a frame with no detected capture defect.
	StatusNormal Status = iota
	// StatusDrop marks a temporal discontinuity consistent with one or
	// more source frames being skipped during capture or encoding.
	StatusDrop
	// StatusMerge marks a frame whose content is abnormally blurred,
	// consistent with two or more source frames blended into one.
	StatusMerge
)

// String returns the status name as it appears in reports.
func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "Normal"
	case StatusDrop:
		return "Drop"
	case StatusMerge:
		return "Merge"
	default:
		return "Unknown"
	}
}

// MarshalJSON encodes the status as its report name.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a status from its report name.
func (s *Status) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"Normal"`:
		*s = StatusNormal
	case `"Drop"`:
		*s = StatusDrop
	case `"Merge"`:
		*s = StatusMerge
	default:
		return fmt.Errorf("unknown status %s", data)
	}
	return nil
}

// Thresholds are the two tunable inputs that cross the pipeline boundary.
type Thresholds struct {
	// Motion is the multiplier applied to the expected frame interval to
	// obtain the timestamp-gap drop threshold.
	Motion float64

	// Sharpness is the absolute cutoff below which a frame is classified
	// as a merge.
	Sharpness float64
}

// DefaultThresholds returns the standard detection thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Motion: 1.5, Sharpness: 100}
}

// Validate rejects non-positive or non-finite threshold values. The
// classifier itself assumes valid inputs; validation happens once at the
// pipeline entry point.
func (t Thresholds) Validate() error {
	if !(t.Motion > 0) || math.IsInf(t.Motion, 0) {
		return fmt.Errorf("%w: motion threshold %v", ErrInvalidParameter, t.Motion)
	}
	if !(t.Sharpness > 0) || math.IsInf(t.Sharpness, 0) {
		return fmt.Errorf("%w: sharpness threshold %v", ErrInvalidParameter, t.Sharpness)
	}
	return nil
}

// FrameMetrics are the values computed for a single frame.
type FrameMetrics struct {
	// Sharpness is the variance of a Laplacian edge response over the
	// frame's luminance. Near-uniform or blurred content scores low.
	Sharpness float64

	// MotionDiff is the mean absolute luminance difference against the
	// previous frame after downscaling. Zero for the first frame.
	MotionDiff float64

	// TSGapMs is the gap in milliseconds since the previous frame's
	// timestamp. Zero for the first frame by convention.
	TSGapMs float64
}

// Classification is the verdict for a single frame.
type Classification struct {
	Status Status

	// Confidence is a bounded [0,1] scalar derived from sharpness. It
	// reflects the frame's sharpness whatever the assigned status, not
	// confidence in a drop or merge call specifically.
	Confidence float64
}
