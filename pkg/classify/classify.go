// Package classify assigns a drop/merge/normal status to each frame by
// applying an ordered rule set over the computed metrics.
package classify

import (
	"github.com/user/framecheck/pkg/pipeline"
)

const (
	// MotionDiscontinuityThreshold is the fixed baseline for the
	// content-based drop check. It is independent of the caller's
	// thresholds: timestamp metadata can be unreliable in some
	// containers, so motion discontinuity is kept as a cross-check.
	MotionDiscontinuityThreshold = 30.0

	// MotionJumpFactor scales the baseline so that only a sudden large
	// jump in frame difference counts as a drop, not ordinary motion.
	MotionJumpFactor = 3.0

	// ConfidenceDivisor maps sharpness onto the [0,1] confidence scale.
	ConfidenceDivisor = 200.0
)

// Classifier applies the drop/merge rule set. It is built once per run
// from the source's expected frame interval and the caller's thresholds.
type Classifier struct {
	dropThresholdMs float64
	sharpnessMin    float64
}

// New builds a classifier. expectedIntervalMs is the nominal frame spacing
// of the source; t must already be validated.
func New(expectedIntervalMs float64, t pipeline.Thresholds) *Classifier {
	return &Classifier{
		dropThresholdMs: expectedIntervalMs * t.Motion,
		sharpnessMin:    t.Sharpness,
	}
}

// Classify assigns exactly one status to the frame at the given index.
// Rules are evaluated in strict priority order:
//
//  1. timestamp gap above the drop threshold (never fires for frame 0)
//  2. motion discontinuity jump (needs two prior frames of context)
//  3. sharpness below the merge cutoff
//  4. normal
func (c *Classifier) Classify(index int, m pipeline.FrameMetrics) pipeline.Classification {
	status := pipeline.StatusNormal
	switch {
	case index > 0 && m.TSGapMs > c.dropThresholdMs:
		status = pipeline.StatusDrop
	case index > 1 && m.MotionDiff > MotionDiscontinuityThreshold*MotionJumpFactor:
		status = pipeline.StatusDrop
	case m.Sharpness < c.sharpnessMin:
		status = pipeline.StatusMerge
	}

	return pipeline.Classification{
		Status:     status,
		Confidence: Confidence(m.Sharpness),
	}
}

// Confidence maps a sharpness value onto [0,1]. The value is reported for
// every frame regardless of its assigned status.
func Confidence(sharpness float64) float64 {
	v := sharpness / ConfidenceDivisor
	if v > 1 {
		return 1
	}
	if v < 0 {
		return 0
	}
	return v
}
