// Package summarizer provides human-readable summaries of analysis runs.
package summarizer

import "time"

// Summary contains all data collected during an analysis run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Input video information
	Input InputInfo

	// Detection results
	Results ResultInfo

	// Detection settings
	Settings Settings

	// Output artifacts
	Artifacts Artifacts
}

// InputInfo describes the analyzed video.
type InputInfo struct {
	Path       string
	FPS        float64
	FrameCount int
	Width      int
	Height     int
	DurationS  float64
}

// ResultInfo contains the aggregate detection results.
type ResultInfo struct {
	TotalFrames     int
	DropsDetected   int
	MergesDetected  int
	NormalFrames    int
	ProcessingTimeS float64
}

// Settings contains the detection configuration.
type Settings struct {
	MotionThresh    float64
	SharpnessThresh float64
}

// Artifacts contains the paths of the generated outputs.
type Artifacts struct {
	VideoPath  string
	ReportPath string
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithInput sets the input video information.
func (b *Builder) WithInput(info InputInfo) *Builder {
	b.summary.Input = info
	return b
}

// WithResults sets the detection results.
func (b *Builder) WithResults(results ResultInfo) *Builder {
	b.summary.Results = results
	return b
}

// WithSettings sets the detection settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithArtifacts sets the output artifact paths.
func (b *Builder) WithArtifacts(artifacts Artifacts) *Builder {
	b.summary.Artifacts = artifacts
	return b
}

// Build returns the assembled Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
