// Package analyzer coordinates the frame analysis pipeline: it pulls
// frames from the source one at a time, computes metrics, classifies,
// annotates, feeds the sink, and finalizes the report.
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"time"

	"github.com/user/framecheck/pkg/classify"
	"github.com/user/framecheck/pkg/metrics"
	"github.com/user/framecheck/pkg/overlay"
	"github.com/user/framecheck/pkg/pipeline"
	"github.com/user/framecheck/pkg/report"
	"github.com/user/framecheck/pkg/ports"
)

// Options configures a single analysis run.
type Options struct {
	InputPath  string
	OutputPath string
	ReportPath string

	Thresholds pipeline.Thresholds
	Sink       ports.SinkOptions

	// DebugStillInterval saves every Nth annotated frame to the debug
	// sink when debug output is enabled. Zero disables stills.
	DebugStillInterval int
}

// Analyzer runs the pipeline. Instances are single-run: the source and
// sink it holds are one-pass resources, so concurrent videos need
// independent Analyzer instances.
type Analyzer struct {
	source    ports.VideoSource
	sink      ports.VideoSink
	annotator *overlay.Annotator
	fs        ports.FileSystem
	debug     ports.DebugSink
	logger    ports.Logger
}

// New creates an Analyzer from its collaborators.
func New(
	source ports.VideoSource,
	sink ports.VideoSink,
	annotator *overlay.Annotator,
	fs ports.FileSystem,
	debug ports.DebugSink,
	logger ports.Logger,
) *Analyzer {
	return &Analyzer{
		source:    source,
		sink:      sink,
		annotator: annotator,
		fs:        fs,
		debug:     debug,
		logger:    logger,
	}
}

// Run processes the input video in a single sequential pass and returns
// the finished report. The annotated video and the JSON report are written
// to the configured paths as side effects. On any fatal error both the
// source and the sink are released before Run returns.
func (a *Analyzer) Run(ctx context.Context, opts Options) (*report.Report, error) {
	if err := opts.Thresholds.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	meta, err := a.source.Open(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.InputPath, err)
	}
	defer a.source.Close()

	a.logger.Info("Analyzing %s: %.2f fps, %d frames reported, %dx%d",
		opts.InputPath, meta.FPS, meta.FrameCount, meta.Width, meta.Height)
	a.logger.Debug("Thresholds: motion %.2f, sharpness %.2f",
		opts.Thresholds.Motion, opts.Thresholds.Sharpness)

	if a.debug.Enabled() {
		if data, err := probeJSON(meta); err == nil {
			a.debug.SaveProbeJSON(data)
		}
	}

	if err := a.sink.Begin(meta.Width, meta.Height, meta.FPS, opts.Sink); err != nil {
		return nil, fmt.Errorf("begin output: %w", err)
	}
	// Abort is a no-op once End has succeeded, so this only fires on
	// error paths and discards the partial artifact.
	defer a.sink.Abort()

	classifier := classify.New(meta.ExpectedIntervalMs(), opts.Thresholds)
	builder := report.NewBuilder(meta)

	// The one-pass accumulator: at most one frame is held as previous at
	// any time, so memory stays bounded regardless of video length.
	var prev *image.RGBA
	var prevTS float64

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		frame, err := a.source.NextFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", builder.Len(), err)
		}

		m := pipeline.FrameMetrics{
			Sharpness:  metrics.Sharpness(frame.Image),
			MotionDiff: metrics.MotionDiff(prev, frame.Image),
		}
		if frame.Index > 0 {
			m.TSGapMs = frame.TimestampMs - prevTS
		}

		cls := classifier.Classify(frame.Index, m)
		if cls.Status != pipeline.StatusNormal {
			a.logger.Debug("Frame %d: %s (sharpness %.2f, diff %.2f, gap %.2fms)",
				frame.Index, cls.Status.String(), m.Sharpness, m.MotionDiff, m.TSGapMs)
		}

		annotated := a.annotator.Render(frame, cls)
		if err := a.sink.WriteFrame(annotated); err != nil {
			return nil, fmt.Errorf("write frame %d: %w", frame.Index, err)
		}

		builder.Add(frame, m, cls)

		if a.debug.Enabled() && opts.DebugStillInterval > 0 && frame.Index%opts.DebugStillInterval == 0 {
			a.debug.SaveAnnotatedFrame(frame.Index, annotated)
		}

		prev = frame.Image
		prevTS = frame.TimestampMs
	}

	video, err := a.sink.End()
	if err != nil {
		return nil, fmt.Errorf("finalize output: %w", err)
	}
	if err := a.fs.WriteFile(opts.OutputPath, video); err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", pipeline.ErrSinkUnwritable, opts.OutputPath, err)
	}

	rep := builder.Finalize(time.Since(start))

	data, err := rep.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := a.fs.WriteFile(opts.ReportPath, data); err != nil {
		return nil, fmt.Errorf("%w: write %s: %v", pipeline.ErrSinkUnwritable, opts.ReportPath, err)
	}

	if a.debug.Enabled() {
		a.debug.SaveFrameRecords(data)
	}

	a.logger.Info("Analysis complete in %.2fs: %d drops, %d merges, %d normal",
		rep.Statistics.ProcessingTime, rep.Statistics.DropsDetected,
		rep.Statistics.MergesDetected, rep.Statistics.NormalFrames)

	return rep, nil
}

func probeJSON(meta ports.VideoMeta) ([]byte, error) {
	return json.MarshalIndent(meta, "", "  ")
}
