package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/user/framecheck/pkg/adapters/ggrenderer"
	"github.com/user/framecheck/pkg/adapters/logger"
	"github.com/user/framecheck/pkg/mocks"
	"github.com/user/framecheck/pkg/overlay"
	"github.com/user/framecheck/pkg/pipeline"
	"github.com/user/framecheck/pkg/ports"
	"github.com/user/framecheck/pkg/report"
)

const testInterval = 1000.0 / 30.0

func testMeta(frameCount int) ports.VideoMeta {
	return ports.VideoMeta{
		FPS:        30,
		FrameCount: frameCount,
		Width:      64,
		Height:     48,
		DurationS:  float64(frameCount) / 30,
	}
}

// checkerFrame has high Laplacian variance, so it classifies as sharp.
func checkerFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			if (x/4+y/4)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{A: 255})
			}
		}
	}
	return img
}

// flatFrame has zero Laplacian variance, so it classifies as blurred.
func flatFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	return img
}

func evenFrames(n int) []ports.Frame {
	frames := make([]ports.Frame, n)
	for i := range frames {
		frames[i] = ports.Frame{
			Index:       i,
			TimestampMs: float64(i) * testInterval,
			Image:       checkerFrame(),
		}
	}
	return frames
}

type harness struct {
	source *mocks.VideoSource
	sink   *mocks.VideoSink
	fs     *mocks.FileSystem
	debug  *mocks.DebugSink
	a      *Analyzer
}

func newHarness(source *mocks.VideoSource) *harness {
	h := &harness{
		source: source,
		sink:   mocks.NewVideoSink(),
		fs:     mocks.NewFileSystem(),
		debug:  mocks.NewDebugSink(false),
	}
	h.a = New(
		h.source,
		h.sink,
		overlay.New(ggrenderer.New(), ""),
		h.fs,
		h.debug,
		logger.NewNoop(),
	)
	return h
}

func defaultOptions() Options {
	return Options{
		InputPath:  "input.mp4",
		OutputPath: "out/annotated.mp4",
		ReportPath: "out/report.json",
		Thresholds: pipeline.DefaultThresholds(),
	}
}

func TestRunAllNormal(t *testing.T) {
	h := newHarness(mocks.NewVideoSource(testMeta(10), evenFrames(10)))

	rep, err := h.a.Run(context.Background(), defaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if rep.Statistics.TotalFrames != 10 {
		t.Errorf("total_frames = %d, want 10", rep.Statistics.TotalFrames)
	}
	if rep.Statistics.DropsDetected != 0 || rep.Statistics.MergesDetected != 0 {
		t.Errorf("expected no detections, got %d drops, %d merges",
			rep.Statistics.DropsDetected, rep.Statistics.MergesDetected)
	}
	if rep.Statistics.NormalFrames != 10 {
		t.Errorf("normal_frames = %d, want 10", rep.Statistics.NormalFrames)
	}
	for _, e := range rep.Frames {
		if e.Status != pipeline.StatusNormal {
			t.Errorf("frame %d: status %s, want Normal", e.FrameIndex, e.Status)
		}
	}
}

func TestRunDetectsTimestampGapDrop(t *testing.T) {
	frames := evenFrames(10)
	// Shift frames 5 onward by two extra intervals: the gap into frame 5
	// becomes three intervals, later gaps return to nominal.
	for i := 5; i < len(frames); i++ {
		frames[i].TimestampMs += 2 * testInterval
	}
	h := newHarness(mocks.NewVideoSource(testMeta(10), frames))

	rep, err := h.a.Run(context.Background(), defaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if rep.Statistics.DropsDetected != 1 {
		t.Fatalf("drops_detected = %d, want 1", rep.Statistics.DropsDetected)
	}
	for _, e := range rep.Frames {
		want := pipeline.StatusNormal
		if e.FrameIndex == 5 {
			want = pipeline.StatusDrop
		}
		if e.Status != want {
			t.Errorf("frame %d: status %s, want %s", e.FrameIndex, e.Status, want)
		}
	}
}

func TestRunDetectsBlurredFramesAsMerges(t *testing.T) {
	frames := evenFrames(3)
	frames[1].Image = flatFrame()
	frames[2].Image = flatFrame()
	h := newHarness(mocks.NewVideoSource(testMeta(3), frames))

	rep, err := h.a.Run(context.Background(), defaultOptions())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []pipeline.Status{pipeline.StatusNormal, pipeline.StatusMerge, pipeline.StatusMerge}
	for i, e := range rep.Frames {
		if e.Status != want[i] {
			t.Errorf("frame %d: status %s, want %s", i, e.Status, want[i])
		}
	}
	if rep.Statistics.MergesDetected != 2 {
		t.Errorf("merges_detected = %d, want 2", rep.Statistics.MergesDetected)
	}
}

func TestRunEmptySource(t *testing.T) {
	h := newHarness(mocks.NewVideoSource(testMeta(0), nil))

	rep, err := h.a.Run(context.Background(), defaultOptions())
	if err != nil {
		t.Fatalf("Run on empty source failed: %v", err)
	}

	if rep.Statistics.TotalFrames != 0 {
		t.Errorf("total_frames = %d, want 0", rep.Statistics.TotalFrames)
	}
	if len(rep.Frames) != 0 {
		t.Errorf("frames list has %d entries, want 0", len(rep.Frames))
	}
	// Both artifacts are still produced.
	if _, err := h.fs.ReadFile("out/annotated.mp4"); err != nil {
		t.Error("annotated video was not written")
	}
	if _, err := h.fs.ReadFile("out/report.json"); err != nil {
		t.Error("report was not written")
	}
}

func TestRunWritesArtifacts(t *testing.T) {
	h := newHarness(mocks.NewVideoSource(testMeta(4), evenFrames(4)))

	if _, err := h.a.Run(context.Background(), defaultOptions()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	video, err := h.fs.ReadFile("out/annotated.mp4")
	if err != nil {
		t.Fatal("annotated video was not written")
	}
	if string(video) != "mp4" {
		t.Errorf("video bytes = %q, want sink payload", video)
	}

	data, err := h.fs.ReadFile("out/report.json")
	if err != nil {
		t.Fatal("report was not written")
	}
	var rep report.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if rep.Statistics.TotalFrames != 4 {
		t.Errorf("persisted total_frames = %d, want 4", rep.Statistics.TotalFrames)
	}

	// The sink received one annotated frame per input frame at the
	// source's dimensions and rate.
	if len(h.sink.Frames) != 4 {
		t.Errorf("sink received %d frames, want 4", len(h.sink.Frames))
	}
	if h.sink.Width != 64 || h.sink.Height != 48 || h.sink.FPS != 30 {
		t.Errorf("sink configured as %dx%d@%v", h.sink.Width, h.sink.Height, h.sink.FPS)
	}
}

func TestRunReleasesResources(t *testing.T) {
	h := newHarness(mocks.NewVideoSource(testMeta(2), evenFrames(2)))

	if _, err := h.a.Run(context.Background(), defaultOptions()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if h.source.CloseCount != 1 {
		t.Errorf("source Close called %d times, want 1", h.source.CloseCount)
	}
	if !h.sink.Ended {
		t.Error("sink End was not called")
	}
	if h.sink.AbortCount != 0 {
		t.Errorf("Abort fired %d times after a clean End", h.sink.AbortCount)
	}
}

func TestRunInvalidThresholds(t *testing.T) {
	h := newHarness(mocks.NewVideoSource(testMeta(2), evenFrames(2)))

	opts := defaultOptions()
	opts.Thresholds.Motion = -1

	_, err := h.a.Run(context.Background(), opts)
	if !errors.Is(err, pipeline.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	if h.source.OpenedPath != "" {
		t.Error("source should not be opened with invalid thresholds")
	}
}

func TestRunOpenFailure(t *testing.T) {
	source := mocks.NewVideoSource(testMeta(0), nil)
	source.OpenErr = fmt.Errorf("%w: no video stream", pipeline.ErrSourceUnreadable)
	h := newHarness(source)

	_, err := h.a.Run(context.Background(), defaultOptions())
	if !errors.Is(err, pipeline.ErrSourceUnreadable) {
		t.Errorf("expected ErrSourceUnreadable, got %v", err)
	}
	if h.sink.Begun {
		t.Error("sink should not be started when the source fails to open")
	}
}

func TestRunMidStreamDecodeFailureIsFatal(t *testing.T) {
	source := mocks.NewVideoSource(testMeta(10), evenFrames(10))
	source.FailAtIndex = 4
	source.FailErr = errors.New("corrupt packet")
	h := newHarness(source)

	_, err := h.a.Run(context.Background(), defaultOptions())
	if err == nil {
		t.Fatal("expected decode failure to abort the run")
	}

	// Cleanup still happens: source closed, partial output discarded.
	if h.source.CloseCount != 1 {
		t.Errorf("source Close called %d times, want 1", h.source.CloseCount)
	}
	if h.sink.AbortCount != 1 {
		t.Errorf("sink Abort called %d times, want 1", h.sink.AbortCount)
	}
	if len(h.fs.Files) != 0 {
		t.Error("no artifacts should be written on decode failure")
	}
}

func TestRunSinkWriteFailure(t *testing.T) {
	h := newHarness(mocks.NewVideoSource(testMeta(3), evenFrames(3)))
	h.sink.WriteErr = fmt.Errorf("%w: pipe closed", pipeline.ErrSinkUnwritable)

	_, err := h.a.Run(context.Background(), defaultOptions())
	if !errors.Is(err, pipeline.ErrSinkUnwritable) {
		t.Errorf("expected ErrSinkUnwritable, got %v", err)
	}
	if h.sink.AbortCount != 1 {
		t.Errorf("sink Abort called %d times, want 1", h.sink.AbortCount)
	}
}

func TestRunReportWriteFailure(t *testing.T) {
	h := newHarness(mocks.NewVideoSource(testMeta(2), evenFrames(2)))
	h.fs.WriteErr = errors.New("disk full")

	_, err := h.a.Run(context.Background(), defaultOptions())
	if !errors.Is(err, pipeline.ErrSinkUnwritable) {
		t.Errorf("expected ErrSinkUnwritable, got %v", err)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	h := newHarness(mocks.NewVideoSource(testMeta(10), evenFrames(10)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.a.Run(ctx, defaultOptions())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if h.source.CloseCount != 1 {
		t.Error("source should be closed after cancellation")
	}
}

func TestRunDebugArtifacts(t *testing.T) {
	h := newHarness(mocks.NewVideoSource(testMeta(6), evenFrames(6)))
	h.debug = mocks.NewDebugSink(true)
	h.a = New(h.source, h.sink, overlay.New(ggrenderer.New(), ""), h.fs, h.debug, logger.NewNoop())

	opts := defaultOptions()
	opts.DebugStillInterval = 2

	if _, err := h.a.Run(context.Background(), opts); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if h.debug.ProbeJSON == nil {
		t.Error("probe metadata was not saved to the debug sink")
	}
	if h.debug.FrameRecords == nil {
		t.Error("frame records were not saved to the debug sink")
	}
	for _, idx := range []int{0, 2, 4} {
		if _, ok := h.debug.Stills[idx]; !ok {
			t.Errorf("missing debug still for frame %d", idx)
		}
	}
	if len(h.debug.Stills) != 3 {
		t.Errorf("saved %d stills, want 3", len(h.debug.Stills))
	}
}

func TestRunDeterministic(t *testing.T) {
	run := func() *report.Report {
		frames := evenFrames(6)
		frames[3].Image = flatFrame()
		h := newHarness(mocks.NewVideoSource(testMeta(6), frames))
		rep, err := h.a.Run(context.Background(), defaultOptions())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		return rep
	}

	first := run()
	second := run()

	if len(first.Frames) != len(second.Frames) {
		t.Fatal("runs produced different frame counts")
	}
	for i := range first.Frames {
		if first.Frames[i] != second.Frames[i] {
			t.Errorf("frame %d differs between identical runs:\n%+v\n%+v",
				i, first.Frames[i], second.Frames[i])
		}
	}
}
