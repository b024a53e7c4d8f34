package summarizer

import (
	"strings"
	"testing"
)

func testSummary() *Summary {
	return NewBuilder().
		WithInput(InputInfo{
			Path:       "samples/clip.mp4",
			FPS:        29.97,
			FrameCount: 300,
			Width:      1280,
			Height:     720,
			DurationS:  10.01,
		}).
		WithResults(ResultInfo{
			TotalFrames:     300,
			DropsDetected:   4,
			MergesDetected:  2,
			NormalFrames:    294,
			ProcessingTimeS: 7.5,
		}).
		WithSettings(Settings{
			MotionThresh:    1.5,
			SharpnessThresh: 100,
		}).
		WithArtifacts(Artifacts{
			VideoPath:  "out/annotated.mp4",
			ReportPath: "out/report.json",
		}).
		Build()
}

func TestMarkdownSections(t *testing.T) {
	out := Markdown().Format(testSummary())

	for _, want := range []string{
		"# Frame Analysis Summary",
		"## Input",
		"## Results",
		"## Settings",
		"## Artifacts",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing section %q", want)
		}
	}
}

func TestMarkdownContent(t *testing.T) {
	out := Markdown().Format(testSummary())

	for _, want := range []string{
		"`samples/clip.mp4`",
		"1280x720",
		"29.97 fps",
		"| Drop | 4 |",
		"| Merge | 2 |",
		"| Normal | 294 |",
		"| Total | 300 |",
		"Processing time: 7.50s",
		"Motion threshold: 1.50",
		"Sharpness threshold: 100.00",
		"`out/annotated.mp4`",
		"`out/report.json`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q\n%s", want, out)
		}
	}
}

func TestFormatFuncAdapter(t *testing.T) {
	var got *Summary
	f := FormatFunc(func(s *Summary) string {
		got = s
		return "ok"
	})

	s := testSummary()
	if out := f.Format(s); out != "ok" {
		t.Errorf("Format returned %q", out)
	}
	if got != s {
		t.Error("adapter did not pass the summary through")
	}
}
