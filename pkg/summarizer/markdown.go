package summarizer

import (
	"fmt"
	"strings"
)

// Markdown returns a Formatter producing a Markdown run summary.
func Markdown() Formatter {
	return FormatFunc(formatMarkdown)
}

func formatMarkdown(s *Summary) string {
	var b strings.Builder

	b.WriteString("# Frame Analysis Summary\n\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", s.GeneratedAt.Format("2006-01-02 15:04:05"))

	b.WriteString("## Input\n\n")
	fmt.Fprintf(&b, "- Path: `%s`\n", s.Input.Path)
	fmt.Fprintf(&b, "- Dimensions: %dx%d\n", s.Input.Width, s.Input.Height)
	fmt.Fprintf(&b, "- Frame rate: %.2f fps\n", s.Input.FPS)
	fmt.Fprintf(&b, "- Reported frames: %d\n", s.Input.FrameCount)
	fmt.Fprintf(&b, "- Duration: %.2fs\n\n", s.Input.DurationS)

	b.WriteString("## Results\n\n")
	b.WriteString("| Status | Frames |\n")
	b.WriteString("|--------|--------|\n")
	fmt.Fprintf(&b, "| Normal | %d |\n", s.Results.NormalFrames)
	fmt.Fprintf(&b, "| Drop | %d |\n", s.Results.DropsDetected)
	fmt.Fprintf(&b, "| Merge | %d |\n", s.Results.MergesDetected)
	fmt.Fprintf(&b, "| Total | %d |\n\n", s.Results.TotalFrames)
	fmt.Fprintf(&b, "Processing time: %.2fs\n\n", s.Results.ProcessingTimeS)

	b.WriteString("## Settings\n\n")
	fmt.Fprintf(&b, "- Motion threshold: %.2f\n", s.Settings.MotionThresh)
	fmt.Fprintf(&b, "- Sharpness threshold: %.2f\n\n", s.Settings.SharpnessThresh)

	b.WriteString("## Artifacts\n\n")
	fmt.Fprintf(&b, "- Annotated video: `%s`\n", s.Artifacts.VideoPath)
	fmt.Fprintf(&b, "- Report: `%s`\n", s.Artifacts.ReportPath)

	return b.String()
}
