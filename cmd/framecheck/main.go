// Package main provides the CLI entry point for framecheck.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/ideamans/go-l10n"

	"github.com/user/framecheck/pkg/adapters/ffmpegsink"
	"github.com/user/framecheck/pkg/adapters/ffmpegsource"
	"github.com/user/framecheck/pkg/adapters/filesink"
	"github.com/user/framecheck/pkg/adapters/ggrenderer"
	"github.com/user/framecheck/pkg/adapters/logger"
	"github.com/user/framecheck/pkg/adapters/mp4probe"
	"github.com/user/framecheck/pkg/adapters/nullsink"
	"github.com/user/framecheck/pkg/adapters/osfilesystem"
	"github.com/user/framecheck/pkg/analyzer"
	"github.com/user/framecheck/pkg/config"
	"github.com/user/framecheck/pkg/overlay"
	"github.com/user/framecheck/pkg/pipeline"
	"github.com/user/framecheck/pkg/ports"
	"github.com/user/framecheck/pkg/summarizer"
)

// CLI defines the command-line interface with subcommands.
type CLI struct {
	Analyze   AnalyzeCmd   `cmd:"" help:"Analyze a video for dropped and merged frames."`
	Thumbnail ThumbnailCmd `cmd:"" help:"Extract a single frame as a PNG thumbnail."`
	Probe     ProbeCmd     `cmd:"" help:"Show container metadata for a video."`
	Version   VersionCmd   `cmd:"" help:"Show version information."`
}

// AnalyzeCmd defines the analyze subcommand.
type AnalyzeCmd struct {
	Input  string `arg:"" help:"Input video file."`
	Output string `short:"o" help:"Annotated MP4 output path (default: <id>_annotated.mp4 next to the input)."`
	Report string `short:"r" help:"JSON report path (default: <id>_report.json next to the input)."`

	// Detection thresholds (override config)
	MotionThresh    *float64 `help:"Timestamp-gap multiplier on the expected frame interval (default: 1.5)."`
	SharpnessThresh *float64 `help:"Sharpness cutoff below which a frame counts as a merge (default: 100)."`

	// Encoding options
	Quality *int `short:"q" help:"Video quality (CRF 0-63, lower is better)."`
	Bitrate *int `help:"Target bitrate in kbps (0 = codec default)."`

	// Summary
	Summary string `help:"Write a Markdown run summary to this path."`

	// Configuration
	Config string `short:"c" type:"path" help:"YAML config file."`

	// External tools
	FFmpegPath  string `help:"Path to the ffmpeg executable (falls back to FFMPEG_PATH env, then PATH)."`
	FFprobePath string `help:"Path to the ffprobe executable (falls back to FFPROBE_PATH env, then PATH)."`

	// Debug options
	Debug    bool   `short:"d" help:"Enable debug output."`
	DebugDir string `help:"Directory for debug output (default: ./debug)."`

	// Logging options
	LogLevel *string `short:"l" help:"Log level (debug, info, warn, error)."`
	Quiet    bool    `short:"Q" help:"Suppress all log output."`
}

// ThumbnailCmd defines the thumbnail subcommand.
type ThumbnailCmd struct {
	Input  string `arg:"" help:"Input video file."`
	Index  int    `arg:"" help:"Zero-based frame index to extract."`
	Output string `short:"o" default:"frame.png" help:"Output PNG path."`

	FFmpegPath  string `help:"Path to the ffmpeg executable."`
	FFprobePath string `help:"Path to the ffprobe executable."`
}

// ProbeCmd defines the probe subcommand.
type ProbeCmd struct {
	Input     string `arg:"" help:"Input video file."`
	JSON      bool   `help:"Print metadata as JSON."`
	Container bool   `help:"Read MP4 boxes directly instead of using ffprobe."`

	FFmpegPath  string `help:"Path to the ffmpeg executable."`
	FFprobePath string `help:"Path to the ffprobe executable."`
}

// VersionCmd shows version information.
type VersionCmd struct{}

var version = "dev"

func main() {
	cli := CLI{}

	ctx := kong.Parse(&cli,
		kong.Name("framecheck"),
		kong.Description(l10n.T("Detect dropped and merged frames in video files.")),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// Run executes the analyze command.
func (cmd *AnalyzeCmd) Run() error {
	cfg, err := config.Load(cmd.Config)
	if err != nil {
		return err
	}
	cmd.applyOverrides(&cfg)

	var log ports.Logger
	if cmd.Quiet {
		log = logger.NewNoop()
	} else {
		log = logger.NewConsole(ports.ParseLogLevel(cfg.LogLevel))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Warn("Interrupted, shutting down...")
		cancel()
	}()

	outputPath, reportPath := cmd.artifactPaths()

	fs := osfilesystem.New()
	renderer := ggrenderer.New()
	source := ffmpegsource.New(cfg.FFmpegPath, cfg.FFprobePath, log)
	sink := ffmpegsink.New(cfg.FFmpegPath, log)
	annotator := overlay.New(renderer, cfg.FontPath)

	var debug ports.DebugSink
	if cfg.Debug {
		debug = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		debug = nullsink.New()
	}

	thresholds := pipeline.Thresholds{
		Motion:    cfg.MotionThresh,
		Sharpness: cfg.SharpnessThresh,
	}
	if err := thresholds.Validate(); err != nil {
		return err
	}

	a := analyzer.New(source, sink, annotator, fs, debug, log)
	rep, err := a.Run(ctx, analyzer.Options{
		InputPath:  cmd.Input,
		OutputPath: outputPath,
		ReportPath: reportPath,
		Thresholds: thresholds,
		Sink: ports.SinkOptions{
			Quality: cfg.Quality,
			Bitrate: cfg.Bitrate,
		},
		DebugStillInterval: cfg.DebugStillInterval,
	})
	if err != nil {
		return err
	}

	summary := summarizer.NewBuilder().
		WithInput(summarizer.InputInfo{
			Path:       cmd.Input,
			FPS:        rep.VideoInfo.FPS,
			FrameCount: rep.VideoInfo.FrameCount,
			Width:      rep.VideoInfo.Width,
			Height:     rep.VideoInfo.Height,
			DurationS:  rep.VideoInfo.Duration,
		}).
		WithResults(summarizer.ResultInfo{
			TotalFrames:     rep.Statistics.TotalFrames,
			DropsDetected:   rep.Statistics.DropsDetected,
			MergesDetected:  rep.Statistics.MergesDetected,
			NormalFrames:    rep.Statistics.NormalFrames,
			ProcessingTimeS: rep.Statistics.ProcessingTime,
		}).
		WithSettings(summarizer.Settings{
			MotionThresh:    thresholds.Motion,
			SharpnessThresh: thresholds.Sharpness,
		}).
		WithArtifacts(summarizer.Artifacts{
			VideoPath:  outputPath,
			ReportPath: reportPath,
		}).
		Build()

	if cmd.Summary != "" {
		writer := summarizer.NewWriter(summarizer.Markdown())
		if err := writer.Write(cmd.Summary, summary); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		log.Info("Summary written to %s", cmd.Summary)
	}

	log.Info("Annotated video: %s", outputPath)
	log.Info("Report: %s", reportPath)
	return nil
}

func (cmd *AnalyzeCmd) applyOverrides(cfg *config.Config) {
	if cmd.MotionThresh != nil {
		cfg.MotionThresh = *cmd.MotionThresh
	}
	if cmd.SharpnessThresh != nil {
		cfg.SharpnessThresh = *cmd.SharpnessThresh
	}
	if cmd.Quality != nil {
		cfg.Quality = *cmd.Quality
	}
	if cmd.Bitrate != nil {
		cfg.Bitrate = *cmd.Bitrate
	}
	if cmd.FFmpegPath != "" {
		cfg.FFmpegPath = cmd.FFmpegPath
	}
	if cmd.FFprobePath != "" {
		cfg.FFprobePath = cmd.FFprobePath
	}
	if cmd.Debug {
		cfg.Debug = true
	}
	if cmd.DebugDir != "" {
		cfg.DebugDir = cmd.DebugDir
	}
	if cmd.LogLevel != nil {
		cfg.LogLevel = *cmd.LogLevel
	}
}

// artifactPaths returns the output and report paths, deriving
// session-style names next to the input when not specified.
func (cmd *AnalyzeCmd) artifactPaths() (string, string) {
	outputPath := cmd.Output
	reportPath := cmd.Report
	if outputPath != "" && reportPath != "" {
		return outputPath, reportPath
	}

	id := uuid.NewString()
	dir := filepath.Dir(cmd.Input)
	if outputPath == "" {
		outputPath = filepath.Join(dir, id+"_annotated.mp4")
	}
	if reportPath == "" {
		reportPath = filepath.Join(dir, id+"_report.json")
	}
	return outputPath, reportPath
}

// Run executes the thumbnail command.
func (cmd *ThumbnailCmd) Run() error {
	log := logger.NewConsole(ports.LevelWarn)
	source := ffmpegsource.New(cmd.FFmpegPath, cmd.FFprobePath, log)

	img, err := source.ExtractFrame(cmd.Input, cmd.Index)
	if err != nil {
		return err
	}

	renderer := ggrenderer.New()
	data, err := renderer.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		return err
	}

	if err := osfilesystem.New().WriteFile(cmd.Output, data); err != nil {
		return err
	}

	fmt.Println(l10n.F("Thumbnail for frame %d written to %s", cmd.Index, cmd.Output))
	return nil
}

// Run executes the probe command.
func (cmd *ProbeCmd) Run() error {
	log := logger.NewConsole(ports.LevelWarn)

	var meta ports.VideoMeta
	var err error
	if cmd.Container {
		if !strings.HasSuffix(strings.ToLower(cmd.Input), ".mp4") {
			return fmt.Errorf("--container requires an MP4 file")
		}
		meta, err = mp4probe.Probe(cmd.Input)
	} else {
		meta, err = ffmpegsource.New(cmd.FFmpegPath, cmd.FFprobePath, log).Probe(cmd.Input)
	}
	if err != nil {
		return err
	}

	if cmd.JSON {
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("%s\n", cmd.Input)
	fmt.Printf("  dimensions: %dx%d\n", meta.Width, meta.Height)
	fmt.Printf("  frame rate: %.3f fps\n", meta.FPS)
	fmt.Printf("  frames:     %d\n", meta.FrameCount)
	fmt.Printf("  duration:   %.2fs\n", meta.DurationS)
	return nil
}

// Run executes the version command.
func (cmd *VersionCmd) Run() error {
	fmt.Println(l10n.F("framecheck version %s", version))
	return nil
}
