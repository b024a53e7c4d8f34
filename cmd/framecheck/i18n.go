// Package main provides localization for the framecheck CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Detect dropped and merged frames in video files.": "動画ファイル内のフレーム落ちと合成フレームを検出します。",

		// Subcommands
		"Analyze a video for dropped and merged frames.": "動画のフレーム落ちと合成フレームを解析",
		"Extract a single frame as a PNG thumbnail.":     "1フレームをPNGサムネイルとして抽出",
		"Show container metadata for a video.":           "動画のコンテナメタデータを表示",
		"Show version information.":                      "バージョン情報を表示",

		// Version command
		"framecheck version %s": "framecheck バージョン %s",

		// Runtime messages
		"Interrupted, shutting down...": "中断されました。終了します...",
		"Summary written to %s":         "サマリーを %s に書き込みました",
		"Annotated video: %s":           "注釈付き動画: %s",
		"Report: %s":                    "レポート: %s",
		"Thumbnail for frame %d written to %s": "フレーム %d のサムネイルを %s に書き込みました",

		// Analyzer messages
		"Analyzing %s: %.2f fps, %d frames reported, %dx%d":        "%s を解析中: %.2f fps、報告フレーム数 %d、%dx%d",
		"Thresholds: motion %.2f, sharpness %.2f":                  "しきい値: モーション %.2f、シャープネス %.2f",
		"Frame %d: %s (sharpness %.2f, diff %.2f, gap %.2fms)":     "フレーム %d: %s（シャープネス %.2f、差分 %.2f、間隔 %.2fms）",
		"Analysis complete in %.2fs: %d drops, %d merges, %d normal": "解析完了（%.2f秒）: フレーム落ち %d、合成 %d、正常 %d",
	})
}
