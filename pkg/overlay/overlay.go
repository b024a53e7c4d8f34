// Package overlay renders per-frame status annotations: a colored banner,
// a text label and a status indicator disc.
package overlay

import (
	"fmt"
	"image"
	"image/color"

	"github.com/user/framecheck/pkg/pipeline"
	"github.com/user/framecheck/pkg/ports"
)

const (
	// BannerHeight is the height in pixels of the status banner drawn
	// across the top of each frame.
	BannerHeight = 60

	// BannerOpacity is the banner's blend factor over the frame content.
	BannerOpacity = 0.3

	labelX        = 10
	labelY        = 35
	labelFontSize = 28

	discRadius  = 15
	discInsetX  = 40
	discCenterY = 30
)

// StatusColor returns the annotation color for a status: green for normal,
// red for drops, yellow for merges, white otherwise.
func StatusColor(s pipeline.Status) color.RGBA {
	switch s {
	case pipeline.StatusNormal:
		return color.RGBA{G: 255, A: 255}
	case pipeline.StatusDrop:
		return color.RGBA{R: 255, A: 255}
	case pipeline.StatusMerge:
		return color.RGBA{R: 255, G: 255, A: 255}
	default:
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
}

// Annotator draws classification overlays onto frames.
type Annotator struct {
	renderer ports.Renderer
	fontPath string
}

// New creates an Annotator. fontPath may be empty, in which case the
// renderer's built-in face is used for labels.
func New(renderer ports.Renderer, fontPath string) *Annotator {
	return &Annotator{renderer: renderer, fontPath: fontPath}
}

// Render returns a new annotated buffer of identical dimensions. The input
// frame is never mutated; all drawing happens on a private canvas.
func (a *Annotator) Render(frame ports.Frame, cls pipeline.Classification) image.Image {
	w := frame.Image.Rect.Dx()
	h := frame.Image.Rect.Dy()

	canvas := a.renderer.CreateCanvas(w, h, color.Black)
	canvas.DrawImage(frame.Image, 0, 0)

	col := StatusColor(cls.Status)

	// Semi-transparent banner across the top.
	bannerAlpha := float64(BannerOpacity) * 255
	banner := color.NRGBA{R: col.R, G: col.G, B: col.B, A: uint8(bannerAlpha)}
	canvas.DrawRect(0, 0, w, BannerHeight, banner)

	label := fmt.Sprintf("Frame %d: %s", frame.Index, cls.Status)
	canvas.DrawText(label, labelX, labelY, ports.TextStyle{
		FontSize: labelFontSize,
		FontPath: a.fontPath,
		Color:    color.White,
	})

	// Solid status disc in the top-right corner.
	canvas.DrawCircle(w-discInsetX, discCenterY, discRadius, col)

	return canvas.ToImage()
}
