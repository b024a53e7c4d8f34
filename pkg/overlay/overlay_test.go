package overlay

import (
	"image"
	"image/color"
	"testing"

	"github.com/user/framecheck/pkg/adapters/ggrenderer"
	"github.com/user/framecheck/pkg/pipeline"
	"github.com/user/framecheck/pkg/ports"
)

func grayFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	return img
}

func TestStatusColor(t *testing.T) {
	tests := []struct {
		status pipeline.Status
		want   color.RGBA
	}{
		{pipeline.StatusNormal, color.RGBA{G: 255, A: 255}},
		{pipeline.StatusDrop, color.RGBA{R: 255, A: 255}},
		{pipeline.StatusMerge, color.RGBA{R: 255, G: 255, A: 255}},
		{pipeline.Status(99), color.RGBA{R: 255, G: 255, B: 255, A: 255}},
	}

	for _, tt := range tests {
		if got := StatusColor(tt.status); got != tt.want {
			t.Errorf("StatusColor(%s) = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestRenderPreservesDimensions(t *testing.T) {
	a := New(ggrenderer.New(), "")
	frame := ports.Frame{Index: 0, Image: grayFrame(320, 200)}

	out := a.Render(frame, pipeline.Classification{Status: pipeline.StatusNormal})

	b := out.Bounds()
	if b.Dx() != 320 || b.Dy() != 200 {
		t.Errorf("annotated frame is %dx%d, want 320x200", b.Dx(), b.Dy())
	}
}

func TestRenderDoesNotMutateInput(t *testing.T) {
	a := New(ggrenderer.New(), "")
	frame := ports.Frame{Index: 3, Image: grayFrame(160, 120)}

	before := make([]uint8, len(frame.Image.Pix))
	copy(before, frame.Image.Pix)

	a.Render(frame, pipeline.Classification{Status: pipeline.StatusDrop})

	for i := range before {
		if frame.Image.Pix[i] != before[i] {
			t.Fatal("input frame buffer was mutated")
		}
	}
}

func TestRenderBannerTint(t *testing.T) {
	a := New(ggrenderer.New(), "")
	frame := ports.Frame{Index: 0, Image: grayFrame(320, 200)}

	out := a.Render(frame, pipeline.Classification{Status: pipeline.StatusDrop})

	// Inside the banner the red channel rises and green falls; a point
	// clear of the label and the disc samples pure banner blend.
	r, g, _, _ := out.At(300, 50).RGBA()
	br, bg := uint8(r>>8), uint8(g>>8)
	if br <= 128 {
		t.Errorf("red banner should raise red channel above 128, got %d", br)
	}
	if bg >= 128 {
		t.Errorf("red banner should lower green channel below 128, got %d", bg)
	}

	// Below the banner the frame shows through unchanged.
	r, g, b, _ := out.At(160, 150).RGBA()
	if uint8(r>>8) != 128 || uint8(g>>8) != 128 || uint8(b>>8) != 128 {
		t.Errorf("pixel below banner changed: got (%d, %d, %d)", r>>8, g>>8, b>>8)
	}
}

func TestRenderStatusDisc(t *testing.T) {
	a := New(ggrenderer.New(), "")
	frame := ports.Frame{Index: 0, Image: grayFrame(320, 200)}

	out := a.Render(frame, pipeline.Classification{Status: pipeline.StatusNormal})

	// The disc center at (width-40, 30) is solid status green.
	r, g, b, _ := out.At(280, 30).RGBA()
	if uint8(r>>8) != 0 || uint8(g>>8) != 255 || uint8(b>>8) != 0 {
		t.Errorf("disc center = (%d, %d, %d), want (0, 255, 0)", r>>8, g>>8, b>>8)
	}
}

func TestRenderMergeBannerIsYellow(t *testing.T) {
	a := New(ggrenderer.New(), "")
	frame := ports.Frame{Index: 0, Image: grayFrame(320, 200)}

	out := a.Render(frame, pipeline.Classification{Status: pipeline.StatusMerge})

	// Yellow disc: red and green saturated, blue empty.
	r, g, b, _ := out.At(280, 30).RGBA()
	if uint8(r>>8) != 255 || uint8(g>>8) != 255 || uint8(b>>8) != 0 {
		t.Errorf("disc center = (%d, %d, %d), want (255, 255, 0)", r>>8, g>>8, b>>8)
	}
}
