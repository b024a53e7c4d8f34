// Package metrics computes the per-frame sharpness and motion signals the
// classifier decides on. Both functions are pure and deterministic for
// identical input buffers.
package metrics

import (
	"image"

	"golang.org/x/image/draw"
)

// Motion estimation runs on a fixed small resolution to bound cost and
// suppress pixel-level noise; only macro motion matters for drop detection.
const (
	DownscaleWidth  = 320
	DownscaleHeight = 240
)

// Sharpness returns the variance of a 3x3 Laplacian filter applied to the
// frame's luminance. Higher variance means more high-frequency detail;
// blurred content, including merged frames, scores low. Frames smaller
// than the filter kernel score zero.
func Sharpness(img *image.RGBA) float64 {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	gray := luminance(img)

	// Laplacian response on interior pixels only.
	n := (w - 2) * (h - 2)
	sum := 0.0
	sumSq := 0.0
	for y := 1; y < h-1; y++ {
		row := y * w
		for x := 1; x < w-1; x++ {
			i := row + x
			lap := gray[i-w] + gray[i+w] + gray[i-1] + gray[i+1] - 4*gray[i]
			sum += lap
			sumSq += lap * lap
		}
	}

	mean := sum / float64(n)
	return sumSq/float64(n) - mean*mean
}

// MotionDiff returns the mean absolute luminance difference between prev
// and curr after downscaling both to DownscaleWidth x DownscaleHeight.
// It returns 0 when prev is nil, which is the case for the first frame.
func MotionDiff(prev, curr *image.RGBA) float64 {
	if prev == nil {
		return 0
	}

	pg := luminance(downscale(prev))
	cg := luminance(downscale(curr))

	sum := 0.0
	for i := range pg {
		d := pg[i] - cg[i]
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return sum / float64(len(pg))
}

func downscale(img *image.RGBA) *image.RGBA {
	if img.Rect.Dx() == DownscaleWidth && img.Rect.Dy() == DownscaleHeight {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, DownscaleWidth, DownscaleHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// luminance converts an RGBA buffer to a flat slice of Rec.601 luma values
// in the 0-255 range.
func luminance(img *image.RGBA) []float64 {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		off := y * img.Stride
		row := y * w
		for x := 0; x < w; x++ {
			p := off + x*4
			r := float64(img.Pix[p])
			g := float64(img.Pix[p+1])
			b := float64(img.Pix[p+2])
			out[row+x] = 0.299*r + 0.587*g + 0.114*b
		}
	}
	return out
}
