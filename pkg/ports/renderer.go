package ports

import (
	"image"
	"image/color"
)

// Renderer abstracts image drawing and encoding operations.
type Renderer interface {
	// CreateCanvas creates a new drawing canvas with the specified
	// dimensions and background color.
	CreateCanvas(width, height int, bg color.Color) Canvas

	// EncodeImage encodes an image to the specified format.
	EncodeImage(img image.Image, format ImageFormat, quality int) ([]byte, error)

	// ResizeImage resizes an image to the specified dimensions.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Canvas provides drawing operations for frame annotation.
type Canvas interface {
	// DrawImage draws an image at the specified position.
	DrawImage(img image.Image, x, y int)

	// DrawRect draws a filled rectangle. Colors with partial alpha are
	// blended over existing content.
	DrawRect(x, y, w, h int, c color.Color)

	// DrawCircle draws a filled circle centered at (x, y).
	DrawCircle(x, y, radius int, c color.Color)

	// DrawText draws text at the specified position.
	DrawText(text string, x, y int, style TextStyle)

	// ToImage returns the canvas as an image.Image.
	ToImage() image.Image
}

// TextStyle defines text rendering properties.
type TextStyle struct {
	FontSize float64
	FontPath string
	Color    color.Color
}

// ImageFormat specifies image encoding format.
type ImageFormat int

const (
	FormatJPEG ImageFormat = iota
	FormatPNG
)
