// Package canvas provides the drawing surface of a build card: outlined and
// filled cells, image pastes with and without an alpha mask, and text.
//
// The surface is an opaque *image.RGBA. Every operation keeps it opaque, so
// the encoded PNG carries no alpha channel.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

// Card colors.
var (
	DrawColor = color.RGBA{R: 50, G: 50, B: 50, A: 255}
	BackColor = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	TextColor = color.RGBA{R: 100, G: 100, B: 100, A: 255}
)

// Canvas is a mutable, opaque bitmap threaded through the render stages.
type Canvas struct {
	img  *image.RGBA
	face *Typeface
}

// New creates a black canvas of the given size that draws text with face.
func New(size image.Point, face *Typeface) *Canvas {
	img := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(img, img.Bounds(), image.NewUniform(BackColor), image.Point{}, draw.Src)
	return &Canvas{img: img, face: face}
}

// Image returns the underlying bitmap.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Bounds returns the canvas bounds.
func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

// EncodePNG writes the canvas as an RGB PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.img)
}

// ///////////////////////////////////////////////
// Rectangles
// ///////////////////////////////////////////////

// StrokeRect draws a one pixel outline. Both r.Min and r.Max lie on the
// outline, so the outline covers r.Dx()+1 by r.Dy()+1 pixels.
func (c *Canvas) StrokeRect(r image.Rectangle, outline color.Color) {
	u := image.NewUniform(outline)
	for _, edge := range []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X+1, r.Min.Y+1),
		image.Rect(r.Min.X, r.Max.Y, r.Max.X+1, r.Max.Y+1),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y+1),
		image.Rect(r.Max.X, r.Min.Y, r.Max.X+1, r.Max.Y+1),
	} {
		draw.Draw(c.img, edge, u, image.Point{}, draw.Src)
	}
}

// FillRect fills r, including both corners, and then outlines it.
func (c *Canvas) FillRect(r image.Rectangle, fill, outline color.Color) {
	inclusive := image.Rectangle{Min: r.Min, Max: r.Max.Add(image.Pt(1, 1))}
	draw.Draw(c.img, inclusive, image.NewUniform(fill), image.Point{}, draw.Src)
	c.StrokeRect(r, outline)
}

// ///////////////////////////////////////////////
// Pastes
// ///////////////////////////////////////////////

// Paste copies src with its top-left corner at at, ignoring any alpha:
// transparent pixels land with their stored color.
func (c *Canvas) Paste(src image.Image, at image.Point) {
	opaque := imaging.Clone(src)
	for i := 3; i < len(opaque.Pix); i += 4 {
		opaque.Pix[i] = 0xff
	}
	dst := opaque.Bounds().Sub(opaque.Bounds().Min).Add(at)
	draw.Draw(c.img, dst, opaque, opaque.Bounds().Min, draw.Src)
}

// PasteMasked composites src over the canvas through its own alpha channel.
func (c *Canvas) PasteMasked(src image.Image, at image.Point) {
	b := src.Bounds()
	draw.Draw(c.img, b.Sub(b.Min).Add(at), src, b.Min, draw.Over)
}

// PasteAuto uses [Canvas.PasteMasked] for images with an alpha channel and
// [Canvas.Paste] otherwise.
func (c *Canvas) PasteAuto(src image.Image, at image.Point) {
	if HasAlpha(src) {
		c.PasteMasked(src, at)
		return
	}
	c.Paste(src, at)
}

// HasAlpha reports whether the image's color model carries an alpha channel.
// Paletted images count as opaque even when the palette has transparency.
func HasAlpha(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64,
		*image.Alpha, *image.Alpha16, *image.NYCbCrA:
		return true
	default:
		return false
	}
}

// ///////////////////////////////////////////////
// Image Helpers
// ///////////////////////////////////////////////

// WithAlpha returns a copy of img with every pixel's alpha set to a.
func WithAlpha(img image.Image, a uint8) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = a
	}
	return out
}

// ClearBelow returns a copy of img with every pixel whose alpha is below
// threshold made fully transparent black.
func ClearBelow(img image.Image, threshold uint8) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i+3] < threshold {
			out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = 0, 0, 0, 0
		}
	}
	return out
}

// Expand returns img surrounded by a border of the given width and color.
func Expand(img image.Image, border int, col color.Color) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx()+2*border, b.Dy()+2*border))
	draw.Draw(out, out.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(border, border, border+b.Dx(), border+b.Dy()), img, b.Min, draw.Src)
	return out
}

// Resize scales img to exactly w by h pixels.
func Resize(img image.Image, w, h int) *image.NRGBA {
	return imaging.Resize(img, w, h, imaging.CatmullRom)
}

// Crop returns the part of img inside r, in img's coordinates.
func Crop(img image.Image, r image.Rectangle) *image.NRGBA {
	return imaging.Crop(img, r)
}
