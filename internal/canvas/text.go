package canvas

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontHeightBonus is subtracted from the y of centered text; the measured
// height overshoots what is actually drawn.
const FontHeightBonus = 2

// ///////////////////////////////////////////////
// Typeface
// ///////////////////////////////////////////////

// Typeface is a parsed font with a face cached per size.
type Typeface struct {
	font  *opentype.Font
	faces map[float64]font.Face
}

// ParseTypeface parses TTF or OTF data.
func ParseTypeface(data []byte) (*Typeface, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Typeface{font: f, faces: make(map[float64]font.Face)}, nil
}

// GoRegular returns the embedded Go Regular typeface.
func GoRegular() *Typeface {
	t, err := ParseTypeface(goregular.TTF)
	if err != nil {
		panic(err)
	}
	return t
}

// Face returns the face for size points at 72 DPI, so one point is one pixel.
func (t *Typeface) Face(size float64) (font.Face, error) {
	if face, ok := t.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(t.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	t.faces[size] = face
	return face, nil
}

// Close releases every cached face.
func (t *Typeface) Close() error {
	for size, face := range t.faces {
		face.Close()
		delete(t.faces, size)
	}
	return nil
}

// ///////////////////////////////////////////////
// Text
// ///////////////////////////////////////////////

// MeasureText returns the size of text: its advance width and the face's
// ascent plus descent.
func (c *Canvas) MeasureText(text string, size float64) (image.Point, error) {
	face, err := c.face.Face(size)
	if err != nil {
		return image.Point{}, err
	}
	m := face.Metrics()
	return image.Pt(font.MeasureString(face, text).Ceil(), (m.Ascent + m.Descent).Ceil()), nil
}

// DrawText draws text in [TextColor] with its top-left corner at at.
func (c *Canvas) DrawText(at image.Point, text string, size float64) error {
	face, err := c.face.Face(size)
	if err != nil {
		return err
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(TextColor),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(at.X), Y: fixed.I(at.Y) + face.Metrics().Ascent},
	}
	d.DrawString(text)
	return nil
}

// CenterText draws text centered in the outline rectangle r.
func (c *Canvas) CenterText(r image.Rectangle, text string, size float64) error {
	textSize, err := c.MeasureText(text, size)
	if err != nil {
		return err
	}
	return c.DrawText(CenterPosition(r, textSize), text, size)
}

// CenterPosition returns the top-left corner that centers a box of textSize
// in r, raised by [FontHeightBonus].
func CenterPosition(r image.Rectangle, textSize image.Point) image.Point {
	outline := r.Size()
	return image.Pt(
		r.Min.X+(outline.X-textSize.X)/2,
		r.Min.Y+(outline.Y-textSize.Y)/2-FontHeightBonus,
	)
}
