// Package layout computes the pixel geometry of a build card. Everything here
// is pure arithmetic over fixed constants and counts taken from the build.
//
// Rectangles follow the outline convention used by the canvas package: Min is
// the top-left pixel and Max is the bottom-right pixel of the outline, both
// inclusive. A 65 pixel cell therefore spans Min.X to Min.X+65 and its icon is
// pasted at Min+(1,1).
package layout

import "image"

// Canvas dimensions.
const (
	CanvasWidth  = 1920
	CanvasHeight = 1080
)

// CanvasSize is the card size as a point.
var CanvasSize = image.Pt(CanvasWidth, CanvasHeight)

// Font sizes in points.
const (
	H1 = 48
	H2 = 40
	H3 = 32
	H4 = 24

	// StampSize is used for level numbers, ability letters, and spell text.
	StampSize = 20
	// LabelSize is used for item section labels.
	LabelSize = 24
)

// ///////////////////////////////////////////////
// Metadata
// ///////////////////////////////////////////////

// Corner selects the canvas corner a metadata field is offset from.
type Corner struct {
	Right  bool
	Bottom bool
}

var (
	TopLeft     = Corner{}
	TopRight    = Corner{Right: true}
	BottomLeft  = Corner{Bottom: true}
	BottomRight = Corner{Right: true, Bottom: true}
)

// MetadataField places one build field as text near a corner.
type MetadataField struct {
	Key    string
	Corner Corner
	Offset image.Point
	Size   float64
}

// MetadataPosition returns the top-left point of text measuring textSize that
// sits offset pixels in from the given corner of a canvas of canvasSize.
func MetadataPosition(corner Corner, offset, textSize, canvasSize image.Point) image.Point {
	p := offset
	if corner.Right {
		p.X = canvasSize.X - (offset.X + textSize.X)
	}
	if corner.Bottom {
		p.Y = canvasSize.Y - (offset.Y + textSize.Y)
	}
	return p
}

// ///////////////////////////////////////////////
// Background
// ///////////////////////////////////////////////

// BackgroundFit scales an image of size src to the canvas width, keeping its
// aspect ratio, and returns the scaled size with the vertical offset of the
// canvas within it. A negative top means the scaled image is shorter than the
// canvas and is pasted -top pixels down.
func BackgroundFit(src image.Point) (scaled image.Point, top int) {
	if src.X <= 0 || src.Y <= 0 {
		return image.Point{}, 0
	}
	ratio := float64(CanvasWidth) / float64(src.X)
	h := int(float64(src.Y) * ratio)
	if h < 1 {
		h = 1
	}
	return image.Pt(CanvasWidth, h), floorDiv(h-CanvasHeight, 2)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && (a < 0) != (b < 0) {
		q--
	}
	return q
}
