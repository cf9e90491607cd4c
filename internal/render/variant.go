package render

import (
	"fmt"
	"image"

	"github.com/joeylmaalouf/shopkeeper/internal/build"
	"github.com/joeylmaalouf/shopkeeper/internal/config"
	"github.com/joeylmaalouf/shopkeeper/internal/layout"
)

// Variant holds the per-game layout parameters. The wiki sources live in
// [config.GameConfig]; everything here is fixed geometry.
type Variant struct {
	// Alphabet lists the ability letters in row order.
	Alphabet string
	// SuppressUnusedRows drops ability rows the order never uses.
	SuppressUnusedRows bool
	// AbilityTop is the y of the ability grid header.
	AbilityTop int
	// ItemGap is the distance from the bottom of the ability grid to the
	// first item row.
	ItemGap int
	// ItemCellWidth is the width of an item cell outline.
	ItemCellWidth int
	// Metadata lists the text fields drawn near the canvas corners.
	Metadata []layout.MetadataField
	// Runes enables the summoner spell and rune stages.
	Runes bool
}

var lolMetadata = []layout.MetadataField{
	{Key: build.KeyChampion, Corner: layout.TopLeft, Offset: image.Pt(32, 32), Size: layout.H1},
	{Key: build.KeyRole, Corner: layout.TopLeft, Offset: image.Pt(32, 88), Size: layout.H2},
	{Key: build.KeySkin, Corner: layout.BottomRight, Offset: image.Pt(32, 32), Size: layout.H2},
	{Key: build.KeyChroma, Corner: layout.BottomRight, Offset: image.Pt(32, 80), Size: layout.H3},
	{Key: build.KeyCreator, Corner: layout.BottomLeft, Offset: image.Pt(32, 32), Size: layout.H4},
	{Key: build.KeyPatch, Corner: layout.TopRight, Offset: image.Pt(32, 32), Size: layout.H4},
}

// Variants by game ID.
var (
	LoL = Variant{
		Alphabet:      "QWER",
		AbilityTop:    96,
		ItemGap:       128,
		ItemCellWidth: 65,
		Metadata:      lolMetadata,
		Runes:         true,
	}

	Dota = Variant{
		Alphabet:           "QWEDFRT",
		SuppressUnusedRows: true,
		AbilityTop:         128,
		ItemGap:            32,
		ItemCellWidth:      89,
		Metadata: []layout.MetadataField{
			lolMetadata[0], lolMetadata[1], lolMetadata[2], lolMetadata[4], lolMetadata[5],
		},
	}
)

// VariantFor returns the layout variant of a game ID.
func VariantFor(game string) (Variant, error) {
	switch game {
	case config.GameLoL:
		return LoL, nil
	case config.GameDota:
		return Dota, nil
	default:
		return Variant{}, fmt.Errorf("unknown game %q", game)
	}
}

// abilityGrid returns the grid spec of the variant.
func (v Variant) abilityGrid() layout.AbilityGridSpec {
	return layout.AbilityGridSpec{
		Right:              layout.CanvasWidth - layout.AbilityMargin,
		Top:                v.AbilityTop,
		Alphabet:           v.Alphabet,
		SuppressUnusedRows: v.SuppressUnusedRows,
	}
}

// itemGrid returns the item grid spec of the variant.
func (v Variant) itemGrid() layout.ItemGridSpec {
	return layout.ItemGridSpec{
		Right:     layout.CanvasWidth - layout.AbilityMargin,
		CellWidth: v.ItemCellWidth,
	}
}
