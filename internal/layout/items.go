package layout

import (
	"image"

	"github.com/joeylmaalouf/shopkeeper/internal/build"
)

// Item grid dimensions.
const (
	ItemCellHeight = 65
	// ItemSublistLimit is the most items stacked in one column.
	ItemSublistLimit = 4
	// ItemStride is the vertical distance between stacked items.
	ItemStride = 98
	// ItemPadding offsets a short column per missing item.
	ItemPadding = 49
	// ItemColumnStep is the horizontal distance between columns of a section.
	ItemColumnStep = 130
	// ItemSectionGap is the extra space between sections.
	ItemSectionGap = 65
	// ItemBlockHeight is the height of a full four-item column.
	ItemBlockHeight = ItemSublistLimit*ItemCellHeight + (ItemSublistLimit-1)*33
)

// ItemGridSpec holds the per-variant parameters of the item grid.
type ItemGridSpec struct {
	// Right is the x of the right edge of the rightmost column.
	Right int
	// CellWidth is the width of one item cell.
	CellWidth int
}

// ItemCell is one item slot.
type ItemCell struct {
	Name string
	Rect image.Rectangle
}

// ItemLabel is a section label centered under its block.
type ItemLabel struct {
	Text string
	Rect image.Rectangle
}

// ItemGrid is the planned item grid.
type ItemGrid struct {
	Cells  []ItemCell
	Labels []ItemLabel
}

// PlanItemGrid lays out the item sections starting at top. The last section
// is placed nearest the right edge. Within a section, items are split into
// columns of at most four, the last column placed rightmost, and a short
// column is pushed down so it is centered against a full one.
func PlanItemGrid(spec ItemGridSpec, top int, sections []build.ItemSection) ItemGrid {
	var grid ItemGrid
	x := spec.Right
	for s := len(sections) - 1; s >= 0; s-- {
		sec := sections[s]
		lists := chunk(sec.Options, ItemSublistLimit)

		n := len(lists)
		blockWidth := 0
		if n > 0 {
			blockWidth = n*spec.CellWidth + (n-1)*AbilityColumnWidth
		}
		grid.Labels = append(grid.Labels, ItemLabel{
			Text: sec.Label,
			Rect: image.Rect(x-blockWidth, top+ItemBlockHeight+33, x, top+ItemBlockHeight+49),
		})

		for l := n - 1; l >= 0; l-- {
			y := top + ItemPadding*(ItemSublistLimit-len(lists[l]))
			for _, name := range lists[l] {
				grid.Cells = append(grid.Cells, ItemCell{
					Name: name,
					Rect: image.Rect(x-spec.CellWidth, y, x, y+ItemCellHeight),
				})
				y += ItemStride
			}
			x -= ItemColumnStep
		}
		x -= ItemSectionGap
	}
	return grid
}

func chunk(items []string, size int) [][]string {
	var out [][]string
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
