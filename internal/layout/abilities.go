package layout

import (
	"image"
	"strings"
	"unicode"
)

// Ability grid dimensions.
const (
	AbilityColumnWidth  = 65
	AbilityHeaderHeight = 33
	AbilityRowHeight    = 65
	// AbilityMargin is the distance from the canvas' right edge to the grid.
	AbilityMargin = 96
)

// AbilityGridSpec holds the per-variant parameters of the ability grid.
type AbilityGridSpec struct {
	// Right is the x of the right edge of the rightmost column.
	Right int
	// Top is the y of the header row.
	Top int
	// Alphabet lists the ability letters in row order.
	Alphabet string
	// SuppressUnusedRows drops rows for letters the order never uses.
	SuppressUnusedRows bool
}

// AbilityRow is one letter cell of a column.
type AbilityRow struct {
	Letter string
	Rect   image.Rectangle
}

// AbilityColumn is one level of the ability order, or the icon column.
type AbilityColumn struct {
	// Level is the number stamped in the header. Zero for the icon column.
	Level int
	// Header is the level number cell. Empty for the icon column.
	Header image.Rectangle
	// Highlight is the upper-cased letter chosen at this level. A space or a
	// letter without a row highlights nothing.
	Highlight string
	// Icons marks the column that holds the ability icons instead of a level.
	Icons bool
	Rows  []AbilityRow
}

// AbilityGrid is the planned ability grid.
type AbilityGrid struct {
	// Columns run right to left: the last level first and the icon column last.
	Columns []AbilityColumn
	// Letters are the visible rows, top to bottom.
	Letters []string
	// Bottom is the y just below the grid.
	Bottom int
}

// PlanAbilityGrid lays out one column per character of order plus the icon
// column to the left of the first level.
func PlanAbilityGrid(spec AbilityGridSpec, order string) AbilityGrid {
	letters := visibleLetters(spec, order)
	grid := AbilityGrid{
		Letters: letters,
		Bottom:  spec.Top + 1 + AbilityHeaderHeight + AbilityRowHeight*len(letters),
	}

	// Index 0 of the sequence "@"+order is the icon column; index i > 0 is
	// level i. Columns are placed from the last level leftwards.
	levels := []rune(order)
	x := spec.Right
	for i := len(levels); i >= 0; i-- {
		col := AbilityColumn{Level: i, Icons: i == 0}
		y := spec.Top
		if !col.Icons {
			col.Header = image.Rect(x-AbilityColumnWidth, y, x, y+AbilityHeaderHeight)
			col.Highlight = string(unicode.ToUpper(levels[i-1]))
		}
		y += AbilityHeaderHeight

		col.Rows = make([]AbilityRow, len(letters))
		for j, l := range letters {
			col.Rows[j] = AbilityRow{Letter: l, Rect: image.Rect(x-AbilityColumnWidth, y, x, y+AbilityRowHeight)}
			y += AbilityRowHeight
		}

		grid.Columns = append(grid.Columns, col)
		x -= AbilityColumnWidth
	}
	return grid
}

// visibleLetters returns the alphabet letters that get a row. Suppression is
// case-sensitive: a lower-case letter in order does not keep its row.
func visibleLetters(spec AbilityGridSpec, order string) []string {
	var letters []string
	for _, r := range spec.Alphabet {
		l := string(r)
		if spec.SuppressUnusedRows && !strings.ContainsRune(order, r) {
			continue
		}
		letters = append(letters, l)
	}
	return letters
}
