package layout

import (
	"image"
	"reflect"
	"strings"
	"testing"

	"github.com/joeylmaalouf/shopkeeper/internal/build"
)

var (
	lolGrid  = AbilityGridSpec{Right: CanvasWidth - AbilityMargin, Top: 96, Alphabet: "QWER"}
	dotaGrid = AbilityGridSpec{Right: CanvasWidth - AbilityMargin, Top: 128, Alphabet: "QWEDFRT", SuppressUnusedRows: true}
)

// ///////////////////////////////////////////////
// Metadata
// ///////////////////////////////////////////////

func TestMetadataPosition(t *testing.T) {
	text := image.Pt(200, 40)
	tests := []struct {
		name   string
		corner Corner
		offset image.Point
		want   image.Point
	}{
		{"champion top left", TopLeft, image.Pt(32, 32), image.Pt(32, 32)},
		{"role top left", TopLeft, image.Pt(32, 88), image.Pt(32, 88)},
		{"skin bottom right", BottomRight, image.Pt(32, 32), image.Pt(1920-232, 1080-72)},
		{"chroma bottom right", BottomRight, image.Pt(32, 80), image.Pt(1688, 1080-120)},
		{"creator bottom left", BottomLeft, image.Pt(32, 32), image.Pt(32, 1008)},
		{"patch top right", TopRight, image.Pt(32, 32), image.Pt(1688, 32)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MetadataPosition(tt.corner, tt.offset, text, CanvasSize); got != tt.want {
				t.Errorf("MetadataPosition = %v, want %v", got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Ability Grid
// ///////////////////////////////////////////////

func TestPlanAbilityGrid_Columns(t *testing.T) {
	order := "QWEQQRQWQWRWWEEREE"
	g := PlanAbilityGrid(lolGrid, order)

	if got, want := len(g.Columns), len(order)+1; got != want {
		t.Fatalf("columns = %d, want %d (one per level plus icons)", got, want)
	}

	for idx, col := range g.Columns[:len(order)] {
		if want := len(order) - idx; col.Level != want {
			t.Errorf("column %d level = %d, want %d", idx, col.Level, want)
		}
		x := 1824 - 65*idx
		if want := image.Rect(x-65, 96, x, 129); col.Header != want {
			t.Errorf("column %d header = %v, want %v", idx, col.Header, want)
		}
		if want := string(order[col.Level-1]); col.Highlight != want {
			t.Errorf("column %d highlight = %q, want %q", idx, col.Highlight, want)
		}
	}

	icons := g.Columns[len(order)]
	if !icons.Icons || icons.Level != 0 || icons.Header != (image.Rectangle{}) {
		t.Errorf("icon column = %+v", icons)
	}
	x := 1824 - 65*len(order)
	if want := image.Rect(x-65, 129, x, 194); icons.Rows[0].Rect != want {
		t.Errorf("icon Q cell = %v, want %v", icons.Rows[0].Rect, want)
	}
}

func TestPlanAbilityGrid_HighlightsExactLevels(t *testing.T) {
	// Q at levels 1 and 4.
	g := PlanAbilityGrid(lolGrid, "QWEQ")
	var levels []int
	for _, col := range g.Columns {
		if col.Highlight == "Q" {
			levels = append(levels, col.Level)
		}
	}
	if !reflect.DeepEqual(levels, []int{4, 1}) {
		t.Errorf("Q highlighted at levels %v, want [4 1]", levels)
	}
}

func TestPlanAbilityGrid_NonASCIILetter(t *testing.T) {
	g := PlanAbilityGrid(lolGrid, "QéW")
	if len(g.Columns) != 4 {
		t.Fatalf("columns = %d, want 4 (three levels and the icon column)", len(g.Columns))
	}
	want := []struct {
		level     int
		highlight string
	}{{3, "W"}, {2, "É"}, {1, "Q"}}
	for i, w := range want {
		col := g.Columns[i]
		if col.Level != w.level || col.Highlight != w.highlight {
			t.Errorf("column %d = level %d %q, want level %d %q", i, col.Level, col.Highlight, w.level, w.highlight)
		}
	}
	if !g.Columns[3].Icons {
		t.Error("last column is not the icon column")
	}
}

func TestPlanAbilityGrid_Rows(t *testing.T) {
	tests := []struct {
		name    string
		spec    AbilityGridSpec
		order   string
		letters []string
		bottom  int
	}{
		{"lol draws all rows", lolGrid, "QQQ", []string{"Q", "W", "E", "R"}, 390},
		{"dota drops unused rows", dotaGrid, "QWE QWE", []string{"Q", "W", "E"}, 128 + 1 + 33 + 65*3},
		{"dota keeps alphabet order", dotaGrid, "TRQ", []string{"Q", "R", "T"}, 128 + 1 + 33 + 65*3},
		{"dota suppression is case-sensitive", dotaGrid, "qWE", []string{"W", "E"}, 128 + 1 + 33 + 65*2},
		{"dota lower case only", dotaGrid, "qd", nil, 128 + 1 + 33},
		{"dota ignores letters outside the alphabet", dotaGrid, "QZ", []string{"Q"}, 128 + 1 + 33 + 65},
		{"dota empty order", dotaGrid, "", nil, 128 + 1 + 33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := PlanAbilityGrid(tt.spec, tt.order)
			if !reflect.DeepEqual(g.Letters, tt.letters) {
				t.Errorf("letters = %v, want %v", g.Letters, tt.letters)
			}
			if g.Bottom != tt.bottom {
				t.Errorf("Bottom = %d, want %d", g.Bottom, tt.bottom)
			}
			for _, col := range g.Columns {
				if len(col.Rows) != len(tt.letters) {
					t.Fatalf("level %d has %d rows, want %d", col.Level, len(col.Rows), len(tt.letters))
				}
			}
		})
	}
}

func TestPlanAbilityGrid_ItemTop(t *testing.T) {
	if got := PlanAbilityGrid(lolGrid, "Q").Bottom + 128; got != 518 {
		t.Errorf("lol item top = %d, want 518", got)
	}
	order := "QWERDF"
	if got, want := PlanAbilityGrid(dotaGrid, order).Bottom+32, 97+33+65*6+64; got != want {
		t.Errorf("dota item top = %d, want %d", got, want)
	}
}

func TestPlanAbilityGrid_SpaceHighlightsNothing(t *testing.T) {
	g := PlanAbilityGrid(lolGrid, "Q W")
	col := g.Columns[1] // level 2
	if col.Level != 2 || strings.TrimSpace(col.Highlight) != "" {
		t.Errorf("level 2 = %+v, want blank highlight", col)
	}
}

// ///////////////////////////////////////////////
// Item Grid
// ///////////////////////////////////////////////

func names(n int, prefix string) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = prefix + string(rune('a'+i))
	}
	return out
}

func TestPlanItemGrid_SectionOrder(t *testing.T) {
	sections := []build.ItemSection{
		{Label: "A", Options: []string{"a1"}},
		{Label: "B", Options: []string{"b1"}},
	}
	g := PlanItemGrid(ItemGridSpec{Right: 1824, CellWidth: 65}, 518, sections)

	var ax, bx int
	for _, c := range g.Cells {
		switch c.Name {
		case "a1":
			ax = c.Rect.Max.X
		case "b1":
			bx = c.Rect.Max.X
		}
	}
	if bx <= ax {
		t.Errorf("B at x=%d should be right of A at x=%d", bx, ax)
	}
	if bx != 1824 || ax != 1824-130-65 {
		t.Errorf("x = (%d, %d), want (1824, %d)", bx, ax, 1824-130-65)
	}
	if g.Labels[0].Text != "B" || g.Labels[1].Text != "A" {
		t.Errorf("labels = %+v, want B then A", g.Labels)
	}
}

func TestPlanItemGrid_Sublists(t *testing.T) {
	top := 518
	sections := []build.ItemSection{{Label: "Core", Options: names(6, "i")}}
	g := PlanItemGrid(ItemGridSpec{Right: 1824, CellWidth: 65}, top, sections)

	if len(g.Cells) != 6 {
		t.Fatalf("cells = %d, want 6", len(g.Cells))
	}
	// The second sublist (ie, if) is rightmost and two short.
	want := []ItemCell{
		{"ie", image.Rect(1759, top+98, 1824, top+98+65)},
		{"if", image.Rect(1759, top+196, 1824, top+196+65)},
		{"ia", image.Rect(1629, top, 1694, top+65)},
		{"ib", image.Rect(1629, top+98, 1694, top+163)},
		{"ic", image.Rect(1629, top+196, 1694, top+261)},
		{"id", image.Rect(1629, top+294, 1694, top+359)},
	}
	if !reflect.DeepEqual(g.Cells, want) {
		t.Errorf("cells =\n%v\nwant\n%v", g.Cells, want)
	}

	// (2n-1)*65 wide for two sublists of 65 pixel cells.
	if wantLabel := image.Rect(1824-195, top+392, 1824, top+408); g.Labels[0].Rect != wantLabel {
		t.Errorf("label = %v, want %v", g.Labels[0].Rect, wantLabel)
	}
}

func TestPlanItemGrid_ShortColumnPadding(t *testing.T) {
	top := 194
	for k := 1; k <= 4; k++ {
		sections := []build.ItemSection{{Options: names(k, "x")}}
		g := PlanItemGrid(ItemGridSpec{Right: 1824, CellWidth: 89}, top, sections)
		if got, want := g.Cells[0].Rect.Min.Y, top+49*(4-k); got != want {
			t.Errorf("k=%d first y = %d, want %d", k, got, want)
		}
		if w := g.Cells[0].Rect.Dx(); w != 89 {
			t.Errorf("k=%d cell width = %d, want 89", k, w)
		}
	}
}

func TestPlanItemGrid_DotaBlockWidth(t *testing.T) {
	sections := []build.ItemSection{{Label: "Late", Options: names(5, "d")}}
	g := PlanItemGrid(ItemGridSpec{Right: 1824, CellWidth: 89}, 0, sections)
	if got, want := g.Labels[0].Rect.Dx(), 2*89+65; got != want {
		t.Errorf("label width = %d, want %d", got, want)
	}
}

func TestPlanItemGrid_EmptySection(t *testing.T) {
	sections := []build.ItemSection{
		{Label: "Empty"},
		{Label: "Boots", Options: []string{"Boots"}},
	}
	g := PlanItemGrid(ItemGridSpec{Right: 1824, CellWidth: 65}, 0, sections)
	if len(g.Cells) != 1 || len(g.Labels) != 2 {
		t.Fatalf("cells = %d labels = %d", len(g.Cells), len(g.Labels))
	}
	if got := g.Labels[1].Rect; got.Dx() != 0 || got.Max.X != 1824-130-65 {
		t.Errorf("empty section label = %v", got)
	}
}

// ///////////////////////////////////////////////
// Spells and Runes
// ///////////////////////////////////////////////

func TestPlanSpells(t *testing.T) {
	want := []image.Point{{128, 256}, {288, 256}}
	if got := PlanSpells(2); !reflect.DeepEqual(got, want) {
		t.Errorf("PlanSpells(2) = %v, want %v", got, want)
	}
}

func TestPlanRunes(t *testing.T) {
	l := PlanRunes(RuneCounts{Paths: 2, Primary: 4, Secondary: 2, Shards: 3})

	if want := []image.Point{{119, 448}, {279, 448}}; !reflect.DeepEqual(l.Paths, want) {
		t.Errorf("Paths = %v, want %v", l.Paths, want)
	}
	if !l.HasKeystone || l.Keystone != image.Pt(105, 565) {
		t.Errorf("Keystone = %v (%v), want (105,565)", l.Keystone, l.HasKeystone)
	}
	if want := []image.Point{{129, 693}, {129, 789}, {129, 885}}; !reflect.DeepEqual(l.Primary, want) {
		t.Errorf("Primary = %v, want %v", l.Primary, want)
	}
	if want := []image.Point{{289, 581}, {289, 677}}; !reflect.DeepEqual(l.Secondary, want) {
		t.Errorf("Secondary = %v, want %v", l.Secondary, want)
	}
	if want := []image.Point{{305, 789}, {305, 853}, {305, 917}}; !reflect.DeepEqual(l.Shards, want) {
		t.Errorf("Shards = %v, want %v", l.Shards, want)
	}
}

func TestPlanRunes_NoPrimary(t *testing.T) {
	l := PlanRunes(RuneCounts{Secondary: 1})
	if l.HasKeystone || len(l.Primary) != 0 {
		t.Errorf("layout = %+v, want no keystone or primary", l)
	}
}

// ///////////////////////////////////////////////
// Background
// ///////////////////////////////////////////////

func TestBackgroundFit(t *testing.T) {
	tests := []struct {
		name   string
		src    image.Point
		scaled image.Point
		top    int
	}{
		{"exact", image.Pt(1920, 1080), image.Pt(1920, 1080), 0},
		{"splash art", image.Pt(1215, 717), image.Pt(1920, 1133), 26},
		{"tall", image.Pt(960, 1080), image.Pt(1920, 2160), 540},
		{"short odd", image.Pt(1920, 1075), image.Pt(1920, 1075), -3},
		{"degenerate", image.Pt(0, 10), image.Point{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scaled, top := BackgroundFit(tt.src)
			if scaled != tt.scaled || top != tt.top {
				t.Errorf("BackgroundFit(%v) = %v, %d, want %v, %d", tt.src, scaled, top, tt.scaled, tt.top)
			}
		})
	}
}
