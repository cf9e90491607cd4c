package layout

import "image"

// Summoner spell row.
const (
	SpellLeft = 128
	SpellTop  = 256
	SpellStep = 160
)

// PlanSpells returns the top-left point of each of n bordered spell icons.
func PlanSpells(n int) []image.Point {
	pts := make([]image.Point, n)
	for i := range pts {
		pts[i] = image.Pt(SpellLeft+SpellStep*i, SpellTop)
	}
	return pts
}

// Rune icon sizes. The path icon is 85 pixels wide on the wiki.
const (
	PathIconSize     = 85
	KeystoneIconSize = 112
	RuneIconSize     = 64
	ShardIconSize    = 32

	// RuneCenterLine is the x both rune columns are centered on, before the
	// second column's shift.
	RuneCenterLine = SpellLeft + 1 + RuneIconSize/2
	// RuneColumnShift moves the secondary column right.
	RuneColumnShift = 160

	pathTop     = 448
	runeGap     = 32
	keystoneTop = pathTop + PathIconSize + runeGap
	primaryTop  = keystoneTop + KeystoneIconSize + runeGap/2
	// The secondary column is aligned so its first rune sits one rune slot
	// above the bottom of the keystone.
	secondaryTop = keystoneTop + KeystoneIconSize - RuneIconSize - runeGap
	runeStep     = RuneIconSize + runeGap
	shardStep    = ShardIconSize + runeGap
	shardGap     = 16
)

// RuneCounts holds how many entries each rune list has.
type RuneCounts struct {
	Paths     int
	Primary   int
	Secondary int
	Shards    int
}

// RuneLayout holds the top-left point of every rune icon.
type RuneLayout struct {
	Paths []image.Point
	// Keystone is the slot of Primary[0]. HasKeystone is false when the
	// primary list is empty.
	Keystone    image.Point
	HasKeystone bool
	// Primary holds the slots of Primary[1:].
	Primary   []image.Point
	Secondary []image.Point
	Shards    []image.Point
}

// PlanRunes lays out the rune page: paths side by side at the top, then the
// keystone and primary runes in the left column and the secondary runes and
// shards in the right column. Every entry gets a slot whether or not its icon
// is found.
func PlanRunes(c RuneCounts) RuneLayout {
	var l RuneLayout

	x := RuneCenterLine - PathIconSize/2
	for i := 0; i < c.Paths; i++ {
		l.Paths = append(l.Paths, image.Pt(x+RuneColumnShift*i, pathTop))
	}

	if c.Primary > 0 {
		l.HasKeystone = true
		l.Keystone = image.Pt(RuneCenterLine-KeystoneIconSize/2, keystoneTop)
	}

	x = RuneCenterLine - RuneIconSize/2
	for i := 1; i < c.Primary; i++ {
		l.Primary = append(l.Primary, image.Pt(x, primaryTop+runeStep*(i-1)))
	}

	x += RuneColumnShift
	y := secondaryTop
	for i := 0; i < c.Secondary; i++ {
		l.Secondary = append(l.Secondary, image.Pt(x, y))
		y += runeStep
	}

	x = RuneCenterLine - ShardIconSize/2 + RuneColumnShift
	y += shardGap
	for i := 0; i < c.Shards; i++ {
		l.Shards = append(l.Shards, image.Pt(x, y))
		y += shardStep
	}
	return l
}
