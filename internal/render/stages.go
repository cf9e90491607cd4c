package render

import (
	"context"
	"fmt"
	"image"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/joeylmaalouf/shopkeeper/internal/build"
	"github.com/joeylmaalouf/shopkeeper/internal/canvas"
	"github.com/joeylmaalouf/shopkeeper/internal/config"
	"github.com/joeylmaalouf/shopkeeper/internal/layout"
	"github.com/joeylmaalouf/shopkeeper/internal/scrape"
)

const (
	// backgroundAlpha keeps the background from drowning out the grids.
	backgroundAlpha = 55
	// pathAlphaThreshold clears the half-transparent halo of rune path icons.
	pathAlphaThreshold = 64
	// abilityIconSize is the size ability icons are scaled to.
	abilityIconSize = 64
)

// iconOffset is where an icon sits inside its cell outline.
var iconOffset = image.Pt(1, 1)

// ///////////////////////////////////////////////
// Background
// ///////////////////////////////////////////////

// Background draws the faded background image.
func (r *Renderer) Background(ctx context.Context, c *canvas.Canvas, d *build.Description) error {
	var img image.Image
	switch r.game.Background {
	case config.BackgroundURL:
		link := d.Field(build.KeyBackground)
		if link == "" {
			r.log.Debug("no background url")
			return nil
		}
		var err error
		if img, err = r.fetcher.Image(ctx, link); err != nil {
			return fmt.Errorf("background: %w", err)
		}
	default:
		skin, champion := d.Field(build.KeySkin), d.Champion()
		if skin == "" || champion == "" {
			r.log.Debug("no skin to draw", "champion", champion)
			return nil
		}
		skins, err := r.resolver.Resolve(ctx, r.source("skins", r.game.Skins, champion))
		if err != nil {
			return err
		}
		if img = skins.Get(skin); img == nil {
			r.miss("skins", skin, skins)
			return nil
		}
	}

	scaled, top := layout.BackgroundFit(img.Bounds().Size())
	if scaled == (image.Point{}) {
		return nil
	}
	bg := canvas.Resize(img, scaled.X, scaled.Y)
	at := image.Point{}
	if top >= 0 {
		bg = canvas.Crop(bg, image.Rect(0, top, layout.CanvasWidth, top+layout.CanvasHeight))
	} else {
		at.Y = -top
	}
	c.PasteMasked(canvas.WithAlpha(bg, backgroundAlpha), at)
	return nil
}

// ///////////////////////////////////////////////
// Metadata
// ///////////////////////////////////////////////

// Metadata draws the variant's text fields near the canvas corners.
func (r *Renderer) Metadata(_ context.Context, c *canvas.Canvas, d *build.Description) error {
	for _, f := range r.variant.Metadata {
		text := d.Field(f.Key)
		if f.Key == build.KeyChampion {
			text = d.Champion()
		}
		if text == "" {
			continue
		}
		size, err := c.MeasureText(text, f.Size)
		if err != nil {
			return err
		}
		at := layout.MetadataPosition(f.Corner, f.Offset, size, c.Bounds().Size())
		if err := c.DrawText(at, text, f.Size); err != nil {
			return err
		}
	}
	return nil
}

// ///////////////////////////////////////////////
// Summoner Spells
// ///////////////////////////////////////////////

// SummonerSpells draws the spell icons side by side with a border.
func (r *Renderer) SummonerSpells(ctx context.Context, c *canvas.Canvas, d *build.Description) error {
	spells, err := d.SummonerSpells()
	if err != nil {
		return err
	}
	icons, err := r.resolver.Resolve(ctx, r.source("spells", r.game.Spells, ""))
	if err != nil {
		return err
	}
	for i, at := range layout.PlanSpells(len(spells)) {
		icon := icons.Get(spells[i])
		if icon == nil {
			r.miss("spells", spells[i], icons)
			continue
		}
		c.Paste(canvas.Expand(icon, 1, canvas.DrawColor), at)
	}
	return nil
}

// ///////////////////////////////////////////////
// Runes
// ///////////////////////////////////////////////

// Runes draws the rune paths, keystone, primary and secondary runes, and
// shards. Sources that share a page fetch it once.
func (r *Renderer) Runes(ctx context.Context, c *canvas.Canvas, d *build.Description) error {
	runes, err := d.Runes()
	if err != nil {
		return err
	}

	pages := make(map[string]string)
	resolve := func(id string, sc config.SourceConfig) (scrape.AssetMap, error) {
		src := r.source(id, sc, "")
		markup, ok := pages[src.Page]
		if !ok {
			page, err := r.fetcher.Page(ctx, src.Page)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", id, err)
			}
			markup = page
			pages[src.Page] = page
		}
		return r.resolver.ResolveMarkup(ctx, markup, src)
	}

	paths, err := resolve("rune_paths", r.game.RunePaths)
	if err != nil {
		return err
	}
	keystones, err := resolve("keystones", r.game.Keystones)
	if err != nil {
		return err
	}
	minor, err := resolve("runes", r.game.Runes)
	if err != nil {
		return err
	}
	shards, err := resolve("shards", r.game.Shards)
	if err != nil {
		return err
	}

	l := layout.PlanRunes(layout.RuneCounts{
		Paths:     len(runes.Paths),
		Primary:   len(runes.Primary),
		Secondary: len(runes.Secondary),
		Shards:    len(runes.Shards),
	})

	for i, at := range l.Paths {
		if icon := r.icon("rune_paths", runes.Paths[i], paths); icon != nil {
			c.PasteMasked(canvas.ClearBelow(icon, pathAlphaThreshold), at)
		}
	}
	if l.HasKeystone {
		if icon := r.icon("keystones", runes.Primary[0], keystones); icon != nil {
			c.PasteMasked(icon, l.Keystone)
		}
	}
	r.pasteAll(c, "runes", runes.Primary[1:], l.Primary, minor)
	r.pasteAll(c, "runes", runes.Secondary, l.Secondary, minor)
	r.pasteAll(c, "shards", runes.Shards, l.Shards, shards)
	return nil
}

// pasteAll pastes the icon of names[i] at slots[i] through its alpha.
func (r *Renderer) pasteAll(c *canvas.Canvas, source string, names []string, slots []image.Point, icons scrape.AssetMap) {
	for i, at := range slots {
		if icon := r.icon(source, names[i], icons); icon != nil {
			c.PasteMasked(icon, at)
		}
	}
}

// icon looks up name and logs a miss.
func (r *Renderer) icon(source, name string, icons scrape.AssetMap) image.Image {
	icon := icons.Get(name)
	if icon == nil {
		r.miss(source, name, icons)
	}
	return icon
}

// ///////////////////////////////////////////////
// Abilities
// ///////////////////////////////////////////////

// Abilities draws the level-by-level ability grid with the ability icons in
// the leftmost column.
func (r *Renderer) Abilities(ctx context.Context, c *canvas.Canvas, d *build.Description) error {
	order, err := d.AbilityOrder()
	if err != nil {
		return err
	}
	icons, err := r.resolver.Resolve(ctx, r.source("abilities", r.game.Abilities, d.Champion()))
	if err != nil {
		return err
	}

	letters := make([]string, 0, len(r.game.ExtraIcons))
	for letter := range r.game.ExtraIcons {
		letters = append(letters, letter)
	}
	sort.Strings(letters)
	for _, letter := range letters {
		img, err := r.fetcher.Image(ctx, r.game.ExtraIcons[letter])
		if err != nil {
			return fmt.Errorf("extra icon %q: %w", letter, err)
		}
		icons[letter] = img
	}

	grid := layout.PlanAbilityGrid(r.variant.abilityGrid(), order)
	for _, col := range grid.Columns {
		if !col.Icons {
			c.StrokeRect(col.Header, canvas.DrawColor)
			if err := c.CenterText(col.Header, strconv.Itoa(col.Level), layout.StampSize); err != nil {
				return err
			}
		}
		for _, row := range col.Rows {
			c.StrokeRect(row.Rect, canvas.DrawColor)
			switch {
			case col.Icons:
				icon := abilityIcon(icons, row.Letter)
				if icon == nil {
					r.miss("abilities", row.Letter, icons)
					continue
				}
				c.Paste(canvas.Resize(icon, abilityIconSize, abilityIconSize), row.Rect.Min.Add(iconOffset))
			case col.Highlight == row.Letter:
				if err := c.CenterText(row.Rect, row.Letter, layout.StampSize); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// abilityIcon looks up a row letter as written, then lower-cased; some wikis
// key abilities by their lower-case skill slot.
func abilityIcon(icons scrape.AssetMap, letter string) image.Image {
	if icon := icons.Get(letter); icon != nil {
		return icon
	}
	return icons.Get(strings.ToLower(letter))
}

// ///////////////////////////////////////////////
// Items
// ///////////////////////////////////////////////

// Items draws the labeled item sections below the ability grid.
func (r *Renderer) Items(ctx context.Context, c *canvas.Canvas, d *build.Description) error {
	sections, err := d.ItemPlan()
	if err != nil {
		return err
	}
	// The grid starts below the ability grid, so it needs the ability order.
	order, err := d.AbilityOrder()
	if err != nil {
		return err
	}
	items, err := r.resolver.Resolve(ctx, r.source("items", r.game.Items, ""))
	if err != nil {
		return err
	}

	top := layout.PlanAbilityGrid(r.variant.abilityGrid(), order).Bottom + r.variant.ItemGap
	grid := layout.PlanItemGrid(r.variant.itemGrid(), top, sections)

	for _, label := range grid.Labels {
		if err := c.CenterText(label.Rect, label.Text, layout.LabelSize); err != nil {
			return err
		}
	}

	lookup := r.itemLookup(items)
	for _, cell := range grid.Cells {
		c.FillRect(cell.Rect, canvas.BackColor, canvas.DrawColor)
		icon, err := lookup(ctx, cell.Name)
		if err != nil {
			return err
		}
		if icon == nil {
			r.miss("items", cell.Name, items)
			continue
		}
		c.PasteAuto(icon, cell.Rect.Min.Add(iconOffset))
	}
	return nil
}

type itemLookupFunc func(ctx context.Context, name string) (image.Image, error)

// itemLookup returns the item icon resolver of one Items call. Names of the
// form "<enchantable> (<enchantment>)" are looked up on the base item's own
// page, falling back to the base item icon. Enchantment pages are fetched at
// most once per base item.
func (r *Renderer) itemLookup(items scrape.AssetMap) itemLookupFunc {
	type enchantable struct {
		base string
		re   *regexp.Regexp
	}
	var bases []enchantable
	for _, base := range r.game.Enchantable {
		bases = append(bases, enchantable{base, regexp.MustCompile(`^` + regexp.QuoteMeta(base) + ` \((.*)\)$`)})
	}
	enchantments := make(map[string]scrape.AssetMap)

	return func(ctx context.Context, name string) (image.Image, error) {
		for _, e := range bases {
			m := e.re.FindStringSubmatch(name)
			if m == nil {
				continue
			}
			if r.game.Enchantments.IsZero() {
				return items.Get(e.base), nil
			}
			found, ok := enchantments[e.base]
			if !ok {
				var err error
				found, err = r.resolver.Resolve(ctx, r.source("enchantments", r.game.Enchantments, e.base))
				if err != nil {
					return nil, err
				}
				enchantments[e.base] = found
			}
			if icon := found.Get(m[1]); icon != nil {
				return icon, nil
			}
			r.log.Debug("unknown enchantment, using base item", "item", e.base, "enchantment", m[1])
			return items.Get(e.base), nil
		}
		return items.Get(name), nil
	}
}
