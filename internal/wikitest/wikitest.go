// Package wikitest provides a fake game wiki for tests: an httptest server
// with canned pages and generated solid-color icons, plus game configs and
// build files that point at it.
package wikitest

import (
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/joeylmaalouf/shopkeeper/internal/config"
)

// ImagePlaceholder in page markup is replaced with the server's icon prefix.
const ImagePlaceholder = "{img}"

// iconPathRe matches icon paths: /img/<name>-<size>.png.
var iconPathRe = regexp.MustCompile(`^/img/([a-z0-9-]+)-(\d+)\.png$`)

// Server is a fake wiki.
type Server struct {
	*httptest.Server

	mu    sync.Mutex
	pages map[string]string
	hits  map[string]int
}

// New starts an empty wiki that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{pages: make(map[string]string), hits: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// SetPage serves markup at path.
func (s *Server) SetPage(path, markup string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[path] = strings.ReplaceAll(markup, ImagePlaceholder, s.URL+"/img")
}

// Hits returns how many requests path has received.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// Icon returns the URL of a size by size icon filled with Color(name).
func (s *Server) Icon(name string, size int) string {
	return fmt.Sprintf("%s/img/%s-%d.png", s.URL, name, size)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	page, ok := s.pages[r.URL.Path]
	s.mu.Unlock()

	if ok {
		fmt.Fprint(w, page)
		return
	}
	m := iconPathRe.FindStringSubmatch(r.URL.Path)
	if m == nil {
		http.NotFound(w, r)
		return
	}
	if m[1] == "broken" {
		fmt.Fprint(w, "not an image")
		return
	}
	size, _ := strconv.Atoi(m[2])
	w.Header().Set("Content-Type", "image/png")
	png.Encode(w, Solid(size, Color(m[1])))
}

// ///////////////////////////////////////////////
// Icons
// ///////////////////////////////////////////////

// Color returns the fill color of the named icon. Every channel is at least
// 128 so icons stand out from the black canvas.
func Color(name string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(name))
	v := h.Sum32()
	return color.NRGBA{
		R: 128 | uint8(v),
		G: 128 | uint8(v>>8),
		B: 128 | uint8(v>>16),
		A: 255,
	}
}

// Solid returns a size by size image filled with c.
func Solid(size int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// ///////////////////////////////////////////////
// Games
// ///////////////////////////////////////////////

func (s *Server) imagePattern() string {
	return regexp.QuoteMeta(s.URL) + `/img/[a-z0-9-]+\.png`
}

// LoL returns a League game config whose sources read the pages of SeedLoL.
func (s *Server) LoL() config.GameConfig {
	return config.GameConfig{
		WikiURL:      s.URL,
		ImagePattern: s.imagePattern(),
		Background:   config.BackgroundSkins,
		Enchantable:  []string{"Stalker's Blade"},
		Skins:        config.SourceConfig{Page: "{wiki}/{name}/Skins", Pattern: `data-skin="(.*?)" src="({image})"`},
		Abilities:    config.SourceConfig{Page: "{wiki}/{name}/LoL", Pattern: `skill_(\w) src="({image})"`},
		Items:        config.SourceConfig{Page: "{wiki}/Item", Pattern: `data-item="(.*?)" src="({image})"`},
		Enchantments: config.SourceConfig{
			Page:    "{wiki}/{name}",
			Pattern: `src="({image})" alt="[^"(]*\((.+?)\)"`,
			Reverse: true,
		},
		Spells:    config.SourceConfig{Page: "{wiki}/Summoner_spell", Pattern: `data-param="(\w+)" src="({image})"`},
		RunePaths: config.SourceConfig{Page: "{wiki}/Rune", Pattern: `path="(\w+)" src="({image})"`},
		Keystones: config.SourceConfig{
			Page:     "{wiki}/Rune",
			Pattern:  `rune="(.*?)" src="({image})"`,
			Rewrites: []config.RewriteConfig{{Pattern: `-52\.png$`, Replace: "-112.png"}},
		},
		Runes: config.SourceConfig{
			Page:     "{wiki}/Rune",
			Pattern:  `rune="(.*?)" src="({image})"`,
			Rewrites: []config.RewriteConfig{{Pattern: `-52\.png$`, Replace: "-64.png"}},
		},
		Shards: config.SourceConfig{
			Page:     "{wiki}/Rune",
			Pattern:  `shard="(.*?)" src="({image})"`,
			Rewrites: []config.RewriteConfig{{Pattern: `-30\.png$`, Replace: "-32.png"}},
		},
	}
}

// Dota returns a Dota game config whose sources read the pages of SeedDota.
func (s *Server) Dota() config.GameConfig {
	return config.GameConfig{
		WikiURL:      s.URL,
		ImagePattern: s.imagePattern(),
		Background:   config.BackgroundURL,
		ExtraIcons:   map[string]string{"T": s.Icon("talent", 64)},
		Abilities:    config.SourceConfig{Page: "{wiki}/{name}", Pattern: `hotkey="(\w)" src="({image})"`},
		Items: config.SourceConfig{
			Page:    "{wiki}/Items",
			Pattern: `src="({image})">([\w'\- ]+)</a>`,
			Reverse: true,
		},
	}
}

// ///////////////////////////////////////////////
// Fixtures
// ///////////////////////////////////////////////

// LoLBuild is a League build description matching SeedLoL.
const LoLBuild = `{
	"Game": "lol",
	"Champion": "Ahri",
	"Role": "Mid",
	"Skin": "Arcade Ahri",
	"Patch": "14.3",
	"Abilities": "QWEQQRQWQWRWWEEREE",
	"Items": [
		{"Label": "Start", "Options": ["Doran's Ring", "Health Potion"]},
		{"Label": "Jungle", "Options": ["Stalker's Blade (Warrior)", "Stalker's Blade (Cinderhulk)", "Stalker's Blade (Bloodrazor)"]},
		{"Label": "Core", "Options": ["Luden's Companion", "Sorcerer's Shoes", "Shadowflame", "Rabadon's Deathcap", "Void Staff"]}
	],
	"Summoner Spells": ["Flash", "Ignite"],
	"Runes": {
		"Paths": ["Domination", "Sorcery"],
		"Primary": ["Electrocute", "Taste of Blood", "Eyeball Collection", "Ultimate Hunter"],
		"Secondary": ["Manaflow Band", "Transcendence"],
		"Shards": ["Adaptive Force", "Adaptive Force", "Health Scaling"]
	}
}`

// dotaBuild is the Dota build description format; the only verb is the
// background URL.
const dotaBuild = `{
	"Game": "dota",
	"Champion": "Anti-Mage",
	"Role": "Carry",
	"Skin": "Default",
	"Background": %q,
	"Abilities": "QWQEQRQEEETWWWRT",
	"Items": [
		{"Label": "Start", "Options": ["Tango", "Quelling Blade"]},
		{"Label": "Core", "Options": ["Battle Fury", "Manta Style"]}
	]
}`

// DotaBuild returns a Dota build description whose background is served by s.
func (s *Server) DotaBuild() string {
	return fmt.Sprintf(dotaBuild, s.Icon("antimage-bg", 1080))
}

// SeedLoL serves the League pages LoLBuild needs. "Void Staff" is left out of
// the item list so it renders as an empty cell, and Cinderhulk is not on the
// Stalker's Blade page so it falls back to the base item.
func (s *Server) SeedLoL() {
	s.SetPage("/Ahri/Skins", `
		<div data-skin="Classic" src="{img}/ahri-classic-1080.png"></div>
		<div data-skin="Arcade Ahri" src="{img}/arcade-ahri-1080.png"></div>
		<div data-skin="Arcade Ahri" src="{img}/duplicate-1080.png"></div>`)
	s.SetPage("/Ahri/LoL", `
		<div class="skill skill_q src="{img}/ahri-q-120.png"></div>
		<div class="skill skill_w src="{img}/ahri-w-120.png"></div>
		<div class="skill skill_e src="{img}/ahri-e-120.png"></div>
		<div class="skill skill_r src="{img}/ahri-r-120.png"></div>`)
	s.SetPage("/Item", `
		<div data-item="Doran&#39;s Ring" src="{img}/dorans-ring-64.png"></div>
		<div data-item="Health Potion" src="{img}/health-potion-64.png"></div>
		<div data-item="Stalker&#39;s Blade" src="{img}/stalkers-blade-64.png"></div>
		<div data-item="Luden&#39;s Companion" src="{img}/ludens-64.png"></div>
		<div data-item="Sorcerer&#39;s Shoes" src="{img}/sorcs-64.png"></div>
		<div data-item="Shadowflame" src="{img}/shadowflame-64.png"></div>
		<div data-item="Rabadon&#39;s Deathcap" src="{img}/deathcap-64.png"></div>`)
	s.SetPage("/Stalker's_Blade", `
		<img src="{img}/warrior-64.png" alt="Stalker's Blade (Warrior)">
		<img src="{img}/bloodrazor-64.png" alt="Stalker's Blade (Bloodrazor)">`)
	s.SetPage("/Summoner_spell", `
		<div data-param="Flash" src="{img}/flash-64.png"></div>
		<div data-param="Ignite" src="{img}/ignite-64.png"></div>`)
	s.SetPage("/Rune", `
		<li><img path="Domination" src="{img}/domination-85.png"></li>
		<li><img path="Sorcery" src="{img}/sorcery-85.png"></li>
		<span rune="Electrocute" src="{img}/electrocute-52.png"></span>
		<span rune="Taste of Blood" src="{img}/taste-of-blood-52.png"></span>
		<span rune="Eyeball Collection" src="{img}/eyeball-collection-52.png"></span>
		<span rune="Ultimate Hunter" src="{img}/ultimate-hunter-52.png"></span>
		<span rune="Manaflow Band" src="{img}/manaflow-band-52.png"></span>
		<span rune="Transcendence" src="{img}/transcendence-52.png"></span>
		<span shard="Adaptive Force" src="{img}/adaptive-force-30.png"></span>
		<span shard="Health Scaling" src="{img}/health-scaling-30.png"></span>`)
}

// SeedDota serves the Dota pages DotaBuild needs.
func (s *Server) SeedDota() {
	s.SetPage("/Anti-Mage", `
		<span hotkey="Q" src="{img}/mana-break-128.png"></span>
		<span hotkey="W" src="{img}/blink-128.png"></span>
		<span hotkey="E" src="{img}/counterspell-128.png"></span>
		<span hotkey="R" src="{img}/mana-void-128.png"></span>`)
	s.SetPage("/Items", `
		<div><img src="{img}/tango-64.png">Tango</a></div>
		<div><img src="{img}/quelling-blade-64.png">Quelling Blade</a></div>
		<div><img src="{img}/battle-fury-64.png">Battle Fury</a></div>
		<div><img src="{img}/manta-style-64.png">Manta Style</a></div>`)
}
