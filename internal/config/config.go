// Package config provides configuration loading and defaults for shopkeeper.
//
// Configuration is loaded from a TOML file. It covers logging, the HTTP
// client used to scrape the wikis, the font used for text, batch rendering
// options, and one [GameConfig] per supported game holding the wiki
// extraction patterns. The patterns are tied to the current markup of each
// wiki and are kept here so they can be updated without touching renderer
// code.
package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/joeylmaalouf/shopkeeper/internal/atomicfile"
	"github.com/joeylmaalouf/shopkeeper/internal/fonts"
	"github.com/joeylmaalouf/shopkeeper/internal/scrape"
)

// Game identifiers. Each selects a layout variant in the render package.
const (
	GameLoL  = "lol"
	GameDota = "dota"
)

// Background modes.
const (
	// BackgroundSkins looks the build's Skin up on the champion's skins page.
	BackgroundSkins = "skins"
	// BackgroundURL fetches the build's Background field directly.
	BackgroundURL = "url"
)

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
	// HTTP holds settings for the wiki client.
	HTTP HTTPConfig `toml:"http"`
	// Font holds text rendering settings.
	Font FontConfig `toml:"font"`
	// Render holds batch rendering settings.
	Render RenderConfig `toml:"render"`
	// Games holds the wiki sources keyed by game ID ("lol", "dota").
	Games map[string]GameConfig `toml:"games"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// File is an optional log file written in addition to stderr.
	File string `toml:"file,omitempty"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// HTTPConfig holds settings for page and image requests.
type HTTPConfig struct {
	// TimeoutSeconds bounds every request.
	TimeoutSeconds int `toml:"timeout_seconds"`
	// RetryMax is the number of retries after a failed request. Zero fails fast.
	RetryMax int `toml:"retry_max"`
	// UserAgent is sent with every request.
	UserAgent string `toml:"user_agent"`
}

// FontConfig holds text rendering settings.
type FontConfig struct {
	// File is a local TTF, OTF, or WOFF2 file. Takes precedence over Fallback.
	File string `toml:"file,omitempty"`
	// Fallback is a "google:Family:Weight" spec downloaded when File is empty
	// or unreadable. Empty disables the download and uses the built-in Go font.
	Fallback string `toml:"fallback"`
}

// RenderConfig holds batch rendering settings.
type RenderConfig struct {
	// DefaultGame is used when neither the -game flag nor the build's Game
	// field names one.
	DefaultGame string `toml:"default_game"`
	// Ignore is a list of doublestar patterns for build files skipped in glob batches.
	Ignore []string `toml:"ignore,omitempty"`
}

// GameConfig holds the wiki sources for one game.
type GameConfig struct {
	// WikiURL replaces {wiki} in source pages.
	WikiURL string `toml:"wiki_url"`
	// ImagePattern replaces {image} in source patterns.
	ImagePattern string `toml:"image_pattern"`
	// Background is "skins" or "url".
	Background string `toml:"background"`
	// ExtraIcons maps ability letters to icon URLs fetched alongside the
	// scraped ability icons.
	ExtraIcons map[string]string `toml:"extra_icons,omitempty"`
	// Enchantable lists base items whose names may carry a parenthesized
	// enchantment looked up on the item's own page.
	Enchantable []string `toml:"enchantable,omitempty"`

	Skins        SourceConfig `toml:"skins"`
	Abilities    SourceConfig `toml:"abilities"`
	Items        SourceConfig `toml:"items"`
	Enchantments SourceConfig `toml:"enchantments"`
	Spells       SourceConfig `toml:"spells"`
	RunePaths    SourceConfig `toml:"rune_paths"`
	Keystones    SourceConfig `toml:"keystones"`
	Runes        SourceConfig `toml:"runes"`
	Shards       SourceConfig `toml:"shards"`
}

// SourceConfig describes how to extract (key, image URL) pairs from one wiki page.
type SourceConfig struct {
	// Page is the page URL; {wiki} and {name} are substituted.
	Page string `toml:"page"`
	// Pattern is a regular expression with exactly two capture groups; {image}
	// is substituted with the game's image pattern.
	Pattern string `toml:"pattern"`
	// Reverse swaps the capture groups so the first is the URL.
	Reverse bool `toml:"reverse,omitempty"`
	// Rewrites are applied to every image URL, in order, before it is fetched.
	Rewrites []RewriteConfig `toml:"rewrites,omitempty"`
}

// RewriteConfig is a single regexp substitution on an image URL.
type RewriteConfig struct {
	Pattern string `toml:"pattern"`
	Replace string `toml:"replace"`
}

// Source converts the record into a [scrape.Source] template.
func (s SourceConfig) Source(name string) scrape.Source {
	src := scrape.Source{Name: name, Page: s.Page, Pattern: s.Pattern, Reverse: s.Reverse}
	for _, rw := range s.Rewrites {
		src.Rewrites = append(src.Rewrites, scrape.Rewrite{Pattern: rw.Pattern, Replace: rw.Replace})
	}
	return src
}

// IsZero reports whether the source has not been configured.
func (s SourceConfig) IsZero() bool {
	return s.Page == "" && s.Pattern == ""
}

// Sources returns the configured sources keyed by their TOML table name.
// Unconfigured sources are omitted.
func (g GameConfig) Sources() map[string]SourceConfig {
	out := make(map[string]SourceConfig)
	for name, s := range g.sourceFields() {
		if !s.IsZero() {
			out[name] = *s
		}
	}
	return out
}

func (g *GameConfig) sourceFields() map[string]*SourceConfig {
	return map[string]*SourceConfig{
		"skins":        &g.Skins,
		"abilities":    &g.Abilities,
		"items":        &g.Items,
		"enchantments": &g.Enchantments,
		"spells":       &g.Spells,
		"rune_paths":   &g.RunePaths,
		"keystones":    &g.Keystones,
		"runes":        &g.Runes,
		"shards":       &g.Shards,
	}
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// Default wiki locations. The image patterns match the CDN links embedded in
// each wiki's markup.
const (
	lolWiki   = "https://leagueoflegends.fandom.com/wiki"
	lolImages = `https://static\.wikia\.nocookie\.net/leagueoflegends/images/.+?\.(?:jpg|png)`

	dotaWiki   = "https://dota2.gamepedia.com"
	dotaImages = `https://static\.wikia\.nocookie\.net/dota2_gamepedia/images/[^\s]+?\.(?:jpg|png)`

	// TalentTreeURL is the Dota talent tree icon shown in the T ability row.
	TalentTreeURL = "https://www.dotabuff.com/assets/skills/talent-4de3b26139290418b6d5c15d06719860a08d04d57a5ebc6c0ef30fce86cc8efb.jpg"

	// DefaultUserAgent is browser-like; Fandom rejects some library agents.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36 shopkeeper"
)

// runeListPattern matches keystone and minor rune icons on the Rune page.
const runeListPattern = `title="([\w :;&#]+)".*?data-src="({image}/revision/latest/scale-to-width-down/52)`

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 30,
			RetryMax:       0,
			UserAgent:      DefaultUserAgent,
		},
		Font: FontConfig{
			Fallback: "google:Carrois Gothic SC:400",
		},
		Render: RenderConfig{
			DefaultGame: GameLoL,
		},
		Games: map[string]GameConfig{
			GameLoL:  defaultLoL(),
			GameDota: defaultDota(),
		},
	}
}

func defaultLoL() GameConfig {
	return GameConfig{
		WikiURL:      lolWiki,
		ImagePattern: lolImages,
		Background:   BackgroundSkins,
		Enchantable: []string{
			"Stalker's Blade", "Skirmisher's Sabre", "Pridestalker's Blade",
			"Tracker's Knife", "Ranger's Trailblazer", "Poacher's Knife",
		},
		Skins: SourceConfig{
			Page:    "{wiki}/{name}/Skins",
			Pattern: `data-skin="(.*?)"><a href="({image})`,
		},
		Abilities: SourceConfig{
			Page:    "{wiki}/{name}/LoL",
			Pattern: `(?s)<div class="skill skill_(\w)".*?data-source="primary_icon">\s*?<a href="({image})`,
		},
		Items: SourceConfig{
			Page:    "{wiki}/Item",
			Pattern: `(?s)<div class="item-icon".*?data-item="(.*?)".*?src="({image})`,
		},
		Enchantments: SourceConfig{
			Page:    "{wiki}/{name}",
			Pattern: `<img (?:style="" )?src="({image}).*?".*?alt="(?:[^"]*?\()?(.+?)(?:\)[^"]*?)?"`,
			Reverse: true,
		},
		Spells: SourceConfig{
			Page:    "{wiki}/Summoner_spell",
			Pattern: `(?s)<div class="grid-image label-after spell-icon" data-param="(\w+).*?data-src="({image})`,
		},
		RunePaths: SourceConfig{
			Page:    "{wiki}/Rune",
			Pattern: `<li><img alt="(\w+) icon.png".*?data-src="({image})`,
		},
		Keystones: SourceConfig{
			Page:     "{wiki}/Rune",
			Pattern:  runeListPattern,
			Rewrites: []RewriteConfig{{Pattern: `scale-to-width-down/52$`, Replace: "scale-to-width-down/112"}},
		},
		Runes: SourceConfig{
			Page:     "{wiki}/Rune",
			Pattern:  runeListPattern,
			Rewrites: []RewriteConfig{{Pattern: `scale-to-width-down/52$`, Replace: "scale-to-width-down/64"}},
		},
		Shards: SourceConfig{
			Page:     "{wiki}/Rune",
			Pattern:  `data-image-name="Rune shard ([\w ]+)\.png".*?data-src="({image}/revision/latest/scale-to-width-down/30)`,
			Rewrites: []RewriteConfig{{Pattern: `scale-to-width-down/30$`, Replace: "scale-to-width-down/32"}},
		},
	}
}

func defaultDota() GameConfig {
	return GameConfig{
		WikiURL:      dotaWiki,
		ImagePattern: dotaImages,
		Background:   BackgroundURL,
		ExtraIcons:   map[string]string{"T": TalentTreeURL},
		Abilities: SourceConfig{
			Page:    "{wiki}/{name}",
			Pattern: `(?s)title="Hotkey" style="cursor: help; border-bottom: 1px dotted;">(\w).*?src="({image})[^\s]*? decoding="async" width="128" height="128" /></a></div>`,
		},
		Items: SourceConfig{
			Page:    "{wiki}/Items",
			Pattern: `(?s)<div>.*?src="({image}).*?>([\w'\- ]+)</a>`,
			Reverse: true,
		},
	}
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and parses the configuration file at path. If the file doesn't
// exist, returns DefaultConfig.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of DefaultConfig and validates the result.
// A [games.<id>] table for a known game only overrides the keys it names.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", "key", key.String())
	}

	defaults := DefaultConfig().Games
	for id, g := range cfg.Games {
		def, ok := defaults[id]
		if !ok {
			continue
		}
		cfg.Games[id] = mergeGame(def, g, func(keys ...string) bool {
			return md.IsDefined(append([]string{"games", id}, keys...)...)
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// mergeGame takes each key of user that defined reports as set in the file
// and the default value for every other key.
func mergeGame(def, user GameConfig, defined func(keys ...string) bool) GameConfig {
	out := def
	if defined("wiki_url") {
		out.WikiURL = user.WikiURL
	}
	if defined("image_pattern") {
		out.ImagePattern = user.ImagePattern
	}
	if defined("background") {
		out.Background = user.Background
	}
	if defined("extra_icons") {
		out.ExtraIcons = user.ExtraIcons
	}
	if defined("enchantable") {
		out.Enchantable = user.Enchantable
	}

	outFields := out.sourceFields()
	userFields := user.sourceFields()
	for name, dst := range outFields {
		src := userFields[name]
		if defined(name, "page") {
			dst.Page = src.Page
		}
		if defined(name, "pattern") {
			dst.Pattern = src.Pattern
		}
		if defined(name, "reverse") {
			dst.Reverse = src.Reverse
		}
		if defined(name, "rewrites") {
			dst.Rewrites = src.Rewrites
		}
	}
	return out
}

// Save writes the config to disk as TOML using atomic file write.
func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return atomicfile.Write(path, buf.Bytes(), 0o644)
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all configuration values are within acceptable ranges
// and that every source pattern compiles with exactly two capture groups.
func (c *Config) Validate() error {
	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}

	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0, got %d", c.HTTP.TimeoutSeconds)
	}

	if c.HTTP.RetryMax < 0 {
		return fmt.Errorf("http.retry_max must be >= 0, got %d", c.HTTP.RetryMax)
	}

	if c.Font.Fallback != "" {
		if _, _, ok := fonts.ParseGoogleSpec(c.Font.Fallback); !ok {
			return fmt.Errorf("invalid font.fallback %q: expected google:FAMILY:WEIGHT", c.Font.Fallback)
		}
	}

	if _, ok := c.Games[c.Render.DefaultGame]; !ok {
		return fmt.Errorf("invalid render.default_game %q: no [games.%s] table", c.Render.DefaultGame, c.Render.DefaultGame)
	}

	for _, pattern := range c.Render.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid render.ignore pattern %q", pattern)
		}
	}

	for id, g := range c.Games {
		if err := g.validate(id); err != nil {
			return err
		}
	}
	return nil
}

func (g GameConfig) validate(id string) error {
	switch id {
	case GameLoL, GameDota:
	default:
		return fmt.Errorf("invalid game %q: must be lol or dota", id)
	}

	switch g.Background {
	case BackgroundSkins:
		if g.Skins.IsZero() {
			return fmt.Errorf("games.%s: background %q requires a skins source", id, g.Background)
		}
	case BackgroundURL:
	default:
		return fmt.Errorf("invalid games.%s.background %q: must be skins or url", id, g.Background)
	}

	if g.Abilities.IsZero() || g.Items.IsZero() {
		return fmt.Errorf("games.%s: abilities and items sources are required", id)
	}

	for name, s := range g.Sources() {
		src := s.Source(name).Expand(g.WikiURL, g.ImagePattern, "")
		if _, err := scrape.CompilePattern(src.Pattern); err != nil {
			return fmt.Errorf("games.%s.%s: %w", id, name, err)
		}
		for _, rw := range src.Rewrites {
			if _, err := scrape.CompileRewrite(rw); err != nil {
				return fmt.Errorf("games.%s.%s: %w", id, name, err)
			}
		}
	}
	return nil
}

// ///////////////////////////////////////////////
// Helpers
// ///////////////////////////////////////////////

// IsIgnored reports whether a build file matches any render.ignore pattern.
func (c *Config) IsIgnored(path string) bool {
	for _, pattern := range c.Render.Ignore {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(path))
		if err != nil {
			slog.Warn("invalid glob pattern", "pattern", pattern, "error", err)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// Game returns the configuration for a game ID.
func (c *Config) Game(id string) (GameConfig, error) {
	g, ok := c.Games[id]
	if !ok {
		return GameConfig{}, fmt.Errorf("unknown game %q", id)
	}
	return g, nil
}
