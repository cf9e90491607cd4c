// Tests for the config package covering [Load] behavior (defaults, overrides,
// missing files, malformed input), per-game merging of partial tables,
// validation ([Config.Validate]), ignore globs ([Config.IsIgnored]), and
// serialization round-trips ([Config.Save]).

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/joeylmaalouf/shopkeeper/internal/scrape"
)

// ///////////////////////////////////////////////
// Load
// ///////////////////////////////////////////////

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		noFile  bool
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:   "missing file returns defaults",
			noFile: true,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if !reflect.DeepEqual(cfg, DefaultConfig()) {
					t.Error("expected DefaultConfig for a missing file")
				}
			},
		},
		{
			name:   "empty file returns defaults",
			config: "",
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if !reflect.DeepEqual(cfg, DefaultConfig()) {
					t.Error("expected DefaultConfig for an empty file")
				}
			},
		},
		{
			name:    "malformed TOML returns error",
			config:  "[log\nlevel = ",
			wantErr: true,
		},
		{
			name: "user overrides applied",
			config: `
[http]
retry_max = 2
timeout_seconds = 5

[render]
default_game = "dota"
`,
			check: func(t *testing.T, cfg *Config) {
				t.Helper()
				if cfg.HTTP.RetryMax != 2 {
					t.Errorf("RetryMax = %d, want 2", cfg.HTTP.RetryMax)
				}
				if cfg.HTTP.TimeoutSeconds != 5 {
					t.Errorf("TimeoutSeconds = %d, want 5", cfg.HTTP.TimeoutSeconds)
				}
				if cfg.HTTP.UserAgent != DefaultUserAgent {
					t.Errorf("UserAgent = %q, want default", cfg.HTTP.UserAgent)
				}
				if cfg.Render.DefaultGame != GameDota {
					t.Errorf("DefaultGame = %q, want %q", cfg.Render.DefaultGame, GameDota)
				}
			},
		},
		{
			name:    "invalid value fails validation",
			config:  "[log]\nlevel = \"loud\"\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if !tt.noFile {
				if err := os.WriteFile(path, []byte(tt.config), 0o644); err != nil {
					t.Fatalf("WriteFile: %v", err)
				}
			}

			cfg, err := Load(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Game Merging
// ///////////////////////////////////////////////

func TestParse_PartialGameTable(t *testing.T) {
	cfg, err := Parse([]byte(`
[games.lol]
wiki_url = "http://127.0.0.1:9999/wiki"

[games.lol.items]
pattern = 'data-item="(.*?)".*?src="({image})'
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	def := DefaultConfig().Games[GameLoL]
	got := cfg.Games[GameLoL]

	if got.WikiURL != "http://127.0.0.1:9999/wiki" {
		t.Errorf("WikiURL = %q, want override", got.WikiURL)
	}
	if got.ImagePattern != def.ImagePattern {
		t.Errorf("ImagePattern = %q, want default", got.ImagePattern)
	}
	if got.Items.Pattern != `data-item="(.*?)".*?src="({image})` {
		t.Errorf("Items.Pattern = %q, want override", got.Items.Pattern)
	}
	if got.Items.Page != def.Items.Page {
		t.Errorf("Items.Page = %q, want default %q", got.Items.Page, def.Items.Page)
	}
	if !reflect.DeepEqual(got.Keystones, def.Keystones) {
		t.Errorf("Keystones = %+v, want default", got.Keystones)
	}
	if !reflect.DeepEqual(got.Enchantable, def.Enchantable) {
		t.Errorf("Enchantable = %v, want default", got.Enchantable)
	}
	if !reflect.DeepEqual(cfg.Games[GameDota], DefaultConfig().Games[GameDota]) {
		t.Error("untouched game should keep its defaults")
	}
}

func TestParse_ReplacesListsWholesale(t *testing.T) {
	cfg, err := Parse([]byte(`
[games.lol]
enchantable = ["Stalker's Blade"]

[games.lol.runes]
rewrites = []
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := cfg.Games[GameLoL]
	if !reflect.DeepEqual(got.Enchantable, []string{"Stalker's Blade"}) {
		t.Errorf("Enchantable = %v", got.Enchantable)
	}
	if len(got.Runes.Rewrites) != 0 {
		t.Errorf("Runes.Rewrites = %v, want empty", got.Runes.Rewrites)
	}
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

func TestValidate_Defaults(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
		wantIs  error
	}{
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: "log.level",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.HTTP.TimeoutSeconds = 0 },
			wantErr: "timeout_seconds",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.HTTP.RetryMax = -1 },
			wantErr: "retry_max",
		},
		{
			name:    "bad font fallback",
			mutate:  func(c *Config) { c.Font.Fallback = "Inter" },
			wantErr: "font.fallback",
		},
		{
			name:    "unknown default game",
			mutate:  func(c *Config) { c.Render.DefaultGame = "wow" },
			wantErr: "default_game",
		},
		{
			name:    "bad ignore glob",
			mutate:  func(c *Config) { c.Render.Ignore = []string{"[unclosed"} },
			wantErr: "render.ignore",
		},
		{
			name: "unknown game table",
			mutate: func(c *Config) {
				c.Games["wow"] = c.Games[GameDota]
			},
			wantErr: `invalid game "wow"`,
		},
		{
			name: "bad background mode",
			mutate: func(c *Config) {
				g := c.Games[GameDota]
				g.Background = "tiles"
				c.Games[GameDota] = g
			},
			wantErr: "background",
		},
		{
			name: "skins background without skins source",
			mutate: func(c *Config) {
				g := c.Games[GameDota]
				g.Background = BackgroundSkins
				c.Games[GameDota] = g
			},
			wantErr: "requires a skins source",
		},
		{
			name: "pattern with one group",
			mutate: func(c *Config) {
				g := c.Games[GameLoL]
				g.Items.Pattern = `data-item="(.*?)"`
				c.Games[GameLoL] = g
			},
			wantIs: scrape.ErrBadPattern,
		},
		{
			name: "pattern that does not compile",
			mutate: func(c *Config) {
				g := c.Games[GameLoL]
				g.Spells.Pattern = `(unclosed`
				c.Games[GameLoL] = g
			},
			wantIs: scrape.ErrBadPattern,
		},
		{
			name: "bad image pattern breaks expanded sources",
			mutate: func(c *Config) {
				g := c.Games[GameDota]
				g.ImagePattern = `(https://.+)`
				c.Games[GameDota] = g
			},
			wantIs: scrape.ErrBadPattern,
		},
		{
			name: "missing items source",
			mutate: func(c *Config) {
				g := c.Games[GameDota]
				g.Items = SourceConfig{}
				c.Games[GameDota] = g
			},
			wantErr: "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("error = %v, want errors.Is %v", err, tt.wantIs)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Helpers
// ///////////////////////////////////////////////

func TestConfig_IsIgnored(t *testing.T) {
	tests := []struct {
		name   string
		ignore []string
		path   string
		want   bool
	}{
		{"exact match", []string{"builds/ahri.json"}, "builds/ahri.json", true},
		{"glob pattern match", []string{"**/drafts/**"}, "builds/drafts/lee.json", true},
		{"no match", []string{"**/drafts/**"}, "builds/lee.json", false},
		{"empty list", nil, "builds/lee.json", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Render.Ignore = tt.ignore
			if got := cfg.IsIgnored(tt.path); got != tt.want {
				t.Errorf("IsIgnored(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestConfig_Game(t *testing.T) {
	cfg := DefaultConfig()
	g, err := cfg.Game(GameDota)
	if err != nil {
		t.Fatalf("Game(dota): %v", err)
	}
	if g.ExtraIcons["T"] != TalentTreeURL {
		t.Errorf("dota T icon = %q, want talent tree URL", g.ExtraIcons["T"])
	}
	if _, err := cfg.Game("wow"); err == nil {
		t.Error("expected error for unknown game")
	}
}

func TestGameConfig_Sources(t *testing.T) {
	lol := DefaultConfig().Games[GameLoL].Sources()
	if len(lol) != 9 {
		t.Errorf("lol sources = %d, want 9", len(lol))
	}
	dota := DefaultConfig().Games[GameDota].Sources()
	if len(dota) != 2 {
		t.Errorf("dota sources = %d, want 2", len(dota))
	}
	if _, ok := dota["skins"]; ok {
		t.Error("dota should not have a skins source")
	}
}

// ///////////////////////////////////////////////
// Save
// ///////////////////////////////////////////////

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	want := DefaultConfig()
	want.HTTP.RetryMax = 3
	want.Render.Ignore = []string{"**/wip/**"}

	if err := want.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}
