// Package build reads build description files.
//
// A build description is a JSON object with fixed, case-sensitive keys:
//
//	{
//	  "Game": "lol",
//	  "Champion": "Ahri", "Role": "Mid", "Skin": "Arcade Ahri",
//	  "Chroma": "", "Creator": "", "Patch": "14.3",
//	  "Background": "https://...",
//	  "Abilities": "QWEQQRQWQWRWWEEREE",
//	  "Items": [{"Label": "Start", "Options": ["Doran's Ring"]}],
//	  "Summoner Spells": ["Flash", "Ignite"],
//	  "Runes": {"Paths": [], "Primary": [], "Secondary": [], "Shards": []}
//	}
//
// Lookups are best-effort: optional text fields read as "" when absent, and
// only the accessors for data a renderer cannot do without return errors.
package build

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalid is returned when the file is not a JSON object.
	ErrInvalid = errors.New("invalid build description")
	// ErrMissingField is returned when a required field is absent or has the
	// wrong type.
	ErrMissingField = errors.New("missing field")
)

// Field keys.
const (
	KeyGame           = "Game"
	KeyChampion       = "Champion"
	KeyHero           = "Hero"
	KeyRole           = "Role"
	KeySkin           = "Skin"
	KeyChroma         = "Chroma"
	KeyCreator        = "Creator"
	KeyPatch          = "Patch"
	KeyBackground     = "Background"
	KeyAbilities      = "Abilities"
	KeyItems          = "Items"
	KeySummonerSpells = "Summoner Spells"
	KeyRunes          = "Runes"
)

// ItemSection is a labeled group of items.
type ItemSection struct {
	Label   string
	Options []string
}

// Runes is a rune page selection. Primary[0] is the keystone.
type Runes struct {
	Paths     []string
	Primary   []string
	Secondary []string
	Shards    []string
}

// Description is a loaded build description. It is read-only.
type Description struct {
	raw []byte
}

// Load reads and parses the build description at path.
func Load(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read build file: %w", err)
	}
	return Parse(data)
}

// Parse parses a build description. The data is copied.
func Parse(data []byte) (*Description, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalid)
	}
	if !gjson.ParseBytes(data).IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrInvalid)
	}
	raw := make([]byte, len(data))
	copy(raw, data)
	return &Description{raw: raw}, nil
}

func (d *Description) get(key string) gjson.Result {
	return gjson.GetBytes(d.raw, key)
}

// Field returns a text field, or "" when it is absent or null. Numbers and
// booleans are returned in their JSON form, so "Patch": 14.3 reads as "14.3".
func (d *Description) Field(key string) string {
	r := d.get(key)
	if r.IsObject() || r.IsArray() {
		return ""
	}
	return r.String()
}

// Game returns the Game field.
func (d *Description) Game() string { return d.Field(KeyGame) }

// Champion returns the character name, read from Champion or else Hero.
func (d *Description) Champion() string {
	if name := d.Field(KeyChampion); name != "" {
		return name
	}
	return d.Field(KeyHero)
}

// Require returns a text field that must be present and non-empty.
func (d *Description) Require(key string) (string, error) {
	v := d.Field(key)
	if v == "" {
		return "", fmt.Errorf("%w: %q", ErrMissingField, key)
	}
	return v, nil
}

// AbilityOrder returns the Abilities string: one letter per level, with a
// space for a level that puts no point anywhere.
func (d *Description) AbilityOrder() (string, error) {
	r := d.get(KeyAbilities)
	if r.Type != gjson.String {
		return "", fmt.Errorf("%w: %q must be a string", ErrMissingField, KeyAbilities)
	}
	return r.String(), nil
}

// ItemPlan returns the Items sections in declaration order.
func (d *Description) ItemPlan() ([]ItemSection, error) {
	r := d.get(KeyItems)
	if !r.IsArray() {
		return nil, fmt.Errorf("%w: %q must be an array", ErrMissingField, KeyItems)
	}
	var sections []ItemSection
	for _, sec := range r.Array() {
		sections = append(sections, ItemSection{
			Label:   sec.Get("Label").String(),
			Options: stringList(sec.Get("Options")),
		})
	}
	return sections, nil
}

// SummonerSpells returns the Summoner Spells names.
func (d *Description) SummonerSpells() ([]string, error) {
	r := d.get(KeySummonerSpells)
	if !r.IsArray() {
		return nil, fmt.Errorf("%w: %q must be an array", ErrMissingField, KeySummonerSpells)
	}
	return stringList(r), nil
}

// Runes returns the rune selection. A keystone is required.
func (d *Description) Runes() (Runes, error) {
	r := d.get(KeyRunes)
	if !r.IsObject() {
		return Runes{}, fmt.Errorf("%w: %q must be an object", ErrMissingField, KeyRunes)
	}
	runes := Runes{
		Paths:     stringList(r.Get("Paths")),
		Primary:   stringList(r.Get("Primary")),
		Secondary: stringList(r.Get("Secondary")),
		Shards:    stringList(r.Get("Shards")),
	}
	if len(runes.Primary) == 0 {
		return Runes{}, fmt.Errorf("%w: %q needs a keystone in Primary", ErrMissingField, KeyRunes)
	}
	return runes, nil
}

// stringList returns the elements of a JSON array as text. Anything else is nil.
func stringList(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	var out []string
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, v.String())
		return true
	})
	return out
}
