// Package scrape resolves human-readable names to images scraped from wiki
// pages.
//
// A [Source] is a declarative record: a page URL template and a regular
// expression with exactly two capture groups, one for the name key and one for
// the image URL. Wiki markup has no stable API, so every pattern is coupled to
// the page layout at the time it was written and will stop matching when the
// wiki changes its markup.
package scrape

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrBadPattern is returned when a source pattern does not compile or does not
// have exactly two capture groups.
var ErrBadPattern = errors.New("bad extraction pattern")

// Placeholders substituted by [Source.Expand].
const (
	PlaceholderWiki  = "{wiki}"
	PlaceholderName  = "{name}"
	PlaceholderImage = "{image}"
)

// Rewrite is a regexp substitution applied to every image URL before it is
// fetched. Replace uses the regexp package's $1 expansion syntax.
type Rewrite struct {
	Pattern string
	Replace string
}

// Source describes how to build an [AssetMap] from one page.
type Source struct {
	// Name identifies the source in logs and errors (e.g. "items").
	Name string
	// Page is the page URL, possibly still holding {wiki} and {name}.
	Page string
	// Pattern is the extraction regexp, possibly still holding {image}.
	Pattern string
	// Reverse swaps the capture groups: the first is the URL, the second the key.
	Reverse bool
	// Rewrites run in order on every image URL.
	Rewrites []Rewrite
}

// Expand returns a copy of s with the placeholders filled in. name is
// escaped with [WikiName].
func (s Source) Expand(wiki, image, name string) Source {
	out := s
	out.Page = strings.NewReplacer(PlaceholderWiki, wiki, PlaceholderName, WikiName(name)).Replace(s.Page)
	out.Pattern = strings.ReplaceAll(s.Pattern, PlaceholderImage, image)
	return out
}

// WikiName converts a display name into a wiki page path segment: spaces
// become underscores and everything else is path-escaped.
//
//	WikiName("Stalker's Blade") == "Stalker%27s_Blade"
func WikiName(name string) string {
	return url.PathEscape(strings.ReplaceAll(name, " ", "_"))
}

// CompilePattern compiles an expanded extraction pattern and checks that it
// has exactly two capture groups.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPattern, err)
	}
	if n := re.NumSubexp(); n != 2 {
		return nil, fmt.Errorf("%w: %d capture groups, want 2", ErrBadPattern, n)
	}
	return re, nil
}

// CompileRewrite compiles the pattern of a URL rewrite.
func CompileRewrite(rw Rewrite) (*regexp.Regexp, error) {
	re, err := regexp.Compile(rw.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: rewrite %q: %v", ErrBadPattern, rw.Pattern, err)
	}
	return re, nil
}
