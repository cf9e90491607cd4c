// Package fonts resolves the typeface a card is drawn with.
//
// Resolution order: a local font file, then a Google Fonts download named by a
// "google:FAMILY:WEIGHT" spec, then the embedded Go Regular font. Each failed
// step is logged and the next one is tried, so a card can always be drawn.
package fonts

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/tdewolff/font"

	"github.com/joeylmaalouf/shopkeeper/internal/canvas"
)

// GoogleCSSURL is the Google Fonts CSS API endpoint. The family is query
// escaped and the weight is passed through.
const GoogleCSSURL = "https://fonts.googleapis.com/css2?family=%s:wght@%s"

// fontURLRe extracts the font file URL from the CSS response.
// Matches: url(https://fonts.gstatic.com/s/inter/v18/xxx.woff2)
var fontURLRe = regexp.MustCompile(`url\(['"]?(https?://[^)'"]+)['"]?\)`)

// Getter fetches raw bytes over HTTP. *fetch.Client satisfies it.
type Getter interface {
	Bytes(ctx context.Context, url string) ([]byte, error)
}

// Loader resolves typefaces.
type Loader struct {
	getter Getter
	cssURL string
	log    *slog.Logger
}

// NewLoader returns a Loader that downloads through g. A nil logger uses
// slog.Default.
func NewLoader(g Getter, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{getter: g, cssURL: GoogleCSSURL, log: log}
}

// ParseGoogleSpec parses a "google:Family:Weight" spec into its parts.
// Returns family, weight, and whether the spec is valid.
func ParseGoogleSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// Load returns the first typeface that resolves from file, then fallback,
// then the embedded Go Regular font. Either argument may be empty.
func (l *Loader) Load(ctx context.Context, file, fallback string) *canvas.Typeface {
	if file != "" {
		t, err := LoadFile(file)
		if err == nil {
			l.log.Debug("loaded font", "file", file)
			return t
		}
		l.log.Warn("failed to load font file", "file", file, "error", err)
	}

	if fallback != "" {
		t, err := l.Google(ctx, fallback)
		if err == nil {
			l.log.Debug("loaded font", "spec", fallback)
			return t
		}
		l.log.Warn("failed to download font", "spec", fallback, "error", err)
	}

	return canvas.GoRegular()
}

// LoadFile reads a TTF, OTF, WOFF, or WOFF2 file.
func LoadFile(path string) (*canvas.Typeface, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	return parse(path, data)
}

// Google downloads the font named by a "google:Family:Weight" spec.
func (l *Loader) Google(ctx context.Context, spec string) (*canvas.Typeface, error) {
	family, weight, ok := ParseGoogleSpec(spec)
	if !ok {
		return nil, fmt.Errorf("invalid google font spec %q: expected google:FAMILY:WEIGHT", spec)
	}

	css, err := l.getter.Bytes(ctx, fmt.Sprintf(l.cssURL, url.QueryEscape(family), weight))
	if err != nil {
		return nil, fmt.Errorf("fetch Google Fonts CSS: %w", err)
	}

	matches := fontURLRe.FindSubmatch(css)
	if matches == nil {
		return nil, fmt.Errorf("no font URL in Google Fonts CSS for %s wght@%s", family, weight)
	}
	fontURL := string(matches[1])

	data, err := l.getter.Bytes(ctx, fontURL)
	if err != nil {
		return nil, fmt.Errorf("download font file: %w", err)
	}
	return parse(fontURL, data)
}

// parse converts web font containers to SFNT before parsing.
func parse(name string, data []byte) (*canvas.Typeface, error) {
	if isWebFont(name, data) {
		sfnt, err := font.ToSFNT(data)
		if err != nil {
			return nil, fmt.Errorf("convert %s to SFNT: %w", name, err)
		}
		data = sfnt
	}
	return canvas.ParseTypeface(data)
}

// isWebFont checks whether font data is WOFF or WOFF2 by extension or magic
// bytes.
func isWebFont(name string, data []byte) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".woff2") || strings.HasSuffix(lower, ".woff") {
		return true
	}
	if len(data) < 4 {
		return false
	}
	magic := string(data[:4])
	return magic == "wOF2" || magic == "wOFF"
}
