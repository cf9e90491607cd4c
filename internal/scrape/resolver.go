package scrape

import (
	"context"
	"fmt"
	"html"
	"image"
	"log/slog"
	"regexp"

	"github.com/joeylmaalouf/shopkeeper/internal/logger"
)

// Fetcher retrieves page markup and decoded images by URL.
type Fetcher interface {
	Page(ctx context.Context, url string) (string, error)
	Image(ctx context.Context, url string) (image.Image, error)
}

// Resolver turns [Source] records into [AssetMap]s.
type Resolver struct {
	fetcher Fetcher
	log     *slog.Logger
}

// NewResolver creates a Resolver that fetches through f.
func NewResolver(f Fetcher, log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.Default()
	}
	return &Resolver{fetcher: f, log: log}
}

// Resolve fetches src.Page and extracts its assets with [Resolver.ResolveMarkup].
// src must already be expanded.
func (r *Resolver) Resolve(ctx context.Context, src Source) (AssetMap, error) {
	markup, err := r.fetcher.Page(ctx, src.Page)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}
	return r.ResolveMarkup(ctx, markup, src)
}

// ResolveMarkup applies src.Pattern to markup and fetches every image it
// names. Pairs are visited in document order and the first occurrence of a
// name key wins; later duplicates are skipped without being fetched. Any
// fetch or decode failure aborts the whole resolution.
func (r *Resolver) ResolveMarkup(ctx context.Context, markup string, src Source) (AssetMap, error) {
	re, err := CompilePattern(src.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name, err)
	}
	rewrites := make([]*regexp.Regexp, len(src.Rewrites))
	for i, rw := range src.Rewrites {
		if rewrites[i], err = CompileRewrite(rw); err != nil {
			return nil, fmt.Errorf("%s: %w", src.Name, err)
		}
	}

	assets := make(AssetMap)
	for _, m := range re.FindAllStringSubmatch(markup, -1) {
		key, link := m[1], m[2]
		if src.Reverse {
			key, link = link, key
		}
		key = html.UnescapeString(key)
		if _, ok := assets[key]; ok {
			continue
		}
		for i, rw := range rewrites {
			link = rw.ReplaceAllString(link, src.Rewrites[i].Replace)
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := r.fetcher.Image(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("%s: %q: %w", src.Name, key, err)
		}
		logger.Trace(r.log, "resolved asset", "source", src.Name, "key", key, "url", link)
		assets[key] = img
	}

	r.log.Debug("resolved source", "source", src.Name, "page", src.Page, "assets", len(assets))
	return assets, nil
}
