// Package render draws build cards. A [Renderer] turns a build description
// into a canvas by running an ordered [Pipeline] of stages, each of which
// scrapes the icons it needs and draws one section of the card.
package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joeylmaalouf/shopkeeper/internal/build"
	"github.com/joeylmaalouf/shopkeeper/internal/canvas"
	"github.com/joeylmaalouf/shopkeeper/internal/config"
	"github.com/joeylmaalouf/shopkeeper/internal/layout"
	"github.com/joeylmaalouf/shopkeeper/internal/scrape"
)

// ///////////////////////////////////////////////
// Pipeline
// ///////////////////////////////////////////////

// Stage draws one section of the card onto c.
type Stage func(ctx context.Context, c *canvas.Canvas, d *build.Description) error

// NamedStage is a stage with the name it is logged under.
type NamedStage struct {
	Name string
	Run  Stage
}

// Pipeline is an ordered list of stages.
type Pipeline []NamedStage

// Run executes the stages in order and stops at the first error.
func (p Pipeline) Run(ctx context.Context, c *canvas.Canvas, d *build.Description, log *slog.Logger) error {
	for _, s := range p {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Run(ctx, c, d); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
		log.Info("finished step", "step", s.Name)
	}
	return nil
}

// Names returns the stage names in order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, s := range p {
		names[i] = s.Name
	}
	return names
}

// ///////////////////////////////////////////////
// Renderer
// ///////////////////////////////////////////////

// Renderer draws cards for one game.
type Renderer struct {
	game     config.GameConfig
	variant  Variant
	fetcher  scrape.Fetcher
	resolver *scrape.Resolver
	face     *canvas.Typeface
	log      *slog.Logger
}

// New creates a Renderer for the game id configured by game. A nil logger
// uses slog.Default.
func New(id string, game config.GameConfig, f scrape.Fetcher, face *canvas.Typeface, log *slog.Logger) (*Renderer, error) {
	v, err := VariantFor(id)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("game", id)
	return &Renderer{
		game:     game,
		variant:  v,
		fetcher:  f,
		resolver: scrape.NewResolver(f, log),
		face:     face,
		log:      log,
	}, nil
}

// Pipeline returns the stages of the renderer's variant in drawing order.
func (r *Renderer) Pipeline() Pipeline {
	p := Pipeline{
		{Name: "background", Run: r.Background},
		{Name: "metadata", Run: r.Metadata},
	}
	if r.variant.Runes {
		p = append(p,
			NamedStage{Name: "summoner_spells", Run: r.SummonerSpells},
			NamedStage{Name: "runes", Run: r.Runes},
		)
	}
	return append(p,
		NamedStage{Name: "abilities", Run: r.Abilities},
		NamedStage{Name: "items", Run: r.Items},
	)
}

// Render draws the card for d on a fresh canvas.
func (r *Renderer) Render(ctx context.Context, d *build.Description) (*canvas.Canvas, error) {
	c := canvas.New(layout.CanvasSize, r.face)
	if err := r.Pipeline().Run(ctx, c, d, r.log); err != nil {
		return nil, err
	}
	return c, nil
}

// source expands a configured source for the page of name.
func (r *Renderer) source(id string, sc config.SourceConfig, name string) scrape.Source {
	return sc.Source(id).Expand(r.game.WikiURL, r.game.ImagePattern, name)
}

// miss logs a name that has no icon, with the closest known key.
func (r *Renderer) miss(source, name string, assets scrape.AssetMap) {
	attrs := []any{"source", source, "name", name}
	if closest := assets.Closest(name); closest != "" {
		attrs = append(attrs, "closest", closest)
	}
	r.log.Warn("no icon for name", attrs...)
}
