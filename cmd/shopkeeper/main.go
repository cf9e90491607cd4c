// Package main implements shopkeeper, which renders a game build description
// into a 1920x1080 build card PNG using icons scraped from the game's wiki.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	rootpkg "github.com/joeylmaalouf/shopkeeper"
	"github.com/joeylmaalouf/shopkeeper/internal/atomicfile"
	"github.com/joeylmaalouf/shopkeeper/internal/build"
	"github.com/joeylmaalouf/shopkeeper/internal/canvas"
	"github.com/joeylmaalouf/shopkeeper/internal/config"
	"github.com/joeylmaalouf/shopkeeper/internal/fetch"
	"github.com/joeylmaalouf/shopkeeper/internal/fonts"
	"github.com/joeylmaalouf/shopkeeper/internal/logger"
	"github.com/joeylmaalouf/shopkeeper/internal/paths"
	"github.com/joeylmaalouf/shopkeeper/internal/render"
	"github.com/joeylmaalouf/shopkeeper/internal/watch"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/shopkeeper
//
// Without ldflags, resolveVersion falls back to the VCS info Go embeds.
var version = "dev"

// resolveVersion returns the build version string. If [version] was set via
// ldflags it is returned as-is; otherwise the embedded VCS revision and dirty
// state produce a "dev+<hash>" tag.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return version
	}
	hash := revision[:min(7, len(revision))]
	if dirty {
		return "dev+" + hash + ".dirty"
	}
	return "dev+" + hash
}

// ///////////////////////////////////////////////
// Messages
// ///////////////////////////////////////////////

const (
	msgFailed  = "Error: something went wrong while creating the build image. Perhaps malformed data?"
	msgSuccess = "Success: created \"%s\" from \"%s\".\n"
)

// errLocked is returned when another process holds an output's lock file.
var errLocked = errors.New("output is being written by another process")

// ///////////////////////////////////////////////
// Entry Point
// ///////////////////////////////////////////////

func main() {
	ctx, stop := signalContext()
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := signalChannel()
	go func() {
		select {
		case sig := <-ch:
			slog.Info("received signal, shutting down", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, func() {
		signal.Stop(ch)
		cancel()
	}
}

// run parses args, renders every requested build file and returns the
// process exit code. Results go to stdout; logs go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(paths.BinaryName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] BUILD.json\n\nFlags:\n", paths.BinaryName)
		fs.PrintDefaults()
	}
	configPath := fs.String("config", paths.DataDir{Root: defaultDataDir()}.Config(), "path to the TOML config file")
	gameFlag := fs.String("game", "", "game variant (lol, dota); overrides the build's Game field")
	watchFlag := fs.Bool("watch", false, "re-render build files whenever they are written")
	logLevel := fs.String("log-level", "", "override log.level (trace, debug, info, warn, error)")
	writeConfig := fs.Bool("write-config", false, "write the default config to -config and exit")
	showVersion := fs.Bool("version", false, "print the version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *showVersion {
		fmt.Fprintf(stdout, "%s %s\n", paths.BinaryName, resolveVersion())
		return 0
	}
	if *writeConfig {
		if err := writeDefaultConfig(*configPath); err != nil {
			fmt.Fprintf(stdout, "Error: %v.\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Wrote default config to %s\n", *configPath)
		return 0
	}

	arg := fs.Arg(0)
	if err := paths.CheckInput(arg); err != nil {
		fmt.Fprintf(stdout, "Error: %v.\n", err)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v.\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(stdout, "Error: %v.\n", err)
			return 1
		}
	}

	log, closer, err := logger.New(logger.Options{
		Level:     logger.ParseLevel(cfg.Log.Level),
		Console:   stderr,
		File:      cfg.Log.File,
		MaxSizeMB: cfg.Log.MaxSizeMB,
	})
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v.\n", err)
		return 1
	}
	defer closer.Close()
	slog.SetDefault(log)

	inputs, err := expandInputs(arg, cfg)
	if err != nil {
		fmt.Fprintf(stdout, "Error: %v.\n", err)
		return 1
	}

	fetcher := fetch.New(fetch.Options{
		Timeout:   time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
		RetryMax:  cfg.HTTP.RetryMax,
		UserAgent: cfg.HTTP.UserAgent,
		Logger:    log,
	})
	face := fonts.NewLoader(fetcher, log).Load(ctx, cfg.Font.File, cfg.Font.Fallback)
	defer face.Close()

	a := &app{cfg: cfg, game: *gameFlag, fetcher: fetcher, face: face, log: log, out: stdout}
	log.Debug("shopkeeper starting", "version", resolveVersion(), "inputs", len(inputs))

	code := 0
	for _, in := range inputs {
		if !a.renderAndReport(ctx, in) {
			code = 1
		}
	}
	if *watchFlag {
		return a.watch(ctx, inputs)
	}
	return code
}

// ///////////////////////////////////////////////
// Inputs
// ///////////////////////////////////////////////

// isGlob reports whether arg contains doublestar metacharacters.
func isGlob(arg string) bool {
	return strings.ContainsAny(arg, "*?[{")
}

// expandInputs returns the build files named by arg. A plain path is
// returned as-is so a missing file surfaces as a render error. A glob expands
// to its sorted matches minus those matching render.ignore.
func expandInputs(arg string, cfg *config.Config) ([]string, error) {
	if !isGlob(arg) {
		return []string{arg}, nil
	}
	matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("bad glob %q: %w", arg, err)
	}
	inputs := make([]string, 0, len(matches))
	for _, m := range matches {
		if cfg.IsIgnored(m) {
			slog.Debug("ignoring build file", "path", m)
			continue
		}
		inputs = append(inputs, m)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no build files match %q", arg)
	}
	sort.Strings(inputs)
	return inputs, nil
}

// ///////////////////////////////////////////////
// Rendering
// ///////////////////////////////////////////////

// app holds what every render of one run shares.
type app struct {
	cfg     *config.Config
	game    string
	fetcher *fetch.Client
	face    *canvas.Typeface
	log     *slog.Logger
	out     io.Writer
}

// gameFor picks the game: -game, then the build's Game field, then
// render.default_game.
func (a *app) gameFor(d *build.Description) string {
	if a.game != "" {
		return a.game
	}
	if g := d.Game(); g != "" {
		return strings.ToLower(g)
	}
	return a.cfg.Render.DefaultGame
}

// render draws the build card for in and writes it next to it.
func (a *app) render(ctx context.Context, in string) (string, error) {
	d, err := build.Load(in)
	if err != nil {
		return "", err
	}
	id := a.gameFor(d)
	game, err := a.cfg.Game(id)
	if err != nil {
		return "", err
	}
	r, err := render.New(id, game, a.fetcher, a.face, a.log.With("input", in))
	if err != nil {
		return "", err
	}
	c, err := r.Render(ctx, d)
	if err != nil {
		return "", err
	}
	out := paths.OutputPath(in)
	if err := writeLocked(out, c); err != nil {
		return "", err
	}
	return out, nil
}

// renderAndReport renders in and prints the outcome. It reports success.
func (a *app) renderAndReport(ctx context.Context, in string) bool {
	start := time.Now()
	out, err := a.render(ctx, in)
	if err != nil {
		logger.Fail(a.log, "render failed", "input", in, "error", err)
		fmt.Fprintln(a.out, msgFailed)
		fmt.Fprintf(a.out, "Cause: %v\n", err)
		return false
	}
	a.log.Info("rendered build card", "input", in, "output", out, "elapsed", time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(a.out, msgSuccess, out, in)
	return true
}

// writeLocked encodes c to out atomically while holding out's lock file.
func writeLocked(out string, c *canvas.Canvas) error {
	lockPath := paths.LockPath(out)
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return fmt.Errorf("%w: %w", errLocked, err)
	}
	defer func() {
		unlockFile(f)
		f.Close()
		os.Remove(lockPath)
	}()
	if err := atomicfile.WriteFunc(out, 0o644, c.EncodePNG); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}

// ///////////////////////////////////////////////
// Watch Mode
// ///////////////////////////////////////////////

// watch re-renders inputs as they are written until ctx is cancelled.
// Render failures are reported and do not stop the loop.
func (a *app) watch(ctx context.Context, inputs []string) int {
	w, err := watch.New(inputs, a.log)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v.\n", err)
		return 1
	}
	defer w.Close()

	byPath := make(map[string]string, len(inputs))
	for _, in := range inputs {
		if abs, err := filepath.Abs(in); err == nil {
			byPath[abs] = in
		}
	}
	a.log.Info("watching build files", "count", len(inputs), "polling", w.Polling())

	for {
		select {
		case <-ctx.Done():
			a.log.Info("watch stopped")
			return 0
		case <-w.Events():
			for _, p := range w.TakeChanged() {
				in, ok := byPath[p]
				if !ok {
					in = p
				}
				a.renderAndReport(ctx, in)
			}
		}
	}
}

// ///////////////////////////////////////////////
// Default Config
// ///////////////////////////////////////////////

// writeDefaultConfig writes the embedded default config to path. An existing
// file is left alone.
func writeDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return atomicfile.Write(path, rootpkg.DefaultConfigTOML, 0o644)
}

// defaultDataDir returns ~/.shopkeeper, or ./.shopkeeper when the home
// directory cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", paths.DataDirRel)
	}
	return filepath.Join(home, paths.DataDirRel)
}
