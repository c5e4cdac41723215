package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hymnal/internal/auth"
	"github.com/desertthunder/hymnal/internal/catalog"
	"github.com/desertthunder/hymnal/internal/formatter"
	"github.com/desertthunder/hymnal/internal/likes"
	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/repositories"
	"github.com/desertthunder/hymnal/internal/services"
	"github.com/desertthunder/hymnal/internal/shared"
	"github.com/desertthunder/hymnal/internal/tasks"
	"github.com/desertthunder/hymnal/internal/translation"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	generator  services.Generator
	catalog    catalog.Store
	likes      *likes.Service
	auth       auth.Provider
	resolver   *translation.Resolver
	engine     *tasks.WarmEngine
	language   models.Language
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Generator  services.Generator
	Catalog    catalog.Store
	Likes      *likes.Service
	Auth       auth.Provider
	Resolver   *translation.Resolver
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Missing collaborators are filled with offline defaults: the seeded in-memory catalog, an
// unconfigured generator and a guest liked set kept in memory.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Generator == nil {
		opts.Generator = services.NewAIClient(services.AIClientOptions{Logger: opts.Logger})
	}
	if opts.Catalog == nil {
		if store, err := catalog.NewSeededStore(); err == nil {
			opts.Catalog = store
		} else {
			opts.Logger.Error("failed to load seed catalog", "error", err)
		}
	}
	if opts.Resolver == nil {
		cfg := opts.Config.Translation
		opts.Resolver = translation.NewResolver(opts.Generator, translation.NewCache(cfg.CacheSize, cfg.CacheTTL()), opts.Logger)
	}
	if opts.Likes == nil {
		var identity likes.Identity = likes.Guest{}
		if opts.Auth != nil {
			identity = opts.Auth
		}
		opts.Likes = likes.New(repositories.NewMemoryKV(), identity, opts.Logger)
	}

	language, err := models.ParseLanguage(opts.Config.Translation.Language)
	if err != nil {
		language = models.English
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		generator:  opts.Generator,
		catalog:    opts.Catalog,
		likes:      opts.Likes,
		auth:       opts.Auth,
		resolver:   opts.Resolver,
		engine:     tasks.NewWarmEngine(opts.Catalog, opts.Resolver, shared.WithLogger(opts.Logger, "task", "warm")),
		language:   language,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, hymnsCommand, aiCommand, likesCommand, authCommand, serveCommand, warmCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// languageFlag returns the --lang flag, defaulting to the configured language.
func (r *Runner) languageFlag(cmd *cli.Command) (models.Language, error) {
	if v := cmd.String("lang"); v != "" {
		return models.ParseLanguage(v)
	}
	return r.language, nil
}

// localize returns a copy of h whose entries for lang hold resolved text.
//
// With fetch unset only stored and cached translations are used; pending ones keep English.
func (r *Runner) localize(ctx context.Context, h models.Hymn, lang models.Language, fetch bool) (models.Hymn, error) {
	if lang == models.English {
		return h, nil
	}

	resolve := func(field models.MultilingualText, fallback string) (string, error) {
		req := translation.Request{Field: field, Language: lang, Fallback: fallback}
		if !fetch {
			return r.resolver.Lookup(req).Text, nil
		}
		res, err := r.resolver.Resolve(ctx, req)
		return res.Text, err
	}

	title, err := resolve(h.Title, h.DisplayTitle())
	if err != nil {
		return h, err
	}
	h.Title = maps.Clone(h.Title)
	if h.Title == nil {
		h.Title = models.MultilingualText{}
	}
	h.Title[lang] = title

	if fetch && len(h.Lyrics) > 0 {
		lyrics, err := resolve(h.Lyrics, "")
		if err != nil {
			return h, err
		}
		h.Lyrics = maps.Clone(h.Lyrics)
		h.Lyrics[lang] = lyrics
	}

	return h, nil
}

// emit writes data as JSON when --json is set, otherwise the rendering for --format.
// With --output the rendering is written to that file instead of the terminal.
func (r *Runner) emit(cmd *cli.Command, data any, render func(formatter.Format) ([]byte, error)) error {
	format := formatter.FormatText
	if cmd.Bool("json") {
		format = formatter.FormatJSON
	} else if v := cmd.String("format"); v != "" {
		f, err := formatter.ParseFormat(v)
		if err != nil {
			return err
		}
		format = f
	}

	var out []byte
	var err error
	if format == formatter.FormatJSON {
		if cmd.Bool("pretty") {
			out, err = json.MarshalIndent(data, "", "  ")
		} else {
			out, err = json.Marshal(data)
		}
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		out = append(out, '\n')
	} else if out, err = render(format); err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(path, out); err != nil {
			return err
		}
		r.logger.Info("export written", "path", path, "format", format)
		return nil
	}

	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
