package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hymnal/internal/catalog"
	"github.com/desertthunder/hymnal/internal/formatter"
	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
)

// CategoryCount is one row of `hymns categories`.
type CategoryCount struct {
	Category models.Category `json:"category"`
	Count    int             `json:"count"`
	Featured bool            `json:"featured"`
}

func parseID(cmd *cli.Command) (int, error) {
	raw := strings.TrimSpace(cmd.StringArg("id"))
	if raw == "" {
		return 0, fmt.Errorf("%w: hymn id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: hymn id %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

func (r *Runner) allHymns(ctx context.Context) ([]models.Hymn, error) {
	if r.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	hymns, err := r.catalog.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return hymns, nil
}

// localizeTitles applies stored and cached title translations without calling the gateway.
func (r *Runner) localizeTitles(ctx context.Context, hymns []models.Hymn, lang models.Language) []models.Hymn {
	out := make([]models.Hymn, len(hymns))
	for i, h := range hymns {
		out[i], _ = r.localize(ctx, h, lang, false)
	}
	return out
}

func (r *Runner) emitHymns(cmd *cli.Command, heading string, hymns []models.Hymn, lang models.Language) error {
	return r.emit(cmd, hymns, func(format formatter.Format) ([]byte, error) {
		switch format {
		case formatter.FormatCSV:
			return formatter.HymnsToCSV(hymns, lang)
		case formatter.FormatMarkdown:
			return formatter.HymnsToMarkdown(heading, hymns, lang), nil
		default:
			return formatter.HymnsToText(hymns, lang), nil
		}
	})
}

// HymnsList lists the catalog filtered by --category and --search.
func (r *Runner) HymnsList(ctx context.Context, cmd *cli.Command) error {
	lang, err := r.languageFlag(cmd)
	if err != nil {
		return err
	}
	category, err := models.ParseCategory(cmd.String("category"))
	if err != nil {
		return err
	}

	hymns, err := r.allHymns(ctx)
	if err != nil {
		return err
	}

	filtered := catalog.Filter(hymns, category, cmd.String("search"))
	r.logger.Debug("filtered catalog", "category", category, "search", cmd.String("search"), "matches", len(filtered))

	heading := "Hymns"
	if category != models.AllCategories {
		heading = string(category)
	}
	return r.emitHymns(cmd, heading, r.localizeTitles(ctx, filtered, lang), lang)
}

// HymnsSearch searches by number or title. With --generate an empty result writes a new hymn about the term.
func (r *Runner) HymnsSearch(ctx context.Context, cmd *cli.Command) error {
	term := cmd.StringArg("term")
	if strings.TrimSpace(term) == "" {
		return fmt.Errorf("%w: search term", shared.ErrMissingArgument)
	}
	lang, err := r.languageFlag(cmd)
	if err != nil {
		return err
	}

	hymns, err := r.allHymns(ctx)
	if err != nil {
		return err
	}

	matches := catalog.Filter(hymns, models.AllCategories, term)
	if len(matches) > 0 {
		return r.emitHymns(cmd, fmt.Sprintf("Search: %s", term), r.localizeTitles(ctx, matches, lang), lang)
	}

	if !cmd.Bool("generate") {
		return r.writePlain("No hymns match %q. Run again with --generate to write one.\n", term)
	}

	r.logger.Info("no catalog matches, generating", "term", term, "language", lang)
	hymn := r.generator.SearchAndGenerateHymn(ctx, term, lang)
	if hymn.Failed() {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, hymn.Lyrics)
	}
	return r.emit(cmd, hymn, func(format formatter.Format) ([]byte, error) {
		return formatter.GeneratedToMarkdown(hymn), nil
	})
}

// HymnsShow shows one hymn, translating title and lyrics into --lang when needed.
func (r *Runner) HymnsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd)
	if err != nil {
		return err
	}
	lang, err := r.languageFlag(cmd)
	if err != nil {
		return err
	}
	if r.catalog == nil {
		return fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	hymn, err := r.catalog.GetByID(ctx, id)
	if err != nil {
		return err
	}

	localized, err := r.localize(ctx, *hymn, lang, true)
	if err != nil {
		return err
	}

	return r.emit(cmd, localized, func(format formatter.Format) ([]byte, error) {
		switch format {
		case formatter.FormatCSV:
			return formatter.HymnsToCSV([]models.Hymn{localized}, lang)
		case formatter.FormatMarkdown:
			return formatter.HymnToMarkdown(localized, lang), nil
		default:
			return formatter.HymnToText(localized, lang), nil
		}
	})
}

// HymnsRecent lists the most recently added hymns.
func (r *Runner) HymnsRecent(ctx context.Context, cmd *cli.Command) error {
	lang, err := r.languageFlag(cmd)
	if err != nil {
		return err
	}
	if r.catalog == nil {
		return fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	hymns, err := r.catalog.GetRecent(ctx, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to load recent hymns: %w", err)
	}
	return r.emitHymns(cmd, "Recently Added", r.localizeTitles(ctx, hymns, lang), lang)
}

// HymnsCategories lists every category with the number of hymns it holds.
func (r *Runner) HymnsCategories(ctx context.Context, cmd *cli.Command) error {
	hymns, err := r.allHymns(ctx)
	if err != nil {
		return err
	}

	featured := make(map[models.Category]bool, len(models.FeaturedCategories))
	for _, c := range models.FeaturedCategories {
		featured[c] = true
	}

	categories := models.Categories
	if cmd.Bool("featured") {
		categories = models.FeaturedCategories
	}

	counts := make([]CategoryCount, 0, len(categories))
	for _, c := range categories {
		counts = append(counts, CategoryCount{
			Category: c,
			Count:    len(catalog.Filter(hymns, c, "")),
			Featured: featured[c],
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(counts, false)
	}

	r.writePlainHeader("Categories")
	for _, c := range counts {
		mark := " "
		if c.Featured {
			mark = "★"
		}
		r.writePlain("%s %-28s %3d\n", mark, c.Category, c.Count)
	}
	return nil
}
