package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hymnal/internal/formatter"
	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/services"
	"github.com/desertthunder/hymnal/internal/shared"
)

// AIInspire prints a devotional for --category.
//
// A failed call still prints: the devotional text carries the failure message and the verse is empty.
func (r *Runner) AIInspire(ctx context.Context, cmd *cli.Command) error {
	lang, err := r.languageFlag(cmd)
	if err != nil {
		return err
	}

	category := models.GeneralTheme
	if v := cmd.String("category"); v != "" {
		if category, err = models.ParseCategory(v); err != nil {
			return err
		}
	}

	r.logger.Debug("generating inspiration", "category", category, "language", lang)
	insp := r.generator.GenerateInspiration(ctx, category, lang)

	if cmd.Bool("json") {
		return r.writeJSON(insp, false)
	}

	r.writePlain("%s\n", insp.InspirationalText)
	if insp.BibleVerse != "" {
		r.writePlain("\n  %s\n", insp.BibleVerse)
	}
	return nil
}

// AIGenerate writes a new hymn about the topic argument. With --like it is added to favorites.
func (r *Runner) AIGenerate(ctx context.Context, cmd *cli.Command) error {
	topic := strings.TrimSpace(cmd.StringArg("topic"))
	if topic == "" {
		return fmt.Errorf("%w: topic", shared.ErrMissingArgument)
	}
	lang, err := r.languageFlag(cmd)
	if err != nil {
		return err
	}
	if cmd.Bool("like") {
		if err := r.requireAuth(); err != nil {
			return err
		}
	}

	r.logger.Info("generating hymn", "topic", topic, "language", lang)
	hymn := r.generator.GenerateHymn(ctx, topic, lang)
	if !hymn.Usable() {
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, hymn.Lyrics)
	}

	if cmd.Bool("like") {
		liked, err := r.likes.Toggle(ctx, hymn)
		if err != nil {
			return fmt.Errorf("failed to save favorite: %w", err)
		}
		r.logger.Info("favorite updated", "title", hymn.Title, "liked", liked)
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(path, formatter.GeneratedToMarkdown(hymn)); err != nil {
			return err
		}
		return r.writePlain("✓ Saved %q to %s\n", hymn.Title, path)
	}

	if cmd.Bool("json") {
		return r.writeJSON(hymn, true)
	}

	r.writePlainHeader(hymn.Title)
	return r.writePlain("%s\n", hymn.Lyrics)
}

// AITranslate translates the text argument with --to and --from.
//
// By default a failed translation prints the input unchanged; --strict reports the failure instead.
func (r *Runner) AITranslate(ctx context.Context, cmd *cli.Command) error {
	text := cmd.StringArg("text")
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text", shared.ErrMissingArgument)
	}

	target, err := models.ParseLanguage(cmd.String("to"))
	if err != nil {
		return err
	}
	source, err := models.ParseLanguage(cmd.String("from"))
	if err != nil {
		return err
	}

	if !cmd.Bool("strict") {
		return r.writePlain("%s\n", r.generator.Translate(ctx, text, target, source))
	}

	translated, err := r.generator.TryTranslate(ctx, text, target, source)
	if err != nil {
		return fmt.Errorf("translation failed: %s: %w", services.UserMessage(err), err)
	}
	return r.writePlain("%s\n", translated)
}
