package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/tasks"
)

func (r *Runner) warmOpts(cmd *cli.Command) (tasks.WarmOpts, error) {
	opts := tasks.WarmOpts{
		NumWorkers: r.config.Translation.WarmWorkers,
		RateLimit:  r.config.Translation.WarmRate,
		Fields:     []tasks.Field{tasks.FieldTitle},
	}

	for _, v := range cmd.StringSlice("lang") {
		lang, err := models.ParseLanguage(v)
		if err != nil {
			return opts, err
		}
		opts.Languages = append(opts.Languages, lang)
	}
	if cmd.Bool("lyrics") {
		opts.Fields = append(opts.Fields, tasks.FieldLyrics)
	}
	if v := int(cmd.Int("workers")); v > 0 {
		opts.NumWorkers = v
	}
	if v := cmd.Float("rate"); v > 0 {
		opts.RateLimit = v
	}
	return opts, nil
}

// Warm pre-fetches catalog translations and prints progress as it goes.
func (r *Runner) Warm(ctx context.Context, cmd *cli.Command) error {
	opts, err := r.warmOpts(cmd)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	quiet := cmd.Bool("json")

	go func() {
		defer close(done)
		for update := range progress {
			if quiet {
				continue
			}
			if update.Phase == tasks.FetchTranslations {
				r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
			} else {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, err := r.engine.Run(ctx, progress, opts)
	close(progress)
	<-done

	if err != nil && result == nil {
		return fmt.Errorf("warm failed: %w", err)
	}

	r.logger.Info("warm finished",
		"planned", result.Planned, "translated", result.Translated, "cached", result.Cached, "failed", result.Failed)

	if quiet {
		if jsonErr := r.writeJSON(result, true); jsonErr != nil {
			return jsonErr
		}
	} else {
		r.writePlainln("✓ %d translated, %d shared, %d failed, %d already available",
			result.Translated, result.Cached, result.Failed, result.Skipped)
	}

	if err != nil {
		return fmt.Errorf("warm interrupted: %w", err)
	}
	return nil
}
