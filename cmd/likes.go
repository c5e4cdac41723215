package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hymnal/internal/formatter"
	"github.com/desertthunder/hymnal/internal/models"
	"github.com/desertthunder/hymnal/internal/shared"
)

// requireAuth gates the signed-in features: favorites and saving drafts.
func (r *Runner) requireAuth() error {
	if r.auth == nil || !r.auth.IsAuthenticated() {
		return fmt.Errorf("%w: run `hymnal auth login` first", shared.ErrNotAuthenticated)
	}
	return nil
}

// LikesList lists liked catalog hymns in catalog order, then liked generated hymns newest first.
func (r *Runner) LikesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	if err := r.likes.Load(ctx); err != nil {
		return fmt.Errorf("failed to load favorites: %w", err)
	}

	hymns, err := r.allHymns(ctx)
	if err != nil {
		return err
	}

	stamps := make(map[string]int64)
	for _, item := range r.likes.Items() {
		stamps[item.Identity()] = item.LikedAt
	}

	var items []models.LikedItem
	for _, h := range r.likes.LikedCatalogItems(hymns) {
		items = append(items, models.LikedItem{Hymn: &h, LikedAt: stamps[h.Identity()]})
	}
	items = append(items, r.likes.LikedGenerated()...)

	if cmd.Bool("json") {
		return r.writeJSON(items, cmd.Bool("pretty"))
	}

	if len(items) == 0 {
		return r.writePlain("Nothing liked yet.\n")
	}
	r.writePlainHeader(fmt.Sprintf("Favorites (%d)", len(items)))
	_, err = r.output.Write(formatter.LikedToText(items))
	return err
}

// LikesToggle likes or unlikes a catalog hymn by id.
func (r *Runner) LikesToggle(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAuth(); err != nil {
		return err
	}
	id, err := parseID(cmd)
	if err != nil {
		return err
	}

	hymn, err := r.catalog.GetByID(ctx, id)
	if err != nil {
		return err
	}

	liked, err := r.likes.Toggle(ctx, *hymn)
	if err != nil {
		return fmt.Errorf("failed to save favorite: %w", err)
	}

	if liked {
		return r.writePlain("♥ Liked #%d %s\n", hymn.Number, hymn.DisplayTitle())
	}
	return r.writePlain("Removed #%d %s from favorites\n", hymn.Number, hymn.DisplayTitle())
}
