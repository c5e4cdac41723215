package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hymnal/internal/auth"
	"github.com/desertthunder/hymnal/internal/shared"
)

type sessionHolder interface {
	Session() *auth.Session
}

// AuthLogin signs in through the configured identity provider.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return fmt.Errorf("%w: identity provider not initialized", shared.ErrServiceUnavailable)
	}

	session, err := r.auth.Login(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("authentication successful", "user", session.UserID)

	name := session.Name
	if name == "" {
		name = session.UserID
	}
	return r.writePlain("✓ Signed in as %s\n", name)
}

// AuthLogout forgets the saved session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil || !r.auth.IsAuthenticated() {
		return r.writePlain("Not signed in\n")
	}

	if err := r.auth.Logout(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus prints the signed-in user, if any.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if !r.config.Identity.Configured() {
		r.writePlain("Identity provider: ✗ Not configured\n")
	} else {
		r.writePlain("Identity provider: %s\n", r.config.Identity.AuthURL)
	}

	if r.auth == nil || !r.auth.IsAuthenticated() {
		return r.writePlain("Authentication: ✗ Not signed in\n")
	}

	userID, _ := r.auth.CurrentUserID()
	r.writePlain("Authentication: ✓ Signed in\n")
	r.writePlain("User: %s\n", userID)

	if holder, ok := r.auth.(sessionHolder); ok {
		if s := holder.Session(); s != nil {
			if s.Name != "" {
				r.writePlain("Name: %s\n", s.Name)
			}
			if s.Email != "" {
				r.writePlain("Email: %s\n", s.Email)
			}
			if s.Token != nil && !s.Token.Expiry.IsZero() {
				r.writePlain("Token expires: %s\n", s.Token.Expiry.Format("2006-01-02 15:04"))
			}
		}
	}
	return nil
}
