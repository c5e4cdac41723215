package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hymnal/internal/ai"
	"github.com/desertthunder/hymnal/internal/server"
	"github.com/desertthunder/hymnal/internal/shared"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the AI gateway until interrupted.
//
// Without provider credentials the gateway still starts and answers every action with the not-configured error.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	gatewayCfg := r.config.Gateway
	if v := cmd.String("host"); v != "" {
		gatewayCfg.Host = v
	}
	if v := int(cmd.Int("port")); v != 0 {
		gatewayCfg.Port = v
	}

	aiCfg := r.config.AI
	if v := cmd.String("provider"); v != "" {
		aiCfg.Provider = v
	}

	logger := shared.WithLogger(r.logger, "component", "gateway")

	provider, err := ai.New(ctx, aiCfg, r.httpClient)
	switch {
	case errors.Is(err, shared.ErrMissingCredentials):
		logger.Warn("no provider credentials; AI actions will report not configured", "provider", aiCfg.Provider)
		provider = nil
	case err != nil:
		return fmt.Errorf("failed to create AI provider: %w", err)
	default:
		logger.Info("provider ready", "provider", provider.Name(), "model", aiCfg.Model)
	}

	srv := server.NewGatewayServer(gatewayCfg, provider, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("gateway listening", "addr", srv.Addr, "path", gatewayCfg.Path)
	if err := server.Serve(ctx, srv, nil, shutdownTimeout); err != nil {
		return fmt.Errorf("gateway server failed: %w", err)
	}
	logger.Info("gateway stopped")
	return nil
}
