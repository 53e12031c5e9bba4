package main

import (
	"github.com/rs/zerolog"

	"openclaw/internal/config"
	"openclaw/internal/sandbox"
)

// initSandbox starts the sandbox manager at startup to surface errors early.
// Returns nil when the sandbox is disabled or fails to start, in which case
// untrusted code runs as a plain host process under its own rlimits.
func initSandbox(cfg *config.Config, logger zerolog.Logger) *sandbox.Manager {
	if !cfg.Sandbox.Enabled {
		logger.Info().Msg("Sandbox disabled via config")
		return nil
	}

	mgr := sandbox.NewManager(cfg.Sandbox)
	if err := mgr.Start(); err != nil {
		logger.Error().Err(err).Msg("Failed to initialize sandbox; falling back to host execution")
		return nil
	}

	logger.Info().Msg("Sandbox initialized")
	return mgr
}
