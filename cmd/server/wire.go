package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/group-parent-auth/auth"
	"github.com/jrsteele09/group-parent-auth/auth/attempts"
	"github.com/jrsteele09/group-parent-auth/bridge"
	"github.com/jrsteele09/group-parent-auth/internal/config"
	"github.com/jrsteele09/group-parent-auth/parents"
	"github.com/jrsteele09/group-parent-auth/parents/pgrepo"
	fakeparentrepo "github.com/jrsteele09/group-parent-auth/parents/repofake"
	"github.com/jrsteele09/group-parent-auth/server"
	"github.com/jrsteele09/group-parent-auth/token"
	"github.com/rs/zerolog"
)

// buildServer constructs every collaborator explicitly and returns the HTTP
// handler with a cleanup func for pooled connections.
func buildServer(ctx context.Context, c config.Config, logger zerolog.Logger) (http.Handler, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (http.Handler, func(), error) {
		cleanup()
		return nil, func() {}, err
	}

	repo, closeRepo, err := parentRepo(ctx, c, logger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeRepo)

	if err := seedParents(ctx, c, repo, logger); err != nil {
		return fail(err)
	}

	limiter, closeLimiter, err := attemptLimiter(ctx, c, logger)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, closeLimiter)

	if c.GetJWTSecret() == "" {
		return fail(fmt.Errorf("JWT_SECRET is required"))
	}
	issuer := token.NewIssuer(token.NewHMACSigner(c.GetJWTSecret()), token.WithExpiry(c.GetTokenExpiry()))

	authService, err := auth.NewService(repo, issuer,
		auth.WithLimiter(limiter),
		auth.WithLogger(logger.With().Str("component", "auth").Logger()),
	)
	if err != nil {
		return fail(err)
	}

	options := []server.Option{server.WithLogger(logger.With().Str("component", "http").Logger())}
	if c.GetBridgeTokenURL() != "" {
		b, err := bridge.NewAuthenticator(c, bridge.WithLogger(logger.With().Str("component", "bridge").Logger()))
		if err != nil {
			return fail(err)
		}
		logger.Info().Strs("regions", b.Regions()).Msg("membership bridge enabled")
		options = append(options, server.WithBridge(b))
	}

	s, err := server.New(c, authService, issuer, options...)
	if err != nil {
		return fail(err)
	}
	return s, cleanup, nil
}

func parentRepo(ctx context.Context, c config.Config, logger zerolog.Logger) (parents.Repo, func(), error) {
	if c.GetDatabaseURL() == "" {
		logger.Warn().Msg("DATABASE_URL not set, using in-memory parent store")
		return fakeparentrepo.NewFakeParentRepo(), func() {}, nil
	}

	pool, err := pgrepo.NewPool(ctx, c.GetDatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	repo := pgrepo.NewParentRepo(pool)
	if err := repo.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: %w", err)
	}
	return repo, pool.Close, nil
}

func seedParents(ctx context.Context, c config.Config, repo parents.Repo, logger zerolog.Logger) error {
	seeds, err := c.GetSeedParents()
	if err != nil {
		return err
	}
	records := make([]parents.SeedRecord, 0, len(seeds))
	for _, s := range seeds {
		records = append(records, parents.SeedRecord{GroupID: s.GroupID, Name: s.Name, Phone: s.Phone, PIN: s.PIN})
	}
	created, err := parents.Seed(ctx, repo, records)
	if err != nil {
		return err
	}
	if created > 0 {
		logger.Info().Int("created", created).Msg("seeded parent records")
	}
	return nil
}

func attemptLimiter(ctx context.Context, c config.Config, logger zerolog.Logger) (attempts.Limiter, func(), error) {
	policy := attempts.Policy{MaxFailures: c.GetLoginMaxFailures(), Window: c.GetLoginFailureWindow()}
	if !c.GetEnableRateLimiting() {
		logger.Info().Msg("login attempt limiting disabled")
		return attempts.NoLimit{}, func() {}, nil
	}

	if c.GetRedisAddr() == "" {
		logger.Info().Int("max_failures", policy.MaxFailures).Dur("window", policy.Window).Msg("in-memory login attempt limiting")
		return attempts.NewMemory(policy), func() {}, nil
	}

	client, err := attempts.NewRedisClient(ctx, c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDB())
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Int("max_failures", policy.MaxFailures).Dur("window", policy.Window).Msg("redis login attempt limiting")
	return attempts.NewRedis(client, policy), func() { _ = client.Close() }, nil
}
